package constants

type ContextKey string

const (
	PoolKey     ContextKey = "pool"
	TxKey       ContextKey = "tx"
	TenantIDKey ContextKey = "tenantID"
	UserKey     ContextKey = "user"
	LoggerKey   ContextKey = "logger"
	ParamsKey   ContextKey = "params"
)
