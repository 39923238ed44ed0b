package authz

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const (
	globalDomain        = "global"
	subjectTenantPrefix = "tenant"
	subjectUserPrefix   = "user"
	rolePrefix          = "role"
	subjectSeparator    = ":"
)

// Mode controls how enforcement decisions are applied.
type Mode string

const (
	ModeDisabled Mode = "disabled"
	ModeShadow   Mode = "shadow"
	ModeEnforce  Mode = "enforce"
)

func sanitizeMode(mode Mode) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(string(mode)))) {
	case ModeDisabled:
		return ModeDisabled
	case ModeEnforce:
		return ModeEnforce
	default:
		return ModeShadow
	}
}

// Attributes contain optional ABAC style attributes supplied with a request.
type Attributes map[string]any

// Request encapsulates all parameters required to evaluate a Casbin rule.
type Request struct {
	Subject    string
	Domain     string
	Object     string
	Action     string
	Attributes Attributes
}

// RequestOption mutates a Request.
type RequestOption func(*Request)

// WithAttributes assigns attributes to the enforcement request.
func WithAttributes(attrs Attributes) RequestOption {
	return func(r *Request) {
		r.Attributes = attrs
	}
}

// NewRequest constructs a Request with sane defaults.
func NewRequest(subject, domain, object, action string, opts ...RequestOption) Request {
	req := Request{
		Subject:    subject,
		Domain:     domain,
		Object:     object,
		Action:     action,
		Attributes: Attributes{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&req)
		}
	}
	return req
}

// UserSubject formats a user id as a policy subject.
func UserSubject(userID uuid.UUID) string {
	return fmt.Sprintf("%s%s%s", subjectUserPrefix, subjectSeparator, userID)
}

// RoleSubject formats a role name as a policy subject.
func RoleSubject(role string) string {
	return fmt.Sprintf("%s%s%s", rolePrefix, subjectSeparator, role)
}

// TenantDomain formats a tenant id as a policy domain.
func TenantDomain(tenantID uuid.UUID) string {
	if tenantID == uuid.Nil {
		return globalDomain
	}
	return fmt.Sprintf("%s%s%s", subjectTenantPrefix, subjectSeparator, tenantID)
}
