package middleware

import (
	"net"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/modules/core/services"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/application"
	"github.com/Spen-Zosky/AI-HRMS-2025-sub004/pkg/composables"
)

const tenantHeader = "X-Tenant-ID"
const userHeader = "X-User-ID"

// RequireTenant resolves the tenant from the X-Tenant-ID header, falling back
// to a lookup of the request host, and rejects requests without one.
func RequireTenant(app application.Application) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := r.Header.Get(tenantHeader); raw != "" {
				tenantID, err := uuid.Parse(raw)
				if err != nil {
					http.Error(w, "invalid tenant id", http.StatusBadRequest)
					return
				}
				next.ServeHTTP(w, r.WithContext(composables.WithTenantID(r.Context(), tenantID)))
				return
			}

			host := normalizeHost(r.Host)
			if host == "" {
				http.NotFound(w, r)
				return
			}

			tenantService := app.Service(services.TenantService{}).(*services.TenantService)
			t, err := tenantService.GetByDomain(r.Context(), host)
			if err != nil {
				logger := composables.UseLogger(r.Context())
				logger.WithField("host", host).WithField("path", r.URL.Path).WithError(err).Warn("tenant not found for host")
				http.NotFound(w, r)
				return
			}

			next.ServeHTTP(w, r.WithContext(composables.WithTenantID(r.Context(), t.ID())))
		})
	}
}

// UserFromHeader attaches the calling user when the X-User-ID header is set.
// Requests without one proceed unauthenticated.
func UserFromHeader() mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if raw := r.Header.Get(userHeader); raw != "" {
				userID, err := uuid.Parse(raw)
				if err != nil {
					http.Error(w, "invalid user id", http.StatusBadRequest)
					return
				}
				r = r.WithContext(composables.WithUserID(r.Context(), userID))
			}
			next.ServeHTTP(w, r)
		})
	}
}

func normalizeHost(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	raw = strings.ToLower(raw)
	if h, _, err := net.SplitHostPort(raw); err == nil {
		return strings.ToLower(strings.TrimSpace(h))
	}
	return raw
}
