package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/GBurchell27/Dynamic-subdomains/internal/authctx"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/logger"
	"github.com/GBurchell27/Dynamic-subdomains/prometheus"
)

// TenantResolver derives a candidate tenant id from the request host's
// subdomain. The result is advisory for routing; authorization decisions
// reconcile it against the verified token claim in Authenticate.
type TenantResolver struct {
	reserved map[string]struct{}
}

// NewTenantResolver creates a resolver. Reserved subdomains ("admin",
// "api") never resolve to a tenant.
func NewTenantResolver(reserved []string) *TenantResolver {
	r := &TenantResolver{reserved: make(map[string]struct{}, len(reserved))}
	for _, s := range reserved {
		r.reserved[strings.ToLower(s)] = struct{}{}
	}
	return r
}

// Resolve extracts the candidate tenant id from a host header value.
// Returns "" when the host has no subdomain or the label is reserved.
func (r *TenantResolver) Resolve(host string) string {
	sub := SubdomainFromHost(host)
	if sub == "" {
		return ""
	}
	if _, ok := r.reserved[sub]; ok {
		return ""
	}
	return sub
}

// Middleware resolves the tenant once, before any handler runs, and
// attaches the result to the request authorization context so every
// downstream consumer sees the same value.
func (r *TenantResolver) Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			log := logger.FromContext(c)

			host := c.Request().Host
			sub := SubdomainFromHost(host)

			tenantID := ""
			switch {
			case sub == "":
				prometheus.RecordTenantResolution("none")
			case r.isReserved(sub):
				prometheus.RecordTenantResolution("reserved")
			default:
				tenantID = sub
				prometheus.RecordTenantResolution("resolved")
			}

			ac := authctx.New()
			if err := ac.ResolveTenant(tenantID); err != nil {
				// Unreachable on a fresh context, but never proceed
				// with an inconsistent authorization state.
				log.Error("Tenant resolution failed", zap.Error(err))
				return echo.ErrInternalServerError
			}
			authctx.Attach(c, ac)

			if tenantID != "" {
				log.Debug("Tenant resolved from subdomain",
					zap.String("host", host),
					zap.String("tenant_id", tenantID))
			}

			return next(c)
		}
	}
}

func (r *TenantResolver) isReserved(sub string) bool {
	_, ok := r.reserved[sub]
	return ok
}

// SubdomainFromHost extracts the label left of the first "." from a host
// header value, lowercased, with any port stripped. Returns "" when the
// host has no dot.
func SubdomainFromHost(host string) string {
	// Host headers may carry a port.
	if i := strings.LastIndex(host, ":"); i != -1 && !strings.Contains(host[i:], "]") {
		host = host[:i]
	}
	host = strings.ToLower(host)
	i := strings.Index(host, ".")
	if i <= 0 {
		return ""
	}
	return host[:i]
}
