package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/GBurchell27/Dynamic-subdomains/internal/authctx"
	"github.com/GBurchell27/Dynamic-subdomains/internal/model"
	"github.com/GBurchell27/Dynamic-subdomains/internal/store"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/jwtutil"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/logger"
	"github.com/GBurchell27/Dynamic-subdomains/prometheus"
)

// TenantKey is the echo context key the validated tenant is stored under
// by RequireTenant.
const TenantKey = "tenant"

// Auth validates bearer tokens and attaches the verified subject to the
// request authorization context.
type Auth struct {
	tokens *jwtutil.JWT
}

// NewAuth creates the authentication middleware.
func NewAuth(tokens *jwtutil.JWT) *Auth {
	return &Auth{tokens: tokens}
}

// Authenticate validates the Authorization header's bearer token. The
// token's tenant claim is authoritative: when it disagrees with the
// tenant resolved from the subdomain, the request is rejected as
// Forbidden rather than silently resolved in favor of either.
func (a *Auth) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			log.Warn("Missing Authorization header")
			prometheus.RecordAuthError("missing_token")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			log.Warn("Invalid Authorization header format")
			prometheus.RecordAuthError("invalid_auth_format")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authorization format, expected Bearer token"})
		}

		claims, err := a.tokens.Verify(parts[1])
		if err != nil {
			if errors.Is(err, jwtutil.ErrTokenExpired) {
				log.Warn("Expired token")
				prometheus.RecordAuthError("expired_token")
			} else {
				log.Warn("Invalid token", zap.Error(err))
				prometheus.RecordAuthError("invalid_token")
			}
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid or expired token"})
		}

		ac := authctx.FromEcho(c)

		// Reconcile the verified tenant claim with the request's tenant
		// scope. On tenant routes RequireTenant has already validated
		// the tenant, so compare against its canonical ID; elsewhere
		// only the subdomain label is available.
		resolved, ok := ac.TenantID()
		if tenant, found := c.Get(TenantKey).(*model.Tenant); found {
			resolved, ok = tenant.ID, true
		}
		if ok && claims.TenantID != "" && claims.TenantID != resolved {
			log.Warn("Token tenant claim does not match request host",
				zap.String("token_tenant", claims.TenantID),
				zap.String("resolved_tenant", resolved))
			prometheus.RecordAuthError("tenant_mismatch")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "token not valid for this tenant"})
		}

		isAdmin := claims.Role == model.RoleAdmin && claims.TenantID == ""
		if err := ac.Authenticate(claims.Subject, claims.Role, isAdmin); err != nil {
			log.Error("Authorization context in unexpected state", zap.Error(err))
			return echo.ErrInternalServerError
		}

		log.Debug("Request authenticated",
			zap.String("subject", claims.Subject),
			zap.String("role", claims.Role),
			zap.Bool("is_admin", isAdmin))

		return next(c)
	}
}

// TenantGuard gates handlers that require an active tenant scope.
type TenantGuard struct {
	tenants store.TenantDirectory
}

// NewTenantGuard creates the tenant scope guard.
func NewTenantGuard(tenants store.TenantDirectory) *TenantGuard {
	return &TenantGuard{tenants: tenants}
}

// RequireTenant fails with Not-Found when no tenant was resolved or the
// directory reports none. Absent, unknown, and inactive tenants all
// surface the same way so the response leaks nothing about which case
// applied. On success the validated tenant is stored under TenantKey.
func (g *TenantGuard) RequireTenant(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)
		ac := authctx.FromEcho(c)

		tenantID, ok := ac.TenantID()
		if !ok {
			log.Warn("Tenant scope required but no tenant resolved")
			prometheus.RecordAuthError("no_tenant")
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}

		tenant, err := g.tenants.FindBySubdomain(c.Request().Context(), tenantID)
		if err != nil {
			if errors.Is(err, store.ErrTenantNotFound) {
				log.Warn("Unknown or inactive tenant", zap.String("tenant_id", tenantID))
				prometheus.RecordAuthError("unknown_tenant")
				return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
			}
			log.Error("Tenant lookup failed", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant lookup failed"})
		}

		c.Set(TenantKey, tenant)
		return next(c)
	}
}

// RequireAdmin fails with Forbidden when the authenticated subject does
// not hold the admin super-scope.
func RequireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)
		ac := authctx.FromEcho(c)

		if !ac.IsAdmin() {
			subject, _ := ac.Subject()
			log.Warn("Admin scope required", zap.String("subject", subject))
			prometheus.RecordAuthError("admin_required")
			return c.JSON(http.StatusForbidden, echo.Map{"error": "admin access required"})
		}
		return next(c)
	}
}
