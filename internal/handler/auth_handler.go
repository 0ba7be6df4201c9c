package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/GBurchell27/Dynamic-subdomains/internal/authctx"
	"github.com/GBurchell27/Dynamic-subdomains/internal/model"
	"github.com/GBurchell27/Dynamic-subdomains/internal/store"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/jwtutil"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/logger"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/password"
	"github.com/GBurchell27/Dynamic-subdomains/prometheus"
)

// AuthHandler serves login and identity endpoints.
type AuthHandler struct {
	users   store.UserStore
	tenants store.TenantDirectory
	tokens  *jwtutil.JWT
}

// NewAuthHandler creates the auth handler with its collaborators.
func NewAuthHandler(users store.UserStore, tenants store.TenantDirectory, tokens *jwtutil.JWT) *AuthHandler {
	return &AuthHandler{users: users, tenants: tenants, tokens: tokens}
}

// Login exchanges form-encoded username and password credentials for an
// access token. Every failure returns the same generic Unauthorized so
// usernames cannot be enumerated.
func (h *AuthHandler) Login(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.LoginCounter.Inc()

	username := c.FormValue("username")
	pass := c.FormValue("password")
	if username == "" || pass == "" {
		prometheus.RecordAuthError("missing_credentials")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect username or password"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.users.FindByUsername(c.Request().Context(), username)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			log.Warn("Login for unknown user", zap.String("username", username))
			prometheus.RecordAuthError("user_not_found")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect username or password"})
		}
		log.Error("User lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}

	if !password.Verify(pass, user.PasswordHash) {
		log.Warn("Invalid password", zap.String("username", username))
		prometheus.RecordAuthError("invalid_password")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect username or password"})
	}

	opts := []jwtutil.IssueOption{}
	if user.IsAdmin {
		opts = append(opts, jwtutil.WithRole(model.RoleAdmin))
	} else {
		// A tenant user's affiliation must reference an existing active
		// tenant; anything else is treated like bad credentials.
		if user.TenantID == nil {
			log.Error("Non-admin user without tenant affiliation", zap.String("username", username))
			prometheus.RecordAuthError("missing_tenant_affiliation")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect username or password"})
		}
		if _, err := h.tenants.FindByID(c.Request().Context(), *user.TenantID); err != nil {
			log.Warn("Login for user of unknown or inactive tenant",
				zap.String("username", username),
				zap.String("tenant_id", *user.TenantID))
			prometheus.RecordAuthError("inactive_tenant")
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "incorrect username or password"})
		}
		opts = append(opts, jwtutil.WithTenant(*user.TenantID), jwtutil.WithRole(model.RoleMember))
	}

	token, err := h.tokens.Issue(user.Username, opts...)
	if err != nil {
		log.Error("Failed to issue token", zap.Error(err))
		prometheus.RecordAuthError("token_issue_failed")
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "login failed"})
	}
	prometheus.TokenIssuedCounter.Inc()

	log.Info("User logged in",
		zap.String("username", user.Username),
		zap.Bool("is_admin", user.IsAdmin))

	return c.JSON(http.StatusOK, echo.Map{
		"access_token": token,
		"token_type":   "bearer",
	})
}

// Me returns the authenticated caller's identity.
func (h *AuthHandler) Me(c echo.Context) error {
	log := logger.FromContext(c)
	ac := authctx.FromEcho(c)

	subject, ok := ac.Subject()
	if !ok {
		prometheus.RecordAuthError("missing_subject")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	user, err := h.users.FindByUsername(c.Request().Context(), subject)
	if err != nil {
		log.Warn("Authenticated subject no longer exists", zap.String("subject", subject))
		prometheus.RecordAuthError("subject_not_found")
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid authentication credentials"})
	}

	return c.JSON(http.StatusOK, echo.Map{
		"username":  user.Username,
		"email":     user.Email,
		"is_admin":  user.IsAdmin,
		"tenant_id": user.TenantID,
	})
}
