package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/GBurchell27/Dynamic-subdomains/internal/model"
	"github.com/GBurchell27/Dynamic-subdomains/internal/store"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/logger"
	"github.com/GBurchell27/Dynamic-subdomains/prometheus"
)

// AdminHandler serves the platform-wide tenant management endpoints.
// All of its routes sit behind the admin scope guard.
type AdminHandler struct {
	tenants         store.TenantDirectory
	defaultFeatures []string
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(tenants store.TenantDirectory, defaultFeatures []string) *AdminHandler {
	return &AdminHandler{tenants: tenants, defaultFeatures: defaultFeatures}
}

// ListTenants returns all tenants, active or not.
func (h *AdminHandler) ListTenants(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("list")

	defer prometheus.TrackDBOperation("query")(time.Now())
	tenants, err := h.tenants.List(c.Request().Context())
	if err != nil {
		log.Error("Failed to list tenants", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to list tenants"})
	}

	return c.JSON(http.StatusOK, tenants)
}

// CreateTenant provisions a new tenant. The subdomain doubles as the
// default tenant id, matching how resolution keys on it.
func (h *AdminHandler) CreateTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("create")

	var req struct {
		Name           string   `json:"name"`
		Subdomain      string   `json:"subdomain"`
		Industry       string   `json:"industry"`
		Features       []string `json:"features"`
		PrimaryColor   string   `json:"primary_color"`
		SecondaryColor string   `json:"secondary_color"`
	}
	if err := c.Bind(&req); err != nil {
		log.Error("Failed to parse tenant creation request", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	req.Subdomain = strings.ToLower(strings.TrimSpace(req.Subdomain))
	if req.Name == "" || req.Subdomain == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name and subdomain are required"})
	}

	tenant := model.Tenant{
		ID:             req.Subdomain,
		Name:           req.Name,
		Subdomain:      req.Subdomain,
		Industry:       req.Industry,
		Features:       model.FeatureSet(req.Features),
		PrimaryColor:   req.PrimaryColor,
		SecondaryColor: req.SecondaryColor,
		Active:         true,
	}
	if tenant.Industry == "" {
		tenant.Industry = "General"
	}
	if len(tenant.Features) == 0 {
		tenant.Features = model.FeatureSet(h.defaultFeatures)
	}
	if tenant.PrimaryColor == "" {
		tenant.PrimaryColor = "#3B82F6"
	}
	if tenant.SecondaryColor == "" {
		tenant.SecondaryColor = "#1E40AF"
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.tenants.Create(c.Request().Context(), &tenant); err != nil {
		if errors.Is(err, store.ErrConflict) {
			log.Warn("Subdomain already taken", zap.String("subdomain", tenant.Subdomain))
			return c.JSON(http.StatusConflict, echo.Map{"error": "subdomain already in use"})
		}
		log.Error("Failed to create tenant", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant creation failed"})
	}

	log.Info("Tenant created",
		zap.String("tenant_id", tenant.ID),
		zap.String("subdomain", tenant.Subdomain))

	return c.JSON(http.StatusCreated, tenant)
}

// GetTenant returns a single tenant by id.
func (h *AdminHandler) GetTenant(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("access")

	defer prometheus.TrackDBOperation("query")(time.Now())
	tenant, err := h.tenants.FindByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrTenantNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
		}
		log.Error("Tenant lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "tenant lookup failed"})
	}

	return c.JSON(http.StatusOK, tenant)
}

// Statistics returns platform-wide tenant statistics.
func (h *AdminHandler) Statistics(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.RecordTenantOperation("statistics")

	defer prometheus.TrackDBOperation("query")(time.Now())
	stats, err := h.tenants.Stats(c.Request().Context())
	if err != nil {
		log.Error("Failed to compute tenant statistics", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to compute statistics"})
	}

	prometheus.UpdateActiveTenants(stats.ActiveTenants)

	return c.JSON(http.StatusOK, echo.Map{
		"total_tenants":      stats.TotalTenants,
		"active_tenants":     stats.ActiveTenants,
		"enterprise_tenants": stats.EnterpriseTenants,
		"avg_utilization":    78,
	})
}
