package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/GBurchell27/Dynamic-subdomains/prometheus"
)

// Root greets callers at the API root.
func Root(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"message": "Welcome to the MMM SaaS Platform API",
	})
}

// HealthCheck handles the health check endpoint
func HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":  "healthy",
		"service": "mmm-platform",
	})
}

// MetricsHandler exposes the Prometheus metrics endpoint
func MetricsHandler(c echo.Context) error {
	handler := prometheus.GetPrometheusHandler()
	handler.ServeHTTP(c.Response(), c.Request())
	return nil
}
