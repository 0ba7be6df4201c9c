package handler

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/GBurchell27/Dynamic-subdomains/internal/middleware"
	"github.com/GBurchell27/Dynamic-subdomains/internal/mmm"
	"github.com/GBurchell27/Dynamic-subdomains/internal/model"
	"github.com/GBurchell27/Dynamic-subdomains/internal/store"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/logger"
	"github.com/GBurchell27/Dynamic-subdomains/prometheus"
)

// TenantHandler serves the tenant-scoped dashboard, data, and analysis
// endpoints. Every route sits behind RequireTenant, so the validated
// tenant is always present in the echo context.
type TenantHandler struct {
	marketing store.MarketingStore
	engine    mmm.Engine
}

// NewTenantHandler creates the tenant handler.
func NewTenantHandler(marketing store.MarketingStore, engine mmm.Engine) *TenantHandler {
	return &TenantHandler{marketing: marketing, engine: engine}
}

// currentTenant returns the tenant validated by RequireTenant.
func currentTenant(c echo.Context) (*model.Tenant, bool) {
	tenant, ok := c.Get(middleware.TenantKey).(*model.Tenant)
	return tenant, ok
}

// DashboardMetrics aggregates the tenant's channel data into the
// dashboard summary.
func (h *TenantHandler) DashboardMetrics(c echo.Context) error {
	log := logger.FromContext(c)
	tenant, ok := currentTenant(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	rows, err := h.marketing.ChannelData(c.Request().Context(), tenant.ID)
	if err != nil {
		log.Error("Failed to load channel data", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load dashboard data"})
	}

	var totalSpend, totalImpressions, totalClicks float64
	channelEfficiency := make([]echo.Map, 0, len(rows))
	for _, row := range rows {
		totalSpend += row.Spend
		if row.Impressions != nil {
			totalImpressions += *row.Impressions
		}
		if row.Clicks != nil {
			totalClicks += *row.Clicks
		}

		efficiency := 3.1
		if row.Channel == "Google" {
			efficiency = 4.2
		}
		channelEfficiency = append(channelEfficiency, echo.Map{
			"channel":    row.Channel,
			"spend":      row.Spend,
			"efficiency": efficiency,
		})
	}

	cpa := 0.0
	if totalClicks > 0 {
		cpa = totalSpend / totalClicks
	}
	ctr := 0.0
	if totalImpressions > 0 {
		ctr = totalClicks / totalImpressions * 100
	}

	return c.JSON(http.StatusOK, echo.Map{
		"summary": echo.Map{
			"total_spend":       totalSpend,
			"total_impressions": totalImpressions,
			"total_clicks":      totalClicks,
		},
		"performance": echo.Map{
			"roas":               3.5,
			"cpa":                cpa,
			"ctr":                ctr,
			"channel_efficiency": channelEfficiency,
		},
	})
}

// UploadData ingests a CSV of marketing rows for the tenant. Expected
// columns: date,channel,spend,impressions,clicks,conversions,revenue
// (header row required; trailing columns optional per row).
func (h *TenantHandler) UploadData(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.DataUploadCounter.Inc()

	tenant, ok := currentTenant(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		log.Warn("Missing upload file", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "file is required"})
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error("Failed to open upload", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unreadable file"})
	}
	defer file.Close()

	rows, err := parseMarketingCSV(file)
	if err != nil {
		log.Warn("Rejected malformed upload",
			zap.String("filename", fileHeader.Filename),
			zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid CSV: " + err.Error()})
	}

	defer prometheus.TrackDBOperation("insert")(time.Now())
	inserted, err := h.marketing.InsertRows(c.Request().Context(), tenant.ID, rows)
	if err != nil {
		log.Error("Failed to store marketing data", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "upload failed"})
	}

	log.Info("Marketing data uploaded",
		zap.String("tenant_id", tenant.ID),
		zap.String("filename", fileHeader.Filename),
		zap.Int("rows", inserted))

	return c.JSON(http.StatusOK, echo.Map{
		"filename":       fileHeader.Filename,
		"status":         "processed",
		"rows_processed": inserted,
		"message":        "Data successfully uploaded and processed",
	})
}

// RunAnalysis starts a marketing mix model run over the tenant's data.
func (h *TenantHandler) RunAnalysis(c echo.Context) error {
	log := logger.FromContext(c)
	prometheus.AnalysisRunCounter.Inc()

	tenant, ok := currentTenant(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	var params mmm.RunParams
	if err := c.Bind(&params); err != nil {
		log.Warn("Failed to parse analysis params", zap.Error(err))
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request"})
	}

	if err := h.engine.Run(c.Request().Context(), tenant.ID, params); err != nil {
		log.Error("Failed to start analysis", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start analysis"})
	}

	encodedParams, err := json.Marshal(params)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start analysis"})
	}

	analysis := model.Analysis{
		TenantID: tenant.ID,
		Status:   model.AnalysisStatusProcessing,
		Params:   string(encodedParams),
	}
	defer prometheus.TrackDBOperation("insert")(time.Now())
	if err := h.marketing.SaveAnalysis(c.Request().Context(), &analysis); err != nil {
		log.Error("Failed to record analysis", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start analysis"})
	}

	log.Info("Analysis started",
		zap.String("tenant_id", tenant.ID),
		zap.String("analysis_id", analysis.ID))

	return c.JSON(http.StatusOK, echo.Map{
		"analysis_id":               analysis.ID,
		"status":                    analysis.Status,
		"estimated_completion_time": "2 minutes",
		"message":                   "Analysis job started successfully",
	})
}

// GetAnalysis returns the results of a model run. Runs still marked
// processing are completed by pulling results from the engine.
func (h *TenantHandler) GetAnalysis(c echo.Context) error {
	log := logger.FromContext(c)
	tenant, ok := currentTenant(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	defer prometheus.TrackDBOperation("query")(time.Now())
	analysis, err := h.marketing.FindAnalysis(c.Request().Context(), tenant.ID, c.Param("id"))
	if err != nil {
		if errors.Is(err, store.ErrAnalysisNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "analysis not found"})
		}
		log.Error("Analysis lookup failed", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "analysis lookup failed"})
	}

	if analysis.Status == model.AnalysisStatusProcessing {
		results, err := h.engine.Results(c.Request().Context(), tenant.ID)
		if err != nil {
			log.Error("Failed to fetch analysis results", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch results"})
		}
		encoded, err := json.Marshal(results)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch results"})
		}
		analysis.Status = model.AnalysisStatusCompleted
		analysis.Results = string(encoded)
		if err := h.marketing.SaveAnalysis(c.Request().Context(), analysis); err != nil {
			log.Error("Failed to persist analysis results", zap.Error(err))
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch results"})
		}
	}

	var results json.RawMessage
	if analysis.Results != "" {
		results = json.RawMessage(analysis.Results)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"analysis_id": analysis.ID,
		"status":      analysis.Status,
		"results":     results,
		"created_at":  analysis.CreatedAt,
	})
}

// Recommendations returns spend optimization suggestions from the
// latest model run.
func (h *TenantHandler) Recommendations(c echo.Context) error {
	log := logger.FromContext(c)
	tenant, ok := currentTenant(c)
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tenant not found"})
	}

	rec, err := h.engine.Recommendations(c.Request().Context(), tenant.ID)
	if err != nil {
		log.Error("Failed to fetch recommendations", zap.Error(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to fetch recommendations"})
	}

	return c.JSON(http.StatusOK, rec)
}

// parseMarketingCSV reads rows in the upload format. The first record
// must be the header.
func parseMarketingCSV(r io.Reader) ([]model.MarketingData, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, errors.New("missing header row")
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[name] = i
	}
	for _, required := range []string{"date", "channel", "spend"} {
		if _, ok := col[required]; !ok {
			return nil, errors.New("missing required column " + required)
		}
	}

	var rows []model.MarketingData
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		field := func(name string) string {
			if i, ok := col[name]; ok && i < len(record) {
				return record[i]
			}
			return ""
		}

		date, err := time.Parse("2006-01-02", field("date"))
		if err != nil {
			return nil, errors.New("invalid date " + field("date"))
		}
		spend, err := strconv.ParseFloat(field("spend"), 64)
		if err != nil {
			return nil, errors.New("invalid spend " + field("spend"))
		}

		row := model.MarketingData{
			Date:    date,
			Channel: field("channel"),
			Spend:   spend,
		}
		if row.Channel == "" {
			return nil, errors.New("missing channel")
		}

		optional := func(name string) *float64 {
			v := field(name)
			if v == "" {
				return nil
			}
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil
			}
			return &f
		}
		row.Impressions = optional("impressions")
		row.Clicks = optional("clicks")
		row.Conversions = optional("conversions")
		row.Revenue = optional("revenue")

		rows = append(rows, row)
	}
	return rows, nil
}
