package handler

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboardScopedToResolvedTenant(t *testing.T) {
	e := newTestApp(t)
	acmeToken := loginToken(t, e, "acme.example.com", "acme_user", "password")

	t.Run("token tenant matches host", func(t *testing.T) {
		rec := get(e, "acme.example.com", "/tenant/dashboard/metrics", acmeToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body struct {
			Summary struct {
				TotalSpend       float64 `json:"total_spend"`
				TotalImpressions float64 `json:"total_impressions"`
				TotalClicks      float64 `json:"total_clicks"`
			} `json:"summary"`
			Performance struct {
				ROAS              float64 `json:"roas"`
				CPA               float64 `json:"cpa"`
				CTR               float64 `json:"ctr"`
				ChannelEfficiency []struct {
					Channel string `json:"channel"`
				} `json:"channel_efficiency"`
			} `json:"performance"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

		// Seeded acme rows: 5000+8000+15000 spend, 2.3M impressions,
		// 30k clicks (TV has none).
		assert.Equal(t, float64(28000), body.Summary.TotalSpend)
		assert.Equal(t, float64(2300000), body.Summary.TotalImpressions)
		assert.Equal(t, float64(30000), body.Summary.TotalClicks)
		assert.InDelta(t, 28000.0/30000.0, body.Performance.CPA, 0.001)
		assert.InDelta(t, 30000.0/2300000.0*100, body.Performance.CTR, 0.001)
		assert.Len(t, body.Performance.ChannelEfficiency, 3)
	})

	t.Run("same token on another tenant's host is forbidden", func(t *testing.T) {
		rec := get(e, "globex.example.com", "/tenant/dashboard/metrics", acmeToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("reserved host resolves no tenant", func(t *testing.T) {
		rec := get(e, "api.example.com", "/tenant/dashboard/metrics", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown tenant host", func(t *testing.T) {
		rec := get(e, "nosuch.example.com", "/tenant/dashboard/metrics", acmeToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("globex user sees only globex data", func(t *testing.T) {
		globexToken := loginToken(t, e, "globex.example.com", "globex_user", "password")
		rec := get(e, "globex.example.com", "/tenant/dashboard/metrics", globexToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Summary struct {
				TotalSpend float64 `json:"total_spend"`
			} `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, float64(8000), body.Summary.TotalSpend)
	})
}

func TestUploadData(t *testing.T) {
	e := newTestApp(t)
	acmeToken := loginToken(t, e, "acme.example.com", "acme_user", "password")

	upload := func(t *testing.T, csvBody string) *httptest.ResponseRecorder {
		t.Helper()
		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		part, err := writer.CreateFormFile("file", "spend.csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(csvBody))
		require.NoError(t, err)
		require.NoError(t, writer.Close())

		req := httptest.NewRequest(http.MethodPost, "/tenant/data/upload", &buf)
		req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+acmeToken)
		req.Host = "acme.example.com"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	t.Run("valid upload", func(t *testing.T) {
		rec := upload(t, strings.Join([]string{
			"date,channel,spend,impressions,clicks",
			"2026-02-01,Radio,1200,90000,1800",
			"2026-02-02,Radio,1100,85000,",
		}, "\n"))
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var body struct {
			Filename      string `json:"filename"`
			Status        string `json:"status"`
			RowsProcessed int    `json:"rows_processed"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, "spend.csv", body.Filename)
		assert.Equal(t, "processed", body.Status)
		assert.Equal(t, 2, body.RowsProcessed)
	})

	t.Run("uploaded rows appear in the dashboard", func(t *testing.T) {
		rec := get(e, "acme.example.com", "/tenant/dashboard/metrics", acmeToken)
		require.Equal(t, http.StatusOK, rec.Code)

		var body struct {
			Summary struct {
				TotalSpend float64 `json:"total_spend"`
			} `json:"summary"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, float64(28000+1200+1100), body.Summary.TotalSpend)
	})

	t.Run("missing required column", func(t *testing.T) {
		rec := upload(t, "date,channel\n2026-02-01,Radio")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("bad date", func(t *testing.T) {
		rec := upload(t, "date,channel,spend\nyesterday,Radio,100")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

// A tenant with spend but no recorded clicks reports zero CPA, matching
// how CTR handles zero impressions, instead of surfacing the raw spend
// total as a cost per acquisition.
func TestDashboardCPAWithoutClicks(t *testing.T) {
	e := newTestApp(t)
	adminToken := loginToken(t, e, "api.example.com", "admin", "password")

	body := `{"name":"Initrode","subdomain":"initrode","industry":"Utilities"}`
	req := httptest.NewRequest(http.MethodPost, "/admin/tenants", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	req.Host = "admin.example.com"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "offline.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("date,channel,spend\n2026-02-01,Radio,1200\n2026-02-02,Radio,800\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req = httptest.NewRequest(http.MethodPost, "/tenant/data/upload", &buf)
	req.Header.Set(echo.HeaderContentType, writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken)
	req.Host = "initrode.example.com"
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = get(e, "initrode.example.com", "/tenant/dashboard/metrics", adminToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var dash struct {
		Summary struct {
			TotalSpend float64 `json:"total_spend"`
		} `json:"summary"`
		Performance struct {
			CPA float64 `json:"cpa"`
			CTR float64 `json:"ctr"`
		} `json:"performance"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &dash))
	assert.Equal(t, float64(2000), dash.Summary.TotalSpend)
	assert.Zero(t, dash.Performance.CPA)
	assert.Zero(t, dash.Performance.CTR)
}

func TestAnalysisLifecycle(t *testing.T) {
	e := newTestApp(t)
	acmeToken := loginToken(t, e, "acme.example.com", "acme_user", "password")

	body := `{"date_from":"2026-01-01","date_to":"2026-01-31"}`
	req := httptest.NewRequest(http.MethodPost, "/tenant/analysis/run", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	req.Header.Set("Authorization", "Bearer "+acmeToken)
	req.Host = "acme.example.com"
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var started struct {
		AnalysisID string `json:"analysis_id"`
		Status     string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &started))
	require.NotEmpty(t, started.AnalysisID)
	assert.Equal(t, "processing", started.Status)

	t.Run("results become available", func(t *testing.T) {
		rec := get(e, "acme.example.com", "/tenant/analysis/"+started.AnalysisID, acmeToken)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var result struct {
			Status  string `json:"status"`
			Results struct {
				ChannelAttribution []struct {
					Channel      string  `json:"channel"`
					Contribution float64 `json:"contribution"`
				} `json:"channel_attribution"`
			} `json:"results"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.Equal(t, "completed", result.Status)
		assert.NotEmpty(t, result.Results.ChannelAttribution)
	})

	t.Run("another tenant cannot read the analysis", func(t *testing.T) {
		globexToken := loginToken(t, e, "globex.example.com", "globex_user", "password")
		rec := get(e, "globex.example.com", "/tenant/analysis/"+started.AnalysisID, globexToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("unknown analysis id", func(t *testing.T) {
		rec := get(e, "acme.example.com", "/tenant/analysis/nope", acmeToken)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestRecommendations(t *testing.T) {
	e := newTestApp(t)
	acmeToken := loginToken(t, e, "acme.example.com", "acme_user", "password")

	rec := get(e, "acme.example.com", "/tenant/recommendations", acmeToken)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		CurrentSpend     map[string]float64 `json:"current_spend"`
		RecommendedSpend map[string]float64 `json:"recommended_spend"`
		Rationale        []string           `json:"recommendation_rationale"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.CurrentSpend)
	assert.NotEmpty(t, body.RecommendedSpend)
	assert.NotEmpty(t, body.Rationale)
}
