package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GBurchell27/Dynamic-subdomains/internal/authctx"
)

func TestSubdomainFromHost(t *testing.T) {
	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "plain subdomain", host: "acme.example.com", want: "acme"},
		{name: "subdomain with port", host: "acme.example.com:8000", want: "acme"},
		{name: "nested subdomain takes first label", host: "acme.eu.example.com", want: "acme"},
		{name: "no dot", host: "localhost", want: ""},
		{name: "no dot with port", host: "localhost:8000", want: ""},
		{name: "empty host", host: "", want: ""},
		{name: "leading dot", host: ".example.com", want: ""},
		{name: "uppercase label lowered", host: "ACME.example.com", want: "acme"},
		{name: "reserved label still extracted", host: "admin.example.com", want: "admin"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SubdomainFromHost(tt.host))
		})
	}
}

func TestResolverResolve(t *testing.T) {
	resolver := NewTenantResolver([]string{"admin", "api"})

	tests := []struct {
		name string
		host string
		want string
	}{
		{name: "tenant subdomain", host: "acme.example.com", want: "acme"},
		{name: "other tenant", host: "globex.example.com", want: "globex"},
		{name: "reserved admin", host: "admin.example.com", want: ""},
		{name: "reserved api", host: "api.example.com", want: ""},
		{name: "reserved case-insensitive", host: "API.example.com", want: ""},
		{name: "bare domain", host: "example.com", want: "example"},
		{name: "no subdomain", host: "localhost:8000", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.Resolve(tt.host))
		})
	}
}

func TestResolverMiddlewareAttachesContext(t *testing.T) {
	resolver := NewTenantResolver([]string{"admin", "api"})

	tests := []struct {
		name       string
		host       string
		wantTenant string
		wantOK     bool
	}{
		{name: "tenant host", host: "acme.example.com", wantTenant: "acme", wantOK: true},
		{name: "reserved host", host: "api.example.com", wantOK: false},
		{name: "no subdomain", host: "localhost", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.Host = tt.host
			rec := httptest.NewRecorder()
			c := e.NewContext(req, rec)

			var captured *authctx.Context
			next := func(c echo.Context) error {
				captured = authctx.FromEcho(c)
				return c.NoContent(http.StatusOK)
			}

			err := resolver.Middleware()(next)(c)
			require.NoError(t, err)
			require.NotNil(t, captured)

			assert.Equal(t, authctx.TenantResolved, captured.State())
			tenantID, ok := captured.TenantID()
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantTenant, tenantID)
		})
	}
}
