// Package store defines the persistence collaborators consumed by the
// authorization core and the handlers. The interfaces are injected so the
// in-memory demo store and the gorm-backed store are interchangeable.
package store

import (
	"context"
	"errors"

	"github.com/GBurchell27/Dynamic-subdomains/internal/model"
)

var (
	// ErrTenantNotFound is returned uniformly for tenants that do not
	// exist and tenants that are inactive, so callers cannot tell the
	// two apart.
	ErrTenantNotFound = errors.New("store: tenant not found")
	// ErrUserNotFound is returned when no user matches the lookup.
	ErrUserNotFound = errors.New("store: user not found")
	// ErrConflict is returned when a unique constraint would be violated.
	ErrConflict = errors.New("store: already exists")
	// ErrAnalysisNotFound is returned when no analysis matches the
	// lookup within the caller's tenant scope.
	ErrAnalysisNotFound = errors.New("store: analysis not found")
)

// TenantStats summarizes the tenant population for the admin dashboard.
type TenantStats struct {
	TotalTenants      int64 `json:"total_tenants"`
	ActiveTenants     int64 `json:"active_tenants"`
	EnterpriseTenants int64 `json:"enterprise_tenants"`
}

// TenantDirectory looks up and manages tenants. Lookups report
// ErrTenantNotFound for unknown and inactive tenants alike.
type TenantDirectory interface {
	FindBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error)
	FindByID(ctx context.Context, id string) (*model.Tenant, error)
	List(ctx context.Context) ([]model.Tenant, error)
	Create(ctx context.Context, tenant *model.Tenant) error
	Stats(ctx context.Context) (*TenantStats, error)
}

// UserStore looks up and manages users.
type UserStore interface {
	FindByUsername(ctx context.Context, username string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
}

// MarketingStore holds tenant-scoped marketing channel data and analysis
// runs. Every method is parameterized by the caller's tenant id; an
// implementation must never return rows belonging to another tenant.
type MarketingStore interface {
	ChannelData(ctx context.Context, tenantID string) ([]model.MarketingData, error)
	InsertRows(ctx context.Context, tenantID string, rows []model.MarketingData) (int, error)
	SaveAnalysis(ctx context.Context, analysis *model.Analysis) error
	FindAnalysis(ctx context.Context, tenantID, analysisID string) (*model.Analysis, error)
}
