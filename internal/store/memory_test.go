package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GBurchell27/Dynamic-subdomains/internal/model"
)

func TestMemoryTenantDirectoryLookups(t *testing.T) {
	ctx := context.Background()
	directory := NewMemoryTenantDirectory(
		&model.Tenant{ID: "acme", Name: "Acme", Subdomain: "acme", Active: true},
		&model.Tenant{ID: "initech", Name: "Initech", Subdomain: "initech", Active: false},
	)

	t.Run("find active by subdomain", func(t *testing.T) {
		tenant, err := directory.FindBySubdomain(ctx, "acme")
		require.NoError(t, err)
		assert.Equal(t, "acme", tenant.ID)
	})

	t.Run("subdomain lookup is case-insensitive", func(t *testing.T) {
		tenant, err := directory.FindBySubdomain(ctx, "ACME")
		require.NoError(t, err)
		assert.Equal(t, "acme", tenant.ID)
	})

	t.Run("unknown and inactive report the same error", func(t *testing.T) {
		_, unknownErr := directory.FindBySubdomain(ctx, "globex")
		_, inactiveErr := directory.FindBySubdomain(ctx, "initech")
		assert.ErrorIs(t, unknownErr, ErrTenantNotFound)
		assert.ErrorIs(t, inactiveErr, ErrTenantNotFound)
		assert.Equal(t, unknownErr, inactiveErr)
	})

	t.Run("find by id filters inactive", func(t *testing.T) {
		_, err := directory.FindByID(ctx, "initech")
		assert.ErrorIs(t, err, ErrTenantNotFound)
	})
}

func TestMemoryTenantDirectoryCreate(t *testing.T) {
	ctx := context.Background()
	directory := NewMemoryTenantDirectory()

	tenant := &model.Tenant{Name: "Acme", Subdomain: "Acme", Active: true}
	require.NoError(t, directory.Create(ctx, tenant))
	assert.NotEmpty(t, tenant.ID, "create assigns an id")
	assert.Equal(t, "acme", tenant.Subdomain, "subdomain is normalized")

	dup := &model.Tenant{Name: "Other", Subdomain: "acme", Active: true}
	assert.ErrorIs(t, directory.Create(ctx, dup), ErrConflict)
}

func TestMemoryTenantDirectoryStats(t *testing.T) {
	ctx := context.Background()
	directory := NewMemoryTenantDirectory(
		&model.Tenant{ID: "a", Subdomain: "a", Active: true,
			Features: model.FeatureSet{"f1", "f2", "f3", "f4", "f5"}},
		&model.Tenant{ID: "b", Subdomain: "b", Active: true,
			Features: model.FeatureSet{"f1"}},
		&model.Tenant{ID: "c", Subdomain: "c", Active: false},
	)

	stats, err := directory.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), stats.TotalTenants)
	assert.Equal(t, int64(2), stats.ActiveTenants)
	assert.Equal(t, int64(1), stats.EnterpriseTenants)
}

func TestMemoryUserStore(t *testing.T) {
	ctx := context.Background()
	users := NewMemoryUserStore(
		&model.User{ID: "u1", Username: "admin", Email: "admin@example.com", IsAdmin: true, Active: true},
		&model.User{ID: "u2", Username: "gone", Email: "gone@example.com", Active: false},
	)

	t.Run("find active user", func(t *testing.T) {
		user, err := users.FindByUsername(ctx, "admin")
		require.NoError(t, err)
		assert.True(t, user.IsAdmin)
	})

	t.Run("inactive user is invisible", func(t *testing.T) {
		_, err := users.FindByUsername(ctx, "gone")
		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		err := users.Create(ctx, &model.User{Username: "admin", Email: "new@example.com"})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("duplicate email rejected", func(t *testing.T) {
		err := users.Create(ctx, &model.User{Username: "new", Email: "admin@example.com"})
		assert.ErrorIs(t, err, ErrConflict)
	})
}

func TestMemoryMarketingStoreScoping(t *testing.T) {
	ctx := context.Background()
	marketing := NewMemoryMarketingStore()
	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)

	_, err := marketing.InsertRows(ctx, "acme", []model.MarketingData{
		{Date: day, Channel: "Google", Spend: 8000},
		// TenantID in the payload is ignored; scope comes from the caller.
		{Date: day, Channel: "TV", Spend: 15000, TenantID: "globex"},
	})
	require.NoError(t, err)
	_, err = marketing.InsertRows(ctx, "globex", []model.MarketingData{
		{Date: day, Channel: "Facebook", Spend: 3000},
	})
	require.NoError(t, err)

	acmeRows, err := marketing.ChannelData(ctx, "acme")
	require.NoError(t, err)
	require.Len(t, acmeRows, 2)
	for _, row := range acmeRows {
		assert.Equal(t, "acme", row.TenantID)
	}

	globexRows, err := marketing.ChannelData(ctx, "globex")
	require.NoError(t, err)
	require.Len(t, globexRows, 1)
	assert.Equal(t, "Facebook", globexRows[0].Channel)
}

func TestMemoryMarketingStoreAnalyses(t *testing.T) {
	ctx := context.Background()
	marketing := NewMemoryMarketingStore()

	analysis := &model.Analysis{TenantID: "acme", Status: model.AnalysisStatusProcessing}
	require.NoError(t, marketing.SaveAnalysis(ctx, analysis))
	require.NotEmpty(t, analysis.ID)

	found, err := marketing.FindAnalysis(ctx, "acme", analysis.ID)
	require.NoError(t, err)
	assert.Equal(t, model.AnalysisStatusProcessing, found.Status)

	// Another tenant cannot see the analysis even with the right id.
	_, err = marketing.FindAnalysis(ctx, "globex", analysis.ID)
	assert.ErrorIs(t, err, ErrAnalysisNotFound)
}

func TestSeedDemoData(t *testing.T) {
	ctx := context.Background()
	tenants := NewMemoryTenantDirectory()
	users := NewMemoryUserStore()
	marketing := NewMemoryMarketingStore()

	require.NoError(t, SeedDemoData(ctx, tenants, users, marketing))

	acme, err := tenants.FindBySubdomain(ctx, "acme")
	require.NoError(t, err)
	assert.Equal(t, "Acme Corporation", acme.Name)
	assert.True(t, acme.HasFeature("advanced_analysis"))

	admin, err := users.FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin)
	assert.Nil(t, admin.TenantID)

	rows, err := marketing.ChannelData(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	// Seeding again must not duplicate anything.
	require.NoError(t, SeedDemoData(ctx, tenants, users, marketing))
	stats, err := tenants.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalTenants)
	rows, err = marketing.ChannelData(ctx, "acme")
	require.NoError(t, err)
	assert.Len(t, rows, 3)
}
