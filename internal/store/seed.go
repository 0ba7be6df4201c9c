package store

import (
	"context"
	"errors"
	"time"

	"github.com/GBurchell27/Dynamic-subdomains/internal/model"
	"github.com/GBurchell27/Dynamic-subdomains/pkg/password"
)

func floatPtr(v float64) *float64 { return &v }

func strPtr(v string) *string { return &v }

// SeedDemoData loads the demo tenants, users, and marketing rows into the
// given stores. Existing records are left alone, so it is safe to call on
// every startup. All demo users authenticate with the password "password".
func SeedDemoData(ctx context.Context, tenants TenantDirectory, users UserStore, marketing MarketingStore) error {
	demoTenants := []*model.Tenant{
		{
			ID:             "acme",
			Name:           "Acme Corporation",
			Subdomain:      "acme",
			Industry:       "Technology",
			Features:       model.FeatureSet{"dashboard", "data_upload", "basic_analysis", "advanced_analysis"},
			PrimaryColor:   "#3B82F6",
			SecondaryColor: "#1E40AF",
			Active:         true,
		},
		{
			ID:             "globex",
			Name:           "Globex Industries",
			Subdomain:      "globex",
			Industry:       "Manufacturing",
			Features:       model.FeatureSet{"dashboard", "data_upload", "basic_analysis"},
			PrimaryColor:   "#10B981",
			SecondaryColor: "#065F46",
			Active:         true,
		},
	}

	for _, t := range demoTenants {
		if err := tenants.Create(ctx, t); err != nil && !errors.Is(err, ErrConflict) {
			return err
		}
	}

	digest, err := password.Hash("password")
	if err != nil {
		return err
	}

	demoUsers := []*model.User{
		{Username: "admin", Email: "admin@example.com", PasswordHash: digest, IsAdmin: true, Active: true},
		{Username: "acme_user", Email: "user@acme.com", PasswordHash: digest, TenantID: strPtr("acme"), Active: true},
		{Username: "globex_user", Email: "user@globex.com", PasswordHash: digest, TenantID: strPtr("globex"), Active: true},
	}

	seededUsers := false
	for _, u := range demoUsers {
		switch err := users.Create(ctx, u); {
		case err == nil:
			seededUsers = true
		case errors.Is(err, ErrConflict):
			// Already seeded on a previous startup.
		default:
			return err
		}
	}

	if !seededUsers {
		return nil
	}

	day := time.Now().AddDate(0, 0, -30).Truncate(24 * time.Hour)
	demoRows := map[string][]model.MarketingData{
		"acme": {
			{Date: day, Channel: "Facebook", Spend: 5000, Impressions: floatPtr(500000), Clicks: floatPtr(10000)},
			{Date: day, Channel: "Google", Spend: 8000, Impressions: floatPtr(800000), Clicks: floatPtr(20000)},
			{Date: day, Channel: "TV", Spend: 15000, Impressions: floatPtr(1000000)},
		},
		"globex": {
			{Date: day, Channel: "Facebook", Spend: 3000, Impressions: floatPtr(300000), Clicks: floatPtr(6000)},
			{Date: day, Channel: "Google", Spend: 5000, Impressions: floatPtr(500000), Clicks: floatPtr(12000)},
		},
	}

	for tenantID, rows := range demoRows {
		if _, err := marketing.InsertRows(ctx, tenantID, rows); err != nil {
			return err
		}
	}
	return nil
}
