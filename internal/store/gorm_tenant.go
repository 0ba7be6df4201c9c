package store

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GBurchell27/Dynamic-subdomains/internal/model"
)

// GormTenantDirectory is the gorm-backed TenantDirectory.
type GormTenantDirectory struct {
	db *gorm.DB
}

// NewGormTenantDirectory creates a TenantDirectory backed by the given
// database handle.
func NewGormTenantDirectory(db *gorm.DB) *GormTenantDirectory {
	return &GormTenantDirectory{db: db}
}

func (d *GormTenantDirectory) FindBySubdomain(ctx context.Context, subdomain string) (*model.Tenant, error) {
	var tenant model.Tenant
	// Inactive tenants are filtered here so they surface exactly like
	// unknown ones.
	result := d.db.WithContext(ctx).
		Where("subdomain = ? AND active = ?", strings.ToLower(subdomain), true).
		First(&tenant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, result.Error
	}
	return &tenant, nil
}

func (d *GormTenantDirectory) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	var tenant model.Tenant
	result := d.db.WithContext(ctx).
		Where("id = ? AND active = ?", id, true).
		First(&tenant)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTenantNotFound
		}
		return nil, result.Error
	}
	return &tenant, nil
}

func (d *GormTenantDirectory) List(ctx context.Context) ([]model.Tenant, error) {
	var tenants []model.Tenant
	if result := d.db.WithContext(ctx).Order("created_at").Find(&tenants); result.Error != nil {
		return nil, result.Error
	}
	return tenants, nil
}

func (d *GormTenantDirectory) Create(ctx context.Context, tenant *model.Tenant) error {
	tenant.Subdomain = strings.ToLower(tenant.Subdomain)
	if tenant.ID == "" {
		tenant.ID = uuid.New().String()
	}

	var count int64
	if result := d.db.WithContext(ctx).Model(&model.Tenant{}).
		Where("subdomain = ?", tenant.Subdomain).
		Count(&count); result.Error != nil {
		return result.Error
	}
	if count > 0 {
		return ErrConflict
	}

	return d.db.WithContext(ctx).Create(tenant).Error
}

func (d *GormTenantDirectory) Stats(ctx context.Context) (*TenantStats, error) {
	var stats TenantStats
	db := d.db.WithContext(ctx).Model(&model.Tenant{})

	if result := db.Count(&stats.TotalTenants); result.Error != nil {
		return nil, result.Error
	}
	if result := d.db.WithContext(ctx).Model(&model.Tenant{}).
		Where("active = ?", true).
		Count(&stats.ActiveTenants); result.Error != nil {
		return nil, result.Error
	}
	if result := d.db.WithContext(ctx).Model(&model.Tenant{}).
		Where("jsonb_array_length(features) >= ?", enterpriseFeatureCount).
		Count(&stats.EnterpriseTenants); result.Error != nil {
		return nil, result.Error
	}
	return &stats, nil
}

// Tenants with at least this many enabled features count as enterprise
// in the admin statistics.
const enterpriseFeatureCount = 5
