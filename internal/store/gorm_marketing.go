package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GBurchell27/Dynamic-subdomains/internal/model"
)

// GormMarketingStore is the gorm-backed MarketingStore. Every statement
// runs inside a transaction that sets the app.tenant_id session variable,
// so Postgres row-level security policies see the caller's tenant in
// addition to the explicit filter predicates.
type GormMarketingStore struct {
	db *gorm.DB
}

// NewGormMarketingStore creates a MarketingStore backed by the given
// database handle.
func NewGormMarketingStore(db *gorm.DB) *GormMarketingStore {
	return &GormMarketingStore{db: db}
}

// scoped runs fn in a transaction with the tenant id bound as the RLS
// session variable.
func (s *GormMarketingStore) scoped(ctx context.Context, tenantID string, fn func(tx *gorm.DB) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Exec("SET LOCAL app.tenant_id = ?", tenantID).Error; err != nil {
			return err
		}
		return fn(tx)
	})
}

func (s *GormMarketingStore) ChannelData(ctx context.Context, tenantID string) ([]model.MarketingData, error) {
	var rows []model.MarketingData
	err := s.scoped(ctx, tenantID, func(tx *gorm.DB) error {
		return tx.Where("tenant_id = ?", tenantID).
			Order("date, channel").
			Find(&rows).Error
	})
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *GormMarketingStore) InsertRows(ctx context.Context, tenantID string, rows []model.MarketingData) (int, error) {
	if len(rows) == 0 {
		return 0, nil
	}
	err := s.scoped(ctx, tenantID, func(tx *gorm.DB) error {
		for i := range rows {
			// The tenant id comes from the authorization context,
			// never from the uploaded payload.
			rows[i].TenantID = tenantID
			if rows[i].ID == "" {
				rows[i].ID = uuid.New().String()
			}
		}
		return tx.Create(&rows).Error
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

func (s *GormMarketingStore) SaveAnalysis(ctx context.Context, analysis *model.Analysis) error {
	if analysis.ID == "" {
		analysis.ID = uuid.New().String()
	}
	return s.scoped(ctx, analysis.TenantID, func(tx *gorm.DB) error {
		return tx.Save(analysis).Error
	})
}

func (s *GormMarketingStore) FindAnalysis(ctx context.Context, tenantID, analysisID string) (*model.Analysis, error) {
	var analysis model.Analysis
	err := s.scoped(ctx, tenantID, func(tx *gorm.DB) error {
		return tx.Where("id = ? AND tenant_id = ?", analysisID, tenantID).
			First(&analysis).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnalysisNotFound
		}
		return nil, err
	}
	return &analysis, nil
}
