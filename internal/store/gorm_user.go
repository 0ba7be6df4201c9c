package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/GBurchell27/Dynamic-subdomains/internal/model"
)

// GormUserStore is the gorm-backed UserStore.
type GormUserStore struct {
	db *gorm.DB
}

// NewGormUserStore creates a UserStore backed by the given database handle.
func NewGormUserStore(db *gorm.DB) *GormUserStore {
	return &GormUserStore{db: db}
}

func (s *GormUserStore) FindByUsername(ctx context.Context, username string) (*model.User, error) {
	var user model.User
	result := s.db.WithContext(ctx).
		Where("username = ? AND active = ?", username, true).
		First(&user)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, result.Error
	}
	return &user, nil
}

func (s *GormUserStore) Create(ctx context.Context, user *model.User) error {
	if user.ID == "" {
		user.ID = uuid.New().String()
	}

	var count int64
	if result := s.db.WithContext(ctx).Model(&model.User{}).
		Where("username = ? OR email = ?", user.Username, user.Email).
		Count(&count); result.Error != nil {
		return result.Error
	}
	if count > 0 {
		return ErrConflict
	}

	return s.db.WithContext(ctx).Create(user).Error
}
