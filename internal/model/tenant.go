package model

import (
	"time"

	"gorm.io/gorm"
)

// Tenant represents an isolated customer account. The subdomain is the
// routing key: it uniquely determines at most one tenant.
type Tenant struct {
	ID             string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name           string         `json:"name" gorm:"type:varchar(100);not null"`
	Subdomain      string         `json:"subdomain" gorm:"type:varchar(63);uniqueIndex;not null"`
	Industry       string         `json:"industry" gorm:"type:varchar(100)"`
	Features       FeatureSet     `json:"features" gorm:"type:jsonb"`
	PrimaryColor   string         `json:"primary_color" gorm:"type:varchar(7);default:'#3B82F6'"`
	SecondaryColor string         `json:"secondary_color" gorm:"type:varchar(7);default:'#1E40AF'"`
	Active         bool           `json:"is_active" gorm:"default:true"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `json:"-" gorm:"index"`
}

// HasFeature reports whether the tenant has the named capability enabled.
func (t *Tenant) HasFeature(name string) bool {
	for _, f := range t.Features {
		if f == name {
			return true
		}
	}
	return false
}
