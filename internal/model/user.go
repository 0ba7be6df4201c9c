package model

import (
	"time"

	"gorm.io/gorm"
)

// Roles carried in access token claims.
const (
	RoleAdmin  = "admin"
	RoleMember = "member"
)

// User represents a platform user. Admin users have no tenant affiliation;
// tenant users reference exactly one active tenant.
type User struct {
	ID           string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Username     string         `json:"username" gorm:"type:varchar(100);uniqueIndex;not null"`
	Email        string         `json:"email" gorm:"type:varchar(100);uniqueIndex;not null"`
	PasswordHash string         `json:"-" gorm:"type:varchar(255);not null"`
	IsAdmin      bool           `json:"is_admin" gorm:"default:false"`
	TenantID     *string        `json:"tenant_id" gorm:"type:varchar(64);index"`
	Active       bool           `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
	DeletedAt    gorm.DeletedAt `json:"-" gorm:"index"`
}
