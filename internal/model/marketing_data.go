package model

import (
	"time"

	"gorm.io/gorm"
)

// MarketingData is one tenant-scoped row of channel spend data. Every
// query against this table must carry the caller's tenant id.
type MarketingData struct {
	ID          string         `json:"id" gorm:"primaryKey;type:varchar(64)"`
	TenantID    string         `json:"tenant_id" gorm:"type:varchar(64);index;not null"`
	Date        time.Time      `json:"date" gorm:"type:date;index;not null"`
	Channel     string         `json:"channel" gorm:"type:varchar(100);index;not null"`
	Spend       float64        `json:"spend" gorm:"not null"`
	Impressions *float64       `json:"impressions"`
	Clicks      *float64       `json:"clicks"`
	Conversions *float64       `json:"conversions"`
	Revenue     *float64       `json:"revenue"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`
}
