package model

import "time"

// Analysis statuses.
const (
	AnalysisStatusProcessing = "processing"
	AnalysisStatusCompleted  = "completed"
)

// Analysis is a tenant-scoped marketing mix model run. The modeling
// engine fills Results once the run completes.
type Analysis struct {
	ID        string    `json:"analysis_id" gorm:"primaryKey;type:varchar(64)"`
	TenantID  string    `json:"tenant_id" gorm:"type:varchar(64);index;not null"`
	Status    string    `json:"status" gorm:"type:varchar(20);not null"`
	Params    string    `json:"-" gorm:"type:jsonb"`
	Results   string    `json:"-" gorm:"type:jsonb"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
