package models

import (
	"time"

	"gorm.io/gorm"
)

// GORM-compatible models with proper tags

// PlanDraftGorm represents the erection_plan_drafts table with GORM tags.
// Plan holds the serialized planner state as JSON.
type PlanDraftGorm struct {
	ID        uint           `gorm:"primaryKey;column:id" json:"id"`
	ProjectID int            `gorm:"column:project_id;not null;index" json:"project_id"`
	UserID    int            `gorm:"column:user_id;not null" json:"user_id"`
	Name      string         `gorm:"column:name;not null" json:"name"`
	Plan      string         `gorm:"column:plan;type:jsonb;not null" json:"plan"`
	CreatedAt time.Time      `gorm:"column:created_at;not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at;not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for PlanDraftGorm
func (PlanDraftGorm) TableName() string {
	return "erection_plan_drafts"
}

// SessionGorm represents the session table with GORM tags
type SessionGorm struct {
	ID        uint           `gorm:"primaryKey;column:id" json:"id"`
	UserID    int            `gorm:"column:user_id;not null" json:"user_id"`
	SessionID string         `gorm:"column:session_id;uniqueIndex;not null" json:"session_id"`
	HostName  string         `gorm:"column:host_name;not null" json:"host_name"`
	IPAddress string         `gorm:"column:ip_address;not null" json:"ip_address"`
	Timestamp time.Time      `gorm:"column:timestp;not null" json:"timestp"`
	ExpiresAt time.Time      `gorm:"column:expires_at;not null" json:"expires_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for SessionGorm
func (SessionGorm) TableName() string {
	return "session"
}
