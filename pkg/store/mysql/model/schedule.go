package model

import "time"

// Schedule MySQL model for schedules table
type Schedule struct {
	ID          string    `gorm:"column:id;type:varchar(36);primaryKey" json:"id"`
	UserID      string    `gorm:"column:user_id;type:varchar(255);not null;index:idx_user_start,priority:1;index:idx_user_updated,priority:1" json:"userId"`
	TherapistID string    `gorm:"column:therapist_id;type:varchar(255);not null;index:idx_therapist_id" json:"therapistId"`
	StartTime   time.Time `gorm:"column:start_time;type:datetime(3);not null;index:idx_user_start,priority:2" json:"startTime"`
	EndTime     time.Time `gorm:"column:end_time;type:datetime(3);not null" json:"endTime"`
	Notes       *string   `gorm:"column:notes;type:text" json:"notes,omitempty"`
	Status      string    `gorm:"column:status;type:varchar(20);not null;default:'scheduled';index:idx_status" json:"status"`
	CreatedAt   time.Time `gorm:"column:created_at;type:datetime(3);not null" json:"createdAt"`
	UpdatedAt   time.Time `gorm:"column:updated_at;type:datetime(3);not null;index:idx_user_updated,priority:2" json:"updatedAt"`
}

// TableName specifies the table name for Schedule
func (Schedule) TableName() string {
	return "schedules"
}

// ScheduleOrder sort order for schedule queries
type ScheduleOrder int

const (
	OrderNone ScheduleOrder = iota
	OrderStartTimeAsc
	OrderUpdatedAtDesc
)

// ScheduleFilter narrows schedule queries. UserID is mandatory.
type ScheduleFilter struct {
	UserID       string
	StartFrom    *time.Time // inclusive
	StartTo      *time.Time // exclusive
	UpdatedSince *time.Time // inclusive
	Order        ScheduleOrder
	Limit        int
}
