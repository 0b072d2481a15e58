package model

import "time"

// ScheduleStatus schedule lifecycle status
type ScheduleStatus string

const (
	ScheduleStatusScheduled ScheduleStatus = "scheduled" // Default at creation
	ScheduleStatusCompleted ScheduleStatus = "completed"
	ScheduleStatusCancelled ScheduleStatus = "cancelled"
)

// AllScheduleStatuses lists the statuses every summary reports, in display order.
var AllScheduleStatuses = []ScheduleStatus{
	ScheduleStatusScheduled,
	ScheduleStatusCompleted,
	ScheduleStatusCancelled,
}

// Schedule therapy session as returned by the API
type Schedule struct {
	ID          string         `json:"id"`
	UserID      string         `json:"userId"`
	TherapistID string         `json:"therapistId"`
	StartTime   time.Time      `json:"startTime"`
	EndTime     time.Time      `json:"endTime"`
	Notes       *string        `json:"notes,omitempty"`
	Status      ScheduleStatus `json:"status"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
}

// CreateScheduleRequest create session request body
type CreateScheduleRequest struct {
	TherapistID string  `json:"therapistId" binding:"required"`
	StartTime   string  `json:"startTime" binding:"required"`
	EndTime     string  `json:"endTime" binding:"required"`
	Notes       *string `json:"notes"`
}

// CreateScheduleParams validated create input
type CreateScheduleParams struct {
	UserID         string
	TherapistID    string
	StartTime      time.Time
	EndTime        time.Time
	Notes          *string
	IdempotencyKey string
}

// CreateScheduleResult create outcome; Replayed is set when an idempotency key matched an earlier create
type CreateScheduleResult struct {
	Schedule *Schedule
	Replayed bool
}
