package mysql

import "swasthyaflow/pkg/store/mysql/model"

// Re-export types from model package

type (
	Schedule       = model.Schedule
	ScheduleFilter = model.ScheduleFilter
	ScheduleOrder  = model.ScheduleOrder
)

const (
	OrderNone          = model.OrderNone
	OrderStartTimeAsc  = model.OrderStartTimeAsc
	OrderUpdatedAtDesc = model.OrderUpdatedAtDesc
)
