package service

import (
	"context"

	"swasthyaflow/internal/stream"
	"swasthyaflow/pkg/store/mysql"
	redisstore "swasthyaflow/pkg/store/redis"
)

type scheduleRepository interface {
	Create(ctx context.Context, schedule *mysql.Schedule) error
	Get(ctx context.Context, userID, id string) (*mysql.Schedule, error)
	Find(ctx context.Context, filter mysql.ScheduleFilter) ([]*mysql.Schedule, error)
	UpdateStatus(ctx context.Context, userID, id, fromStatus, toStatus string) (*mysql.Schedule, error)
}

type idempotencyStore interface {
	Reserve(ctx context.Context, ownerID, key string) (existingID string, reserved bool, err error)
	Complete(ctx context.Context, ownerID, key, scheduleID string) error
	Release(ctx context.Context, ownerID, key string) error
}

type broadcaster interface {
	Broadcast(ctx context.Context, ownerID string)
}

// compile-time assertions

var (
	_ scheduleRepository = (*mysql.ScheduleRepository)(nil)
	_ idempotencyStore   = (*redisstore.IdempotencyRepository)(nil)
	_ broadcaster        = (*stream.Registry)(nil)
	_ stream.Builder     = (*AnalyticsService)(nil)
)
