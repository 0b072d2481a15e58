package mysql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"swasthyaflow/pkg/apperrors"

	"gorm.io/gorm"
)

// ScheduleRepository handles schedule persistence in MySQL
type ScheduleRepository struct {
	ds *Datastore
}

// NewScheduleRepository creates a new schedule repository
func NewScheduleRepository(ds *Datastore) *ScheduleRepository {
	return &ScheduleRepository{ds: ds}
}

// Create inserts a schedule; created_at/updated_at are set by GORM
func (r *ScheduleRepository) Create(ctx context.Context, schedule *Schedule) error {
	if err := r.ds.DB(ctx).Create(schedule).Error; err != nil {
		return fmt.Errorf("failed to create schedule: %w", err)
	}
	return nil
}

// Get retrieves a schedule by ID scoped to its owner. Returns nil, nil when absent.
func (r *ScheduleRepository) Get(ctx context.Context, userID, id string) (*Schedule, error) {
	var schedule Schedule
	err := r.ds.DB(ctx).Where("id = ? AND user_id = ?", id, userID).First(&schedule).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get schedule: %w", err)
	}
	return &schedule, nil
}

// Find lists the owner's schedules matching filter
func (r *ScheduleRepository) Find(ctx context.Context, filter ScheduleFilter) ([]*Schedule, error) {
	if filter.UserID == "" {
		return nil, fmt.Errorf("schedule query requires a user id")
	}

	query := r.ds.DB(ctx).Model(&Schedule{}).Where("user_id = ?", filter.UserID)

	if filter.StartFrom != nil {
		query = query.Where("start_time >= ?", *filter.StartFrom)
	}
	if filter.StartTo != nil {
		query = query.Where("start_time < ?", *filter.StartTo)
	}
	if filter.UpdatedSince != nil {
		query = query.Where("updated_at >= ?", *filter.UpdatedSince)
	}

	switch filter.Order {
	case OrderStartTimeAsc:
		query = query.Order("start_time ASC")
	case OrderUpdatedAtDesc:
		query = query.Order("updated_at DESC")
	}

	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}

	var schedules []*Schedule
	if err := query.Find(&schedules).Error; err != nil {
		return nil, fmt.Errorf("failed to find schedules: %w", err)
	}
	return schedules, nil
}

// UpdateStatus moves a schedule from one status to another (CAS on status).
// Returns apperrors.ErrNotFound when the owner has no such schedule and
// apperrors.ErrConflict when its current status is not fromStatus.
func (r *ScheduleRepository) UpdateStatus(ctx context.Context, userID, id, fromStatus, toStatus string) (*Schedule, error) {
	result := r.ds.DB(ctx).Model(&Schedule{}).
		Where("id = ? AND user_id = ? AND status = ?", id, userID, fromStatus).
		Updates(map[string]interface{}{
			"status":     toStatus,
			"updated_at": time.Now().UTC(),
		})
	if result.Error != nil {
		return nil, fmt.Errorf("failed to update schedule status: %w", result.Error)
	}

	schedule, err := r.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if schedule == nil {
		return nil, fmt.Errorf("schedule %s: %w", id, apperrors.ErrNotFound)
	}
	if result.RowsAffected == 0 {
		return nil, fmt.Errorf("schedule %s is %s, expected %s: %w", id, schedule.Status, fromStatus, apperrors.ErrConflict)
	}
	return schedule, nil
}
