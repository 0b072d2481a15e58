package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"swasthyaflow/internal/model"
	"swasthyaflow/pkg/apperrors"
	"swasthyaflow/pkg/logger"
	"swasthyaflow/pkg/store/mysql"

	"github.com/google/uuid"
)

// ErrRequestInProgress an earlier request with the same Idempotency-Key has not finished
var ErrRequestInProgress = fmt.Errorf("request with this idempotency key is in progress: %w", apperrors.ErrConflict)

// accepted timestamp layouts, tried in order
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

// ScheduleService owner-scoped schedule operations
type ScheduleService struct {
	scheduleRepo scheduleRepository
	idempotency  idempotencyStore // nil when Redis is disabled
	loc          *time.Location
}

// NewScheduleService creates the service. idempotency may be nil.
func NewScheduleService(scheduleRepo scheduleRepository, idempotency idempotencyStore, loc *time.Location) *ScheduleService {
	if loc == nil {
		loc = time.Local
	}
	return &ScheduleService{
		scheduleRepo: scheduleRepo,
		idempotency:  idempotency,
		loc:          loc,
	}
}

// List returns all of the owner's schedules ordered by start time.
func (s *ScheduleService) List(ctx context.Context, ownerID string) ([]*model.Schedule, error) {
	items, err := s.scheduleRepo.Find(ctx, mysql.ScheduleFilter{
		UserID: ownerID,
		Order:  mysql.OrderStartTimeAsc,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list schedules: %w", err)
	}
	return mysql.ToScheduleDomainList(items), nil
}

// ParseCreateRequest validates the request body. Every rejected field is reported.
// The order of startTime and endTime is left to the client.
func (s *ScheduleService) ParseCreateRequest(ownerID string, req *model.CreateScheduleRequest) (*model.CreateScheduleParams, error) {
	verr := &apperrors.ValidationError{}

	therapistID := strings.TrimSpace(req.TherapistID)
	if therapistID == "" {
		verr.Add("therapistId", "therapistId is required")
	}

	startTime, startErr := s.parseTimestamp(req.StartTime)
	if startErr != nil {
		verr.Add("startTime", "startTime must be an ISO-8601 timestamp")
	}
	endTime, endErr := s.parseTimestamp(req.EndTime)
	if endErr != nil {
		verr.Add("endTime", "endTime must be an ISO-8601 timestamp")
	}

	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	return &model.CreateScheduleParams{
		UserID:      ownerID,
		TherapistID: therapistID,
		StartTime:   startTime,
		EndTime:     endTime,
		Notes:       req.Notes,
	}, nil
}

func (s *ScheduleService) parseTimestamp(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, value, s.loc); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q", value)
}

// Create inserts a new schedule in the scheduled status. With an idempotency key
// a repeated request returns the schedule created the first time.
func (s *ScheduleService) Create(ctx context.Context, params *model.CreateScheduleParams) (*model.CreateScheduleResult, error) {
	key := params.IdempotencyKey
	if key == "" || s.idempotency == nil {
		schedule, err := s.insert(ctx, params)
		if err != nil {
			return nil, err
		}
		return &model.CreateScheduleResult{Schedule: schedule}, nil
	}

	existingID, reserved, err := s.idempotency.Reserve(ctx, params.UserID, key)
	if err != nil {
		return nil, err
	}
	if !reserved {
		if existingID == "" {
			return nil, ErrRequestInProgress
		}
		existing, err := s.scheduleRepo.Get(ctx, params.UserID, existingID)
		if err != nil {
			return nil, fmt.Errorf("failed to load schedule for idempotency key: %w", err)
		}
		if existing != nil {
			logger.InfoCtx(ctx, "replaying schedule %s for idempotency key %s", existing.ID, key)
			return &model.CreateScheduleResult{Schedule: mysql.ToScheduleDomain(existing), Replayed: true}, nil
		}
		logger.WarnCtx(ctx, "idempotency key %s points at missing schedule %s, creating a new one", key, existingID)
	}

	schedule, err := s.insert(ctx, params)
	if err != nil {
		if reserved {
			if releaseErr := s.idempotency.Release(ctx, params.UserID, key); releaseErr != nil {
				logger.WarnCtx(ctx, "failed to release idempotency key %s: %v", key, releaseErr)
			}
		}
		return nil, err
	}

	if err := s.idempotency.Complete(ctx, params.UserID, key, schedule.ID); err != nil {
		logger.WarnCtx(ctx, "failed to record idempotency key %s: %v", key, err)
	}
	return &model.CreateScheduleResult{Schedule: schedule}, nil
}

func (s *ScheduleService) insert(ctx context.Context, params *model.CreateScheduleParams) (*model.Schedule, error) {
	record := &mysql.Schedule{
		ID:          uuid.NewString(),
		UserID:      params.UserID,
		TherapistID: params.TherapistID,
		StartTime:   params.StartTime.UTC(),
		EndTime:     params.EndTime.UTC(),
		Notes:       params.Notes,
		Status:      string(model.ScheduleStatusScheduled),
	}
	if err := s.scheduleRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create schedule: %w", err)
	}
	return mysql.ToScheduleDomain(record), nil
}

// Cancel moves a scheduled session to cancelled. Unknown ids yield apperrors.ErrNotFound,
// sessions no longer scheduled yield apperrors.ErrConflict.
func (s *ScheduleService) Cancel(ctx context.Context, ownerID, id string) (*model.Schedule, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperrors.NewValidationError("id", "id must be a valid schedule id")
	}

	updated, err := s.scheduleRepo.UpdateStatus(ctx, ownerID, id,
		string(model.ScheduleStatusScheduled), string(model.ScheduleStatusCancelled))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) || errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to cancel schedule: %w", err)
	}
	return mysql.ToScheduleDomain(updated), nil
}
