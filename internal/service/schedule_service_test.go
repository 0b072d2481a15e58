package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"swasthyaflow/internal/model"
	"swasthyaflow/pkg/apperrors"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() *model.CreateScheduleRequest {
	return &model.CreateScheduleRequest{
		TherapistID: "  therapist-7 ",
		StartTime:   "2024-05-10T09:00:00+05:30",
		EndTime:     "2024-05-10T10:00:00+05:30",
	}
}

func TestParseCreateRequest_Valid(t *testing.T) {
	svc := NewScheduleService(newFakeScheduleRepo(), nil, clinicZone)

	params, err := svc.ParseCreateRequest("owner-a", validRequest())
	require.NoError(t, err)

	assert.Equal(t, "owner-a", params.UserID)
	assert.Equal(t, "therapist-7", params.TherapistID)
	assert.True(t, params.StartTime.Equal(at(10, 9, 0)))
	assert.Equal(t, time.UTC, params.StartTime.Location())
	assert.Nil(t, params.Notes)
}

func TestParseCreateRequest_LocalTimestampUsesClinicZone(t *testing.T) {
	svc := NewScheduleService(newFakeScheduleRepo(), nil, clinicZone)
	req := validRequest()
	req.StartTime = "2024-05-10T09:00:00"
	req.EndTime = "2024-05-10T09:45"

	params, err := svc.ParseCreateRequest("owner-a", req)
	require.NoError(t, err)
	assert.True(t, params.StartTime.Equal(at(10, 9, 0)))
	assert.True(t, params.EndTime.Equal(at(10, 9, 45)))
}

func TestParseCreateRequest_OffsetWithoutColon(t *testing.T) {
	svc := NewScheduleService(newFakeScheduleRepo(), nil, time.UTC)
	req := validRequest()
	req.StartTime = "2024-05-10T09:00:00+0530"
	req.EndTime = "2024-05-10T04:30:00.500Z"

	params, err := svc.ParseCreateRequest("owner-a", req)
	require.NoError(t, err)
	assert.True(t, params.StartTime.Equal(at(10, 9, 0)))
	assert.True(t, params.EndTime.Equal(time.Date(2024, 5, 10, 4, 30, 0, 500e6, time.UTC)))
}

func TestParseCreateRequest_EndBeforeStartAccepted(t *testing.T) {
	svc := NewScheduleService(newFakeScheduleRepo(), nil, clinicZone)
	req := validRequest()
	req.StartTime = "2024-05-10T10:00:00Z"
	req.EndTime = "2024-05-10T09:00:00Z"

	params, err := svc.ParseCreateRequest("owner-a", req)
	require.NoError(t, err)
	assert.True(t, params.EndTime.Before(params.StartTime))
}

func TestParseCreateRequest_Invalid(t *testing.T) {
	svc := NewScheduleService(newFakeScheduleRepo(), nil, clinicZone)

	tests := []struct {
		name       string
		mutate     func(r *model.CreateScheduleRequest)
		wantFields []string
	}{
		{"blank therapist", func(r *model.CreateScheduleRequest) { r.TherapistID = "   " }, []string{"therapistId"}},
		{"bad start", func(r *model.CreateScheduleRequest) { r.StartTime = "tomorrow" }, []string{"startTime"}},
		{"bad both", func(r *model.CreateScheduleRequest) { r.StartTime = "x"; r.EndTime = "y" }, []string{"startTime", "endTime"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			_, err := svc.ParseCreateRequest("owner-a", req)
			var verr *apperrors.ValidationError
			require.ErrorAs(t, err, &verr)

			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestCreate_DefaultsToScheduled(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := NewScheduleService(repo, nil, clinicZone)
	notes := "Occupational therapy"

	result, err := svc.Create(context.Background(), &model.CreateScheduleParams{
		UserID: "owner-a", TherapistID: "therapist-1",
		StartTime: at(10, 9, 0), EndTime: at(10, 10, 0), Notes: &notes,
	})
	require.NoError(t, err)

	assert.False(t, result.Replayed)
	assert.Equal(t, model.ScheduleStatusScheduled, result.Schedule.Status)
	_, err = uuid.Parse(result.Schedule.ID)
	assert.NoError(t, err)
	assert.Equal(t, "Occupational therapy", *result.Schedule.Notes)
	assert.False(t, result.Schedule.CreatedAt.IsZero())
}

func TestCreate_StoreFailure(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.createErr = errors.New("disk full")
	idem := newFakeIdempotencyStore()
	svc := NewScheduleService(repo, idem, clinicZone)

	_, err := svc.Create(context.Background(), &model.CreateScheduleParams{
		UserID: "owner-a", TherapistID: "t", StartTime: at(10, 9, 0), EndTime: at(10, 10, 0),
		IdempotencyKey: "k1",
	})
	assert.ErrorContains(t, err, "disk full")

	// reservation released so a retry can proceed
	_, reserved, err := idem.Reserve(context.Background(), "owner-a", "k1")
	require.NoError(t, err)
	assert.True(t, reserved)
}

func TestCreate_IdempotencyKeyReplays(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := NewScheduleService(repo, newFakeIdempotencyStore(), clinicZone)
	params := &model.CreateScheduleParams{
		UserID: "owner-a", TherapistID: "t", StartTime: at(10, 9, 0), EndTime: at(10, 10, 0),
		IdempotencyKey: "k1",
	}

	first, err := svc.Create(context.Background(), params)
	require.NoError(t, err)
	second, err := svc.Create(context.Background(), params)
	require.NoError(t, err)

	assert.False(t, first.Replayed)
	assert.True(t, second.Replayed)
	assert.Equal(t, first.Schedule.ID, second.Schedule.ID)
	assert.Equal(t, 1, repo.creates)

	// same key from another owner is independent
	other := *params
	other.UserID = "owner-b"
	third, err := svc.Create(context.Background(), &other)
	require.NoError(t, err)
	assert.False(t, third.Replayed)
	assert.Equal(t, 2, repo.creates)
}

func TestCreate_IdempotencyKeyInFlight(t *testing.T) {
	idem := newFakeIdempotencyStore()
	_, _, err := idem.Reserve(context.Background(), "owner-a", "k1")
	require.NoError(t, err)

	repo := newFakeScheduleRepo()
	svc := NewScheduleService(repo, idem, clinicZone)
	_, err = svc.Create(context.Background(), &model.CreateScheduleParams{
		UserID: "owner-a", TherapistID: "t", StartTime: at(10, 9, 0), EndTime: at(10, 10, 0),
		IdempotencyKey: "k1",
	})

	assert.ErrorIs(t, err, ErrRequestInProgress)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, 0, repo.creates)
}

func TestList_SortedByStartTime(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.put(record("owner-a", "scheduled", at(10, 15, 0)))
	repo.put(record("owner-a", "scheduled", at(10, 8, 0)))
	repo.put(record("owner-b", "scheduled", at(10, 9, 0)))
	repo.put(record("owner-a", "completed", at(9, 12, 0)))

	items, err := NewScheduleService(repo, nil, clinicZone).List(context.Background(), "owner-a")
	require.NoError(t, err)

	require.Len(t, items, 3)
	for i := 1; i < len(items); i++ {
		assert.False(t, items[i].StartTime.Before(items[i-1].StartTime))
	}
	for _, item := range items {
		assert.Equal(t, "owner-a", item.UserID)
	}
}

func TestCancel(t *testing.T) {
	repo := newFakeScheduleRepo()
	svc := NewScheduleService(repo, nil, clinicZone)
	ctx := context.Background()

	created, err := svc.Create(ctx, &model.CreateScheduleParams{
		UserID: "owner-a", TherapistID: "t", StartTime: at(10, 9, 0), EndTime: at(10, 10, 0),
	})
	require.NoError(t, err)
	id := created.Schedule.ID

	_, err = svc.Cancel(ctx, "owner-a", "not-a-uuid")
	var verr *apperrors.ValidationError
	assert.ErrorAs(t, err, &verr)

	_, err = svc.Cancel(ctx, "owner-b", id)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	_, err = svc.Cancel(ctx, "owner-a", uuid.NewString())
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	cancelled, err := svc.Cancel(ctx, "owner-a", id)
	require.NoError(t, err)
	assert.Equal(t, model.ScheduleStatusCancelled, cancelled.Status)

	_, err = svc.Cancel(ctx, "owner-a", id)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestCreateThenCancel_SummaryFollows(t *testing.T) {
	repo := newFakeScheduleRepo()
	repo.now = func() time.Time { return fixedNow.UTC() }
	schedules := NewScheduleService(repo, nil, clinicZone)
	analytics := newTestAnalyticsService(repo)
	ctx := context.Background()

	params, err := schedules.ParseCreateRequest("U", &model.CreateScheduleRequest{
		TherapistID: "therapist-1",
		StartTime:   "2024-05-10T09:00:00+05:30",
		EndTime:     "2024-05-10T09:45:00+05:30",
	})
	require.NoError(t, err)
	created, err := schedules.Create(ctx, params)
	require.NoError(t, err)

	summary, err := analytics.BuildSummary(ctx, "U")
	require.NoError(t, err)
	assert.Equal(t, 1, summary.StatusCounts["scheduled"])
	for _, bucket := range summary.Hourly {
		if bucket.Hour == 9 {
			assert.Equal(t, model.HourlyBucket{Hour: 9, Scheduled: 1}, bucket)
		} else {
			assert.Equal(t, model.HourlyBucket{Hour: bucket.Hour}, bucket)
		}
	}

	_, err = schedules.Cancel(ctx, "U", created.Schedule.ID)
	require.NoError(t, err)

	summary, err = analytics.BuildSummary(ctx, "U")
	require.NoError(t, err)
	assert.Equal(t, 0, summary.StatusCounts["scheduled"])
	assert.Equal(t, 1, summary.StatusCounts["cancelled"])
	require.Len(t, summary.RecentActivity, 1)
	assert.Equal(t, "cancelled", summary.RecentActivity[0].Action)
}
