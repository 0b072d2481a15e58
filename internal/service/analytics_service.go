package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"swasthyaflow/internal/model"
	"swasthyaflow/pkg/store/mysql"
)

const (
	recentActivityWindow = 7 * 24 * time.Hour
	recentActivityLimit  = 10
)

// AnalyticsService builds per-owner dashboard summaries straight from the schedule store.
type AnalyticsService struct {
	scheduleRepo scheduleRepository
	loc          *time.Location
	now          func() time.Time
}

// NewAnalyticsService creates the service. loc decides where "today" and hourly buckets start.
func NewAnalyticsService(scheduleRepo scheduleRepository, loc *time.Location) *AnalyticsService {
	if loc == nil {
		loc = time.Local
	}
	return &AnalyticsService{
		scheduleRepo: scheduleRepo,
		loc:          loc,
		now:          time.Now,
	}
}

// BuildSummary computes today's summary for ownerID. Any store failure fails the whole summary.
func (s *AnalyticsService) BuildSummary(ctx context.Context, ownerID string) (*model.AnalyticsSummary, error) {
	now := s.now()
	local := now.In(s.loc)
	startOfToday := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, s.loc)
	endOfToday := startOfToday.AddDate(0, 0, 1)
	startOfYesterday := startOfToday.AddDate(0, 0, -1)
	recentSince := now.Add(-recentActivityWindow)

	today, err := s.scheduleRepo.Find(ctx, mysql.ScheduleFilter{
		UserID:    ownerID,
		StartFrom: &startOfToday,
		StartTo:   &endOfToday,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load today's schedules: %w", err)
	}

	yesterday, err := s.scheduleRepo.Find(ctx, mysql.ScheduleFilter{
		UserID:    ownerID,
		StartFrom: &startOfYesterday,
		StartTo:   &startOfToday,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load yesterday's schedules: %w", err)
	}

	recent, err := s.scheduleRepo.Find(ctx, mysql.ScheduleFilter{
		UserID:       ownerID,
		UpdatedSince: &recentSince,
		Order:        mysql.OrderUpdatedAtDesc,
		Limit:        recentActivityLimit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load recent activity: %w", err)
	}

	return summarize(now, s.loc, today, yesterday, recent), nil
}

// summarize is the pure part of BuildSummary.
func summarize(now time.Time, loc *time.Location, today, yesterday, recent []*mysql.Schedule) *model.AnalyticsSummary {
	statusCounts := make(map[string]int, len(model.AllScheduleStatuses))
	for _, status := range model.AllScheduleStatuses {
		statusCounts[string(status)] = 0
	}

	hourly := make([]model.HourlyBucket, 24)
	for h := range hourly {
		hourly[h].Hour = h
	}

	for _, s := range today {
		statusCounts[s.Status]++

		bucket := &hourly[s.StartTime.In(loc).Hour()]
		switch model.ScheduleStatus(s.Status) {
		case model.ScheduleStatusScheduled:
			bucket.Scheduled++
		case model.ScheduleStatusCompleted:
			bucket.Completed++
		case model.ScheduleStatusCancelled:
			bucket.Cancelled++
		}
	}

	completed := statusCounts[string(model.ScheduleStatusCompleted)]
	cancelled := statusCounts[string(model.ScheduleStatusCancelled)]
	resolved := completed + cancelled

	var yCompleted, yCancelled int
	for _, s := range yesterday {
		switch model.ScheduleStatus(s.Status) {
		case model.ScheduleStatusCompleted:
			yCompleted++
		case model.ScheduleStatusCancelled:
			yCancelled++
		}
	}

	var completionTrend float64
	if yTotal := yCompleted + yCancelled; yTotal > 0 {
		todayShare := float64(completed) / float64(max(1, resolved))
		yesterdayShare := float64(yCompleted) / float64(yTotal)
		completionTrend = (todayShare - yesterdayShare) * 100
	}

	activity := make([]model.ActivityEntry, 0, len(recent))
	for _, s := range recent {
		activity = append(activity, toActivityEntry(s))
	}

	return &model.AnalyticsSummary{
		Timestamp:      now,
		StatusCounts:   statusCounts,
		Hourly:         hourly,
		SuccessRate:    round2(percent(completed, resolved)),
		TotalSessions:  len(today),
		RecentActivity: activity,
		Trends: model.AnalyticsTrends{
			CompletionTrend:       round2(completionTrend),
			CancellationRate:      round2(percent(cancelled, resolved)),
			AverageSessionsPerDay: float64(len(today)),
		},
	}
}

func toActivityEntry(s *mysql.Schedule) model.ActivityEntry {
	action := string(model.ScheduleStatusScheduled)
	switch model.ScheduleStatus(s.Status) {
	case model.ScheduleStatusCompleted, model.ScheduleStatusCancelled:
		action = s.Status
	}

	therapy := model.DefaultTherapyLabel
	if s.Notes != nil && *s.Notes != "" {
		therapy = *s.Notes
	}

	return model.ActivityEntry{
		Time:    s.UpdatedAt,
		Action:  action,
		Patient: s.TherapistID,
		Therapy: therapy,
	}
}

func percent(part, whole int) float64 {
	if whole == 0 {
		return 0
	}
	return float64(part) / float64(whole) * 100
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
