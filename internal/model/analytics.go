package model

import "time"

// DefaultTherapyLabel is shown in the activity feed when a session has no notes.
const DefaultTherapyLabel = "Therapy Session"

// AnalyticsSummary live dashboard snapshot for one owner. Recomputed on every request.
type AnalyticsSummary struct {
	Timestamp      time.Time       `json:"timestamp"`
	StatusCounts   map[string]int  `json:"statusCounts"`
	Hourly         []HourlyBucket  `json:"hourly"`
	SuccessRate    float64         `json:"successRate"`
	TotalSessions  int             `json:"totalSessions"`
	RecentActivity []ActivityEntry `json:"recentActivity"`
	Trends         AnalyticsTrends `json:"trends"`
}

// HourlyBucket today's sessions starting in one local hour
type HourlyBucket struct {
	Hour      int `json:"hour"`
	Scheduled int `json:"scheduled"`
	Completed int `json:"completed"`
	Cancelled int `json:"cancelled"`
}

// ActivityEntry one recently updated session
type ActivityEntry struct {
	Time    time.Time `json:"time"`
	Action  string    `json:"action"`
	Patient string    `json:"patient"`
	Therapy string    `json:"therapy"`
}

// AnalyticsTrends day-over-day indicators (percentages, 2 decimals)
type AnalyticsTrends struct {
	CompletionTrend       float64 `json:"completionTrend"`
	CancellationRate      float64 `json:"cancellationRate"`
	AverageSessionsPerDay float64 `json:"averageSessionsPerDay"` // today's count only
}
