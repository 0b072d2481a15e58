package mysql

import "swasthyaflow/internal/model"

// ToScheduleDomain converts MySQL Schedule to API Schedule model
func ToScheduleDomain(s *Schedule) *model.Schedule {
	if s == nil {
		return nil
	}

	return &model.Schedule{
		ID:          s.ID,
		UserID:      s.UserID,
		TherapistID: s.TherapistID,
		StartTime:   s.StartTime,
		EndTime:     s.EndTime,
		Notes:       s.Notes,
		Status:      model.ScheduleStatus(s.Status),
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}

// ToScheduleDomainList converts a slice, preserving order
func ToScheduleDomainList(items []*Schedule) []*model.Schedule {
	out := make([]*model.Schedule, 0, len(items))
	for _, s := range items {
		out = append(out, ToScheduleDomain(s))
	}
	return out
}
