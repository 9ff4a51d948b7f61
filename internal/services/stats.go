package services

import (
	"context"
	"sort"
	"time"

	"studytracker/internal/models"
	"studytracker/internal/timeutil"
)

// GetStudyTimeBySubject sums minutes per subject. Subjects are grouped by
// exact spelling.
func (s *StudySessionService) GetStudyTimeBySubject(ctx context.Context) (map[string]int, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return minutesBySubject(all), nil
}

// SubjectBreakdown returns the per-subject totals sorted by minutes
// descending, then subject ascending.
func (s *StudySessionService) SubjectBreakdown(ctx context.Context) ([]models.SubjectTotal, error) {
	totals, err := s.GetStudyTimeBySubject(ctx)
	if err != nil {
		return nil, err
	}
	return sortSubjectTotals(totals), nil
}

// CalculateCurrentStudyStreak counts consecutive calendar days ending today
// that have at least one session. A day without a session today means 0.
func (s *StudySessionService) CalculateCurrentStudyStreak(ctx context.Context) (int, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}
	return currentStreak(all, s.now()), nil
}

func minutesBySubject(sessions []*models.StudySession) map[string]int {
	totals := make(map[string]int)
	for _, s := range sessions {
		totals[s.Subject] += s.DurationMinutes
	}
	return totals
}

func sortSubjectTotals(totals map[string]int) []models.SubjectTotal {
	out := make([]models.SubjectTotal, 0, len(totals))
	for subject, minutes := range totals {
		out = append(out, models.SubjectTotal{Subject: subject, Minutes: minutes})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].Subject < out[j].Subject
	})
	return out
}

func currentStreak(sessions []*models.StudySession, today time.Time) int {
	days := make(map[string]struct{}, len(sessions))
	for _, s := range sessions {
		days[timeutil.DateKey(s.StartTime)] = struct{}{}
	}

	streak := 0
	for day := timeutil.StartOfDay(today); ; day = day.AddDate(0, 0, -1) {
		if _, ok := days[timeutil.DateKey(day)]; !ok {
			break
		}
		streak++
	}
	return streak
}
