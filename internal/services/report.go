package services

import "studytracker/internal/models"

// BuildProgressReport derives the report from two store totals and a session
// snapshot. It does no I/O.
func BuildProgressReport(todayMinutes, weekMinutes int, sessions []*models.StudySession, goal models.StudyGoal) models.StudyProgressReport {
	report := models.StudyProgressReport{
		TodayMinutes:       todayMinutes,
		WeekMinutes:        weekMinutes,
		TotalSessions:      len(sessions),
		MostStudiedSubject: models.NoSubject,
		Goal:               goal,
	}
	if len(sessions) == 0 {
		return report
	}

	total := 0
	for _, s := range sessions {
		total += s.DurationMinutes
	}
	report.AverageSessionLength = float64(total) / float64(len(sessions))
	report.MostStudiedSubject = mostStudiedSubject(sessions)
	return report
}

// mostStudiedSubject picks the subject with the most sessions (not minutes).
// Ties go to the lexicographically smallest subject.
func mostStudiedSubject(sessions []*models.StudySession) string {
	counts := make(map[string]int)
	for _, s := range sessions {
		counts[s.Subject]++
	}

	best, bestCount := models.NoSubject, 0
	for subject, count := range counts {
		if count > bestCount || (count == bestCount && subject < best) {
			best, bestCount = subject, count
		}
	}
	return best
}
