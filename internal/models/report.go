package models

import (
	"errors"
	"fmt"
	"strings"
)

// NoSubject is reported as the most studied subject when there are no sessions.
const NoSubject = "None"

// StudyGoal holds the daily and weekly targets in minutes. Zero disables a
// target.
type StudyGoal struct {
	DailyMinutes  int `json:"daily_minutes" yaml:"daily_minutes"`
	WeeklyMinutes int `json:"weekly_minutes" yaml:"weekly_minutes"`
}

// Validate reports each negative target.
func (g StudyGoal) Validate() error {
	var errs []error
	if g.DailyMinutes < 0 {
		errs = append(errs, errors.New("daily goal minutes cannot be negative"))
	}
	if g.WeeklyMinutes < 0 {
		errs = append(errs, errors.New("weekly goal minutes cannot be negative"))
	}
	return errors.Join(errs...)
}

// StudyProgressReport is an immutable snapshot built once by the report
// generator.
type StudyProgressReport struct {
	TodayMinutes         int       `json:"today_minutes"`
	WeekMinutes          int       `json:"week_minutes"`
	TotalSessions        int       `json:"total_sessions"`
	AverageSessionLength float64   `json:"average_session_length"`
	MostStudiedSubject   string    `json:"most_studied_subject"`
	Goal                 StudyGoal `json:"goal"`
}

// DailyGoalProgress returns today's minutes as a percentage of the daily goal.
func (r StudyProgressReport) DailyGoalProgress() float64 {
	return percentOf(r.TodayMinutes, r.Goal.DailyMinutes)
}

// WeeklyGoalProgress returns this week's minutes as a percentage of the
// weekly goal.
func (r StudyProgressReport) WeeklyGoalProgress() float64 {
	return percentOf(r.WeekMinutes, r.Goal.WeeklyMinutes)
}

func percentOf(value, target int) float64 {
	if target <= 0 {
		return 0
	}
	return float64(value) / float64(target) * 100
}

func (r StudyProgressReport) FormattedReport() string {
	var b strings.Builder
	rule := strings.Repeat("=", 27)

	b.WriteString("STUDY PROGRESS REPORT\n")
	b.WriteString(rule + "\n")
	fmt.Fprintf(&b, "Today's Study Time: %d minutes (%.1f hours)\n", r.TodayMinutes, float64(r.TodayMinutes)/60.0)
	fmt.Fprintf(&b, "This Week's Total: %d minutes (%.1f hours)\n", r.WeekMinutes, float64(r.WeekMinutes)/60.0)
	fmt.Fprintf(&b, "Total Sessions: %d\n", r.TotalSessions)
	fmt.Fprintf(&b, "Average Session: %.1f minutes\n", r.AverageSessionLength)
	fmt.Fprintf(&b, "Most Studied Subject: %s\n", r.MostStudiedSubject)
	if r.Goal.DailyMinutes > 0 {
		fmt.Fprintf(&b, "Daily Goal: %d/%d minutes (%.0f%%)\n", r.TodayMinutes, r.Goal.DailyMinutes, r.DailyGoalProgress())
	}
	if r.Goal.WeeklyMinutes > 0 {
		fmt.Fprintf(&b, "Weekly Goal: %d/%d minutes (%.0f%%)\n", r.WeekMinutes, r.Goal.WeeklyMinutes, r.WeeklyGoalProgress())
	}
	b.WriteString(rule + "\n")
	return b.String()
}

// SubjectTotal is one row of the per-subject breakdown.
type SubjectTotal struct {
	Subject string `json:"subject"`
	Minutes int    `json:"minutes"`
}

func (t SubjectTotal) Hours() float64 {
	return float64(t.Minutes) / 60.0
}
