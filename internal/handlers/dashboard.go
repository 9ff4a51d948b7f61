package handlers

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"studytracker/internal/services"
)

type DashboardHandler struct {
	svc *services.StudySessionService
}

func NewDashboardHandler(svc *services.StudySessionService) *DashboardHandler {
	return &DashboardHandler{svc: svc}
}

func (h *DashboardHandler) Report(cmd *cobra.Command, args []string) error {
	report, err := h.svc.GenerateProgressReport(cmd.Context())
	if err != nil {
		return handleServiceError(cmd, err)
	}

	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{
			"report":               report,
			"daily_goal_progress":  report.DailyGoalProgress(),
			"weekly_goal_progress": report.WeeklyGoalProgress(),
		})
	}
	_, err = fmt.Fprint(cmd.OutOrStdout(), report.FormattedReport())
	return err
}

// Stats prints total minutes per subject, largest first.
func (h *DashboardHandler) Stats(cmd *cobra.Command, args []string) error {
	totals, err := h.svc.SubjectBreakdown(cmd.Context())
	if err != nil {
		return handleServiceError(cmd, err)
	}

	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"subjects": totals})
	}
	if len(totals) == 0 {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), "No study sessions found.")
		return err
	}
	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUBJECT\tMINUTES\tHOURS")
	for _, t := range totals {
		fmt.Fprintf(w, "%s\t%d\t%.1f\n", t.Subject, t.Minutes, t.Hours())
	}
	return w.Flush()
}

func (h *DashboardHandler) Streak(cmd *cobra.Command, args []string) error {
	streak, err := h.svc.CalculateCurrentStudyStreak(cmd.Context())
	if err != nil {
		return handleServiceError(cmd, err)
	}

	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), map[string]int{"streak_days": streak})
	}
	unit := "days"
	if streak == 1 {
		unit = "day"
	}
	_, err = fmt.Fprintf(cmd.OutOrStdout(), "Current study streak: %d %s\n", streak, unit)
	return err
}
