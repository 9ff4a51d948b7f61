package router

import (
	"log/slog"

	"github.com/spf13/cobra"

	"studytracker/internal/handlers"
	"studytracker/internal/middleware"
)

// New builds the command tree. Every command runs through the run ID and
// logging middleware.
func New(
	sessionHandler *handlers.StudySessionHandler,
	dashboardHandler *handlers.DashboardHandler,
	transferHandler *handlers.TransferHandler,
	logger *slog.Logger,
) *cobra.Command {
	wrap := func(h middleware.RunFunc) middleware.RunFunc {
		return middleware.Chain(h, middleware.RunID, middleware.Logger(logger))
	}

	root := &cobra.Command{
		Use:           "studytracker",
		Short:         "Log study sessions and track progress",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.PersistentFlags().Bool("json", false, "Print results as JSON")

	// ──── Sessions ────
	add := &cobra.Command{
		Use:   "add <subject>",
		Short: "Log a study session that starts now",
		Args:  cobra.MinimumNArgs(1),
		RunE:  wrap(sessionHandler.Add),
	}
	add.Flags().IntP("minutes", "m", 0, "Duration in minutes (5-480)")
	add.Flags().StringP("difficulty", "d", "MEDIUM", "EASY, MEDIUM, HARD, VERY_HARD or 1-4")
	add.Flags().StringP("notes", "n", "", "Notes for the session")
	add.Flags().StringArrayP("tag", "t", nil, "Tag (repeatable)")
	add.MarkFlagRequired("minutes")

	list := &cobra.Command{
		Use:   "list",
		Short: "List study sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE:  wrap(sessionHandler.List),
	}
	list.Flags().String("date", "", "Only sessions that started on this date (YYYY-MM-DD)")

	search := &cobra.Command{
		Use:   "search <subject>",
		Short: "Find sessions by subject (case-insensitive)",
		Args:  cobra.MinimumNArgs(1),
		RunE:  wrap(sessionHandler.Search),
	}

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Show one study session",
		Args:  cobra.ExactArgs(1),
		RunE:  wrap(sessionHandler.Show),
	}

	annotate := &cobra.Command{
		Use:   "annotate <id>",
		Short: "Replace the notes and tags of a session",
		Args:  cobra.ExactArgs(1),
		RunE:  wrap(sessionHandler.Annotate),
	}
	annotate.Flags().StringP("notes", "n", "", "Notes for the session")
	annotate.Flags().StringArrayP("tag", "t", nil, "Tag (repeatable)")

	update := &cobra.Command{
		Use:   "update <id>",
		Short: "Change fields of a session",
		Args:  cobra.ExactArgs(1),
		RunE:  wrap(sessionHandler.Update),
	}
	update.Flags().String("subject", "", "New subject")
	update.Flags().IntP("minutes", "m", 0, "New duration in minutes")
	update.Flags().StringP("difficulty", "d", "", "New difficulty")
	update.Flags().StringP("notes", "n", "", "New notes")

	del := &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete a study session",
		Args:    cobra.ExactArgs(1),
		RunE:    wrap(sessionHandler.Delete),
	}

	// ──── Progress ────
	report := &cobra.Command{
		Use:   "report",
		Short: "Print the study progress report",
		Args:  cobra.NoArgs,
		RunE:  wrap(dashboardHandler.Report),
	}

	stats := &cobra.Command{
		Use:   "stats",
		Short: "Total study time per subject",
		Args:  cobra.NoArgs,
		RunE:  wrap(dashboardHandler.Stats),
	}

	streak := &cobra.Command{
		Use:   "streak",
		Short: "Consecutive days with at least one session, ending today",
		Args:  cobra.NoArgs,
		RunE:  wrap(dashboardHandler.Streak),
	}

	// ──── Transfer ────
	export := &cobra.Command{
		Use:   "export",
		Short: "Write all sessions to a YAML or JSON file",
		Args:  cobra.NoArgs,
		RunE:  wrap(transferHandler.Export),
	}
	export.Flags().StringP("output", "o", "", "Output file (default stdout)")
	export.Flags().StringP("format", "f", "yaml", "yaml or json (default from file extension)")

	imp := &cobra.Command{
		Use:   "import <file>",
		Short: "Add the sessions from an exported file",
		Args:  cobra.ExactArgs(1),
		RunE:  wrap(transferHandler.Import),
	}
	imp.Flags().StringP("format", "f", "yaml", "yaml or json (default from file extension)")

	root.AddCommand(add, list, search, show, annotate, update, del, report, stats, streak, export, imp)
	return root
}
