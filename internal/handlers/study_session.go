package handlers

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"studytracker/internal/models"
	"studytracker/internal/services"
	"studytracker/internal/timeutil"
)

type StudySessionHandler struct {
	svc *services.StudySessionService
}

func NewStudySessionHandler(svc *services.StudySessionService) *StudySessionHandler {
	return &StudySessionHandler{svc: svc}
}

// Add logs a session that starts now. Notes and tags, when given, are
// attached right after the session is created.
func (h *StudySessionHandler) Add(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	minutes, _ := flags.GetInt("minutes")
	rawDifficulty, _ := flags.GetString("difficulty")
	notes, _ := flags.GetString("notes")
	tags, _ := flags.GetStringArray("tag")

	difficulty, err := models.ParseDifficulty(rawDifficulty)
	if err != nil {
		return fail(cmd, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
			map[string]string{"difficulty": "Difficulty must be EASY, MEDIUM, HARD or VERY_HARD (or 1-4)"}, cmd))
	}
	for _, tag := range tags {
		if models.ValidateTag(tag) != nil {
			return fail(cmd, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"tags": "Tags cannot contain commas"}, cmd))
		}
	}

	ctx := cmd.Context()
	session, err := h.svc.CreateStudySession(ctx, strings.Join(args, " "), minutes, difficulty)
	if err != nil {
		return handleServiceError(cmd, err)
	}
	if notes != "" || len(tags) > 0 {
		session, err = h.svc.AnnotateSession(ctx, session.ID, notes, tags)
		if err != nil {
			return handleServiceError(cmd, err)
		}
	}

	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"session": session.Record()})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Study session logged: %s\n", session)
	return nil
}

// List prints every session, or the sessions of one day with --date.
func (h *StudySessionHandler) List(cmd *cobra.Command, args []string) error {
	date, _ := cmd.Flags().GetString("date")

	var sessions []*models.StudySession
	var err error
	if date == "" {
		sessions, err = h.svc.GetAllStudySessions(cmd.Context())
	} else {
		day, perr := time.ParseInLocation(timeutil.DateLayout, date, time.Local)
		if perr != nil {
			return fail(cmd, errorRespWithFields("VALIDATION_ERROR", "Validation failed",
				map[string]string{"date": "Date must be YYYY-MM-DD"}, cmd))
		}
		sessions, err = h.svc.GetSessionsOnDate(cmd.Context(), day)
	}
	if err != nil {
		return handleServiceError(cmd, err)
	}
	return writeSessions(cmd, sessions)
}

func (h *StudySessionHandler) Search(cmd *cobra.Command, args []string) error {
	sessions, err := h.svc.GetSessionsBySubject(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return handleServiceError(cmd, err)
	}
	return writeSessions(cmd, sessions)
}

func (h *StudySessionHandler) Show(cmd *cobra.Command, args []string) error {
	id, err := parseID(cmd, args[0])
	if err != nil {
		return err
	}
	session, found, err := h.svc.GetSession(cmd.Context(), id)
	if err != nil {
		return handleServiceError(cmd, err)
	}
	if !found {
		return notFound(cmd, id)
	}

	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"session": session.Record()})
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "ID:         %d\n", session.ID)
	fmt.Fprintf(w, "Subject:    %s\n", session.Subject)
	fmt.Fprintf(w, "Duration:   %d minutes (%.1f hours)\n", session.DurationMinutes, session.DurationHours())
	fmt.Fprintf(w, "Started:    %s\n", session.FormattedStartTime())
	fmt.Fprintf(w, "Difficulty: %s\n", session.Difficulty)
	fmt.Fprintf(w, "Tags:       %s\n", strings.Join(session.Tags(), ", "))
	fmt.Fprintf(w, "Notes:      %s\n", session.Notes)
	return nil
}

// Annotate replaces the notes and tags of a session.
func (h *StudySessionHandler) Annotate(cmd *cobra.Command, args []string) error {
	id, err := parseID(cmd, args[0])
	if err != nil {
		return err
	}
	notes, _ := cmd.Flags().GetString("notes")
	tags, _ := cmd.Flags().GetStringArray("tag")

	session, err := h.svc.AnnotateSession(cmd.Context(), id, notes, tags)
	if err != nil {
		return handleServiceError(cmd, err)
	}
	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"session": session.Record()})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Study session %d annotated\n", session.ID)
	return nil
}

// Update changes the fields given as flags and leaves the rest untouched.
func (h *StudySessionHandler) Update(cmd *cobra.Command, args []string) error {
	id, err := parseID(cmd, args[0])
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	session, found, err := h.svc.GetSession(ctx, id)
	if err != nil {
		return handleServiceError(cmd, err)
	}
	if !found {
		return notFound(cmd, id)
	}

	flags := cmd.Flags()
	fields := map[string]string{}
	if flags.Changed("subject") {
		subject, _ := flags.GetString("subject")
		if session.SetSubject(subject) != nil {
			fields["subject"] = "Subject cannot be empty"
		}
	}
	if flags.Changed("minutes") {
		minutes, _ := flags.GetInt("minutes")
		if session.SetDurationMinutes(minutes) != nil {
			fields["duration_minutes"] = "Duration must be positive"
		}
	}
	if flags.Changed("difficulty") {
		raw, _ := flags.GetString("difficulty")
		difficulty, derr := models.ParseDifficulty(raw)
		if derr != nil {
			fields["difficulty"] = "Difficulty must be EASY, MEDIUM, HARD or VERY_HARD (or 1-4)"
		}
		session.Difficulty = difficulty
	}
	if flags.Changed("notes") {
		session.Notes, _ = flags.GetString("notes")
	}
	if len(fields) > 0 {
		return fail(cmd, errorRespWithFields("VALIDATION_ERROR", "Validation failed", fields, cmd))
	}

	if _, err := h.svc.UpdateStudySession(ctx, session); err != nil {
		return handleServiceError(cmd, err)
	}
	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"session": session.Record()})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Study session updated: %s\n", session)
	return nil
}

func (h *StudySessionHandler) Delete(cmd *cobra.Command, args []string) error {
	id, err := parseID(cmd, args[0])
	if err != nil {
		return err
	}
	deleted, err := h.svc.DeleteStudySession(cmd.Context(), id)
	if err != nil {
		return handleServiceError(cmd, err)
	}
	if !deleted {
		return notFound(cmd, id)
	}

	if jsonOutput(cmd) {
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"deleted": id})
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Study session %d deleted\n", id)
	return nil
}

func writeSessions(cmd *cobra.Command, sessions []*models.StudySession) error {
	if jsonOutput(cmd) {
		records := make([]models.SessionRecord, 0, len(sessions))
		for _, s := range sessions {
			records = append(records, s.Record())
		}
		return writeJSON(cmd.OutOrStdout(), map[string]interface{}{"sessions": records})
	}
	return writeSessionTable(cmd.OutOrStdout(), sessions)
}

func writeSessionTable(out io.Writer, sessions []*models.StudySession) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(out, "No study sessions found.")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTARTED\tSUBJECT\tMINUTES\tDIFFICULTY\tTAGS")
	for _, s := range sessions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			s.ID, s.FormattedStartTime(), s.Subject, s.DurationMinutes, s.Difficulty, strings.Join(s.Tags(), ","))
	}
	return w.Flush()
}
