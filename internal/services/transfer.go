package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"studytracker/internal/models"
	"studytracker/internal/timeutil"
)

type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yaml", "yml", "":
		return FormatYAML, nil
	case "json":
		return FormatJSON, nil
	}
	return "", invalid("format", fmt.Sprintf("Unsupported format %q (use yaml or json)", s))
}

// ExportSessions writes every session, most recent first, to w.
func (s *StudySessionService) ExportSessions(ctx context.Context, w io.Writer, format Format) (int, error) {
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return 0, err
	}

	snapshot := models.Snapshot{
		ExportedAt: timeutil.FormatStorage(s.now()),
		Sessions:   make([]models.SessionRecord, 0, len(all)),
	}
	for _, session := range all {
		snapshot.Sessions = append(snapshot.Sessions, session.Record())
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(snapshot)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		err = enc.Encode(snapshot)
		if err == nil {
			err = enc.Close()
		}
	default:
		return 0, invalid("format", fmt.Sprintf("Unsupported format %q", format))
	}
	if err != nil {
		return 0, fmt.Errorf("encode export: %w", err)
	}
	return len(snapshot.Sessions), nil
}

// ImportSessions reads a snapshot and saves every record as a new session.
// All records are validated first; nothing is saved if any is invalid.
// Record IDs in the file are ignored.
func (s *StudySessionService) ImportSessions(ctx context.Context, r io.Reader, format Format) (int, error) {
	var snapshot models.Snapshot
	var err error
	switch format {
	case FormatJSON:
		err = json.NewDecoder(r).Decode(&snapshot)
	case FormatYAML:
		err = yaml.NewDecoder(r).Decode(&snapshot)
		if err == io.EOF {
			err = nil
		}
	default:
		return 0, invalid("format", fmt.Sprintf("Unsupported format %q", format))
	}
	if err != nil {
		return 0, invalid("file", fmt.Sprintf("Could not read %s snapshot: %v", format, err))
	}

	sessions := make([]*models.StudySession, 0, len(snapshot.Sessions))
	fields := map[string]string{}
	for i, record := range snapshot.Sessions {
		session, msg := fromRecord(record)
		if msg != "" {
			fields[fmt.Sprintf("sessions[%d]", i)] = msg
			continue
		}
		sessions = append(sessions, session)
	}
	if len(fields) > 0 {
		return 0, &ValidationError{Fields: fields}
	}

	for i, session := range sessions {
		if _, err := s.repo.Save(ctx, session); err != nil {
			return i, err
		}
	}

	s.logger.Info("study sessions imported", "count", len(sessions))
	event := newSessionEvent(EventSessionsImported, s.now())
	event.Count = len(sessions)
	s.send(ctx, event)
	return len(sessions), nil
}

// fromRecord applies the same rules as CreateStudySession plus the tag rule.
// It returns a message instead of an error so the caller can collect all of
// them.
func fromRecord(record models.SessionRecord) (*models.StudySession, string) {
	if verr := validateDuration(record.DurationMinutes); verr != nil {
		return nil, verr.Fields["duration_minutes"]
	}
	start, err := timeutil.ParseStorage(record.StartTime)
	if err != nil {
		return nil, fmt.Sprintf("start_time %q is not YYYY-MM-DDTHH:MM:SS", record.StartTime)
	}
	session, err := models.NewStudySession(record.Subject, record.DurationMinutes, record.Difficulty, start)
	if err != nil {
		return nil, err.Error()
	}
	session.Notes = record.Notes
	if err := session.SetTags(record.Tags); err != nil {
		return nil, err.Error()
	}
	return session, ""
}
