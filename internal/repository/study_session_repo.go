package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"studytracker/internal/models"
	"studytracker/internal/timeutil"
)

// StudySessionRepository is the storage contract for study sessions. It knows
// how sessions are stored, not what the business rules are.
type StudySessionRepository interface {
	Save(ctx context.Context, s *models.StudySession) (*models.StudySession, error)
	FindByID(ctx context.Context, id int64) (*models.StudySession, bool, error)
	FindAll(ctx context.Context) ([]*models.StudySession, error)
	FindBySubject(ctx context.Context, subject string) ([]*models.StudySession, error)
	FindByDateRange(ctx context.Context, start, end time.Time) ([]*models.StudySession, error)
	Update(ctx context.Context, s *models.StudySession) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	TotalMinutesToday(ctx context.Context) (int, error)
	TotalMinutesThisWeek(ctx context.Context) (int, error)
	Close() error
}

// Clock supplies the current time for the today/this-week windows.
type Clock func() time.Time

func clockOrDefault(c Clock) Clock {
	if c == nil {
		return time.Now
	}
	return c
}

// StorageError reports a failure of the underlying store.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

const sessionColumns = "id, subject, duration_minutes, start_time, notes, tags, difficulty"

// encodeTags joins tags with a comma. Tags containing a comma are rejected by
// the entity, so the encoding is unambiguous for sessions built through it.
func encodeTags(tags []string) string {
	return strings.Join(tags, ",")
}

// decodeTags splits the stored column on commas. Substrings are not trimmed:
// a value written by another tool as "a, b" reads back as ["a", " b"].
// Trailing empty substrings are dropped, so "math," reads as ["math"].
func decodeTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{}
	}
	parts := strings.Split(raw, ",")
	for len(parts) > 0 && parts[len(parts)-1] == "" {
		parts = parts[:len(parts)-1]
	}
	return parts
}

// asciiLower folds A-Z only, like SQLite's built-in LOWER.
func asciiLower(s string) string {
	b := []byte(s)
	for i, c := range b {
		if 'A' <= c && c <= 'Z' {
			b[i] = c + ('a' - 'A')
		}
	}
	return string(b)
}

// mapSessionRow converts raw column values to a session. NULL notes or tags
// arrive as empty strings.
func mapSessionRow(id int64, subject string, duration int, startRaw, notes, tags, difficultyRaw string) (*models.StudySession, error) {
	start, err := timeutil.ParseStorage(startRaw)
	if err != nil {
		return nil, fmt.Errorf("session %d: bad start_time %q: %w", id, startRaw, err)
	}
	difficulty := models.Difficulty(difficultyRaw)
	if !difficulty.Valid() {
		return nil, fmt.Errorf("session %d: %w: %q", id, models.ErrUnknownDifficulty, difficultyRaw)
	}
	return models.LoadStudySession(id, subject, duration, start, notes, decodeTags(tags), difficulty), nil
}

func todayWindow(now time.Time) (string, string) {
	return timeutil.FormatStorage(timeutil.StartOfDay(now)), timeutil.FormatStorage(timeutil.StartOfNextDay(now))
}

func weekWindow(now time.Time) (string, string) {
	return timeutil.FormatStorage(timeutil.StartOfWeek(now)), timeutil.FormatStorage(timeutil.StartOfNextWeek(now))
}
