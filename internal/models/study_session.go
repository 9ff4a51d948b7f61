package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"studytracker/internal/timeutil"
)

type Difficulty string

const (
	DifficultyEasy     Difficulty = "EASY"
	DifficultyMedium   Difficulty = "MEDIUM"
	DifficultyHard     Difficulty = "HARD"
	DifficultyVeryHard Difficulty = "VERY_HARD"
)

var (
	ErrEmptySubject       = errors.New("subject cannot be empty")
	ErrNonPositiveMinutes = errors.New("duration must be positive")
	ErrUnknownDifficulty  = errors.New("unknown difficulty")
	ErrTagContainsComma   = errors.New("tag cannot contain a comma")
)

// ParseDifficulty accepts the enumeration names case-insensitively, plus the
// menu numbers 1-4 and "very hard"/"very-hard" spellings.
func ParseDifficulty(s string) (Difficulty, error) {
	v := strings.ToUpper(strings.TrimSpace(s))
	v = strings.NewReplacer(" ", "_", "-", "_").Replace(v)
	switch v {
	case "EASY", "1":
		return DifficultyEasy, nil
	case "MEDIUM", "2":
		return DifficultyMedium, nil
	case "HARD", "3":
		return DifficultyHard, nil
	case "VERY_HARD", "VERYHARD", "4":
		return DifficultyVeryHard, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownDifficulty, s)
}

func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard, DifficultyVeryHard:
		return true
	}
	return false
}

type StudySession struct {
	ID              int64
	Subject         string
	DurationMinutes int
	StartTime       time.Time
	Notes           string
	Difficulty      Difficulty

	tags []string
}

// NewStudySession builds a transient session starting at now with empty notes
// and tags. The subject is trimmed.
func NewStudySession(subject string, durationMinutes int, difficulty Difficulty, now time.Time) (*StudySession, error) {
	s := &StudySession{
		DurationMinutes: durationMinutes,
		StartTime:       timeutil.Truncate(now),
		Difficulty:      difficulty,
		tags:            []string{},
	}
	if err := s.SetSubject(subject); err != nil {
		return nil, err
	}
	if durationMinutes <= 0 {
		return nil, ErrNonPositiveMinutes
	}
	if !difficulty.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDifficulty, difficulty)
	}
	return s, nil
}

// LoadStudySession rebuilds a persisted session. Tags are taken as-is (the
// store decoder is responsible for their shape) and copied.
func LoadStudySession(id int64, subject string, durationMinutes int, startTime time.Time, notes string, tags []string, difficulty Difficulty) *StudySession {
	copied := make([]string, len(tags))
	copy(copied, tags)
	return &StudySession{
		ID:              id,
		Subject:         subject,
		DurationMinutes: durationMinutes,
		StartTime:       startTime,
		Notes:           notes,
		Difficulty:      difficulty,
		tags:            copied,
	}
}

func (s *StudySession) SetSubject(subject string) error {
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return ErrEmptySubject
	}
	s.Subject = trimmed
	return nil
}

func (s *StudySession) SetDurationMinutes(minutes int) error {
	if minutes <= 0 {
		return ErrNonPositiveMinutes
	}
	s.DurationMinutes = minutes
	return nil
}

// Tags returns a copy; mutating it does not affect the session.
func (s *StudySession) Tags() []string {
	out := make([]string, len(s.tags))
	copy(out, s.tags)
	return out
}

// ValidateTag rejects values that would not survive the comma-joined storage
// encoding.
func ValidateTag(tag string) error {
	if strings.Contains(tag, ",") {
		return fmt.Errorf("%w: %q", ErrTagContainsComma, tag)
	}
	return nil
}

// AddTag normalizes the tag (trimmed, lowercased) and appends it unless it is
// blank or already present.
func (s *StudySession) AddTag(tag string) error {
	if err := ValidateTag(tag); err != nil {
		return err
	}
	normalized := strings.ToLower(strings.TrimSpace(tag))
	if normalized == "" {
		return nil
	}
	for _, existing := range s.tags {
		if existing == normalized {
			return nil
		}
	}
	s.tags = append(s.tags, normalized)
	return nil
}

func (s *StudySession) RemoveTag(tag string) {
	normalized := strings.ToLower(strings.TrimSpace(tag))
	for i, existing := range s.tags {
		if existing == normalized {
			s.tags = append(s.tags[:i:i], s.tags[i+1:]...)
			return
		}
	}
}

// SetTags replaces all tags. Nothing changes if any tag is invalid.
func (s *StudySession) SetTags(tags []string) error {
	for _, tag := range tags {
		if err := ValidateTag(tag); err != nil {
			return err
		}
	}
	s.tags = []string{}
	for _, tag := range tags {
		_ = s.AddTag(tag)
	}
	return nil
}

func (s *StudySession) DurationHours() float64 {
	return float64(s.DurationMinutes) / 60.0
}

func (s *StudySession) FormattedStartTime() string {
	return s.StartTime.Format(timeutil.DisplayLayout)
}

func (s *StudySession) String() string {
	return fmt.Sprintf("StudySession{id=%d, subject='%s', duration=%d mins, difficulty=%s, time=%s}",
		s.ID, s.Subject, s.DurationMinutes, s.Difficulty, s.FormattedStartTime())
}
