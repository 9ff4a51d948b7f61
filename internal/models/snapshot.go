package models

import "studytracker/internal/timeutil"

// SessionRecord is the file representation of a session used by export and
// import. StartTime uses the storage layout (YYYY-MM-DDTHH:MM:SS).
type SessionRecord struct {
	ID              int64      `json:"id,omitempty" yaml:"id,omitempty"`
	Subject         string     `json:"subject" yaml:"subject"`
	DurationMinutes int        `json:"duration_minutes" yaml:"duration_minutes"`
	StartTime       string     `json:"start_time" yaml:"start_time"`
	Notes           string     `json:"notes,omitempty" yaml:"notes,omitempty"`
	Tags            []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	Difficulty      Difficulty `json:"difficulty" yaml:"difficulty"`
}

type Snapshot struct {
	ExportedAt string          `json:"exported_at" yaml:"exported_at"`
	Sessions   []SessionRecord `json:"sessions" yaml:"sessions"`
}

// Record converts s to its file representation.
func (s *StudySession) Record() SessionRecord {
	return SessionRecord{
		ID:              s.ID,
		Subject:         s.Subject,
		DurationMinutes: s.DurationMinutes,
		StartTime:       timeutil.FormatStorage(s.StartTime),
		Notes:           s.Notes,
		Tags:            s.Tags(),
		Difficulty:      s.Difficulty,
	}
}
