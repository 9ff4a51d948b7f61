package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"studytracker/internal/models"
	"studytracker/internal/repository"
	"studytracker/internal/timeutil"
)

const (
	MinSessionMinutes = 5
	MaxSessionMinutes = 480 // 8 hours
)

type ServiceOptions struct {
	Goal   models.StudyGoal
	Events EventPublisher
	Logger *slog.Logger
	Clock  func() time.Time
}

// StudySessionService holds the business rules the store does not know
// about. It reads a fresh snapshot from the repository on every call.
type StudySessionService struct {
	repo   repository.StudySessionRepository
	goal   models.StudyGoal
	events EventPublisher
	logger *slog.Logger
	now    func() time.Time
}

func NewStudySessionService(repo repository.StudySessionRepository, opts ServiceOptions) *StudySessionService {
	s := &StudySessionService{
		repo:   repo,
		goal:   opts.Goal,
		events: opts.Events,
		logger: opts.Logger,
		now:    opts.Clock,
	}
	if s.events == nil {
		s.events = NoopEventPublisher{}
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

func validateDuration(minutes int) *ValidationError {
	if minutes < MinSessionMinutes {
		return invalid("duration_minutes", fmt.Sprintf("Study sessions must be at least %d minutes long", MinSessionMinutes))
	}
	if minutes > MaxSessionMinutes {
		return invalid("duration_minutes", "Study sessions cannot exceed 8 hours")
	}
	return nil
}

// CreateStudySession validates the duration and persists a new session
// starting now with empty notes and tags.
func (s *StudySessionService) CreateStudySession(ctx context.Context, subject string, durationMinutes int, difficulty models.Difficulty) (*models.StudySession, error) {
	if verr := validateDuration(durationMinutes); verr != nil {
		return nil, verr
	}

	session, err := models.NewStudySession(subject, durationMinutes, difficulty, s.now())
	if err != nil {
		return nil, entityError(err)
	}

	saved, err := s.repo.Save(ctx, session)
	if err != nil {
		return nil, err
	}

	s.logger.Info("study session created",
		"session_id", saved.ID, "subject", saved.Subject, "duration_minutes", saved.DurationMinutes)
	s.publish(ctx, EventSessionCreated, saved)
	return saved, nil
}

func (s *StudySessionService) GetAllStudySessions(ctx context.Context) ([]*models.StudySession, error) {
	return s.repo.FindAll(ctx)
}

func (s *StudySessionService) GetSessionsBySubject(ctx context.Context, subject string) ([]*models.StudySession, error) {
	trimmed := strings.TrimSpace(subject)
	if trimmed == "" {
		return nil, invalid("subject", "Subject cannot be empty")
	}
	return s.repo.FindBySubject(ctx, trimmed)
}

// GetSession returns the session with id; found is false when it does not exist.
func (s *StudySessionService) GetSession(ctx context.Context, id int64) (*models.StudySession, bool, error) {
	if id <= 0 {
		return nil, false, invalid("id", "Invalid session ID")
	}
	return s.repo.FindByID(ctx, id)
}

// GetSessionsOnDate returns the sessions that started on day's calendar date.
func (s *StudySessionService) GetSessionsOnDate(ctx context.Context, day time.Time) ([]*models.StudySession, error) {
	return s.repo.FindByDateRange(ctx, timeutil.StartOfDay(day), timeutil.EndOfDay(day))
}

// UpdateStudySession overwrites an existing session. The existence check and
// the write are separate statements.
func (s *StudySessionService) UpdateStudySession(ctx context.Context, session *models.StudySession) (bool, error) {
	if session.ID <= 0 {
		return false, invalid("id", "Cannot update session without valid ID")
	}
	if verr := validateEntity(session); verr != nil {
		return false, verr
	}

	_, found, err := s.repo.FindByID(ctx, session.ID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, invalid("id", "Study session not found")
	}

	updated, err := s.repo.Update(ctx, session)
	if err != nil {
		return false, err
	}
	if updated {
		s.logger.Info("study session updated", "session_id", session.ID)
		s.publish(ctx, EventSessionUpdated, session)
	}
	return updated, nil
}

// AnnotateSession replaces the notes and tags of an existing session.
func (s *StudySessionService) AnnotateSession(ctx context.Context, id int64, notes string, tags []string) (*models.StudySession, error) {
	session, found, err := s.GetSession(ctx, id)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, invalid("id", "Study session not found")
	}

	if err := session.SetTags(tags); err != nil {
		return nil, entityError(err)
	}
	session.Notes = notes

	if _, err := s.UpdateStudySession(ctx, session); err != nil {
		return nil, err
	}
	return session, nil
}

func (s *StudySessionService) DeleteStudySession(ctx context.Context, id int64) (bool, error) {
	if id <= 0 {
		return false, invalid("id", "Invalid session ID")
	}

	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		s.logger.Info("study session deleted", "session_id", id)
		event := newSessionEvent(EventSessionDeleted, s.now())
		event.SessionID = id
		s.send(ctx, event)
	}
	return deleted, nil
}

// GenerateProgressReport combines the store's today/week totals with a
// snapshot of all sessions.
func (s *StudySessionService) GenerateProgressReport(ctx context.Context) (models.StudyProgressReport, error) {
	today, err := s.repo.TotalMinutesToday(ctx)
	if err != nil {
		return models.StudyProgressReport{}, err
	}
	week, err := s.repo.TotalMinutesThisWeek(ctx)
	if err != nil {
		return models.StudyProgressReport{}, err
	}
	all, err := s.repo.FindAll(ctx)
	if err != nil {
		return models.StudyProgressReport{}, err
	}
	return BuildProgressReport(today, week, all, s.goal), nil
}

func (s *StudySessionService) publish(ctx context.Context, kind EventKind, session *models.StudySession) {
	event := newSessionEvent(kind, s.now())
	event.SessionID = session.ID
	event.Subject = session.Subject
	s.send(ctx, event)
}

func (s *StudySessionService) send(ctx context.Context, event SessionEvent) {
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish session event", "kind", event.Kind, "error", err)
	}
}

// validateEntity checks the invariants a session must hold before it is
// written, for sessions whose fields were assigned directly.
func validateEntity(session *models.StudySession) *ValidationError {
	fields := map[string]string{}
	if strings.TrimSpace(session.Subject) == "" {
		fields["subject"] = "Subject cannot be empty"
	}
	if session.DurationMinutes <= 0 {
		fields["duration_minutes"] = "Duration must be positive"
	}
	if !session.Difficulty.Valid() {
		fields["difficulty"] = "Difficulty must be EASY, MEDIUM, HARD or VERY_HARD"
	}
	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// entityError maps entity validation failures to ValidationError.
func entityError(err error) error {
	switch {
	case errors.Is(err, models.ErrEmptySubject):
		return invalid("subject", "Subject cannot be empty")
	case errors.Is(err, models.ErrNonPositiveMinutes):
		return invalid("duration_minutes", "Duration must be positive")
	case errors.Is(err, models.ErrUnknownDifficulty):
		return invalid("difficulty", "Difficulty must be EASY, MEDIUM, HARD or VERY_HARD")
	case errors.Is(err, models.ErrTagContainsComma):
		return invalid("tags", "Tags cannot contain commas")
	}
	return err
}
