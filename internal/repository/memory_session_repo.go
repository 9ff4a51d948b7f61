package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"studytracker/internal/models"
	"studytracker/internal/timeutil"
)

// MemoryStudySessionRepo keeps sessions in a map. It mirrors the SQL
// implementations (ordering, inclusive ranges, second-precision times) so the
// service can be exercised without a database.
type MemoryStudySessionRepo struct {
	mu     sync.Mutex
	rows   map[int64]*models.StudySession
	nextID int64
	now    Clock
}

func NewMemoryStudySessionRepo(clock Clock) *MemoryStudySessionRepo {
	return &MemoryStudySessionRepo{
		rows:   make(map[int64]*models.StudySession),
		nextID: 1,
		now:    clockOrDefault(clock),
	}
}

// clone stores and returns independent copies, like a round trip through a
// real table would.
func clone(s *models.StudySession) *models.StudySession {
	return models.LoadStudySession(s.ID, s.Subject, s.DurationMinutes, timeutil.Truncate(s.StartTime), s.Notes, s.Tags(), s.Difficulty)
}

func (r *MemoryStudySessionRepo) Save(ctx context.Context, s *models.StudySession) (*models.StudySession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s.ID = r.nextID
	r.nextID++
	r.rows[s.ID] = clone(s)
	return s, nil
}

func (r *MemoryStudySessionRepo) FindByID(ctx context.Context, id int64) (*models.StudySession, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.rows[id]
	if !ok {
		return nil, false, nil
	}
	return clone(s), true, nil
}

func (r *MemoryStudySessionRepo) FindAll(ctx context.Context) ([]*models.StudySession, error) {
	return r.filter(func(*models.StudySession) bool { return true }), nil
}

func (r *MemoryStudySessionRepo) FindBySubject(ctx context.Context, subject string) ([]*models.StudySession, error) {
	want := asciiLower(subject)
	return r.filter(func(s *models.StudySession) bool {
		return asciiLower(s.Subject) == want
	}), nil
}

func (r *MemoryStudySessionRepo) FindByDateRange(ctx context.Context, start, end time.Time) ([]*models.StudySession, error) {
	from, to := timeutil.Truncate(start), timeutil.Truncate(end)
	return r.filter(func(s *models.StudySession) bool {
		return !s.StartTime.Before(from) && !s.StartTime.After(to)
	}), nil
}

func (r *MemoryStudySessionRepo) Update(ctx context.Context, s *models.StudySession) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[s.ID]; !ok {
		return false, nil
	}
	r.rows[s.ID] = clone(s)
	return true, nil
}

func (r *MemoryStudySessionRepo) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.rows[id]; !ok {
		return false, nil
	}
	delete(r.rows, id)
	return true, nil
}

func (r *MemoryStudySessionRepo) TotalMinutesToday(ctx context.Context) (int, error) {
	now := r.now()
	return r.sumBetween(timeutil.StartOfDay(now), timeutil.StartOfNextDay(now)), nil
}

func (r *MemoryStudySessionRepo) TotalMinutesThisWeek(ctx context.Context) (int, error) {
	now := r.now()
	return r.sumBetween(timeutil.StartOfWeek(now), timeutil.StartOfNextWeek(now)), nil
}

func (r *MemoryStudySessionRepo) Close() error { return nil }

// sumBetween sums durations with start times in [from, to).
func (r *MemoryStudySessionRepo) sumBetween(from, to time.Time) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	total := 0
	for _, s := range r.rows {
		if !s.StartTime.Before(from) && s.StartTime.Before(to) {
			total += s.DurationMinutes
		}
	}
	return total
}

func (r *MemoryStudySessionRepo) filter(keep func(*models.StudySession) bool) []*models.StudySession {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*models.StudySession, 0, len(r.rows))
	for _, s := range r.rows {
		if keep(s) {
			out = append(out, clone(s))
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.After(out[j].StartTime)
		}
		return out[i].ID > out[j].ID
	})
	return out
}
