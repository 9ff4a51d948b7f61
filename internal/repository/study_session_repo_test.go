package repository

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studytracker/internal/database"
	"studytracker/internal/models"
)

// Wednesday afternoon; the week starts on Monday 2026-03-02.
var fixedNow = time.Date(2026, 3, 4, 15, 0, 0, 0, time.Local)

func fixedClock() time.Time { return fixedNow }

func newSQLiteRepo(t *testing.T, path string) *SQLiteStudySessionRepo {
	t.Helper()
	db, err := database.NewSQLite(path)
	require.NoError(t, err)
	repo, err := NewSQLiteStudySessionRepo(db, fixedClock)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// eachRepo runs fn against every implementation that needs no external server.
func eachRepo(t *testing.T, fn func(t *testing.T, repo StudySessionRepository)) {
	t.Run("sqlite", func(t *testing.T) {
		fn(t, newSQLiteRepo(t, filepath.Join(t.TempDir(), "study.db")))
	})
	t.Run("memory", func(t *testing.T) {
		fn(t, NewMemoryStudySessionRepo(fixedClock))
	})
}

func mustSave(t *testing.T, repo StudySessionRepository, subject string, minutes int, start time.Time, tags ...string) *models.StudySession {
	t.Helper()
	s, err := models.NewStudySession(subject, minutes, models.DifficultyMedium, start)
	require.NoError(t, err)
	require.NoError(t, s.SetTags(tags))
	saved, err := repo.Save(context.Background(), s)
	require.NoError(t, err)
	return saved
}

func TestSaveAndFindByID_RoundTrip(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo StudySessionRepository) {
		ctx := context.Background()
		start := time.Date(2026, 3, 3, 9, 30, 12, 0, time.Local)

		s, err := models.NewStudySession("Math", 45, models.DifficultyVeryHard, start)
		require.NoError(t, err)
		s.Notes = "chapter 4"
		require.NoError(t, s.SetTags([]string{" Math ", "Exam"}))

		saved, err := repo.Save(ctx, s)
		require.NoError(t, err)
		assert.Same(t, s, saved)
		assert.Greater(t, s.ID, int64(0))

		got, found, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		require.True(t, found)

		assert.Equal(t, s.ID, got.ID)
		assert.Equal(t, "Math", got.Subject)
		assert.Equal(t, 45, got.DurationMinutes)
		assert.True(t, got.StartTime.Equal(start), "start time %v != %v", got.StartTime, start)
		assert.Equal(t, "chapter 4", got.Notes)
		assert.Equal(t, []string{"math", "exam"}, got.Tags())
		assert.Equal(t, models.DifficultyVeryHard, got.Difficulty)
	})
}

func TestSave_AssignsDistinctIDs(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo StudySessionRepository) {
		a := mustSave(t, repo, "A", 10, fixedNow)
		b := mustSave(t, repo, "B", 10, fixedNow)
		assert.NotEqual(t, a.ID, b.ID)
	})
}

func TestFindByID_Missing(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo StudySessionRepository) {
		got, found, err := repo.FindByID(context.Background(), 999)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, got)
	})
}

func TestFindAll_OrderedByStartTimeDescending(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo StudySessionRepository) {
		mustSave(t, repo, "Old", 10, fixedNow.AddDate(0, 0, -3))
		mustSave(t, repo, "New", 10, fixedNow)
		mustSave(t, repo, "Mid", 10, fixedNow.AddDate(0, 0, -1))

		all, err := repo.FindAll(context.Background())
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "New", all[0].Subject)
		assert.Equal(t, "Mid", all[1].Subject)
		assert.Equal(t, "Old", all[2].Subject)
	})
}

func TestFindAll_Empty(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo StudySessionRepository) {
		all, err := repo.FindAll(context.Background())
		require.NoError(t, err)
		assert.NotNil(t, all)
		assert.Empty(t, all)
	})
}

func TestFindBySubject_CaseInsensitive(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo StudySessionRepository) {
		ctx := context.Background()
		mustSave(t, repo, "Math", 30, fixedNow)
		mustSave(t, repo, "Mathematics", 30, fixedNow)
		mustSave(t, repo, "CS", 30, fixedNow)

		upper, err := repo.FindBySubject(ctx, "MATH")
		require.NoError(t, err)
		lower, err := repo.FindBySubject(ctx, "math")
		require.NoError(t, err)

		require.Len(t, upper, 1)
		require.Len(t, lower, 1)
		assert.Equal(t, upper[0].ID, lower[0].ID)
		assert.Equal(t, "Math", upper[0].Subject)
	})
}

func TestFindBySubject_FoldsASCIIOnly(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo StudySessionRepository) {
		ctx := context.Background()
		mustSave(t, repo, "Ökonomie", 30, fixedNow)

		asciiCase, err := repo.FindBySubject(ctx, "ÖKONOMIE")
		require.NoError(t, err)
		assert.Len(t, asciiCase, 1)

		nonASCIICase, err := repo.FindBySubject(ctx, "ökonomie")
		require.NoError(t, err)
		assert.Empty(t, nonASCIICase)
	})
}

func TestFindByDateRange_InclusiveBounds(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo StudySessionRepository) {
		start := time.Date(2026, 3, 1, 8, 0, 0, 0, time.Local)
		end := time.Date(2026, 3, 2, 8, 0, 0, 0, time.Local)

		mustSave(t, repo, "Before", 10, start.Add(-time.Second))
		mustSave(t, repo, "AtStart", 10, start)
		mustSave(t, repo, "Inside", 10, start.Add(6*time.Hour))
		mustSave(t, repo, "AtEnd", 10, end)
		mustSave(t, repo, "After", 10, end.Add(time.Second))

		got, err := repo.FindByDateRange(context.Background(), start, end)
		require.NoError(t, err)

		subjects := make([]string, 0, len(got))
		for _, s := range got {
			subjects = append(subjects, s.Subject)
		}
		assert.Equal(t, []string{"AtEnd", "Inside", "AtStart"}, subjects)
	})
}

func TestUpdate(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo StudySessionRepository) {
		ctx := context.Background()
		s := mustSave(t, repo, "Math", 30, fixedNow)

		s.Notes = "revised"
		require.NoError(t, s.SetDurationMinutes(50))
		require.NoError(t, s.AddTag("review"))

		ok, err := repo.Update(ctx, s)
		require.NoError(t, err)
		assert.True(t, ok)

		got, found, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, "revised", got.Notes)
		assert.Equal(t, 50, got.DurationMinutes)
		assert.Equal(t, []string{"review"}, got.Tags())
	})
}

func TestUpdateAndDelete_MissingIDLeaveStoreUnchanged(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo StudySessionRepository) {
		ctx := context.Background()
		kept := mustSave(t, repo, "Math", 30, fixedNow)

		ghost := models.LoadStudySession(kept.ID+100, "Ghost", 10, fixedNow, "", nil, models.DifficultyEasy)
		ok, err := repo.Update(ctx, ghost)
		require.NoError(t, err)
		assert.False(t, ok)

		ok, err = repo.Delete(ctx, kept.ID+100)
		require.NoError(t, err)
		assert.False(t, ok)

		all, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Len(t, all, 1)
		assert.Equal(t, "Math", all[0].Subject)
		assert.Equal(t, 30, all[0].DurationMinutes)
	})
}

func TestDelete(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo StudySessionRepository) {
		ctx := context.Background()
		s := mustSave(t, repo, "Math", 30, fixedNow)

		ok, err := repo.Delete(ctx, s.ID)
		require.NoError(t, err)
		assert.True(t, ok)

		_, found, err := repo.FindByID(ctx, s.ID)
		require.NoError(t, err)
		assert.False(t, found)

		ok, err = repo.Delete(ctx, s.ID)
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestTotalMinutesToday(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo StudySessionRepository) {
		ctx := context.Background()

		total, err := repo.TotalMinutesToday(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, total)

		midnight := time.Date(2026, 3, 4, 0, 0, 0, 0, time.Local)
		mustSave(t, repo, "Yesterday", 60, midnight.Add(-time.Second))
		mustSave(t, repo, "Tomorrow", 60, midnight.AddDate(0, 0, 1))

		total, err = repo.TotalMinutesToday(ctx)
		require.NoError(t, err)
		assert.Equal(t, 0, total)

		mustSave(t, repo, "Math", 45, midnight.Add(10*time.Hour))
		mustSave(t, repo, "CS", 15, midnight)

		total, err = repo.TotalMinutesToday(ctx)
		require.NoError(t, err)
		assert.Equal(t, 60, total)
	})
}

func TestTotalMinutesThisWeek(t *testing.T) {
	eachRepo(t, func(t *testing.T, repo StudySessionRepository) {
		ctx := context.Background()
		monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.Local)

		mustSave(t, repo, "LastSunday", 100, monday.Add(-time.Second))
		mustSave(t, repo, "Monday", 20, monday)
		mustSave(t, repo, "Today", 30, fixedNow)
		mustSave(t, repo, "Sunday", 40, time.Date(2026, 3, 8, 23, 0, 0, 0, time.Local))
		mustSave(t, repo, "NextMonday", 100, monday.AddDate(0, 0, 7))

		total, err := repo.TotalMinutesThisWeek(ctx)
		require.NoError(t, err)
		assert.Equal(t, 90, total)
	})
}

func TestSQLiteSchemaCreation_Idempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "study.db")

	first := newSQLiteRepo(t, path)
	mustSave(t, first, "Math", 30, fixedNow)

	second := newSQLiteRepo(t, path)
	all, err := second.FindAll(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestSQLiteDecodesUntrimmedTags(t *testing.T) {
	repo := newSQLiteRepo(t, filepath.Join(t.TempDir(), "study.db"))
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO study_sessions (subject, duration_minutes, start_time, notes, tags, difficulty)
		VALUES ('Math', 30, '2026-03-04T10:00:00', NULL, 'algebra, math', 'EASY')`)
	require.NoError(t, err)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, []string{"algebra", " math"}, all[0].Tags())
	assert.Equal(t, "", all[0].Notes)
}

func TestSQLiteReadsStartTimeWithoutSeconds(t *testing.T) {
	repo := newSQLiteRepo(t, filepath.Join(t.TempDir(), "study.db"))
	ctx := context.Background()
	mustSave(t, repo, "CS", 20, time.Date(2026, 3, 4, 9, 0, 0, 0, time.Local))

	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO study_sessions (subject, duration_minutes, start_time, notes, tags, difficulty)
		VALUES ('Math', 30, '2026-03-04T10:00', NULL, NULL, 'EASY')`)
	require.NoError(t, err)

	all, err := repo.FindAll(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Math", all[0].Subject)
	assert.True(t, time.Date(2026, 3, 4, 10, 0, 0, 0, time.Local).Equal(all[0].StartTime))

	today, err := repo.TotalMinutesToday(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, today)
}

func TestSQLiteCorruptRowIsStorageError(t *testing.T) {
	repo := newSQLiteRepo(t, filepath.Join(t.TempDir(), "study.db"))
	ctx := context.Background()

	_, err := repo.db.ExecContext(ctx, `
		INSERT INTO study_sessions (subject, duration_minutes, start_time, notes, tags, difficulty)
		VALUES ('Math', 30, '2026-03-04T10:00:00', '', '', 'LEGENDARY')`)
	require.NoError(t, err)

	_, err = repo.FindAll(ctx)
	var storageErr *StorageError
	require.ErrorAs(t, err, &storageErr)
	assert.Equal(t, "retrieve study sessions", storageErr.Op)
	assert.ErrorIs(t, err, models.ErrUnknownDifficulty)
}

func TestSQLiteClosedHandleIsStorageError(t *testing.T) {
	repo := newSQLiteRepo(t, filepath.Join(t.TempDir(), "study.db"))
	require.NoError(t, repo.Close())

	s, err := models.NewStudySession("Math", 30, models.DifficultyEasy, fixedNow)
	require.NoError(t, err)

	_, err = repo.Save(context.Background(), s)
	var storageErr *StorageError
	assert.ErrorAs(t, err, &storageErr)
}

func TestDecodeTags(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", []string{}},
		{"blank", "   ", []string{}},
		{"single", "math", []string{"math"}},
		{"keeps whitespace", "math, physics", []string{"math", " physics"}},
		{"trailing comma", "math,", []string{"math"}},
		{"only commas", ",,", []string{}},
		{"inner empty kept", "a,,b", []string{"a", "", "b"}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, decodeTags(tc.raw))
		})
	}
}

func TestEncodeTags(t *testing.T) {
	assert.Equal(t, "", encodeTags(nil))
	assert.Equal(t, "a,b", encodeTags([]string{"a", "b"}))
}
