package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"studytracker/internal/models"
	"studytracker/internal/timeutil"
)

const postgresSchema = `
	CREATE TABLE IF NOT EXISTS study_sessions (
		id BIGSERIAL PRIMARY KEY,
		subject TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		notes TEXT,
		tags TEXT,
		difficulty TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_study_sessions_start_time ON study_sessions(start_time);
`

// PostgresStudySessionRepo opens a dedicated connection per operation and
// closes it before returning; there is no pool.
type PostgresStudySessionRepo struct {
	config *pgx.ConnConfig
	now    Clock
}

func NewPostgresStudySessionRepo(ctx context.Context, config *pgx.ConnConfig, clock Clock) (*PostgresStudySessionRepo, error) {
	r := &PostgresStudySessionRepo{config: config, now: clockOrDefault(clock)}

	err := r.withConn(ctx, "create schema", func(conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, postgresSchema)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *PostgresStudySessionRepo) withConn(ctx context.Context, op string, fn func(conn *pgx.Conn) error) error {
	conn, err := pgx.ConnectConfig(ctx, r.config)
	if err != nil {
		return storageErr(op, fmt.Errorf("connect: %w", err))
	}
	defer conn.Close(context.Background())

	return storageErr(op, fn(conn))
}

func (r *PostgresStudySessionRepo) Save(ctx context.Context, s *models.StudySession) (*models.StudySession, error) {
	err := r.withConn(ctx, "save study session", func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			INSERT INTO study_sessions (subject, duration_minutes, start_time, notes, tags, difficulty)
			VALUES ($1, $2, $3, $4, $5, $6)
			RETURNING id`,
			s.Subject, s.DurationMinutes, timeutil.FormatStorage(s.StartTime), s.Notes, encodeTags(s.Tags()), string(s.Difficulty),
		).Scan(&s.ID)
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *PostgresStudySessionRepo) FindByID(ctx context.Context, id int64) (*models.StudySession, bool, error) {
	sessions, err := r.query(ctx, "find study session",
		"SELECT "+sessionColumns+" FROM study_sessions WHERE id = $1", id)
	if err != nil {
		return nil, false, err
	}
	if len(sessions) == 0 {
		return nil, false, nil
	}
	return sessions[0], true, nil
}

func (r *PostgresStudySessionRepo) FindAll(ctx context.Context) ([]*models.StudySession, error) {
	return r.query(ctx, "retrieve study sessions",
		"SELECT "+sessionColumns+" FROM study_sessions ORDER BY start_time DESC, id DESC")
}

func (r *PostgresStudySessionRepo) FindBySubject(ctx context.Context, subject string) ([]*models.StudySession, error) {
	return r.query(ctx, "find sessions by subject",
		"SELECT "+sessionColumns+" FROM study_sessions WHERE LOWER(subject) = LOWER($1) ORDER BY start_time DESC, id DESC",
		subject)
}

func (r *PostgresStudySessionRepo) FindByDateRange(ctx context.Context, start, end time.Time) ([]*models.StudySession, error) {
	return r.query(ctx, "find sessions by date range",
		"SELECT "+sessionColumns+" FROM study_sessions WHERE start_time BETWEEN $1 AND $2 ORDER BY start_time DESC, id DESC",
		timeutil.FormatStorage(start), timeutil.FormatStorage(end))
}

func (r *PostgresStudySessionRepo) Update(ctx context.Context, s *models.StudySession) (bool, error) {
	var affected int64
	err := r.withConn(ctx, "update study session", func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE study_sessions
			SET subject = $1, duration_minutes = $2, start_time = $3, notes = $4, tags = $5, difficulty = $6
			WHERE id = $7`,
			s.Subject, s.DurationMinutes, timeutil.FormatStorage(s.StartTime), s.Notes, encodeTags(s.Tags()), string(s.Difficulty), s.ID,
		)
		affected = tag.RowsAffected()
		return err
	})
	return affected > 0, err
}

func (r *PostgresStudySessionRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var affected int64
	err := r.withConn(ctx, "delete study session", func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, "DELETE FROM study_sessions WHERE id = $1", id)
		affected = tag.RowsAffected()
		return err
	})
	return affected > 0, err
}

func (r *PostgresStudySessionRepo) TotalMinutesToday(ctx context.Context) (int, error) {
	from, to := todayWindow(r.now())
	return r.sumMinutes(ctx, "get today's study time", from, to)
}

func (r *PostgresStudySessionRepo) TotalMinutesThisWeek(ctx context.Context) (int, error) {
	from, to := weekWindow(r.now())
	return r.sumMinutes(ctx, "get this week's study time", from, to)
}

// Close is a no-op: no connection outlives a single call.
func (r *PostgresStudySessionRepo) Close() error {
	return nil
}

func (r *PostgresStudySessionRepo) sumMinutes(ctx context.Context, op, from, to string) (int, error) {
	var total int
	err := r.withConn(ctx, op, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx,
			"SELECT COALESCE(SUM(duration_minutes), 0)::INT FROM study_sessions WHERE start_time >= $1 AND start_time < $2",
			from, to,
		).Scan(&total)
	})
	return total, err
}

func (r *PostgresStudySessionRepo) query(ctx context.Context, op, query string, args ...any) ([]*models.StudySession, error) {
	sessions := make([]*models.StudySession, 0)
	err := r.withConn(ctx, op, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var (
				id                   int64
				subject, start, diff string
				duration             int
				notes, tags          pgtype.Text
			)
			if err := rows.Scan(&id, &subject, &duration, &start, &notes, &tags, &diff); err != nil {
				return err
			}
			s, err := mapSessionRow(id, subject, duration, start, notes.String, tags.String, diff)
			if err != nil {
				return err
			}
			sessions = append(sessions, s)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}
