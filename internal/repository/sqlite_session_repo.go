package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"studytracker/internal/models"
	"studytracker/internal/timeutil"
)

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS study_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		subject TEXT NOT NULL,
		duration_minutes INTEGER NOT NULL,
		start_time TEXT NOT NULL,
		notes TEXT,
		tags TEXT,
		difficulty TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_study_sessions_start_time ON study_sessions(start_time);
`

// SQLiteStudySessionRepo stores sessions in a SQLite file. Each operation
// acquires its own connection from db and releases it before returning.
type SQLiteStudySessionRepo struct {
	db  *sql.DB
	now Clock
}

func NewSQLiteStudySessionRepo(db *sql.DB, clock Clock) (*SQLiteStudySessionRepo, error) {
	r := &SQLiteStudySessionRepo{db: db, now: clockOrDefault(clock)}

	err := r.withConn(context.Background(), "create schema", func(conn *sql.Conn) error {
		_, err := conn.ExecContext(context.Background(), sqliteSchema)
		return err
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *SQLiteStudySessionRepo) withConn(ctx context.Context, op string, fn func(conn *sql.Conn) error) error {
	conn, err := r.db.Conn(ctx)
	if err != nil {
		return storageErr(op, fmt.Errorf("acquire connection: %w", err))
	}
	defer conn.Close()

	return storageErr(op, fn(conn))
}

func (r *SQLiteStudySessionRepo) Save(ctx context.Context, s *models.StudySession) (*models.StudySession, error) {
	err := r.withConn(ctx, "save study session", func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `
			INSERT INTO study_sessions (subject, duration_minutes, start_time, notes, tags, difficulty)
			VALUES (?, ?, ?, ?, ?, ?)`,
			s.Subject, s.DurationMinutes, timeutil.FormatStorage(s.StartTime), s.Notes, encodeTags(s.Tags()), string(s.Difficulty),
		)
		if err != nil {
			return err
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		s.ID = id
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (r *SQLiteStudySessionRepo) FindByID(ctx context.Context, id int64) (*models.StudySession, bool, error) {
	var found *models.StudySession
	err := r.withConn(ctx, "find study session", func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, "SELECT "+sessionColumns+" FROM study_sessions WHERE id = ?", id)
		if err != nil {
			return err
		}
		sessions, err := scanSQLRows(rows)
		if err != nil {
			return err
		}
		if len(sessions) > 0 {
			found = sessions[0]
		}
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return found, found != nil, nil
}

func (r *SQLiteStudySessionRepo) FindAll(ctx context.Context) ([]*models.StudySession, error) {
	return r.query(ctx, "retrieve study sessions",
		"SELECT "+sessionColumns+" FROM study_sessions ORDER BY start_time DESC, id DESC")
}

func (r *SQLiteStudySessionRepo) FindBySubject(ctx context.Context, subject string) ([]*models.StudySession, error) {
	return r.query(ctx, "find sessions by subject",
		"SELECT "+sessionColumns+" FROM study_sessions WHERE LOWER(subject) = LOWER(?) ORDER BY start_time DESC, id DESC",
		subject)
}

func (r *SQLiteStudySessionRepo) FindByDateRange(ctx context.Context, start, end time.Time) ([]*models.StudySession, error) {
	return r.query(ctx, "find sessions by date range",
		"SELECT "+sessionColumns+" FROM study_sessions WHERE start_time BETWEEN ? AND ? ORDER BY start_time DESC, id DESC",
		timeutil.FormatStorage(start), timeutil.FormatStorage(end))
}

func (r *SQLiteStudySessionRepo) Update(ctx context.Context, s *models.StudySession) (bool, error) {
	var affected int64
	err := r.withConn(ctx, "update study session", func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, `
			UPDATE study_sessions
			SET subject = ?, duration_minutes = ?, start_time = ?, notes = ?, tags = ?, difficulty = ?
			WHERE id = ?`,
			s.Subject, s.DurationMinutes, timeutil.FormatStorage(s.StartTime), s.Notes, encodeTags(s.Tags()), string(s.Difficulty), s.ID,
		)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected > 0, err
}

func (r *SQLiteStudySessionRepo) Delete(ctx context.Context, id int64) (bool, error) {
	var affected int64
	err := r.withConn(ctx, "delete study session", func(conn *sql.Conn) error {
		res, err := conn.ExecContext(ctx, "DELETE FROM study_sessions WHERE id = ?", id)
		if err != nil {
			return err
		}
		affected, err = res.RowsAffected()
		return err
	})
	return affected > 0, err
}

func (r *SQLiteStudySessionRepo) TotalMinutesToday(ctx context.Context) (int, error) {
	from, to := todayWindow(r.now())
	return r.sumMinutes(ctx, "get today's study time", from, to)
}

func (r *SQLiteStudySessionRepo) TotalMinutesThisWeek(ctx context.Context) (int, error) {
	from, to := weekWindow(r.now())
	return r.sumMinutes(ctx, "get this week's study time", from, to)
}

func (r *SQLiteStudySessionRepo) Close() error {
	return r.db.Close()
}

func (r *SQLiteStudySessionRepo) sumMinutes(ctx context.Context, op, from, to string) (int, error) {
	var total int
	err := r.withConn(ctx, op, func(conn *sql.Conn) error {
		return conn.QueryRowContext(ctx,
			"SELECT COALESCE(SUM(duration_minutes), 0) FROM study_sessions WHERE start_time >= ? AND start_time < ?",
			from, to,
		).Scan(&total)
	})
	return total, err
}

func (r *SQLiteStudySessionRepo) query(ctx context.Context, op, query string, args ...any) ([]*models.StudySession, error) {
	var sessions []*models.StudySession
	err := r.withConn(ctx, op, func(conn *sql.Conn) error {
		rows, err := conn.QueryContext(ctx, query, args...)
		if err != nil {
			return err
		}
		sessions, err = scanSQLRows(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func scanSQLRows(rows *sql.Rows) ([]*models.StudySession, error) {
	defer rows.Close()

	sessions := make([]*models.StudySession, 0)
	for rows.Next() {
		var (
			id                   int64
			subject, start, diff string
			duration             int
			notes, tags          sql.NullString
		)
		if err := rows.Scan(&id, &subject, &duration, &start, &notes, &tags, &diff); err != nil {
			return nil, err
		}
		s, err := mapSessionRow(id, subject, duration, start, notes.String, tags.String, diff)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}
