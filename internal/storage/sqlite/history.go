package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"campuspulse/internal/domain"
	"campuspulse/internal/storage"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// One writer at a time; history writes arrive from many goroutines.
	db.SetMaxOpenConns(1)

	schema := `
	CREATE TABLE IF NOT EXISTS prediction_history (
		id                     TEXT PRIMARY KEY,
		service                TEXT NOT NULL,
		day                    TEXT NOT NULL,
		time                   TEXT NOT NULL,
		crowd_level            TEXT NOT NULL,
		estimated_wait_minutes INTEGER NOT NULL,
		confidence             REAL NOT NULL,
		reasoning              TEXT DEFAULT '',
		context                TEXT DEFAULT '',
		source                 TEXT DEFAULT 'rules',
		recorded_at            DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_ph_recorded_at ON prediction_history(recorded_at);

	CREATE TABLE IF NOT EXISTS service_usage (
		id           TEXT PRIMARY KEY,
		service      TEXT NOT NULL,
		day          TEXT NOT NULL,
		time         TEXT NOT NULL,
		crowd_level  TEXT NOT NULL,
		wait_minutes INTEGER NOT NULL,
		recorded_at  DATETIME NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_su_recorded_at ON service_usage(recorded_at);
	CREATE INDEX IF NOT EXISTS idx_su_service ON service_usage(service);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func InsertPrediction(ctx context.Context, db *sql.DB, rec domain.PredictionRecord) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO prediction_history (id, service, day, time, crowd_level, estimated_wait_minutes, confidence, reasoning, context, source, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Service, rec.Day, rec.Time, rec.CrowdLevel, rec.EstimatedWaitMinutes,
		rec.Confidence, rec.Reasoning, rec.Context, rec.Source, rec.RecordedAt.UTC(),
	)
	return err
}

func InsertUsage(ctx context.Context, db *sql.DB, rec domain.UsageRecord) error {
	_, err := db.ExecContext(ctx,
		`INSERT INTO service_usage (id, service, day, time, crowd_level, wait_minutes, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Service, rec.Day, rec.Time, rec.CrowdLevel, rec.WaitMinutes, rec.RecordedAt.UTC(),
	)
	return err
}

func GetRecentPredictions(ctx context.Context, db *sql.DB, limit int) ([]domain.PredictionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := db.QueryContext(ctx,
		`SELECT id, service, day, time, crowd_level, estimated_wait_minutes, confidence, reasoning, context, source, recorded_at
		 FROM prediction_history ORDER BY recorded_at DESC, id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.PredictionRecord
	for rows.Next() {
		var r domain.PredictionRecord
		if err := rows.Scan(
			&r.ID, &r.Service, &r.Day, &r.Time, &r.CrowdLevel, &r.EstimatedWaitMinutes,
			&r.Confidence, &r.Reasoning, &r.Context, &r.Source, &r.RecordedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func GetUsageStats(ctx context.Context, db *sql.DB, since time.Time) ([]domain.ServiceUsageStat, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT service, COUNT(*) AS cnt, COALESCE(AVG(wait_minutes), 0),
		        COALESCE(SUM(CASE WHEN crowd_level = 'Low' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN crowd_level = 'Medium' THEN 1 ELSE 0 END), 0),
		        COALESCE(SUM(CASE WHEN crowd_level = 'High' THEN 1 ELSE 0 END), 0)
		 FROM service_usage
		 WHERE recorded_at >= ?
		 GROUP BY service
		 ORDER BY cnt DESC, service`,
		since.UTC(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ServiceUsageStat
	for rows.Next() {
		var s domain.ServiceUsageStat
		if err := rows.Scan(&s.Service, &s.Count, &s.AvgWait, &s.LowCount, &s.MediumCount, &s.HighCount); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Store adapts the package functions to storage.Recorder and storage.Reader.
type Store struct {
	db *sql.DB
}

// Open initialises the database at path and wraps it in a Store.
func Open(path string) (*Store, error) {
	db, err := InitDB(path)
	if err != nil {
		return nil, fmt.Errorf("%w: sqlite %s: %v", storage.ErrStorageUnavailable, path, err)
	}
	return &Store{db: db}, nil
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) InsertPrediction(ctx context.Context, rec domain.PredictionRecord) error {
	if err := InsertPrediction(ctx, s.db, rec); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageWriteFailed, err)
	}
	return nil
}

func (s *Store) InsertUsage(ctx context.Context, rec domain.UsageRecord) error {
	if err := InsertUsage(ctx, s.db, rec); err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageWriteFailed, err)
	}
	return nil
}

func (s *Store) GetRecentPredictions(ctx context.Context, limit int) ([]domain.PredictionRecord, error) {
	return GetRecentPredictions(ctx, s.db, limit)
}

func (s *Store) GetUsageStats(ctx context.Context, since time.Time) ([]domain.ServiceUsageStat, error) {
	return GetUsageStats(ctx, s.db, since)
}
