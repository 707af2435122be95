package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"campuspulse/internal/domain"
	"campuspulse/internal/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS prediction_history (
	id                     TEXT PRIMARY KEY,
	service                TEXT NOT NULL,
	day                    TEXT NOT NULL,
	time                   TEXT NOT NULL,
	crowd_level            TEXT NOT NULL,
	estimated_wait_minutes INTEGER NOT NULL,
	confidence             DOUBLE PRECISION NOT NULL,
	reasoning              TEXT NOT NULL DEFAULT '',
	context                TEXT NOT NULL DEFAULT '',
	source                 TEXT NOT NULL DEFAULT 'rules',
	recorded_at            TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_ph_recorded_at ON prediction_history(recorded_at);

CREATE TABLE IF NOT EXISTS service_usage (
	id           TEXT PRIMARY KEY,
	service      TEXT NOT NULL,
	day          TEXT NOT NULL,
	time         TEXT NOT NULL,
	crowd_level  TEXT NOT NULL,
	wait_minutes INTEGER NOT NULL,
	recorded_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_su_recorded_at ON service_usage(recorded_at);
`

// InitDB opens dsn, checks the connection and creates the history tables.
func InitDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

type Store struct {
	db *sql.DB
}

func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := InitDB(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: postgres: %v", storage.ErrStorageUnavailable, err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) InsertPrediction(ctx context.Context, rec domain.PredictionRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO prediction_history (id, service, day, time, crowd_level, estimated_wait_minutes, confidence, reasoning, context, source, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		rec.ID, rec.Service, rec.Day, rec.Time, rec.CrowdLevel, rec.EstimatedWaitMinutes,
		rec.Confidence, rec.Reasoning, rec.Context, rec.Source, rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageWriteFailed, err)
	}
	return nil
}

func (s *Store) InsertUsage(ctx context.Context, rec domain.UsageRecord) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO service_usage (id, service, day, time, crowd_level, wait_minutes, recorded_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		rec.ID, rec.Service, rec.Day, rec.Time, rec.CrowdLevel, rec.WaitMinutes, rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageWriteFailed, err)
	}
	return nil
}

func (s *Store) GetRecentPredictions(ctx context.Context, limit int) ([]domain.PredictionRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, service, day, time, crowd_level, estimated_wait_minutes, confidence, reasoning, context, source, recorded_at
		 FROM prediction_history ORDER BY recorded_at DESC, id LIMIT $1`,
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

func (s *Store) GetUsageStats(ctx context.Context, since time.Time) ([]domain.ServiceUsageStat, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT service, COUNT(*) AS cnt, COALESCE(AVG(wait_minutes), 0)::DOUBLE PRECISION,
		        COUNT(*) FILTER (WHERE crowd_level = 'Low'),
		        COUNT(*) FILTER (WHERE crowd_level = 'Medium'),
		        COUNT(*) FILTER (WHERE crowd_level = 'High')
		 FROM service_usage
		 WHERE recorded_at >= $1
		 GROUP BY service
		 ORDER BY cnt DESC, service`,
		since,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.ServiceUsageStat
	for rows.Next() {
		var st domain.ServiceUsageStat
		if err := rows.Scan(&st.Service, &st.Count, &st.AvgWait, &st.LowCount, &st.MediumCount, &st.HighCount); err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}
