// Package clickhouse mirrors prediction and usage rows into ClickHouse for
// longer-range analytics. It is write-only; reads go to sqlite or postgres.
package clickhouse

import (
	"context"
	"fmt"

	"github.com/ClickHouse/clickhouse-go/v2"
	"github.com/google/uuid"

	"campuspulse/internal/domain"
	"campuspulse/internal/storage"
)

type Config struct {
	Host     string
	Port     int
	Database string
	Username string
	Password string
}

type Store struct {
	conn clickhouse.Conn
	cfg  Config
}

// NewStore connects and creates the analytics tables if needed.
func NewStore(ctx context.Context, cfg Config) (*Store, error) {
	conn, err := clickhouse.Open(&clickhouse.Options{
		Addr: []string{fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)},
		Auth: clickhouse.Auth{
			Database: cfg.Database,
			Username: cfg.Username,
			Password: cfg.Password,
		},
		Compression: &clickhouse.Compression{
			Method: clickhouse.CompressionLZ4,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: clickhouse: %v", storage.ErrStorageUnavailable, err)
	}
	s := &Store{conn: conn, cfg: cfg}
	if err := s.conn.Ping(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: clickhouse ping: %v", storage.ErrStorageUnavailable, err)
	}
	if err := s.ensureSchema(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("%w: clickhouse schema: %v", storage.ErrStorageUnavailable, err)
	}
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS prediction_history (
			id                     UUID,
			service                LowCardinality(String),
			day                    LowCardinality(String),
			time                   String,
			crowd_level            LowCardinality(String),
			estimated_wait_minutes Int32,
			confidence             Float64,
			reasoning              String,
			context                String,
			source                 LowCardinality(String),
			recorded_at            DateTime64(3)
		) ENGINE = MergeTree ORDER BY (service, recorded_at)`,
		`CREATE TABLE IF NOT EXISTS service_usage (
			id           UUID,
			service      LowCardinality(String),
			day          LowCardinality(String),
			time         String,
			crowd_level  LowCardinality(String),
			wait_minutes Int32,
			recorded_at  DateTime64(3)
		) ENGINE = MergeTree ORDER BY (service, recorded_at)`,
	}
	for _, q := range stmts {
		if err := s.conn.Exec(ctx, q); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.conn.Ping(ctx)
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) InsertPrediction(ctx context.Context, rec domain.PredictionRecord) error {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return fmt.Errorf("%w: prediction id %q: %v", storage.ErrStorageWriteFailed, rec.ID, err)
	}
	err = s.conn.Exec(ctx,
		`INSERT INTO prediction_history (
			id, service, day, time, crowd_level, estimated_wait_minutes,
			confidence, reasoning, context, source, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Service, rec.Day, rec.Time, rec.CrowdLevel, int32(rec.EstimatedWaitMinutes),
		rec.Confidence, rec.Reasoning, rec.Context, rec.Source, rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageWriteFailed, err)
	}
	return nil
}

func (s *Store) InsertUsage(ctx context.Context, rec domain.UsageRecord) error {
	id, err := uuid.Parse(rec.ID)
	if err != nil {
		return fmt.Errorf("%w: usage id %q: %v", storage.ErrStorageWriteFailed, rec.ID, err)
	}
	err = s.conn.Exec(ctx,
		`INSERT INTO service_usage (id, service, day, time, crowd_level, wait_minutes, recorded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		id, rec.Service, rec.Day, rec.Time, rec.CrowdLevel, int32(rec.WaitMinutes), rec.RecordedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", storage.ErrStorageWriteFailed, err)
	}
	return nil
}
