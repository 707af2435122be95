package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"campuspulse/internal/domain"
)

var (
	// ErrStorageUnavailable means a backend could not be opened or reached.
	ErrStorageUnavailable = errors.New("storage unavailable")
	ErrStorageWriteFailed = errors.New("storage write failed")
)

// Recorder accepts history rows. Implementations must be safe for
// concurrent use; the history sink writes from one goroutine per record.
type Recorder interface {
	InsertPrediction(ctx context.Context, rec domain.PredictionRecord) error
	InsertUsage(ctx context.Context, rec domain.UsageRecord) error
}

// Reader serves the history and stats views.
type Reader interface {
	GetRecentPredictions(ctx context.Context, limit int) ([]domain.PredictionRecord, error)
	GetUsageStats(ctx context.Context, since time.Time) ([]domain.ServiceUsageStat, error)
}

type namedRecorder struct {
	name string
	Recorder
}

// Multi fans each write out to every configured backend.
type Multi struct {
	recorders []namedRecorder
}

func NewMulti() *Multi {
	return &Multi{}
}

func (m *Multi) Add(name string, r Recorder) {
	if r == nil {
		return
	}
	m.recorders = append(m.recorders, namedRecorder{name: name, Recorder: r})
}

func (m *Multi) Len() int {
	return len(m.recorders)
}

func (m *Multi) Names() []string {
	names := make([]string, 0, len(m.recorders))
	for _, r := range m.recorders {
		names = append(names, r.name)
	}
	return names
}

func (m *Multi) InsertPrediction(ctx context.Context, rec domain.PredictionRecord) error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.InsertPrediction(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.name, err))
		}
	}
	return errors.Join(errs...)
}

func (m *Multi) InsertUsage(ctx context.Context, rec domain.UsageRecord) error {
	var errs []error
	for _, r := range m.recorders {
		if err := r.InsertUsage(ctx, rec); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", r.name, err))
		}
	}
	return errors.Join(errs...)
}
