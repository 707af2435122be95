package history

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"campuspulse/internal/domain"
	"campuspulse/internal/storage"
)

const defaultWriteTimeout = 5 * time.Second

// Sink records predictions and usage without ever blocking or failing the
// caller. Each write runs once in its own goroutine, bounded by a timeout.
type Sink struct {
	rec     storage.Recorder
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewSink wraps rec. A nil recorder yields a sink whose writes are silent
// no-ops, which is how "no storage configured" is represented.
func NewSink(rec storage.Recorder, timeout time.Duration) *Sink {
	if timeout <= 0 {
		timeout = defaultWriteTimeout
	}
	return &Sink{rec: rec, timeout: timeout, now: time.Now}
}

func (s *Sink) Enabled() bool {
	return s != nil && s.rec != nil
}

func (s *Sink) RecordPrediction(service, day, clock string, result domain.PredictionResult, contextText string) {
	if !s.Enabled() {
		return
	}
	source := result.Source
	if source == "" {
		source = domain.SourceRules
	}
	rec := domain.PredictionRecord{
		ID:                   uuid.NewString(),
		Service:              service,
		Day:                  day,
		Time:                 clock,
		CrowdLevel:           string(result.CrowdLevel),
		EstimatedWaitMinutes: result.EstimatedWaitMinutes,
		Confidence:           result.Confidence,
		Reasoning:            result.Reasoning,
		Context:              contextText,
		Source:               string(source),
		RecordedAt:           s.now(),
	}
	s.dispatch("prediction", service, func(ctx context.Context) error {
		return s.rec.InsertPrediction(ctx, rec)
	})
}

func (s *Sink) RecordUsage(service, day, clock string, level domain.CrowdLevel, waitMinutes int) {
	if !s.Enabled() {
		return
	}
	rec := domain.UsageRecord{
		ID:          uuid.NewString(),
		Service:     service,
		Day:         day,
		Time:        clock,
		CrowdLevel:  string(level),
		WaitMinutes: waitMinutes,
		RecordedAt:  s.now(),
	}
	s.dispatch("usage", service, func(ctx context.Context) error {
		return s.rec.InsertUsage(ctx, rec)
	})
}

// Record stores both rows for one finished prediction.
func (s *Sink) Record(req domain.PredictionRequest, result domain.PredictionResult) {
	s.RecordPrediction(req.Service, req.Day, req.Time, result, req.Context)
	s.RecordUsage(req.Service, req.Day, req.Time, result.CrowdLevel, result.EstimatedWaitMinutes)
}

// Wait blocks until every write started so far has finished or timed out.
func (s *Sink) Wait() {
	if s == nil {
		return
	}
	s.wg.Wait()
}

func (s *Sink) dispatch(kind, service string, write func(context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				log.Printf("history %s write panic service=%q (non-fatal): %v", kind, service, r)
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()
		if err := write(ctx); err != nil {
			log.Printf("history %s write failed service=%q (non-fatal): %v", kind, service, err)
		}
	}()
}
