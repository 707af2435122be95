package clickhouse

import (
	"context"
	"os"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campuspulse/internal/domain"
	"campuspulse/internal/storage"
)

func TestInsertRejectsNonUUIDBeforeTouchingConnection(t *testing.T) {
	s := &Store{}
	err := s.InsertUsage(context.Background(), domain.UsageRecord{ID: "not-a-uuid"})
	assert.ErrorIs(t, err, storage.ErrStorageWriteFailed)

	err = s.InsertPrediction(context.Background(), domain.PredictionRecord{ID: "nope"})
	assert.ErrorIs(t, err, storage.ErrStorageWriteFailed)
}

func TestClickHouseInsert(t *testing.T) {
	host := os.Getenv("CLICKHOUSE_TEST_HOST")
	if host == "" {
		t.Skip("CLICKHOUSE_TEST_HOST not set")
	}
	port := 9000
	if p := os.Getenv("CLICKHOUSE_TEST_PORT"); p != "" {
		var err error
		port, err = strconv.Atoi(p)
		require.NoError(t, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	store, err := NewStore(ctx, Config{Host: host, Port: port, Database: "default", Username: "default"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	now := time.Now()
	require.NoError(t, store.InsertPrediction(ctx, domain.PredictionRecord{
		ID: uuid.NewString(), Service: "Canteen", Day: "Monday", Time: "12:30 PM",
		CrowdLevel: "High", EstimatedWaitMinutes: 25, Confidence: 0.75, Source: "rules", RecordedAt: now,
	}))
	require.NoError(t, store.InsertUsage(ctx, domain.UsageRecord{
		ID: uuid.NewString(), Service: "Canteen", Day: "Monday", Time: "12:30 PM",
		CrowdLevel: "High", WaitMinutes: 25, RecordedAt: now,
	}))
}
