package scheduler

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/dmitrijs2005/menuroll/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestBackoff(t *testing.T) {
	r := &Runner{Interval: time.Hour}
	assert.Equal(t, 30*time.Second, r.backoff(1))
	assert.Equal(t, time.Minute, r.backoff(2))
	assert.Equal(t, 2*time.Minute, r.backoff(3))
	assert.Equal(t, 32*time.Minute, r.backoff(7))
	assert.Equal(t, time.Hour, r.backoff(8))
	assert.Equal(t, time.Hour, r.backoff(50))

	short := &Runner{Interval: 20 * time.Second, InitialBackoff: 5 * time.Second}
	assert.Equal(t, 5*time.Second, short.backoff(1))
	assert.Equal(t, 20*time.Second, short.backoff(3))
}

func TestRunner_RunsPeriodically(t *testing.T) {
	var calls atomic.Int32
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	r := &Runner{
		Interval: 10 * time.Millisecond,
		Job: func(ctx context.Context) error {
			if calls.Add(1) == 3 {
				cancel()
			}
			return nil
		},
	}

	err := r.Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(3), calls.Load())
}

func TestRunner_TagsRunsInLogs(t *testing.T) {
	var buf bytes.Buffer
	log := logging.NewSlogLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var calls atomic.Int32
	r := &Runner{
		Interval:   10 * time.Millisecond,
		RunAtStart: true,
		Log:        log,
		Job: func(ctx context.Context) error {
			if calls.Add(1) == 2 {
				cancel()
				return nil
			}
			return errors.New("remote unavailable")
		},
	}

	require.ErrorIs(t, r.Run(ctx), context.Canceled)
	out := buf.String()
	assert.Contains(t, out, "run=1")
	assert.Contains(t, out, "scheduled job failed")
	assert.Contains(t, out, "attempt=1")
}

func TestRunner_BacksOffThenRecovers(t *testing.T) {
	var (
		calls atomic.Int32
		times []time.Time
	)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	r := &Runner{
		Interval:       200 * time.Millisecond,
		InitialBackoff: 5 * time.Millisecond,
		RunAtStart:     true,
		Job: func(ctx context.Context) error {
			times = append(times, time.Now())
			switch calls.Add(1) {
			case 1, 2:
				return errors.New("server unavailable")
			case 3:
				return nil
			default:
				cancel()
				return nil
			}
		},
	}

	require.ErrorIs(t, r.Run(ctx), context.Canceled)
	require.Len(t, times, 4)

	// Retries come well before the interval, the run after a success does not.
	assert.Less(t, times[1].Sub(times[0]), 150*time.Millisecond)
	assert.Less(t, times[2].Sub(times[1]), 150*time.Millisecond)
	assert.GreaterOrEqual(t, times[3].Sub(times[2]), 200*time.Millisecond)
}

func TestRunner_StopsBeforeFirstRun(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := &Runner{Interval: time.Hour, Job: func(context.Context) error {
		t.Fatal("job must not run")
		return nil
	}}
	assert.ErrorIs(t, r.Run(ctx), context.Canceled)
}

func TestRunner_InvalidConfig(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, (&Runner{Job: func(context.Context) error { return nil }}).Run(ctx))
	assert.Error(t, (&Runner{Interval: time.Second}).Run(ctx))
}
