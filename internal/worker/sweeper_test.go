package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeExpirer struct {
	remaining int
	cutoffs   []time.Time
	err       error
}

func (f *fakeExpirer) ExpirePlaced(_ context.Context, cutoff time.Time, limit int) (int, error) {
	f.cutoffs = append(f.cutoffs, cutoff)
	if f.err != nil {
		return 0, f.err
	}
	n := min(limit, f.remaining)
	f.remaining -= n
	return n, nil
}

func TestSweeper_DrainsInBatches(t *testing.T) {
	now := time.Date(2024, 5, 2, 12, 0, 0, 0, time.UTC)
	exp := &fakeExpirer{remaining: 250}
	s := NewSweeper(exp, time.Hour, time.Minute)
	s.now = func() time.Time { return now }

	n, err := s.Sweep(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 250, n)
	assert.Len(t, exp.cutoffs, 3)
	assert.Equal(t, now.Add(-time.Hour), exp.cutoffs[0])
}

func TestSweeper_Error(t *testing.T) {
	exp := &fakeExpirer{err: errors.New("db down")}
	s := NewSweeper(exp, 0, 0)

	_, err := s.Sweep(context.Background())
	assert.Error(t, err)
	assert.Equal(t, DefaultCheckoutTTL, s.ttl)
	assert.Equal(t, DefaultSweepInterval, s.interval)
}

func TestSweeper_StopsOnCancel(t *testing.T) {
	s := NewSweeper(&fakeExpirer{}, time.Hour, time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		s.Start(ctx)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}
