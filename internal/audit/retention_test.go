package audit

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPruner struct {
	mu      sync.Mutex
	cutoffs []time.Time
	err     error
}

func (p *recordingPruner) Prune(_ context.Context, cutoff time.Time) (int64, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cutoffs = append(p.cutoffs, cutoff)
	return 3, p.err
}

func (p *recordingPruner) calls() []time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Time(nil), p.cutoffs...)
}

func TestStartRetention(t *testing.T) {
	now := time.Date(2024, 6, 30, 8, 0, 0, 0, time.UTC)
	p := &recordingPruner{}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		StartRetention(ctx, p, RetentionConfig{Days: 30, Interval: 10 * time.Millisecond, Now: func() time.Time { return now }})
		close(done)
	}()

	require.Eventually(t, func() bool { return len(p.calls()) >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, time.Date(2024, 5, 31, 8, 0, 0, 0, time.UTC), p.calls()[0])
}

func TestStartRetention_KeepsRunningAfterFailure(t *testing.T) {
	p := &recordingPruner{err: errors.New("db down")}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go StartRetention(ctx, p, RetentionConfig{Interval: 5 * time.Millisecond})

	require.Eventually(t, func() bool { return len(p.calls()) >= 3 }, time.Second, 5*time.Millisecond)
}

func TestRetentionDefaults(t *testing.T) {
	cfg := RetentionConfig{}.withDefaults()
	assert.Equal(t, 90, cfg.Days)
	assert.Equal(t, 24*time.Hour, cfg.Interval)
	assert.NotNil(t, cfg.Now)
}

func TestRecord_FillsClientFromContext(t *testing.T) {
	mem := NewMemorySink(5)
	ctx := WithClient(context.Background(), "10.0.0.7", "excel-addin/2.1")

	Record(ctx, mem, NewEntry("GetActors", time.Now()))

	e := NewEntry("SaveActors", time.Now())
	e.ClientIP = "192.0.2.1"
	Record(ctx, mem, e)

	got, err := mem.Recent(ctx, 0)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "192.0.2.1", got[0].ClientIP)
	assert.Equal(t, "10.0.0.7", got[1].ClientIP)
	assert.Equal(t, "excel-addin/2.1", got[1].UserAgent)
}
