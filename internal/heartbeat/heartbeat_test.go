package heartbeat

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/sadewadee/hashcat-dashboard/internal/domain"
)

type fakeAgents struct {
	calls atomic.Int32
	err   error
}

func (f *fakeAgents) MarkOfflineAgents(context.Context) (int, error) {
	f.calls.Add(1)
	return 1, f.err
}

type fakeRecorder struct {
	calls atomic.Int32
	err   error
}

func (f *fakeRecorder) RecordCurrent(context.Context) (*domain.PerformanceMetric, error) {
	f.calls.Add(1)
	if f.err != nil {
		return nil, f.err
	}
	return &domain.PerformanceMetric{Timestamp: time.Now()}, nil
}

type fakeCache struct {
	patterns []string
}

func (f *fakeCache) DeleteByPattern(_ context.Context, pattern string) error {
	f.patterns = append(f.patterns, pattern)
	return nil
}

func TestMonitorRunsUntilCancelled(t *testing.T) {
	agents := &fakeAgents{err: errors.New("db down")}
	m := NewMonitor(agents, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	assert.NoError(t, m.Run(ctx))
	assert.Greater(t, agents.calls.Load(), int32(1), "errors do not stop the loop")
}

func TestMonitorReportsOfflineAgents(t *testing.T) {
	var marked atomic.Int32
	m := NewMonitor(&fakeAgents{}, time.Hour).OnOffline(func(_ context.Context, n int) {
		marked.Add(int32(n))
	})

	m.check(context.Background())
	assert.Equal(t, int32(1), marked.Load())

	failing := NewMonitor(&fakeAgents{err: errors.New("db down")}, time.Hour).OnOffline(func(context.Context, int) {
		t.Fatal("hook must not run when the sweep fails")
	})
	failing.check(context.Background())
}

func TestRecorderRecordsImmediately(t *testing.T) {
	rec := &fakeRecorder{}
	c := &fakeCache{}
	r := NewRecorder(rec, c, "cache:dashboard:performance:*", time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error)
	go func() { done <- r.Run(ctx) }()

	assert.Eventually(t, func() bool { return rec.calls.Load() == 1 }, time.Second, time.Millisecond)
	cancel()
	assert.NoError(t, <-done)
	assert.Equal(t, []string{"cache:dashboard:performance:*"}, c.patterns)
}

func TestRecorderSkipsInvalidationOnError(t *testing.T) {
	rec := &fakeRecorder{err: errors.New("boom")}
	c := &fakeCache{}
	r := NewRecorder(rec, c, "x*", time.Hour)

	r.record(context.Background())

	assert.Empty(t, c.patterns)
}
