package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"FxPulse/internal/domain/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchedulerRunOnceStoresAndPublishes(t *testing.T) {
	m := newFakeMetrics()
	ev := newTestEvaluator(t, marketFixture(), m)
	ok := &memorySink{name: "ws"}
	broken := &memorySink{name: "kafka", err: errors.New("no leader")}

	s := NewScheduler(ev, []repository.PassSink{ok, broken}, m, time.Minute, nil)
	s.now = func() time.Time { return tuesdayClose }

	_, found := s.Latest()
	assert.False(t, found)

	pass, err := s.RunOnce(context.Background())
	require.NoError(t, err)

	latest, found := s.Latest()
	require.True(t, found)
	assert.Same(t, pass, latest)
	require.Len(t, ok.passes, 1)
	assert.Same(t, pass, ok.passes[0])
	assert.Equal(t, 1, m.sinkErrors["kafka"])
}

func TestSchedulerReplayLeavesLatestAlone(t *testing.T) {
	ev := newTestEvaluator(t, marketFixture(), newFakeMetrics())
	sink := &memorySink{name: "ws"}
	s := NewScheduler(ev, []repository.PassSink{sink}, newFakeMetrics(), time.Minute, nil)

	pass, err := s.Replay(context.Background(), tuesdayClose)
	require.NoError(t, err)
	assert.Equal(t, tuesdayClose, pass.At)
	require.NotNil(t, pass.AsOf)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), *pass.AsOf)

	_, found := s.Latest()
	assert.False(t, found)
	assert.Empty(t, sink.passes)
}

func TestSchedulerRunStopsOnCancel(t *testing.T) {
	ev := newTestEvaluator(t, marketFixture(), newFakeMetrics())
	sink := &memorySink{name: "ws"}
	s := NewScheduler(ev, []repository.PassSink{sink}, newFakeMetrics(), 10*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool {
		sink.mu.Lock()
		defer sink.mu.Unlock()
		return len(sink.passes) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop")
	}
}
