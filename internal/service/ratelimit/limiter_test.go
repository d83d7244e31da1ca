package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLimiterBurstThenDeny(t *testing.T) {
	l := New(0.2, 2)
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))

	// other keys have their own bucket
	assert.True(t, l.Allow("b"))

	// one token refills after 5s at 0.2/s
	now = now.Add(5 * time.Second)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
}

func TestLimiterEvictsIdleKeys(t *testing.T) {
	l := New(1, 1)
	now := time.Date(2024, 3, 5, 10, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	l.Allow("a")
	l.Allow("b")
	assert.Equal(t, 2, l.Len())

	now = now.Add(11 * time.Minute)
	l.Allow("c")
	assert.Equal(t, 1, l.Len())
}
