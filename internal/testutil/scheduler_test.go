package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManualScheduler_FiresOnlyWhenDue(t *testing.T) {
	s := NewManualScheduler()
	fired := 0
	s.Schedule(10*time.Second, func() { fired++ })

	s.Advance(9 * time.Second)
	assert.Equal(t, 0, fired)
	assert.Equal(t, 1, s.Armed())

	s.Advance(time.Second)
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, s.Armed())
	assert.Equal(t, 10*time.Second, s.Now())

	s.Advance(time.Minute)
	assert.Equal(t, 1, fired, "a timer fires once")
}

func TestManualScheduler_StopPreventsFire(t *testing.T) {
	s := NewManualScheduler()
	fired := false
	timer := s.Schedule(time.Second, func() { fired = true })

	assert.True(t, timer.Stop())
	assert.False(t, timer.Stop(), "second stop reports already stopped")

	s.Advance(time.Hour)
	assert.False(t, fired)
	assert.Equal(t, 0, s.Fired())
}

func TestManualScheduler_StopAfterFire(t *testing.T) {
	s := NewManualScheduler()
	timer := s.Schedule(time.Second, func() {})
	s.Advance(time.Second)
	assert.False(t, timer.Stop())
}

func TestManualScheduler_OrderByDeadlineThenSchedule(t *testing.T) {
	s := NewManualScheduler()
	var order []string
	s.Schedule(2*time.Second, func() { order = append(order, "b") })
	s.Schedule(time.Second, func() { order = append(order, "a") })
	s.Schedule(2*time.Second, func() { order = append(order, "c") })

	s.Advance(5 * time.Second)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestManualScheduler_CallbackArmsTimer(t *testing.T) {
	s := NewManualScheduler()
	var at []time.Duration
	s.Schedule(time.Second, func() {
		at = append(at, s.Now())
		s.Schedule(time.Second, func() { at = append(at, s.Now()) })
	})

	s.Advance(3 * time.Second)
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, at)
	assert.Equal(t, 3*time.Second, s.Now())
}

func TestManualScheduler_FireNext(t *testing.T) {
	s := NewManualScheduler()
	assert.False(t, s.FireNext())

	fired := false
	timer := s.Schedule(10*time.Second, func() { fired = true })
	require.True(t, s.FireNext())
	assert.True(t, fired)
	assert.Equal(t, 10*time.Second, s.Now())
	assert.Equal(t, 10*time.Second, timer.(*ManualTimer).Due())
}
