package testutil

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeterministicClock_Sequence(t *testing.T) {
	clock := NewDeterministicClock()
	assert.Equal(t, int64(0), clock.Current())

	assert.Equal(t, int64(1), clock.Next())
	assert.Equal(t, int64(2), clock.Next())
	assert.Equal(t, int64(2), clock.Current())
}

func TestDeterministicClock_Reset(t *testing.T) {
	clock := NewDeterministicClock()
	clock.Next()
	clock.Next()

	clock.Reset()
	assert.Equal(t, int64(0), clock.Current())
	assert.Equal(t, int64(1), clock.Next())
}

func TestDeterministicClock_At(t *testing.T) {
	clock := NewDeterministicClockAt(41)
	assert.Equal(t, int64(42), clock.Next())
}

func TestDeterministicClock_Concurrent(t *testing.T) {
	clock := NewDeterministicClock()

	const workers = 8
	const perWorker = 100
	seen := make(chan int64, workers*perWorker)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				seen <- clock.Next()
			}
		}()
	}
	wg.Wait()
	close(seen)

	unique := make(map[int64]bool)
	for v := range seen {
		require.False(t, unique[v], "duplicate seq %d", v)
		unique[v] = true
	}
	assert.Len(t, unique, workers*perWorker)
	assert.Equal(t, int64(workers*perWorker), clock.Current())
}
