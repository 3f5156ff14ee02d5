package engine

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func named(name string) task {
	return task{name: name, run: func() {}}
}

func TestTaskQueue_FIFO(t *testing.T) {
	q := newTaskQueue()
	for _, n := range []string{"A", "B", "C"} {
		require.True(t, q.Enqueue(named(n)))
	}
	assert.Equal(t, 3, q.Len())

	for _, want := range []string{"A", "B", "C"} {
		got, ok := q.TryDequeue()
		require.True(t, ok)
		assert.Equal(t, want, got.name)
	}
	_, ok := q.TryDequeue()
	assert.False(t, ok)
}

func TestTaskQueue_SignalCoalesces(t *testing.T) {
	q := newTaskQueue()
	q.Enqueue(named("A"))
	q.Enqueue(named("B"))

	select {
	case <-q.Wait():
	default:
		t.Fatal("expected a signal")
	}
	select {
	case <-q.Wait():
		t.Fatal("signals should coalesce")
	default:
	}
	assert.Equal(t, 2, q.Len())
}

func TestTaskQueue_Close(t *testing.T) {
	q := newTaskQueue()
	q.Enqueue(named("A"))
	q.Close()
	q.Close()

	assert.False(t, q.Enqueue(named("B")), "closed queue rejects tasks")
	assert.False(t, q.Drained(), "queued work survives close")

	_, ok := q.TryDequeue()
	require.True(t, ok)
	assert.True(t, q.Drained())

	select {
	case <-q.Wait():
	case <-time.After(time.Second):
		t.Fatal("closed queue should wake waiters")
	}
}

func TestTaskQueue_ConcurrentEnqueue(t *testing.T) {
	q := newTaskQueue()
	const producers = 10
	const perProducer = 100

	var wg sync.WaitGroup
	for range producers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perProducer {
				q.Enqueue(named("x"))
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, producers*perProducer, q.Len())
}
