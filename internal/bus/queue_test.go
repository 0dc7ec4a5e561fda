package bus

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueueTryPublishFullReturnsErr(t *testing.T) {
	q := NewQueue(1)
	require.NoError(t, q.TryPublish(Event{}))
	assert.ErrorIs(t, q.TryPublish(Event{}), ErrQueueFull)
}

func TestQueueTryPublishAfterCloseReturnsErr(t *testing.T) {
	q := NewQueue(1)
	q.Close()
	assert.ErrorIs(t, q.TryPublish(Event{}), ErrQueueClosed)
}

func TestQueueRunDeliversEventsUntilClosed(t *testing.T) {
	q := NewQueue(4)
	require.NoError(t, q.TryPublish(Event{}))
	require.NoError(t, q.TryPublish(Event{}))
	q.Close()

	var mu sync.Mutex
	count := 0
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	q.Run(ctx, func(Event) {
		mu.Lock()
		count++
		mu.Unlock()
	})

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, count)
}

func TestQueueRunStopsOnContextCancel(t *testing.T) {
	q := NewQueue(4)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	done := make(chan struct{})
	go func() {
		q.Run(ctx, func(Event) {})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not stop on context cancel")
	}
}
