package remote

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/planloop/planloop/internal/dto"
)

func newTestSubscription(onUpdate func(UpdateBatch)) *subscription {
	ctx, cancel := context.WithCancel(context.Background())
	return &subscription{
		userID:       "me",
		onUpdate:     onUpdate,
		ctx:          ctx,
		cancel:       cancel,
		watchCancels: map[string]context.CancelFunc{},
	}
}

func TestDeliverInvokesCallback(t *testing.T) {
	var got UpdateBatch
	s := newTestSubscription(func(b UpdateBatch) { got = b })

	s.deliver(UpdateBatch{"TodoItem": {dto.DTO{"uid": "t1"}}})

	require.NotNil(t, got)
	require.Len(t, got["TodoItem"], 1)
}

func TestNoCallbackAfterCancel(t *testing.T) {
	var calls atomic.Int64
	s := newTestSubscription(func(UpdateBatch) { calls.Add(1) })

	s.deliver(UpdateBatch{"TodoItem": {dto.DTO{"uid": "t1"}}})
	require.Equal(t, int64(1), calls.Load())

	s.cancelAll()

	s.deliver(UpdateBatch{"TodoItem": {dto.DTO{"uid": "t2"}}})
	require.Equal(t, int64(1), calls.Load(), "deliveries after cancel are dropped")
}

func TestCancelAllWaitsForWatchers(t *testing.T) {
	var running atomic.Bool
	var lateCall atomic.Bool

	s := newTestSubscription(nil)
	s.onUpdate = func(UpdateBatch) {
		if !running.Load() {
			lateCall.Store(true)
		}
	}

	running.Store(true)

	// simulate snapshot listeners racing deliveries against cancellation
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		s.wg.Add(1)
		wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer wg.Done()
			for {
				select {
				case <-s.ctx.Done():
					return
				default:
					s.deliver(UpdateBatch{"TodoItem": {dto.DTO{"uid": "t"}}})
				}
			}
		}()
	}

	s.cancelAll()
	running.Store(false)

	wg.Wait()
	require.False(t, lateCall.Load(), "no callback may fire once cancelAll has returned")
}
