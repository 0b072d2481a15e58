package service

import (
	"context"
	"runtime/debug"
	"sync"
	"time"

	"swasthyaflow/pkg/logger"

	"go.uber.org/zap"
)

const defaultBroadcastTimeout = 10 * time.Second

// BroadcastTrigger pushes a fresh summary to an owner's open channels after a mutation.
// Fire returns immediately; failures are logged and never reach the caller.
type BroadcastTrigger struct {
	broadcaster broadcaster
	timeout     time.Duration
	wg          sync.WaitGroup
}

// NewBroadcastTrigger creates a trigger whose broadcasts are bounded by timeout.
func NewBroadcastTrigger(b broadcaster, timeout time.Duration) *BroadcastTrigger {
	if timeout <= 0 {
		timeout = defaultBroadcastTimeout
	}
	return &BroadcastTrigger{broadcaster: b, timeout: timeout}
}

// Fire starts one detached broadcast for ownerID. No retry.
func (t *BroadcastTrigger) Fire(ownerID string) {
	t.wg.Add(1)
	go func() {
		defer t.wg.Done()

		ctx, cancel := context.WithTimeout(context.Background(), t.timeout)
		defer cancel()

		defer func() {
			if r := recover(); r != nil {
				logger.Error("broadcast panicked",
					zap.String("owner", ownerID),
					zap.Any("panic", r),
					zap.ByteString("stack", debug.Stack()))
			}
		}()

		t.broadcaster.Broadcast(ctx, ownerID)
	}()
}

// Wait blocks until in-flight broadcasts finish or ctx is done.
func (t *BroadcastTrigger) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		t.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
