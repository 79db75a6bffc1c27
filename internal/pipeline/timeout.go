package pipeline

import (
	"context"
	"fmt"
	"time"
)

// raceWithTimeout runs call in its own goroutine and waits for it, the
// timeout, or ctx, whichever comes first. On timeout or cancellation the
// fallback is returned with the context error. The context passed to call is
// cancelled at that point so cooperative transports abort; a call that
// ignores its context keeps running until it returns and its result is
// discarded.
func raceWithTimeout[T any](ctx context.Context, timeout time.Duration, fallback T, call func(context.Context) T) (T, error) {
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		value T
		err   error
	}
	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- outcome{value: fallback, err: fmt.Errorf("source panicked: %v", r)}
			}
		}()
		done <- outcome{value: call(callCtx)}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return fallback, out.err
		}
		// A result that arrives after the deadline was cut short.
		if err := callCtx.Err(); err != nil {
			return fallback, err
		}
		return out.value, nil
	case <-callCtx.Done():
		return fallback, callCtx.Err()
	}
}
