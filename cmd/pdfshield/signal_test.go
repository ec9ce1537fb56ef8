package main

// Notes:
// - notifyContext: OS signal delivery is not exercised; we check that the
//   context starts live, that stop() and the parent both cancel it.

import (
	"context"
	"testing"
)

func TestNotifyContext(t *testing.T) {
	t.Parallel()

	t.Run("live until stopped", func(t *testing.T) {
		t.Parallel()
		ctx, stop := notifyContext(context.Background())

		if ctx.Err() != nil {
			t.Fatalf("context canceled before stop: %v", ctx.Err())
		}
		stop()
		<-ctx.Done()
	})

	t.Run("parent cancellation propagates", func(t *testing.T) {
		t.Parallel()
		parent, cancel := context.WithCancel(context.Background())
		ctx, stop := notifyContext(parent)
		defer stop()

		cancel()
		<-ctx.Done()
		if ctx.Err() != context.Canceled {
			t.Errorf("Err() = %v, want context.Canceled", ctx.Err())
		}
	})
}
