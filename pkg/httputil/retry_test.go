package httputil

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestRetryRecoversFromTransientError(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		if calls < 3 {
			return &RetryableError{Err: errors.New("connection reset")}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestRetryFailsFastOnPermanentError(t *testing.T) {
	permanent := errors.New("unauthorized")
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Errorf("Retry = %v, want %v", err, permanent)
	}
	if calls != 1 {
		t.Errorf("fn called %d times, want 1", calls)
	}
}

func TestRetryExhaustsAttempts(t *testing.T) {
	transient := errors.New("timeout")
	calls := 0
	err := Retry(context.Background(), 3, time.Millisecond, func() error {
		calls++
		return &RetryableError{Err: transient}
	})
	if !errors.Is(err, transient) {
		t.Errorf("Retry = %v, want wrapped %v", err, transient)
	}
	if calls != 3 {
		t.Errorf("fn called %d times, want 3", calls)
	}
}

func TestRetryHonorsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Retry(ctx, 3, time.Minute, func() error {
		return &RetryableError{Err: errors.New("timeout")}
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry = %v, want context.Canceled", err)
	}
}
