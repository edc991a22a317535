package retry

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"
)

func TestDoWithoutRetriesRunsOnce(t *testing.T) {
	calls := 0
	err := Do(context.Background(), None, func() error {
		calls++
		return &HTTPError{StatusCode: http.StatusServiceUnavailable}
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("expected single attempt, got %d", calls)
	}
}

func TestDoRetriesRetryableErrors(t *testing.T) {
	calls := 0
	var retried []int
	opts := Options{
		MaxRetries: 3,
		BaseDelay:  time.Millisecond,
		MaxDelay:   2 * time.Millisecond,
		OnRetry:    func(attempt int, err error, wait time.Duration) { retried = append(retried, attempt) },
	}
	err := Do(context.Background(), opts, func() error {
		calls++
		if calls < 3 {
			return &HTTPError{StatusCode: http.StatusBadGateway}
		}
		return nil
	})
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
	if len(retried) != 2 || retried[0] != 1 || retried[1] != 2 {
		t.Fatalf("expected OnRetry for attempts 1,2, got %v", retried)
	}
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("boom")
	err := Do(context.Background(), Options{MaxRetries: 5, BaseDelay: time.Millisecond}, func() error {
		calls++
		return permanent
	})
	if !errors.Is(err, permanent) {
		t.Fatalf("expected permanent error, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected no retry, got %d calls", calls)
	}

	calls = 0
	_ = Do(context.Background(), Options{MaxRetries: 5, BaseDelay: time.Millisecond}, func() error {
		calls++
		return &HTTPError{StatusCode: http.StatusNotFound}
	})
	if calls != 1 {
		t.Fatalf("expected 404 not retried, got %d calls", calls)
	}
}

func TestDoHonorsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0
	err := Do(ctx, Options{MaxRetries: 2}, func() error {
		calls++
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 0 {
		t.Fatalf("expected no attempt, got %d", calls)
	}
}

func TestParseRetryAfter(t *testing.T) {
	if got := ParseRetryAfter("3"); got != 3*time.Second {
		t.Fatalf("expected 3s, got %v", got)
	}
	if got := ParseRetryAfter(""); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
	if got := ParseRetryAfter("garbage"); got != 0 {
		t.Fatalf("expected 0 for garbage, got %v", got)
	}
	future := time.Now().Add(10 * time.Second).UTC().Format(http.TimeFormat)
	if got := ParseRetryAfter(future); got <= 0 || got > 11*time.Second {
		t.Fatalf("expected ~10s for http date, got %v", got)
	}
}

func TestFullJitterSleepBounds(t *testing.T) {
	for attempt := 0; attempt < 6; attempt++ {
		d := FullJitterSleep(attempt, 10*time.Millisecond, 40*time.Millisecond)
		if d < 0 || d > 40*time.Millisecond {
			t.Fatalf("attempt %d: sleep %v out of bounds", attempt, d)
		}
	}
	if FullJitterSleep(1, 0, time.Second) != 0 {
		t.Fatalf("expected zero sleep for zero base delay")
	}
}

func TestHTTPErrorMessage(t *testing.T) {
	if got := (&HTTPError{StatusCode: 503}).Error(); got != "http error (503)" {
		t.Fatalf("unexpected message %q", got)
	}
	if !IsRetryable(&HTTPError{StatusCode: 429}) || IsRetryable(nil) {
		t.Fatalf("unexpected retryable classification")
	}
}
