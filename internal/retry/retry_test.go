package retry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/charlie-charlie-san/uiux-job-radar/internal/model"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// mockCompleter calls a function on each invocation, tracking call count.
type mockCompleter struct {
	calls int
	fn    func(attempt int) (string, error)
}

func (m *mockCompleter) Complete(_ context.Context, _ string) (string, error) {
	m.calls++
	return m.fn(m.calls)
}

func TestRetry_SucceedsOnFirstAttempt(t *testing.T) {
	mock := &mockCompleter{fn: func(_ int) (string, error) {
		return "ok", nil
	}}

	rp := NewRetryProvider(mock, 2, 10*time.Millisecond, discardLogger())
	got, err := rp.Complete(context.Background(), "p")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "ok" {
		t.Fatalf("got %q", got)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn5xx_SucceedsOnSecondAttempt(t *testing.T) {
	mock := &mockCompleter{fn: func(attempt int) (string, error) {
		if attempt == 1 {
			return "", &model.HTTPError{StatusCode: 503, Err: errors.New("service unavailable")}
		}
		return "ok", nil
	}}

	rp := NewRetryProvider(mock, 2, 10*time.Millisecond, discardLogger())
	if _, err := rp.Complete(context.Background(), "p"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", mock.calls)
	}
}

func TestRetry_RetriesOn429WithRetryAfter(t *testing.T) {
	mock := &mockCompleter{fn: func(attempt int) (string, error) {
		if attempt == 1 {
			return "", &model.HTTPError{StatusCode: 429, RetryAfter: 20 * time.Millisecond}
		}
		return "ok", nil
	}}

	rp := NewRetryProvider(mock, 1, time.Hour, discardLogger())
	start := time.Now()
	if _, err := rp.Complete(context.Background(), "p"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Since(start) > 10*time.Second {
		t.Fatal("Retry-After should override the base delay")
	}
}

func TestRetry_DoesNotRetryOn4xx(t *testing.T) {
	mock := &mockCompleter{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 401, Err: errors.New("unauthorized")}
	}}

	rp := NewRetryProvider(mock, 2, 10*time.Millisecond, discardLogger())
	_, err := rp.Complete(context.Background(), "p")
	var httpErr *model.HTTPError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 401 {
		t.Fatalf("expected HTTPError with status 401, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call (no retry), got %d", mock.calls)
	}
}

func TestRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &mockCompleter{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	rp := NewRetryProvider(mock, 2, 10*time.Millisecond, discardLogger())
	if _, err := rp.Complete(context.Background(), "p"); err == nil {
		t.Fatal("expected error after max retries, got nil")
	}
	// 1 initial + 2 retries = 3
	if mock.calls != 3 {
		t.Fatalf("expected 3 calls (1 + 2 retries), got %d", mock.calls)
	}
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	mock := &mockCompleter{fn: func(_ int) (string, error) {
		return "", &model.HTTPError{StatusCode: 500, Err: errors.New("internal error")}
	}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rp := NewRetryProvider(mock, 2, time.Second, discardLogger())
	_, err := rp.Complete(ctx, "p")
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if mock.calls != 1 {
		t.Fatalf("expected 1 call before cancellation, got %d", mock.calls)
	}
}

func TestIsRetryable(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"network", errors.New("connection reset"), true},
		{"deadline", context.DeadlineExceeded, false},
		{"429", &model.HTTPError{StatusCode: 429}, true},
		{"502", &model.HTTPError{StatusCode: 502}, true},
		{"400", &model.HTTPError{StatusCode: 400}, false},
	}
	for _, tt := range tests {
		if got := isRetryable(tt.err); got != tt.want {
			t.Errorf("%s: isRetryable = %v, want %v", tt.name, got, tt.want)
		}
	}
}
