package engine

import (
	"errors"
	"testing"
	"time"
)

func TestClassifyLLMError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want RetryClass
	}{
		{"nil", nil, RetryClassNonRetryable},
		{"rate limit", errors.New("429 too many requests"), RetryClassRetryable},
		{"server error", errors.New("503 service unavailable"), RetryClassRetryable},
		{"connection reset", errors.New("read tcp: connection reset by peer"), RetryClassRetryable},
		{"deadline", errors.New("context deadline exceeded"), RetryClassMaybe},
		{"context overflow", errors.New("maximum context length exceeded"), RetryClassMaybe},
		{"auth", errors.New("401 unauthorized"), RetryClassNonRetryable},
		{"bad request", errors.New("400 bad request"), RetryClassNonRetryable},
		{"unknown", errors.New("boom"), RetryClassNonRetryable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyLLMError(tt.err); got != tt.want {
				t.Errorf("ClassifyLLMError(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestClassifyLLMErrorHonorsWrappedClass(t *testing.T) {
	err := NewEngineError(errors.New("looks like 503 service unavailable"), RetryClassNonRetryable)
	if got := ClassifyLLMError(err); got != RetryClassNonRetryable {
		t.Errorf("wrapped class must win over message patterns, got %s", got)
	}
}

func TestClassifyToolError(t *testing.T) {
	transient := errors.New("connection refused")
	if got := ClassifyToolError(transient, true); got != RetryClassRetryable {
		t.Errorf("retryable tool with transient error = %s, want retryable", got)
	}
	if got := ClassifyToolError(transient, false); got != RetryClassNonRetryable {
		t.Errorf("non-retryable tool must never retry, got %s", got)
	}
	if got := ClassifyToolError(errors.New("invalid arguments"), true); got != RetryClassNonRetryable {
		t.Errorf("deterministic failure = %s, want non_retryable", got)
	}
}

func TestExtractRetryAfterSources(t *testing.T) {
	wrapped := WrapLLMError(errors.New("429 too many requests"), 429, "7")
	if got := ExtractRetryAfter(wrapped); got != 7*time.Second {
		t.Errorf("Retry-After seconds = %v, want 7s", got)
	}

	if got := ExtractRetryAfter(errors.New("retry after 3 seconds")); got != 3*time.Second {
		t.Errorf("message pattern = %v, want 3s", got)
	}

	if got := ExtractRetryAfter(errors.New("boom")); got != 0 {
		t.Errorf("no hint = %v, want 0", got)
	}
}

func TestRetryExhaustedErrorUnwraps(t *testing.T) {
	base := errors.New("503 service unavailable")
	err := NewRetryExhaustedError(base, 3, 3, false)
	if !IsRetryExhausted(err) {
		t.Error("IsRetryExhausted must match")
	}
	if !errors.Is(err, base) {
		t.Error("must unwrap to the original error")
	}
}
