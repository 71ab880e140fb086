// engine/errors.go
package engine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// RetryClass indicates whether an error should be retried.
type RetryClass string

const (
	RetryClassRetryable    RetryClass = "retryable"
	RetryClassMaybe        RetryClass = "maybe" // retry with a reduced attempt budget
	RetryClassNonRetryable RetryClass = "non_retryable"
)

// EngineError wraps a provider or tool error with classification
// metadata so the retry layer can decide without re-parsing strings.
type EngineError struct {
	Err         error
	Class       RetryClass
	HTTPStatus  int
	RetryAfter  string // raw Retry-After value when the provider sent one
	IsRateLimit bool
	IsTimeout   bool
	IsNetwork   bool
	IsAuth      bool
	IsQuota     bool
}

func (e *EngineError) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	return fmt.Sprintf("engine error: %s", e.Class)
}

func (e *EngineError) Unwrap() error { return e.Err }

func NewEngineError(err error, class RetryClass) *EngineError {
	return &EngineError{Err: err, Class: class}
}

// classRule maps message substrings to a retry class. Rules are checked
// in order; the first hit wins.
type classRule struct {
	class    RetryClass
	patterns []string
}

var llmClassRules = []classRule{
	{RetryClassRetryable, []string{
		"429", "rate limit", "too many requests",
	}},
	{RetryClassRetryable, []string{
		"500", "502", "503", "504",
		"internal server error", "bad gateway", "service unavailable", "gateway timeout",
	}},
	// "deadline exceeded" must be checked before the generic timeout
	// patterns below claim it.
	{RetryClassMaybe, []string{
		"context deadline exceeded", "deadline exceeded",
	}},
	{RetryClassRetryable, []string{
		"timeout", "connection reset", "connection refused",
		"no such host", "network", "dns", "temporary failure",
	}},
	// Context overflow may clear up once history is compressed.
	{RetryClassMaybe, []string{
		"context length", "token limit", "maximum context length",
	}},
	{RetryClassNonRetryable, []string{
		"401", "403", "unauthorized", "forbidden",
		"invalid api key", "authentication failed",
	}},
	{RetryClassNonRetryable, []string{
		"400", "bad request", "invalid request", "malformed",
	}},
	{RetryClassNonRetryable, []string{
		"402", "quota", "billing", "payment required",
	}},
	{RetryClassNonRetryable, []string{
		"content filter", "safety", "policy violation",
	}},
}

var toolClassRules = []classRule{
	{RetryClassRetryable, []string{
		"timeout", "connection reset", "connection refused",
		"network", "temporary failure", "temporarily unavailable",
	}},
	{RetryClassRetryable, []string{
		"500", "502", "503", "504",
		"internal server error", "service unavailable",
	}},
	{RetryClassNonRetryable, []string{
		"not found", "invalid input", "invalid arguments", "permission denied",
	}},
}

func classify(err error, rules []classRule) RetryClass {
	errStr := strings.ToLower(err.Error())
	for _, rule := range rules {
		for _, p := range rule.patterns {
			if strings.Contains(errStr, p) {
				return rule.class
			}
		}
	}
	// Unknown errors are not retried.
	return RetryClassNonRetryable
}

// ClassifyLLMError classifies an error from an LLM provider call.
func ClassifyLLMError(err error) RetryClass {
	if err == nil {
		return RetryClassNonRetryable
	}
	var engineErr *EngineError
	if errors.As(err, &engineErr) {
		return engineErr.Class
	}
	return classify(err, llmClassRules)
}

// ClassifyToolError classifies an error from a tool call. Tools that
// declare themselves non-retryable are never retried regardless of the
// failure mode.
func ClassifyToolError(err error, toolRetryable bool) RetryClass {
	if err == nil || !toolRetryable {
		return RetryClassNonRetryable
	}
	return classify(err, toolClassRules)
}

// ExtractRetryAfter returns the provider-requested backoff, or 0 when
// the error carries none.
func ExtractRetryAfter(err error) time.Duration {
	var engineErr *EngineError
	if errors.As(err, &engineErr) && engineErr.RetryAfter != "" {
		var seconds int
		if _, scanErr := fmt.Sscanf(engineErr.RetryAfter, "%d", &seconds); scanErr == nil {
			return time.Duration(seconds) * time.Second
		}
		if t, parseErr := time.Parse(time.RFC1123, engineErr.RetryAfter); parseErr == nil {
			if d := time.Until(t); d > 0 {
				return d
			}
		}
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "retry after") {
		var seconds int
		if _, scanErr := fmt.Sscanf(errStr, "retry after %d", &seconds); scanErr == nil {
			return time.Duration(seconds) * time.Second
		}
	}
	return 0
}

// WrapLLMError attaches classification metadata to a provider error.
func WrapLLMError(err error, httpStatus int, retryAfter string) error {
	if err == nil {
		return nil
	}
	return &EngineError{
		Err:         err,
		Class:       ClassifyLLMError(err),
		HTTPStatus:  httpStatus,
		RetryAfter:  retryAfter,
		IsRateLimit: httpStatus == http.StatusTooManyRequests,
		IsTimeout:   httpStatus == http.StatusGatewayTimeout || httpStatus == http.StatusRequestTimeout,
		IsNetwork:   httpStatus == 0 || httpStatus >= 500,
		IsAuth:      httpStatus == http.StatusUnauthorized || httpStatus == http.StatusForbidden,
		IsQuota:     httpStatus == http.StatusPaymentRequired,
	}
}

// WrapToolError attaches classification metadata to a tool error.
func WrapToolError(err error, toolRetryable bool) error {
	if err == nil {
		return nil
	}
	return &EngineError{Err: err, Class: ClassifyToolError(err, toolRetryable)}
}

// RetryExhaustedError reports that every allowed attempt failed.
type RetryExhaustedError struct {
	Err         error
	Attempts    int
	MaxAttempts int
	IsGuarded   bool // "maybe" class errors run with a reduced budget
}

func (e *RetryExhaustedError) Error() string {
	if e.IsGuarded {
		return fmt.Sprintf("guarded retries exhausted after %d attempts: %v", e.Attempts, e.Err)
	}
	return fmt.Sprintf("retries exhausted after %d attempts: %v", e.Attempts, e.Err)
}

func (e *RetryExhaustedError) Unwrap() error { return e.Err }

func NewRetryExhaustedError(err error, attempts, maxAttempts int, isGuarded bool) *RetryExhaustedError {
	return &RetryExhaustedError{Err: err, Attempts: attempts, MaxAttempts: maxAttempts, IsGuarded: isGuarded}
}

func IsRetryExhausted(err error) bool {
	var exhausted *RetryExhaustedError
	return errors.As(err, &exhausted)
}

// ToolValidationError reports tool arguments that failed schema
// validation. It is returned before the tool runs.
type ToolValidationError struct {
	ToolName string
	Errors   []string
}

func (e *ToolValidationError) Error() string {
	return fmt.Sprintf("tool %s validation failed: %s", e.ToolName, strings.Join(e.Errors, "; "))
}

// EngineContextError tags an error with where in the turn it happened.
type EngineContextError struct {
	Err       error
	Node      NodeID
	ToolName  string
	Operation string // "llm_call", "tool_execution", "compression", ...
}

func (e *EngineContextError) Error() string {
	if e.ToolName != "" {
		return fmt.Sprintf("[node=%s op=%s tool=%s] %v", e.Node, e.Operation, e.ToolName, e.Err)
	}
	return fmt.Sprintf("[node=%s op=%s] %v", e.Node, e.Operation, e.Err)
}

func (e *EngineContextError) Unwrap() error { return e.Err }

func WrapWithContext(err error, node NodeID, operation string, toolName string) error {
	if err == nil {
		return nil
	}
	return &EngineContextError{Err: err, Node: node, ToolName: toolName, Operation: operation}
}
