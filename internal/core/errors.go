package core

import (
	"errors"
	"strings"
)

// LLM failures, matched with errors.Is at the task boundary.
var (
	// ErrLLMRateLimited means the provider throttled us; back off and retry.
	ErrLLMRateLimited = errors.New("llm rate limited")
	// ErrLLMConnection means the provider is unreachable or rejected the
	// credentials; retrying without user action is unlikely to help.
	ErrLLMConnection = errors.New("llm connection failed")
	// ErrLLMInference covers everything else the provider can do wrong.
	ErrLLMInference = errors.New("llm inference failed")
)

// Vector store failures.
var (
	ErrVectorConnection = errors.New("vector store connection failed")
	ErrVectorQuery      = errors.New("vector store query failed")
	ErrVectorStore      = errors.New("vector store operation failed")
)

// ClassifyLLMError wraps a raw provider error with the matching sentinel.
// Provider SDKs expose failures as opaque error strings, so classification
// is by status-code substring.
func ClassifyLLMError(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "rate limit"),
		strings.Contains(msg, "too many requests"),
		strings.Contains(msg, "resource_exhausted"):
		return errors.Join(ErrLLMRateLimited, err)
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "401"),
		strings.Contains(msg, "403"),
		strings.Contains(msg, "unauthorized"),
		strings.Contains(msg, "api key"),
		strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"):
		return errors.Join(ErrLLMConnection, err)
	default:
		return errors.Join(ErrLLMInference, err)
	}
}

// RetryableLLMError reports whether a backoff-and-retry is worth attempting.
func RetryableLLMError(err error) bool {
	return errors.Is(err, ErrLLMRateLimited)
}
