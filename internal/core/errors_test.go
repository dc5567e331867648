package core

import (
	"errors"
	"testing"
)

func TestClassifyLLMError(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want error
	}{
		{"status 429", "googleapi: Error 429: quota exceeded", ErrLLMRateLimited},
		{"rate limit text", "openai: rate limit reached for model", ErrLLMRateLimited},
		{"resource exhausted", "rpc error: code = RESOURCE_EXHAUSTED", ErrLLMRateLimited},
		{"refused", "dial tcp 127.0.0.1:443: connection refused", ErrLLMConnection},
		{"bad key", "googleapi: Error 401: invalid API key", ErrLLMConnection},
		{"forbidden", "googleapi: Error 403: forbidden", ErrLLMConnection},
		{"timeout", "context deadline exceeded (Client.Timeout)", ErrLLMConnection},
		{"model error", "model returned malformed candidates", ErrLLMInference},
		{"server error", "googleapi: Error 500: internal error", ErrLLMInference},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := errors.New(tt.raw)
			got := ClassifyLLMError(raw)
			if !errors.Is(got, tt.want) {
				t.Errorf("classified as %v, want %v", got, tt.want)
			}
			// The original provider error stays reachable for logging.
			if !errors.Is(got, raw) {
				t.Errorf("original error lost from chain: %v", got)
			}
		})
	}
}

func TestClassifyLLMError_Nil(t *testing.T) {
	if got := ClassifyLLMError(nil); got != nil {
		t.Errorf("ClassifyLLMError(nil) = %v", got)
	}
}

func TestRetryableLLMError(t *testing.T) {
	if !RetryableLLMError(ClassifyLLMError(errors.New("429 too many requests"))) {
		t.Error("rate-limit errors should be retryable")
	}
	if RetryableLLMError(ClassifyLLMError(errors.New("connection refused"))) {
		t.Error("connection errors should not be retryable")
	}
	if RetryableLLMError(nil) {
		t.Error("nil is not retryable")
	}
}
