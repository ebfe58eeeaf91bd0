package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidRepository, "missing owner for %s", "demo")

	if err.Code != ErrCodeInvalidRepository {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidRepository)
	}

	if err.Message != "missing owner for demo" {
		t.Errorf("Message = %v, want %v", err.Message, "missing owner for demo")
	}

	expected := "INVALID_REPOSITORY: missing owner for demo"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrCodeTransientFetch, cause, "readme for %s", "octo/demo")

	if err.Code != ErrCodeTransientFetch {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeTransientFetch)
	}

	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v, want %v", errors.Unwrap(err), cause)
	}

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}

	want := "TRANSIENT_FETCH: readme for octo/demo: connection reset"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeOracleContract, "test"),
			code:     ErrCodeOracleContract,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeOracleContract, "test"),
			code:     ErrCodeNetwork,
			expected: false,
		},
		{
			name:     "outer code wins",
			err:      Wrap(ErrCodeTransientFetch, New(ErrCodeNetwork, "inner"), "outer"),
			code:     ErrCodeTransientFetch,
			expected: true,
		},
		{
			name:     "fmt wrapped",
			err:      fmt.Errorf("build: %w", New(ErrCodeMalformedManifest, "bad toml")),
			code:     ErrCodeMalformedManifest,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"Error type", New(ErrCodeMalformedManifest, "test"), ErrCodeMalformedManifest},
		{"plain error", errors.New("plain"), ""},
		{"nil", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"Error type", New(ErrCodeInvalidInput, "friendly message"), "friendly message"},
		{"plain error", errors.New("plain error"), "plain error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserMessage(tt.err); got != tt.expected {
				t.Errorf("UserMessage() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSkippable(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{New(ErrCodeTransientFetch, "x"), true},
		{New(ErrCodeMalformedManifest, "x"), true},
		{New(ErrCodeOracleContract, "x"), true},
		{New(ErrCodeInvalidRepository, "x"), true},
		{New(ErrCodeInvalidConfig, "x"), false},
		{errors.New("plain"), false},
	}

	for _, tt := range tests {
		if got := Skippable(tt.err); got != tt.want {
			t.Errorf("Skippable(%v) = %v, want %v", tt.err, got, tt.want)
		}
	}
}

func TestRateLimitedError(t *testing.T) {
	err := &RateLimitedError{RetryAfter: 30}
	if err.Error() != "rate limited: retry after 30 seconds" {
		t.Errorf("Error() = %q", err.Error())
	}
	if err.Code() != ErrCodeRateLimited {
		t.Errorf("Code() = %v", err.Code())
	}
	if (&RateLimitedError{}).Error() != "rate limited" {
		t.Errorf("bare Error() = %q", (&RateLimitedError{}).Error())
	}
}
