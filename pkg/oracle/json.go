package oracle

import (
	"context"
	"encoding/json"
	"strings"

	rlerrors "github.com/matzehuels/repolens/pkg/errors"
	"github.com/matzehuels/repolens/pkg/observability"
)

// ExtractJSON returns the JSON payload of an oracle response. It accepts
// bare JSON, JSON inside a Markdown code fence, and JSON surrounded by prose,
// in which case the first balanced object or array that is valid JSON wins.
// Braces inside string literals are not counted.
func ExtractJSON(raw string) ([]byte, error) {
	s := stripCodeFences(raw)
	if s != "" && json.Valid([]byte(s)) {
		return []byte(s), nil
	}
	for i := 0; i < len(s); i++ {
		if s[i] != '{' && s[i] != '[' {
			continue
		}
		end := balancedEnd(s, i)
		if end < 0 {
			continue
		}
		if span := s[i : end+1]; json.Valid([]byte(span)) {
			return []byte(span), nil
		}
	}
	return nil, rlerrors.New(rlerrors.ErrCodeOracleContract, "no JSON value in response")
}

// Unmarshal extracts the JSON payload of raw and decodes it into v.
func Unmarshal(raw string, v any) error {
	data, err := ExtractJSON(raw)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return rlerrors.Wrap(rlerrors.ErrCodeOracleContract, err, "unexpected JSON shape")
	}
	return nil
}

// CompleteInto asks o and decodes the JSON answer into v.
func CompleteInto(ctx context.Context, o Oracle, prompt string, v any) error {
	raw, err := o.Complete(ctx, prompt)
	if err != nil {
		return err
	}
	return Unmarshal(raw, v)
}

// CompleteJSON asks o and returns the decoded JSON answer as generic values
// (map[string]any, []any, ...). Any failure yields fallback.
func CompleteJSON(ctx context.Context, o Oracle, prompt string, fallback any) any {
	var out any
	if err := CompleteInto(ctx, o, prompt, &out); err != nil || out == nil {
		reason := "null response"
		if err != nil {
			reason = err.Error()
		}
		observability.Oracle().OnFallback(ctx, "json", reason)
		return fallback
	}
	return out
}

// stripCodeFences returns the body of the first ``` fence, or s trimmed.
func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	body := s[start+3:]
	// Drop the info string (```json).
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	} else {
		return s
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// balancedEnd returns the index of the bracket closing s[start], or -1.
func balancedEnd(s string, start int) int {
	var stack []byte
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		c := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != c {
				return -1
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i
			}
		}
	}
	return -1
}
