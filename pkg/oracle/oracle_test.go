package oracle

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/repolens/pkg/cache"
	rlerrors "github.com/matzehuels/repolens/pkg/errors"
	"github.com/matzehuels/repolens/pkg/observability"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"bare object", `{"a":1}`, `{"a":1}`},
		{"bare array", ` [1, 2] `, `[1, 2]`},
		{"fenced", "```json\n[{\"name\":\"x\"}]\n```", `[{"name":"x"}]`},
		{"fence without info", "```\n{\"a\":true}\n```", `{"a":true}`},
		{"prose around", `Sure! Here it is: {"a": "b"} Hope that helps.`, `{"a": "b"}`},
		{"braces in strings", `Result: {"a": "x}y{", "b": "[not]"} done`, `{"a": "x}y{", "b": "[not]"}`},
		{"escaped quote", `x {"a": "say \"}\" now"} y`, `{"a": "say \"}\" now"}`},
		{"first valid span", `{broken} then [1,2]`, `[1,2]`},
		{"nested", `text {"a": {"b": [1, {"c": 2}]}} tail`, `{"a": {"b": [1, {"c": 2}]}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestExtractJSONFailures(t *testing.T) {
	for _, raw := range []string{"", "not json at all", "{unterminated", "[1, 2"} {
		_, err := ExtractJSON(raw)
		require.Error(t, err, raw)
		assert.True(t, rlerrors.Is(err, rlerrors.ErrCodeOracleContract), raw)
	}
}

func TestCompleteJSON(t *testing.T) {
	ctx := context.Background()

	ok := Func(func(context.Context, string) (string, error) {
		return "```json\n{\"name\": \"demo\", \"tech\": [\"Go\"]}\n```", nil
	})
	got := CompleteJSON(ctx, ok, "p", nil)
	assert.Equal(t, map[string]any{"name": "demo", "tech": []any{"Go"}}, got)

	fallback := map[string]any{"name": "fallback"}
	garbage := Func(func(context.Context, string) (string, error) { return "I cannot help", nil })
	assert.Equal(t, fallback, CompleteJSON(ctx, garbage, "p", fallback))

	failing := Func(func(context.Context, string) (string, error) { return "", errors.New("down") })
	assert.Equal(t, fallback, CompleteJSON(ctx, failing, "p", fallback))

	null := Func(func(context.Context, string) (string, error) { return "null", nil })
	assert.Equal(t, fallback, CompleteJSON(ctx, null, "p", fallback))
}

func TestCompleteInto(t *testing.T) {
	o := Func(func(context.Context, string) (string, error) {
		return `{"bullets": ["Built it"], "tech": ["Go", "Redis"]}`, nil
	})
	var out struct {
		Bullets []string `json:"bullets"`
		Tech    []string `json:"tech"`
	}
	require.NoError(t, CompleteInto(context.Background(), o, "p", &out))
	assert.Equal(t, []string{"Go", "Redis"}, out.Tech)

	wrongShape := Func(func(context.Context, string) (string, error) { return `[1,2]`, nil })
	err := CompleteInto(context.Background(), wrongShape, "p", &out)
	assert.True(t, rlerrors.Is(err, rlerrors.ErrCodeOracleContract))
}

func TestCachedStoresSuccessOnly(t *testing.T) {
	var calls atomic.Int32
	fail := true
	inner := Func(func(_ context.Context, prompt string) (string, error) {
		calls.Add(1)
		if fail {
			return "", errors.New("transient")
		}
		return "answer to " + prompt, nil
	})
	c := NewCached(inner, cache.NewMemoryStore(), "test:model")
	ctx := context.Background()

	_, err := c.Complete(ctx, "q")
	require.Error(t, err)

	fail = false
	out, err := c.Complete(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, "answer to q", out)

	out, err = c.Complete(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, "answer to q", out)
	assert.Equal(t, int32(2), calls.Load())

	other := NewCached(inner, c.Store, "other:model")
	_, err = other.Complete(ctx, "q")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load(), "namespaces must not share entries")
}

func TestObservedReportsCalls(t *testing.T) {
	counters := &observability.OracleCounters{}
	observability.SetOracleHooks(counters)
	t.Cleanup(observability.Reset)

	o := Observed(Func(func(context.Context, string) (string, error) {
		time.Sleep(time.Millisecond)
		return "ok", nil
	}), "fake")
	_, _ = o.Complete(context.Background(), "p")

	failing := Observed(Func(func(context.Context, string) (string, error) {
		return "", errors.New("boom")
	}), "fake")
	_, _ = failing.Complete(context.Background(), "p")

	calls, failures, _ := counters.Snapshot()
	assert.Equal(t, 2, calls)
	assert.Equal(t, 1, failures)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(context.Background(), Config{Provider: ProviderOpenAI})
	assert.True(t, rlerrors.Is(err, rlerrors.ErrCodeInvalidConfig))

	_, err = New(context.Background(), Config{Provider: "claude", APIKey: "k"})
	assert.True(t, rlerrors.Is(err, rlerrors.ErrCodeUnsupported))

	o, err := New(context.Background(), Config{Provider: ProviderOpenAI, APIKey: "k"})
	require.NoError(t, err)
	assert.NotNil(t, o)
}

func TestRetryingRecoversFromTransportErrors(t *testing.T) {
	var calls atomic.Int32
	flaky := Func(func(context.Context, string) (string, error) {
		if calls.Add(1) < 3 {
			return "", errors.New("503 service unavailable")
		}
		return "ok", nil
	})

	got, err := Retrying(flaky, 2, time.Millisecond).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.EqualValues(t, 3, calls.Load())
}

func TestRetryingGivesUp(t *testing.T) {
	var calls atomic.Int32
	down := Func(func(context.Context, string) (string, error) {
		calls.Add(1)
		return "", errors.New("connection refused")
	})

	_, err := Retrying(down, 2, time.Millisecond).Complete(context.Background(), "p")
	require.Error(t, err)
	assert.EqualError(t, err, "connection refused")
	assert.EqualValues(t, 3, calls.Load())
}

func TestRetryingSkipsContractErrors(t *testing.T) {
	var calls atomic.Int32
	bad := Func(func(context.Context, string) (string, error) {
		calls.Add(1)
		return "", contractError(ProviderOpenAI, "no choices returned")
	})

	_, err := Retrying(bad, 3, time.Millisecond).Complete(context.Background(), "p")
	assert.True(t, rlerrors.Is(err, rlerrors.ErrCodeOracleContract))
	assert.EqualValues(t, 1, calls.Load())
}

func TestRetryingZeroIsIdentity(t *testing.T) {
	o := Func(func(context.Context, string) (string, error) { return "x", nil })
	got, err := Retrying(o, 0, time.Second).Complete(context.Background(), "p")
	require.NoError(t, err)
	assert.Equal(t, "x", got)
}
