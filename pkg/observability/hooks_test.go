package observability

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	f := NoopFingerprintHooks{}
	f.OnBuildStart(ctx, "octo/demo")
	f.OnStage(ctx, "octo/demo", "FETCHING_METADATA")
	f.OnBuildComplete(ctx, "octo/demo", false, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "fingerprint")
	c.OnCacheMiss(ctx, "score")
	c.OnCacheSet(ctx, "summary", 1024)

	o := NoopOracleHooks{}
	o.OnOracleCall(ctx, "gemini", 10, 20, time.Second, nil)
	o.OnFallback(ctx, "score", "not json")

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.github.com", "/repos/octo/demo")
	h.OnResponse(ctx, "GET", "api.github.com", "/repos/octo/demo", 200, time.Second)
	h.OnError(ctx, "GET", "api.github.com", "/repos/octo/demo", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()

	if _, ok := Fingerprint().(NoopFingerprintHooks); !ok {
		t.Error("Fingerprint() should return NoopFingerprintHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Oracle().(NoopOracleHooks); !ok {
		t.Error("Oracle() should return NoopOracleHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customFP := &testFingerprintHooks{}
	SetFingerprintHooks(customFP)
	if Fingerprint() != customFP {
		t.Error("SetFingerprintHooks should set custom hooks")
	}

	customCache := NewCacheCounters()
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customOracle := &OracleCounters{}
	SetOracleHooks(customOracle)
	if Oracle() != customOracle {
		t.Error("SetOracleHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Reset() should restore NoopCacheHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testFingerprintHooks{}
	SetFingerprintHooks(custom)
	SetFingerprintHooks(nil)

	if Fingerprint() != custom {
		t.Error("SetFingerprintHooks(nil) should be ignored")
	}
}

func TestCacheCounters(t *testing.T) {
	ctx := context.Background()
	c := NewCacheCounters()

	c.OnCacheHit(ctx, "score")
	c.OnCacheHit(ctx, "score")
	c.OnCacheMiss(ctx, "score")
	c.OnCacheMiss(ctx, "fingerprint")
	c.OnCacheSet(ctx, "fingerprint", 10)

	if c.Hits("score") != 2 {
		t.Errorf("Hits(score) = %d, want 2", c.Hits("score"))
	}
	if c.Misses("fingerprint") != 1 {
		t.Errorf("Misses(fingerprint) = %d, want 1", c.Misses("fingerprint"))
	}
	if c.Sets("fingerprint") != 1 {
		t.Errorf("Sets(fingerprint) = %d, want 1", c.Sets("fingerprint"))
	}
	hits, misses := c.Totals()
	if hits != 2 || misses != 2 {
		t.Errorf("Totals() = %d, %d; want 2, 2", hits, misses)
	}
}

func TestOracleCounters(t *testing.T) {
	ctx := context.Background()
	o := &OracleCounters{}

	o.OnOracleCall(ctx, "openai", 1, 1, time.Millisecond, nil)
	o.OnOracleCall(ctx, "openai", 1, 0, time.Millisecond, errors.New("500"))
	o.OnFallback(ctx, "score", "wrong length")

	calls, failures, fallbacks := o.Snapshot()
	if calls != 2 || failures != 1 || fallbacks != 1 {
		t.Errorf("Snapshot() = %d, %d, %d; want 2, 1, 1", calls, failures, fallbacks)
	}
}

type testFingerprintHooks struct{ NoopFingerprintHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
