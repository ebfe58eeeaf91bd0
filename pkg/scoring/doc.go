// Package scoring rates fingerprints against a requirement document with
// as few oracle calls as the cache allows.
//
// Fingerprints are split into contiguous chunks of [Scorer.BatchSize]. Each
// item is cached under (document digest, fingerprint digest); only the
// misses of a chunk are sent, together, in one oracle request. A response
// that does not decode to one object per requested repository is replaced
// by zero-score fallbacks, never by an error, and every new result is cached
// before the next chunk starts.
//
// Scoring N fingerprints therefore costs at most ceil(N/BatchSize) oracle
// calls, and none when every item is cached.
package scoring
