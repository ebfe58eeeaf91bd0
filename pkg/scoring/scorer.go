package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/repolens/pkg/cache"
	rlerrors "github.com/matzehuels/repolens/pkg/errors"
	"github.com/matzehuels/repolens/pkg/fingerprint"
	"github.com/matzehuels/repolens/pkg/observability"
	"github.com/matzehuels/repolens/pkg/oracle"
)

// DefaultBatchSize is the number of fingerprints per oracle request.
const DefaultBatchSize = 5

// Scorer rates fingerprints against a document.
type Scorer struct {
	Oracle oracle.Oracle
	Store  *cache.Store
	Logger *log.Logger

	// BatchSize bounds fingerprints per oracle request.
	BatchSize int

	// Concurrency bounds chunks in flight.
	Concurrency int

	// Delay is the minimum spacing between oracle calls.
	Delay time.Duration
}

// NewScorer returns a Scorer with default batch size and sequential chunks.
func NewScorer(o oracle.Oracle, store *cache.Store) *Scorer {
	if store == nil {
		store = cache.NewStore(nil, cache.StoreOptions{})
	}
	return &Scorer{
		Oracle:      o,
		Store:       store,
		Logger:      log.NewWithOptions(io.Discard, log.Options{}),
		BatchSize:   DefaultBatchSize,
		Concurrency: 1,
	}
}

// Key returns the cache key of the score of fp against the document with
// digest docHash.
func Key(docHash string, fp *fingerprint.Fingerprint) string {
	return cache.Key(cache.CategoryScore, docHash, fp.Hash())
}

// ScoreBatch scores fps against document and returns one project per
// fingerprint, sorted by descending score. Equal scores keep input order.
//
// Oracle failures never surface as errors: affected items get fallback
// projects. The error is non-nil only when ctx is cancelled; projects of
// chunks completed before cancellation are still returned.
func (s *Scorer) ScoreBatch(ctx context.Context, document string, fps []*fingerprint.Fingerprint) ([]ScoredProject, error) {
	size := max(s.BatchSize, 1)
	docHash := cache.HashString(document)

	var chunks [][]*fingerprint.Fingerprint
	for start := 0; start < len(fps); start += size {
		chunks = append(chunks, fps[start:min(start+size, len(fps))])
	}

	results := make([][]ScoredProject, len(chunks))
	p := &pacer{delay: s.Delay}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(s.Concurrency, 1))
	for i, chunk := range chunks {
		g.Go(func() error {
			out, err := s.scoreChunk(gctx, p, document, docHash, chunk)
			if err != nil {
				return err
			}
			results[i] = out
			return nil
		})
	}
	err := g.Wait()

	var all []ScoredProject
	for _, r := range results {
		all = append(all, r...)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].RelevanceScore > all[j].RelevanceScore
	})
	return all, err
}

func (s *Scorer) scoreChunk(ctx context.Context, p *pacer, document, docHash string, chunk []*fingerprint.Fingerprint) ([]ScoredProject, error) {
	out := make([]ScoredProject, len(chunk))
	var misses []int
	for i, fp := range chunk {
		if !s.Store.Get(ctx, Key(docHash, fp), &out[i]) {
			misses = append(misses, i)
		}
	}
	if len(misses) == 0 {
		return out, nil
	}

	missed := make([]*fingerprint.Fingerprint, len(misses))
	for j, i := range misses {
		missed[j] = chunk[i]
	}

	if err := p.wait(ctx); err != nil {
		return nil, err
	}
	raw, err := s.Oracle.Complete(ctx, Prompt(document, missed))
	if ctx.Err() != nil {
		return nil, ctx.Err()
	}

	var decoded []Result
	store := true
	if err != nil {
		s.Logger.Warn("scoring request failed", "repos", len(missed), "err", err)
		reason := "oracle error"
		if code := rlerrors.GetCode(err); code != "" {
			reason = strings.ToLower(string(code))
		}
		decoded = make([]Result, len(missed))
		for j := range decoded {
			decoded[j] = Fallback(reason)
		}
		// Transport failures are retried on the next run; contract
		// violations are cached like any other answer.
		store = rlerrors.Is(err, rlerrors.ErrCodeOracleContract)
	} else {
		decoded = Decode(raw, len(missed))
	}

	for j, i := range misses {
		fp := chunk[i]
		project := decoded[j].Project(fp)
		if !decoded[j].OK() {
			s.Logger.Debug("scoring fallback", "repo", fp.FullName(), "reason", decoded[j].Reason())
			observability.Oracle().OnFallback(ctx, "score", decoded[j].Reason())
		}
		if store {
			s.Store.Set(ctx, cache.CategoryScore, Key(docHash, fp), project)
		}
		out[i] = project
	}
	return out, nil
}

// Prompt builds the scoring request for fps.
func Prompt(document string, fps []*fingerprint.Fingerprint) string {
	payload, _ := json.MarshalIndent(fps, "", "  ")

	var b strings.Builder
	b.WriteString("You are a senior engineer and technical recruiter. Score each repository against the requirement document.\n\n")
	b.WriteString("Requirement document:\n")
	b.WriteString(document)
	b.WriteString("\n\nRepositories (JSON list):\n")
	b.Write(payload)
	fmt.Fprintf(&b, `

Return a JSON array with exactly %d objects, in the same order as the input, one per repository:
{"name": "<repo name>", "skills": ["key", "skills"], "relevance_score": 0.0, "reasoning": "short, grounded explanation"}
relevance_score is a number between 0.0 and 1.0. Return only the JSON array.
`, len(fps))
	return b.String()
}

// pacer spaces oracle calls at least delay apart.
type pacer struct {
	delay time.Duration
	mu    sync.Mutex
	next  time.Time
}

func (p *pacer) wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	p.mu.Lock()
	now := time.Now()
	at := p.next
	if at.Before(now) {
		at = now
	}
	p.next = at.Add(p.delay)
	p.mu.Unlock()

	t := time.NewTimer(time.Until(at))
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
