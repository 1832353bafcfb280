package index

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects a DAAT traversal strategy for RunQuery.
type Mode string

const (
	ModeAnd     Mode = "and"
	ModeOr      Mode = "or"
	ModeBwandOr Mode = "bwand-or"
)

// Session ties a StartupContext to an LRU list cache, reproducing the
// openList/closeList/run_query flow of
// original_source/search_system/query/query.py, adapted so the cache
// and context are passed explicitly rather than held as module
// globals (spec.md §9, "Global state").
type Session struct {
	ctx   *StartupContext
	cache *Cache
	K1, B float64
}

// NewSession constructs a query session over ctx with an LRU cache of
// the given capacity.
func NewSession(ctx *StartupContext, cacheCapacity int, k1, b float64) (*Session, error) {
	cache, err := NewCache(cacheCapacity)
	if err != nil {
		return nil, err
	}
	return &Session{ctx: ctx, cache: cache, K1: k1, B: b}, nil
}

// CacheStats exposes the underlying cache's hit/miss counters.
func (s *Session) CacheStats() (hits, misses int) { return s.cache.Stats() }

// Close purges the cache, closing every cached cursor's file handle.
func (s *Session) Close() { s.cache.Purge() }

// openList returns a cursor for term, reusing and resetting a cached
// cursor on a hit. Returns (nil, nil) if term is absent from the
// lexicon (ErrLexiconMiss recovered locally, per spec.md §7).
func (s *Session) openList(term string) (*InvertedList, error) {
	if cached, ok := s.cache.Get(term); ok {
		if err := cached.Reset(); err != nil {
			return nil, err
		}
		return cached, nil
	}
	cur, err := OpenInvertedList(term, s.ctx.IndexPath, s.ctx.Lexicon, s.ctx.PageTable, s.ctx.TotalDocs, s.ctx.AvgLen, s.K1, s.B)
	if err != nil || cur == nil {
		return cur, err
	}
	s.cache.Put(term, cur)
	return cur, nil
}

// closeList is a no-op for cursors the cache still owns; it only
// closes cursors that fell out of the cache (spec.md §4.6 "close()").
func (s *Session) closeList(lp *InvertedList) error {
	if lp == nil {
		return nil
	}
	if s.cache.Contains(lp.Term()) {
		return nil
	}
	return lp.Close()
}

// QueryTiming breaks down where RunQuery spent its time, reproducing
// the "[Timing]" block printed by original_source/.../query.py's
// run_query (SPEC_FULL.md "Supplemented features").
type QueryTiming struct {
	Gather    time.Duration
	Open      time.Duration
	Traversal time.Duration
	Total     time.Duration
}

// QueryResult bundles a RunQuery call's ranked output and timings.
type QueryResult struct {
	Results []Result
	Timing  QueryTiming
}

// RunQuery tokenizes query with the same simple whitespace/lowercase
// split the Python REPL uses (not the full tokenizer — spec.md's
// tokenizer is for corpus ingestion, not REPL queries), opens a
// cursor per distinct term, dispatches to the DAAT engine named by
// mode, and closes the cursors it opened.
func (s *Session) RunQuery(query string, mode Mode, topK int) (*QueryResult, error) {
	t0 := time.Now()

	var terms []string
	seen := make(map[string]struct{})
	for _, f := range strings.Fields(query) {
		term := strings.ToLower(f)
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}
		terms = append(terms, term)
	}
	t1 := time.Now()

	var lists []*InvertedList
	for _, term := range terms {
		lp, err := s.openList(term)
		if err != nil {
			return nil, err
		}
		if lp != nil && lp.DocID < INFDocID {
			lists = append(lists, lp)
		}
	}
	t2 := time.Now()

	var (
		results []Result
		err     error
	)
	switch mode {
	case ModeAnd:
		results, err = DAATConjunctive(lists, topK)
	case ModeOr:
		results, err = DAATDisjunctiveMaxScore(lists, topK)
	case ModeBwandOr:
		results, err = DAATDisjunctiveBlockMaxWAND(lists, topK)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, mode)
	}
	if err != nil {
		return nil, err
	}
	t3 := time.Now()

	for _, lp := range lists {
		if err := s.closeList(lp); err != nil {
			return nil, err
		}
	}
	t4 := time.Now()

	return &QueryResult{
		Results: results,
		Timing: QueryTiming{
			Gather:    t1.Sub(t0),
			Open:      t2.Sub(t1),
			Traversal: t3.Sub(t2),
			Total:     t4.Sub(t0),
		},
	}, nil
}
