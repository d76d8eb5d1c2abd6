package search

import (
	"context"
	"time"

	"github.com/quiltdata/quiltmcp/internal/catalog"
)

// BackendFunc is one backend's half of a primary/fallback pair.
type BackendFunc func(ctx context.Context) ([]catalog.SearchHit, error)

const (
	primaryTimeout  = 3 * time.Second
	fallbackTimeout = 5 * time.Second
)

// fanOutResult carries one backend call's outcome back to the collector,
// grounded on the scheduler's launch-goroutines-and-collect-off-a-channel
// pattern (see DESIGN.md), applied to backend search calls.
type fanOutResult struct {
	hits            []catalog.SearchHit
	err             error
	fromFallback    bool
}

// FanOut issues primary and fallback concurrently with independent
// timeouts. The first non-empty successful result wins; if only the
// fallback succeeds (primary timed out or returned nothing), FallbackUsed
// is reported so callers can surface it.
func FanOut(ctx context.Context, primary, fallback BackendFunc) (hits []catalog.SearchHit, fallbackUsed bool, err error) {
	results := make(chan fanOutResult, 2)

	launch := func(fn BackendFunc, timeout time.Duration, fromFallback bool) {
		if fn == nil {
			results <- fanOutResult{fromFallback: fromFallback}
			return
		}
		cctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		h, e := fn(cctx)
		results <- fanOutResult{hits: h, err: e, fromFallback: fromFallback}
	}

	go launch(primary, primaryTimeout, false)
	go launch(fallback, fallbackTimeout, true)

	var pending []fanOutResult
	for i := 0; i < 2; i++ {
		r := <-results
		if r.err == nil && len(r.hits) > 0 {
			// First non-empty successful result satisfies the request
			// immediately — the other call is left to finish in the
			// background and its result discarded.
			return r.hits, r.fromFallback, nil
		}
		pending = append(pending, r)
	}

	// Neither call returned hits: prefer the primary's empty success over the
	// fallback's, whatever order they arrived in.
	for _, r := range pending {
		if r.err == nil && !r.fromFallback {
			return r.hits, false, nil
		}
	}
	for _, r := range pending {
		if r.err == nil {
			return r.hits, true, nil
		}
	}
	return nil, pending[0].fromFallback || pending[1].fromFallback, pending[len(pending)-1].err
}
