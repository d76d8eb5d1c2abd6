package search

import (
	"context"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
)

// Engine composes every backend the unified search layer can fan out to.
// GraphQL and ES are optional (nil when not configured); S3 fallback
// always works given any awsdata-constructible client.
type Engine struct {
	ES      *ESBackend
	GraphQL catalog.QuiltOps // metadata-predicate primary / text-search fallback
	Direct  catalog.QuiltOps // S3 list fallback (also used directly for file-type-filter fallback)
}

// Result is the outcome of Execute, carrying the fallback_used flag §4.6
// requires be surfaced to the caller.
type Result struct {
	Hits         []catalog.SearchHit
	FallbackUsed bool
	Class        Class
}

// Execute classifies q.Text, routes to the class's primary/fallback chain,
// fans out concurrently, then normalizes/dedupes/merges the result.
func (e *Engine) Execute(ctx context.Context, rc *catalog.RequestContext, q catalog.SearchQuery) (*Result, error) {
	class := Classify(q.Text)

	if q.Scope == catalog.ScopePackage && q.Type == catalog.SearchTypeBoth {
		return e.executePackageScope(ctx, rc, q, class)
	}

	var hits []catalog.SearchHit
	var fallbackUsed bool
	var err error

	switch class {
	case ClassTextSearch:
		hits, fallbackUsed, err = FanOut(ctx, e.esPrimary(q), e.graphqlThenS3Fallback(ctx, rc, q))
	case ClassFileTypeFilter:
		hits, fallbackUsed, err = FanOut(ctx, e.esFileTypePrimary(q), e.s3ListFallback(ctx, rc, q))
	case ClassMetadataPredicate:
		hits, fallbackUsed, err = FanOut(ctx, e.graphqlPrimary(ctx, rc, q), e.esFallback(q))
	case ClassAnalytical:
		return nil, apperr.New(apperr.ValidationFailed, "analytical queries are executed via the athena_query_execute tool, not search").
			WithFixHint("use athena_query_execute for SQL-shaped queries")
	}
	if err != nil {
		return nil, err
	}

	hits = Dedupe(Normalize(hits))
	return &Result{Hits: hits, FallbackUsed: fallbackUsed, Class: class}, nil
}

// executePackageScope issues one query against manifests and one against
// entries, then collapses entry hits into their parent package — §4.6's
// package-scope rule, producing at most one PackageHit per package with
// manifest matches boosted 2.0x.
func (e *Engine) executePackageScope(ctx context.Context, rc *catalog.RequestContext, q catalog.SearchQuery, class Class) (*Result, error) {
	packageQuery := q
	packageQuery.Type = catalog.SearchTypePackages
	entryQuery := q
	entryQuery.Type = catalog.SearchTypeObjects

	var packageHits, entryHits []catalog.SearchHit
	if e.GraphQL != nil {
		var err error
		packageHits, err = e.GraphQL.Search(ctx, rc, packageQuery)
		if err != nil {
			return nil, err
		}
	}
	if e.ES != nil {
		var err error
		entryHits, err = e.ES.Search(ctx, entryQuery)
		if err != nil {
			return nil, err
		}
	}

	collapsed := Dedupe(Normalize(CollapsePackageScope(packageHits, entryHits)))
	return &Result{Hits: collapsed, Class: class}, nil
}

func (e *Engine) esPrimary(q catalog.SearchQuery) BackendFunc {
	if e.ES == nil {
		return nil
	}
	return func(ctx context.Context) ([]catalog.SearchHit, error) { return e.ES.Search(ctx, q) }
}

func (e *Engine) esFileTypePrimary(q catalog.SearchQuery) BackendFunc {
	if e.ES == nil {
		return nil
	}
	return func(ctx context.Context) ([]catalog.SearchHit, error) { return e.ES.SearchFileType(ctx, q, q.Text) }
}

func (e *Engine) esFallback(q catalog.SearchQuery) BackendFunc {
	return e.esPrimary(q)
}

func (e *Engine) graphqlPrimary(ctx context.Context, rc *catalog.RequestContext, q catalog.SearchQuery) BackendFunc {
	if e.GraphQL == nil {
		return nil
	}
	return func(ctx context.Context) ([]catalog.SearchHit, error) { return e.GraphQL.Search(ctx, rc, q) }
}

// graphqlThenS3Fallback composes GraphQL then S3 into a single fallback
// slot for text-search's 3-deep chain (ES -> GraphQL -> S3): GraphQL is
// tried first and S3 only if GraphQL yields nothing.
func (e *Engine) graphqlThenS3Fallback(ctx context.Context, rc *catalog.RequestContext, q catalog.SearchQuery) BackendFunc {
	return func(ctx context.Context) ([]catalog.SearchHit, error) {
		if e.GraphQL != nil {
			hits, err := e.GraphQL.Search(ctx, rc, q)
			if err == nil && len(hits) > 0 {
				return hits, nil
			}
		}
		if e.Direct != nil {
			return e.Direct.Search(ctx, rc, q)
		}
		return nil, nil
	}
}

func (e *Engine) s3ListFallback(ctx context.Context, rc *catalog.RequestContext, q catalog.SearchQuery) BackendFunc {
	if e.Direct == nil {
		return nil
	}
	return func(ctx context.Context) ([]catalog.SearchHit, error) { return e.Direct.Search(ctx, rc, q) }
}
