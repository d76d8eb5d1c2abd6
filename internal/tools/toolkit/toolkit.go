// Package toolkit holds the small pieces every tool module in internal/tools
// shares: the dependency bundle tools are constructed with, and the
// apperr-to-ToolsCallResult translation at the dispatch boundary.
package toolkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/search"
)

// Resolver is the subset of *session.Resolver tools depend on, kept as an
// interface so tests can substitute a fake without the real auth plane.
type Resolver interface {
	Resolve(ctx context.Context) (*catalog.RequestContext, error)
}

// Factory is the subset of *catalog.Factory tools depend on.
type Factory interface {
	For(rc *catalog.RequestContext) (catalog.QuiltOps, error)
}

// Searcher is the subset of *search.Engine tools depend on.
type Searcher interface {
	Execute(ctx context.Context, rc *catalog.RequestContext, q catalog.SearchQuery) (*search.Result, error)
}

// Deps bundles everything a tool constructor needs. Tools hold onto this
// (or the individual fields they use) rather than reaching for globals.
type Deps struct {
	Resolver Resolver
	Factory  Factory
	Search   Searcher
}

// Resolve pulls a *catalog.RequestContext out of ctx's bearer token, or
// returns an error result if the token is missing/invalid. Every tool's
// Execute calls this immediately after parameter validation succeeds.
func (d *Deps) Resolve(ctx context.Context) (*catalog.RequestContext, *mcp.ToolsCallResult, error) {
	rc, err := d.Resolver.Resolve(ctx)
	if err != nil {
		return nil, ErrorResult(err), nil
	}
	return rc, nil, nil
}

// ErrorResult converts any error returned by a QuiltOps call (always an
// *apperr.Error by the §4.4 "no operation may throw" contract) into the
// uniform tool-result envelope. A non-apperr error is a programming mistake
// that slipped past the backend edge; it is wrapped as INTERNAL rather than
// propagated, matching the dispatch boundary's recover() behavior for panics.
func ErrorResult(err error) *mcp.ToolsCallResult {
	var ae *apperr.Error
	if errors.As(err, &ae) {
		return mcp.AppErrorResult(ae)
	}
	return mcp.AppErrorResult(apperr.Wrap(apperr.Internal, "unexpected error", err))
}

// ValidationError builds the VALIDATION_FAILED envelope a tool returns when
// its arguments fail to parse or fail a required-field check, before any
// backend is touched.
func ValidationError(msg string) *mcp.ToolsCallResult {
	return mcp.AppErrorResult(apperr.New(apperr.ValidationFailed, msg))
}

// ParseParams unmarshals raw into dst, returning a VALIDATION_FAILED result
// (never an error) on malformed JSON so callers can return it directly.
func ParseParams(raw json.RawMessage, dst any) *mcp.ToolsCallResult {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return ValidationError(fmt.Sprintf("invalid parameters: %v", err))
	}
	return nil
}
