// Package buckets implements the buckets_* tool module: bucket discovery
// and object-level read/write, routed through catalog.QuiltOps plus the
// shared internal/awsdata S3 helpers for the object bodies themselves.
package buckets

import (
	"context"
	"encoding/json"

	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
)

// List reports the buckets visible to the caller.
type List struct {
	deps *toolkit.Deps
}

func NewList(deps *toolkit.Deps) *List { return &List{deps: deps} }

func (t *List) Name() string        { return "buckets_list" }
func (t *List) Description() string { return "List the buckets the caller may read or write, with registry/non-registry and permission flags." }
func (t *List) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
}

func (t *List) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}

	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	buckets, opErr := ops.BucketList(ctx, rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"buckets": buckets, "count": len(buckets)})
}
