package packaging

import (
	"context"
	"encoding/json"

	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
)

// TagList returns the tag -> top_hash map for a package.
type TagList struct {
	deps *toolkit.Deps
}

func NewTagList(deps *toolkit.Deps) *TagList { return &TagList{deps: deps} }

func (t *TagList) Name() string        { return "packaging_tag_list" }
func (t *TagList) Description() string { return "List every tag pointer on a package and the top_hash it resolves to." }
func (t *TagList) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"registry": {"type": "string"}, "name": {"type": "string"}},
  "required": ["registry", "name"],
  "additionalProperties": false
}`)
}

func (t *TagList) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p nameParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Registry == "" || p.Name == "" {
		return toolkit.ValidationError("registry and name are required"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	tags, opErr := ops.TagList(ctx, rc, p.Registry, p.Name)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"tags": tags})
}

// TagAdd points a tag at a specific top_hash, creating or moving it.
type TagAdd struct {
	deps *toolkit.Deps
}

func NewTagAdd(deps *toolkit.Deps) *TagAdd { return &TagAdd{deps: deps} }

func (t *TagAdd) Name() string        { return "packaging_tag_add" }
func (t *TagAdd) Description() string { return "Point a tag at a specific revision, creating the tag or moving it if it already exists." }
func (t *TagAdd) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "name": {"type": "string"},
    "tag": {"type": "string"},
    "top_hash": {"type": "string"}
  },
  "required": ["registry", "name", "tag", "top_hash"],
  "additionalProperties": false
}`)
}

type tagParams struct {
	Registry string `json:"registry"`
	Name     string `json:"name"`
	Tag      string `json:"tag"`
	TopHash  string `json:"top_hash,omitempty"`
}

func (t *TagAdd) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p tagParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Registry == "" || p.Name == "" || p.Tag == "" || p.TopHash == "" {
		return toolkit.ValidationError("registry, name, tag, and top_hash are all required"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	if opErr := ops.TagAdd(ctx, rc, p.Registry, p.Name, p.Tag, p.TopHash); opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"tag": p.Tag, "top_hash": p.TopHash})
}

// TagDelete removes a tag pointer, never the revision it points to.
type TagDelete struct {
	deps *toolkit.Deps
}

func NewTagDelete(deps *toolkit.Deps) *TagDelete { return &TagDelete{deps: deps} }

func (t *TagDelete) Name() string        { return "packaging_tag_delete" }
func (t *TagDelete) Description() string { return "Remove a tag pointer from a package. Never deletes the underlying revision." }
func (t *TagDelete) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "name": {"type": "string"},
    "tag": {"type": "string"}
  },
  "required": ["registry", "name", "tag"],
  "additionalProperties": false
}`)
}

func (t *TagDelete) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p tagParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Registry == "" || p.Name == "" || p.Tag == "" {
		return toolkit.ValidationError("registry, name, and tag are required"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	if opErr := ops.TagDelete(ctx, rc, p.Registry, p.Name, p.Tag); opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"deleted": true, "tag": p.Tag})
}
