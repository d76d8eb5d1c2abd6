package packaging

import (
	"context"
	"encoding/json"

	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
)

type entryParam struct {
	LogicalPath string `json:"logical_path"`
	SourceURI   string `json:"source_uri,omitempty"`
	Content     string `json:"content,omitempty"`
}

func (e entryParam) valid() bool {
	return e.LogicalPath != "" && (e.SourceURI != "" || e.Content != "")
}

func toEntries(params []entryParam) []catalog.Entry {
	out := make([]catalog.Entry, len(params))
	for i, p := range params {
		out[i] = catalog.Entry{LogicalPath: p.LogicalPath, SourceURI: p.SourceURI, Content: []byte(p.Content)}
	}
	return out
}

func validCopyMode(m string) bool {
	switch catalog.CopyMode(m) {
	case "", catalog.CopyModeNone, catalog.CopyModeNew, catalog.CopyModeAll:
		return true
	default:
		return false
	}
}

func copyModeOrDefault(m string) catalog.CopyMode {
	if m == "" {
		return catalog.CopyModeNone
	}
	return catalog.CopyMode(m)
}

// Create commits a brand new package revision from a set of entries.
type Create struct {
	deps *toolkit.Deps
}

func NewCreate(deps *toolkit.Deps) *Create { return &Create{deps: deps} }

func (t *Create) Name() string        { return "packaging_create" }
func (t *Create) Description() string { return "Create a new package revision from a set of logical-path -> source mappings. Returns the deterministic top_hash." }
func (t *Create) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "name": {"type": "string"},
    "entries": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "logical_path": {"type": "string"},
          "source_uri": {"type": "string", "description": "s3://bucket/key; mutually exclusive with content"},
          "content": {"type": "string", "description": "inline UTF-8 content; mutually exclusive with source_uri"}
        },
        "required": ["logical_path"]
      }
    },
    "metadata": {"type": "object"},
    "copy_mode": {"type": "string", "enum": ["none", "new", "all"], "default": "none"},
    "message": {"type": "string"}
  },
  "required": ["registry", "name", "entries"],
  "additionalProperties": false
}`)
}

type createParams struct {
	Registry string          `json:"registry"`
	Name     string          `json:"name"`
	Entries  []entryParam    `json:"entries"`
	Metadata map[string]any  `json:"metadata,omitempty"`
	CopyMode string          `json:"copy_mode,omitempty"`
	Message  string          `json:"message,omitempty"`
}

func (t *Create) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p createParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Registry == "" || p.Name == "" {
		return toolkit.ValidationError("registry and name are required"), nil
	}
	if len(p.Entries) == 0 {
		return toolkit.ValidationError("entries must be non-empty"), nil
	}
	for _, e := range p.Entries {
		if !e.valid() {
			return toolkit.ValidationError("every entry needs a logical_path and exactly one of source_uri/content"), nil
		}
	}
	if !validCopyMode(p.CopyMode) {
		return toolkit.ValidationError("copy_mode must be one of none, new, all"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	m, opErr := ops.PackageCreateRevision(ctx, rc, p.Registry, p.Name, toEntries(p.Entries), copyModeOrDefault(p.CopyMode), p.Message, p.Metadata)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(m)
}

// Update commits a new revision built from a base revision plus additional
// or replaced entries.
type Update struct {
	deps *toolkit.Deps
}

func NewUpdate(deps *toolkit.Deps) *Update { return &Update{deps: deps} }

func (t *Update) Name() string        { return "packaging_update" }
func (t *Update) Description() string { return "Create a new package revision by merging additional entries into a base revision." }
func (t *Update) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "name": {"type": "string"},
    "base_top_hash": {"type": "string"},
    "base_tag": {"type": "string", "default": "latest"},
    "entries": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "logical_path": {"type": "string"},
          "source_uri": {"type": "string"},
          "content": {"type": "string"}
        },
        "required": ["logical_path"]
      }
    },
    "copy_mode": {"type": "string", "enum": ["none", "new", "all"], "default": "none"},
    "message": {"type": "string"}
  },
  "required": ["registry", "name", "entries"],
  "additionalProperties": false
}`)
}

type updateParams struct {
	Registry    string       `json:"registry"`
	Name        string       `json:"name"`
	BaseTopHash string       `json:"base_top_hash,omitempty"`
	BaseTag     string       `json:"base_tag,omitempty"`
	Entries     []entryParam `json:"entries"`
	CopyMode    string       `json:"copy_mode,omitempty"`
	Message     string       `json:"message,omitempty"`
}

func (t *Update) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p updateParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Registry == "" || p.Name == "" {
		return toolkit.ValidationError("registry and name are required"), nil
	}
	if len(p.Entries) == 0 {
		return toolkit.ValidationError("entries must be non-empty"), nil
	}
	for _, e := range p.Entries {
		if !e.valid() {
			return toolkit.ValidationError("every entry needs a logical_path and exactly one of source_uri/content"), nil
		}
	}
	if !validCopyMode(p.CopyMode) {
		return toolkit.ValidationError("copy_mode must be one of none, new, all"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	base := catalog.PackageRef{Registry: p.Registry, Name: p.Name, TopHash: p.BaseTopHash, Tag: p.BaseTag}
	m, opErr := ops.PackageUpdateRevision(ctx, rc, p.Registry, p.Name, base, toEntries(p.Entries), copyModeOrDefault(p.CopyMode), p.Message)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(m)
}

// Delete removes a specific revision, or (when top_hash is omitted) the
// package's tag-map entry — see DESIGN.md for the documented choice of
// "pointer-only" semantics when top_hash is absent.
type Delete struct {
	deps *toolkit.Deps
}

func NewDelete(deps *toolkit.Deps) *Delete { return &Delete{deps: deps} }

func (t *Delete) Name() string { return "packaging_delete" }
func (t *Delete) Description() string {
	return "Delete a package revision by top_hash, or — when top_hash is omitted — remove only the package's \"latest\" tag pointer, leaving existing revisions and other tags intact."
}
func (t *Delete) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "name": {"type": "string"},
    "top_hash": {"type": "string", "description": "Omit to remove only the latest tag pointer"}
  },
  "required": ["registry", "name"],
  "additionalProperties": false
}`)
}

func (t *Delete) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p nameParams
	extra := struct {
		nameParams
		TopHash string `json:"top_hash,omitempty"`
	}{}
	if res := toolkit.ParseParams(params, &extra); res != nil {
		return res, nil
	}
	p = extra.nameParams
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

	if opErr := ops.PackageDelete(ctx, rc, p.Registry, p.Name, extra.TopHash); opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"deleted": true, "registry": p.Registry, "name": p.Name, "top_hash": extra.TopHash})
}
