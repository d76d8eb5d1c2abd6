package buckets

import (
	"context"
	"encoding/json"
	"time"

	"github.com/quiltdata/quiltmcp/internal/awsdata"
	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
)

// ObjectsList lists objects under a bucket/prefix.
type ObjectsList struct {
	deps *toolkit.Deps
}

func NewObjectsList(deps *toolkit.Deps) *ObjectsList { return &ObjectsList{deps: deps} }

func (t *ObjectsList) Name() string        { return "buckets_objects_list" }
func (t *ObjectsList) Description() string { return "List objects in a bucket under an optional key prefix." }
func (t *ObjectsList) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "bucket": {"type": "string", "description": "Bucket name"},
    "prefix": {"type": "string", "description": "Key prefix filter"}
  },
  "required": ["bucket"],
  "additionalProperties": false
}`)
}

type objectsListParams struct {
	Bucket string `json:"bucket"`
	Prefix string `json:"prefix,omitempty"`
}

func (t *ObjectsList) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p objectsListParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Bucket == "" {
		return toolkit.ValidationError("bucket is required"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}

	client, opErr := awsdata.NewS3Client(ctx, rc.Credentials, rc.ProxyURL)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	objects, opErr := awsdata.ListObjects(ctx, client, p.Bucket, p.Prefix)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"objects": objects, "count": len(objects)})
}

// ObjectsGet fetches one object's contents (as text) or a presigned URL.
type ObjectsGet struct {
	deps *toolkit.Deps
}

func NewObjectsGet(deps *toolkit.Deps) *ObjectsGet { return &ObjectsGet{deps: deps} }

func (t *ObjectsGet) Name() string        { return "buckets_objects_get" }
func (t *ObjectsGet) Description() string { return "Read an object's contents as text, or request a presigned URL instead of inline content." }
func (t *ObjectsGet) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "bucket": {"type": "string"},
    "key": {"type": "string"},
    "version_id": {"type": "string"},
    "range": {"type": "string", "description": "HTTP byte-range header, e.g. bytes=0-1023"},
    "presign": {"type": "boolean", "description": "Return a presigned URL instead of inline content", "default": false}
  },
  "required": ["bucket", "key"],
  "additionalProperties": false
}`)
}

type objectsGetParams struct {
	Bucket    string `json:"bucket"`
	Key       string `json:"key"`
	VersionID string `json:"version_id,omitempty"`
	Range     string `json:"range,omitempty"`
	Presign   bool   `json:"presign,omitempty"`
}

func (t *ObjectsGet) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p objectsGetParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Bucket == "" || p.Key == "" {
		return toolkit.ValidationError("bucket and key are required"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}

	client, opErr := awsdata.NewS3Client(ctx, rc.Credentials, rc.ProxyURL)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	if p.Presign {
		url, opErr := awsdata.PresignGet(ctx, client, p.Bucket, p.Key, p.VersionID, 15*time.Minute)
		if opErr != nil {
			return toolkit.ErrorResult(opErr), nil
		}
		return mcp.JSONResult(map[string]any{"url": url, "expires_in_seconds": 900})
	}

	text, opErr := awsdata.GetText(ctx, client, p.Bucket, p.Key, p.VersionID, p.Range)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"bucket": p.Bucket, "key": p.Key, "content": text})
}

// ObjectsPut writes one or more objects from inline content.
type ObjectsPut struct {
	deps *toolkit.Deps
}

func NewObjectsPut(deps *toolkit.Deps) *ObjectsPut { return &ObjectsPut{deps: deps} }

func (t *ObjectsPut) Name() string        { return "buckets_objects_put" }
func (t *ObjectsPut) Description() string { return "Write one or more objects with inline content to a bucket. Each item's result is reported independently; the batch is not atomic." }
func (t *ObjectsPut) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "bucket": {"type": "string"},
    "items": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "key": {"type": "string"},
          "content": {"type": "string", "description": "UTF-8 text content"}
        },
        "required": ["key", "content"]
      }
    }
  },
  "required": ["bucket", "items"],
  "additionalProperties": false
}`)
}

type putItemParam struct {
	Key     string `json:"key"`
	Content string `json:"content"`
}

type objectsPutParams struct {
	Bucket string         `json:"bucket"`
	Items  []putItemParam `json:"items"`
}

func (t *ObjectsPut) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p objectsPutParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Bucket == "" {
		return toolkit.ValidationError("bucket is required"), nil
	}
	if len(p.Items) == 0 {
		return toolkit.ValidationError("items must be non-empty"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}

	client, opErr := awsdata.NewS3Client(ctx, rc.Credentials, rc.ProxyURL)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	items := make([]awsdata.PutItem, len(p.Items))
	for i, it := range p.Items {
		items[i] = awsdata.PutItem{Key: it.Key, Content: []byte(it.Content)}
	}

	results := awsdata.PutBatch(ctx, client, p.Bucket, items)
	out := make([]map[string]any, len(results))
	for i, r := range results {
		entry := map[string]any{"key": r.Key, "success": r.Success}
		if r.Success {
			entry["etag"] = r.ETag
		} else if r.Err != nil {
			entry["error"] = r.Err.Error()
		}
		out[i] = entry
	}
	return mcp.JSONResult(map[string]any{"results": out})
}
