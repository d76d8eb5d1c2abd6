// Package admin implements the admin_* tool module: managed/unmanaged
// policy and role CRUD (graphql backend only — the direct backend rejects
// every call here with PERMISSION_DENIED, per §4.4.3) plus a janitor report
// that scans for orphaned tag-map entries.
package admin

import (
	"context"
	"encoding/json"

	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
)

type PolicyList struct {
	deps *toolkit.Deps
}

func NewPolicyList(deps *toolkit.Deps) *PolicyList { return &PolicyList{deps: deps} }

func (t *PolicyList) Name() string        { return "admin_policy_list" }
func (t *PolicyList) Description() string { return "List every managed and unmanaged policy. GraphQL backend only." }
func (t *PolicyList) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
}

func (t *PolicyList) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	policies, opErr := ops.AdminPolicyList(ctx, rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"policies": policies, "count": len(policies)})
}

type bucketPermissionParam struct {
	Bucket string `json:"bucket"`
	Level  string `json:"level"`
}

type PolicyCreate struct {
	deps *toolkit.Deps
}

func NewPolicyCreate(deps *toolkit.Deps) *PolicyCreate { return &PolicyCreate{deps: deps} }

func (t *PolicyCreate) Name() string        { return "admin_policy_create" }
func (t *PolicyCreate) Description() string { return "Create a managed policy (bucket permission grants) or an unmanaged policy (existing IAM ARN). GraphQL backend only." }
func (t *PolicyCreate) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "managed": {"type": "boolean", "default": true},
    "permissions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "bucket": {"type": "string"},
          "level": {"type": "string", "enum": ["READ", "READ_WRITE"]}
        },
        "required": ["bucket", "level"]
      },
      "description": "Managed policies only"
    },
    "iam_arn": {"type": "string", "description": "Unmanaged policies only"}
  },
  "required": ["name"],
  "additionalProperties": false
}`)
}

type policyCreateParams struct {
	Name        string                  `json:"name"`
	Managed     *bool                   `json:"managed,omitempty"`
	Permissions []bucketPermissionParam `json:"permissions,omitempty"`
	IAMArn      string                  `json:"iam_arn,omitempty"`
}

func (t *PolicyCreate) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p policyCreateParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Name == "" {
		return toolkit.ValidationError("name is required"), nil
	}
	managed := true
	if p.Managed != nil {
		managed = *p.Managed
	}
	if managed && len(p.Permissions) == 0 {
		return toolkit.ValidationError("managed policies require at least one bucket permission"), nil
	}
	if !managed && p.IAMArn == "" {
		return toolkit.ValidationError("unmanaged policies require iam_arn"), nil
	}
	for _, perm := range p.Permissions {
		if perm.Bucket == "" || (catalog.PolicyPermission(perm.Level) != catalog.PermissionRead && catalog.PolicyPermission(perm.Level) != catalog.PermissionReadWrite) {
			return toolkit.ValidationError("every permission needs a bucket and a level of READ or READ_WRITE"), nil
		}
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	perms := make([]catalog.BucketPermission, len(p.Permissions))
	for i, perm := range p.Permissions {
		perms[i] = catalog.BucketPermission{Bucket: perm.Bucket, Level: catalog.PolicyPermission(perm.Level)}
	}

	created, opErr := ops.AdminPolicyCreate(ctx, rc, catalog.Policy{
		Name:        p.Name,
		Managed:     managed,
		Permissions: perms,
		IAMArn:      p.IAMArn,
	})
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(created)
}

type PolicyDelete struct {
	deps *toolkit.Deps
}

func NewPolicyDelete(deps *toolkit.Deps) *PolicyDelete { return &PolicyDelete{deps: deps} }

func (t *PolicyDelete) Name() string        { return "admin_policy_delete" }
func (t *PolicyDelete) Description() string { return "Delete a policy by name. Fails with IN_USE if the policy is still attached to any role. GraphQL backend only." }
func (t *PolicyDelete) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"name": {"type": "string"}},
  "required": ["name"],
  "additionalProperties": false
}`)
}

type nameOnlyParams struct {
	Name string `json:"name"`
}

func (t *PolicyDelete) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p nameOnlyParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Name == "" {
		return toolkit.ValidationError("name is required"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	if opErr := ops.AdminPolicyDelete(ctx, rc, p.Name); opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"deleted": true, "name": p.Name})
}
