package admin

import (
	"context"
	"encoding/json"

	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
)

type RoleList struct {
	deps *toolkit.Deps
}

func NewRoleList(deps *toolkit.Deps) *RoleList { return &RoleList{deps: deps} }

func (t *RoleList) Name() string        { return "admin_role_list" }
func (t *RoleList) Description() string { return "List every managed and unmanaged role. GraphQL backend only." }
func (t *RoleList) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
}

func (t *RoleList) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	roles, opErr := ops.AdminRoleList(ctx, rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"roles": roles, "count": len(roles)})
}

type RoleCreate struct {
	deps *toolkit.Deps
}

func NewRoleCreate(deps *toolkit.Deps) *RoleCreate { return &RoleCreate{deps: deps} }

func (t *RoleCreate) Name() string        { return "admin_role_create" }
func (t *RoleCreate) Description() string { return "Create a managed role (composed of named policies) or an unmanaged role (existing IAM role ARN). GraphQL backend only." }
func (t *RoleCreate) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "managed": {"type": "boolean", "default": true},
    "policies": {"type": "array", "items": {"type": "string"}, "description": "Managed roles only"},
    "iam_arn": {"type": "string", "description": "Unmanaged roles only"}
  },
  "required": ["name"],
  "additionalProperties": false
}`)
}

type roleCreateParams struct {
	Name     string   `json:"name"`
	Managed  *bool    `json:"managed,omitempty"`
	Policies []string `json:"policies,omitempty"`
	IAMArn   string   `json:"iam_arn,omitempty"`
}

func (t *RoleCreate) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p roleCreateParams
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
	if managed && len(p.Policies) == 0 {
		return toolkit.ValidationError("managed roles require at least one policy"), nil
	}
	if !managed && p.IAMArn == "" {
		return toolkit.ValidationError("unmanaged roles require iam_arn"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	created, opErr := ops.AdminRoleCreate(ctx, rc, catalog.Role{
		Name:     p.Name,
		Managed:  managed,
		Policies: p.Policies,
		IAMArn:   p.IAMArn,
	})
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(created)
}
