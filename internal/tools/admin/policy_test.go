package admin_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/config"
	"github.com/quiltdata/quiltmcp/internal/tools/admin"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit/toolkittest"
)

func graphQLDeps(ops *toolkittest.Ops) *toolkit.Deps {
	return &toolkit.Deps{
		Resolver: &toolkittest.Resolver{RC: toolkittest.NewRC(config.BackendGraphQL)},
		Factory:  &toolkittest.Factory{Ops: ops},
	}
}

func TestPolicyList_ReturnsPolicies(t *testing.T) {
	ops := &toolkittest.Ops{Policies: []catalog.Policy{{Name: "read-only", Managed: true}}}
	tool := admin.NewPolicyList(graphQLDeps(ops))

	res, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got struct {
		Policies []catalog.Policy `json:"policies"`
		Count    int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &got))
	assert.Equal(t, 1, got.Count)
}

func TestPolicyCreate_ManagedRequiresPermissions(t *testing.T) {
	tool := admin.NewPolicyCreate(graphQLDeps(&toolkittest.Ops{}))

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"name":"read-only"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}

func TestPolicyCreate_UnmanagedRequiresIAMArn(t *testing.T) {
	tool := admin.NewPolicyCreate(graphQLDeps(&toolkittest.Ops{}))

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"name":"external","managed":false}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}

func TestPolicyCreate_RejectsInvalidPermissionLevel(t *testing.T) {
	tool := admin.NewPolicyCreate(graphQLDeps(&toolkittest.Ops{}))

	params := json.RawMessage(`{"name":"read-only","permissions":[{"bucket":"raw-data","level":"ADMIN"}]}`)
	res, err := tool.Execute(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestPolicyCreate_CreatesManagedPolicy(t *testing.T) {
	ops := &toolkittest.Ops{Policy: &catalog.Policy{Name: "read-only", Managed: true}}
	tool := admin.NewPolicyCreate(graphQLDeps(ops))

	params := json.RawMessage(`{"name":"read-only","permissions":[{"bucket":"raw-data","level":"READ"}]}`)
	res, err := tool.Execute(context.Background(), params)
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "read-only", ops.LastPolicy.Name)
	require.Len(t, ops.LastPolicy.Permissions, 1)
	assert.Equal(t, catalog.PermissionRead, ops.LastPolicy.Permissions[0].Level)
}

func TestPolicyDelete_PropagatesInUse(t *testing.T) {
	ops := &toolkittest.Ops{Err: apperr.New(apperr.InUse, "policy is attached to one or more roles")}
	tool := admin.NewPolicyDelete(graphQLDeps(ops))

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"name":"read-only"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.InUse))
}
