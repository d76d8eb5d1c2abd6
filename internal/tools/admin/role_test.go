package admin_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/tools/admin"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit/toolkittest"
)

func TestRoleList_ReturnsRoles(t *testing.T) {
	ops := &toolkittest.Ops{Roles: []catalog.Role{{Name: "analyst", Managed: true, Policies: []string{"read-only"}}}}
	tool := admin.NewRoleList(graphQLDeps(ops))

	res, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got struct {
		Roles []catalog.Role `json:"roles"`
		Count int            `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &got))
	assert.Equal(t, 1, got.Count)
	assert.Equal(t, "analyst", got.Roles[0].Name)
}

func TestRoleCreate_ManagedRequiresPolicies(t *testing.T) {
	tool := admin.NewRoleCreate(graphQLDeps(&toolkittest.Ops{}))

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"name":"analyst"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}

func TestRoleCreate_UnmanagedRequiresIAMArn(t *testing.T) {
	tool := admin.NewRoleCreate(graphQLDeps(&toolkittest.Ops{}))

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"name":"external","managed":false}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestRoleCreate_CreatesManagedRole(t *testing.T) {
	ops := &toolkittest.Ops{Role: &catalog.Role{Name: "analyst", Managed: true, Policies: []string{"read-only"}}}
	tool := admin.NewRoleCreate(graphQLDeps(ops))

	params := json.RawMessage(`{"name":"analyst","policies":["read-only"]}`)
	res, err := tool.Execute(context.Background(), params)
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "analyst", ops.LastRole.Name)
	assert.Equal(t, []string{"read-only"}, ops.LastRole.Policies)
}
