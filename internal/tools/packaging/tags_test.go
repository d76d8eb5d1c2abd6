package packaging_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/tools/packaging"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit/toolkittest"
)

func TestTagList_ReturnsTagMap(t *testing.T) {
	ops := &toolkittest.Ops{Tags: map[string]string{"latest": "abc123", "v1": "def456"}}
	tool := packaging.NewTagList(depsWithOps(ops))

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"registry":"s3://registry","name":"team/data"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got struct {
		Tags map[string]string `json:"tags"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &got))
	assert.Equal(t, "abc123", got.Tags["latest"])
}

func TestTagAdd_RequiresAllFields(t *testing.T) {
	tool := packaging.NewTagAdd(depsWithOps(&toolkittest.Ops{}))

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"registry":"s3://registry","name":"team/data","tag":"latest"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}

func TestTagAdd_MovesTagToTopHash(t *testing.T) {
	ops := &toolkittest.Ops{}
	tool := packaging.NewTagAdd(depsWithOps(ops))

	params := json.RawMessage(`{"registry":"s3://registry","name":"team/data","tag":"latest","top_hash":"new-hash"}`)
	res, err := tool.Execute(context.Background(), params)
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "latest", ops.LastTag)
	assert.Equal(t, "new-hash", ops.LastTopHash)
}

func TestTagDelete_RemovesPointerOnly(t *testing.T) {
	ops := &toolkittest.Ops{}
	tool := packaging.NewTagDelete(depsWithOps(ops))

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"registry":"s3://registry","name":"team/data","tag":"v1"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "v1", ops.LastTag)
}
