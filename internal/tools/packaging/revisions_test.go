package packaging_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/tools/packaging"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit/toolkittest"
)

func TestCreate_RequiresNonEmptyEntries(t *testing.T) {
	tool := packaging.NewCreate(depsWithOps(&toolkittest.Ops{}))

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"registry":"s3://registry","name":"team/data","entries":[]}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}

func TestCreate_RejectsEntryWithNeitherSourceNorContent(t *testing.T) {
	tool := packaging.NewCreate(depsWithOps(&toolkittest.Ops{}))

	params := json.RawMessage(`{"registry":"s3://registry","name":"team/data","entries":[{"logical_path":"a.txt"}]}`)
	res, err := tool.Execute(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}

func TestCreate_RejectsInvalidCopyMode(t *testing.T) {
	tool := packaging.NewCreate(depsWithOps(&toolkittest.Ops{}))

	params := json.RawMessage(`{"registry":"s3://registry","name":"team/data","entries":[{"logical_path":"a.txt","content":"hi"}],"copy_mode":"everything"}`)
	res, err := tool.Execute(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}

func TestCreate_CommitsRevisionWithInlineEntry(t *testing.T) {
	ops := &toolkittest.Ops{ManifestResult: &catalog.Manifest{Registry: "s3://registry", Name: "team/data", TopHash: "new-hash"}}
	tool := packaging.NewCreate(depsWithOps(ops))

	params := json.RawMessage(`{"registry":"s3://registry","name":"team/data","entries":[{"logical_path":"a.txt","content":"hi"}],"message":"first commit"}`)
	res, err := tool.Execute(context.Background(), params)
	require.NoError(t, err)
	require.False(t, res.IsError)
	require.Len(t, ops.LastEntries, 1)
	assert.Equal(t, "a.txt", ops.LastEntries[0].LogicalPath)
	assert.Equal(t, []byte("hi"), ops.LastEntries[0].Content)
}

func TestDelete_TopHashOptionalForTagOnlyDelete(t *testing.T) {
	ops := &toolkittest.Ops{}
	tool := packaging.NewDelete(depsWithOps(ops))

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"registry":"s3://registry","name":"team/data"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)
	assert.Equal(t, "", ops.LastTopHash)
	assert.Equal(t, "team/data", ops.LastName)
}

func TestDelete_PropagatesInUseError(t *testing.T) {
	ops := &toolkittest.Ops{Err: apperr.New(apperr.InUse, "revision referenced elsewhere")}
	tool := packaging.NewDelete(depsWithOps(ops))

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"registry":"s3://registry","name":"team/data","top_hash":"abc"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.InUse))
}
