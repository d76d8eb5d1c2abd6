package buckets_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/config"
	"github.com/quiltdata/quiltmcp/internal/tools/buckets"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit/toolkittest"
)

func TestList_ReturnsBucketsFromBackend(t *testing.T) {
	rc := toolkittest.NewRC(config.BackendDirect)
	ops := &toolkittest.Ops{Buckets: []catalog.Bucket{
		{Name: "raw-data", CanRead: true, IsRegistry: true},
		{Name: "scratch", CanRead: true, CanWrite: true},
	}}
	deps := &toolkit.Deps{
		Resolver: &toolkittest.Resolver{RC: rc},
		Factory:  &toolkittest.Factory{Ops: ops},
	}
	tool := buckets.NewList(deps)

	res, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got struct {
		Buckets []catalog.Bucket `json:"buckets"`
		Count   int              `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &got))
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, "raw-data", got.Buckets[0].Name)
}

func TestList_PropagatesResolverAuthError(t *testing.T) {
	deps := &toolkit.Deps{
		Resolver: &toolkittest.Resolver{Err: apperr.New(apperr.AuthInvalid, "token expired")},
	}
	tool := buckets.NewList(deps)

	res, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.AuthInvalid))
}

func TestList_PropagatesBackendError(t *testing.T) {
	rc := toolkittest.NewRC(config.BackendGraphQL)
	ops := &toolkittest.Ops{Err: apperr.New(apperr.UpstreamUnavailable, "catalog unreachable")}
	deps := &toolkit.Deps{
		Resolver: &toolkittest.Resolver{RC: rc},
		Factory:  &toolkittest.Factory{Ops: ops},
	}
	tool := buckets.NewList(deps)

	res, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.UpstreamUnavailable))
}

func TestObjectsList_RequiresBucket(t *testing.T) {
	deps := &toolkit.Deps{}
	tool := buckets.NewObjectsList(deps)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"prefix":"foo/"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}

func TestObjectsGet_RequiresBucketAndKey(t *testing.T) {
	deps := &toolkit.Deps{}
	tool := buckets.NewObjectsGet(deps)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"bucket":"raw-data"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}

func TestObjectsPut_RequiresNonEmptyItems(t *testing.T) {
	deps := &toolkit.Deps{}
	tool := buckets.NewObjectsPut(deps)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"bucket":"raw-data","items":[]}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}
