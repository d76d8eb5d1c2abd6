package toolkit_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/config"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit/toolkittest"
)

func TestDeps_Resolve_Success(t *testing.T) {
	rc := toolkittest.NewRC(config.BackendDirect)
	d := &toolkit.Deps{Resolver: &toolkittest.Resolver{RC: rc}}

	got, errResult, err := d.Resolve(context.Background())
	require.NoError(t, err)
	assert.Nil(t, errResult)
	assert.Same(t, rc, got)
}

func TestDeps_Resolve_PropagatesAuthError(t *testing.T) {
	authErr := apperr.New(apperr.AuthNoCredentials, "no credentials found")
	d := &toolkit.Deps{Resolver: &toolkittest.Resolver{Err: authErr}}

	rc, errResult, err := d.Resolve(context.Background())
	require.NoError(t, err)
	assert.Nil(t, rc)
	require.NotNil(t, errResult)
	assert.True(t, errResult.IsError)
	assert.Contains(t, errResult.Content[0].Text, string(apperr.AuthNoCredentials))
}

func TestErrorResult_PassesThroughAppError(t *testing.T) {
	ae := apperr.New(apperr.NotFound, "no such package").WithFixHint("check the name")
	res := toolkit.ErrorResult(ae)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.NotFound))
	assert.Contains(t, res.Content[0].Text, "check the name")
}

func TestErrorResult_WrapsPlainErrorAsInternal(t *testing.T) {
	res := toolkit.ErrorResult(errors.New("boom"))
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.Internal))
	assert.Contains(t, res.Content[0].Text, "boom")
}

func TestValidationError(t *testing.T) {
	res := toolkit.ValidationError("bucket is required")
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
	assert.Contains(t, res.Content[0].Text, "bucket is required")
}

func TestParseParams_EmptyRawIsNoop(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	assert.Nil(t, toolkit.ParseParams(nil, &dst))
	assert.Equal(t, "", dst.Name)
}

func TestParseParams_MalformedJSONReturnsValidationError(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	res := toolkit.ParseParams(json.RawMessage(`{not json`), &dst)
	require.NotNil(t, res)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}

func TestParseParams_ValidJSONPopulatesDst(t *testing.T) {
	var dst struct {
		Name string `json:"name"`
	}
	res := toolkit.ParseParams(json.RawMessage(`{"name":"foo"}`), &dst)
	assert.Nil(t, res)
	assert.Equal(t, "foo", dst.Name)
}
