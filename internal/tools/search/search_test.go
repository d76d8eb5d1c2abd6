package search_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/config"
	searchengine "github.com/quiltdata/quiltmcp/internal/search"
	"github.com/quiltdata/quiltmcp/internal/tools/search"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit/toolkittest"
)

func TestQuery_RequiresQuery(t *testing.T) {
	tool := search.NewQuery(&toolkit.Deps{})

	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}

func TestQuery_RejectsInvalidScope(t *testing.T) {
	tool := search.NewQuery(&toolkit.Deps{})

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"csv","scope":"universe"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestQuery_RejectsInvalidType(t *testing.T) {
	tool := search.NewQuery(&toolkit.Deps{})

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"csv","type":"everything"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestQuery_ReturnsHitsFromEngine(t *testing.T) {
	rc := toolkittest.NewRC(config.BackendGraphQL)
	searcher := &toolkittest.Searcher{Result: &searchengine.Result{
		Hits:         []catalog.SearchHit{{Kind: catalog.HitPackage, Name: "team/data"}},
		FallbackUsed: true,
		Class:        searchengine.ClassMetadataPredicate,
	}}
	deps := &toolkit.Deps{
		Resolver: &toolkittest.Resolver{RC: rc},
		Search:   searcher,
	}
	tool := search.NewQuery(deps)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"tags:genomics"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got struct {
		Hits         []catalog.SearchHit `json:"hits"`
		Count        int                 `json:"count"`
		Class        string              `json:"class"`
		FallbackUsed bool                `json:"fallback_used"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &got))
	assert.Equal(t, 1, got.Count)
	assert.True(t, got.FallbackUsed)
	assert.Equal(t, string(searchengine.ClassMetadataPredicate), got.Class)
}

func TestQuery_PropagatesEngineError(t *testing.T) {
	rc := toolkittest.NewRC(config.BackendGraphQL)
	deps := &toolkit.Deps{
		Resolver: &toolkittest.Resolver{RC: rc},
		Search:   &toolkittest.Searcher{Err: apperr.New(apperr.UpstreamUnavailable, "elasticsearch timed out")},
	}
	tool := search.NewQuery(deps)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"query":"genomics data"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.UpstreamUnavailable))
}
