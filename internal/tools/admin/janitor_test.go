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

func TestJanitorRun_RejectsDirectBackend(t *testing.T) {
	deps := &toolkit.Deps{
		Resolver: &toolkittest.Resolver{RC: toolkittest.NewRC(config.BackendDirect)},
		Factory:  &toolkittest.Factory{Ops: &toolkittest.Ops{}},
	}
	tool := admin.NewJanitorRun(deps)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"registry":"s3://registry"}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.PermissionDenied))
}

func TestJanitorRun_RequiresRegistry(t *testing.T) {
	tool := admin.NewJanitorRun(graphQLDeps(&toolkittest.Ops{}))

	res, err := tool.Execute(context.Background(), json.RawMessage(`{}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}

// scanningOps wraps toolkittest.Ops so TagList/PackageManifest can return
// per-package-scoped answers instead of one fixed value, since JanitorRun
// iterates packages and their tags.
type scanningOps struct {
	*toolkittest.Ops
	tagsByPackage    map[string]map[string]string
	missingTopHashes map[string]bool
}

func (s *scanningOps) TagList(ctx context.Context, rc *catalog.RequestContext, registry, name string) (map[string]string, error) {
	return s.tagsByPackage[name], nil
}

func (s *scanningOps) PackageManifest(ctx context.Context, rc *catalog.RequestContext, ref catalog.PackageRef) (*catalog.Manifest, error) {
	if s.missingTopHashes[ref.TopHash] {
		return nil, apperr.New(apperr.NotFound, "manifest not found")
	}
	return &catalog.Manifest{Registry: ref.Registry, Name: ref.Name, TopHash: ref.TopHash}, nil
}

func TestJanitorRun_ReportsOrphanedTags(t *testing.T) {
	ops := &scanningOps{
		Ops: &toolkittest.Ops{Packages: []string{"team/data"}},
		tagsByPackage: map[string]map[string]string{
			"team/data": {"latest": "live-hash", "stale": "gone-hash"},
		},
		missingTopHashes: map[string]bool{"gone-hash": true},
	}
	deps := &toolkit.Deps{
		Resolver: &toolkittest.Resolver{RC: toolkittest.NewRC(config.BackendGraphQL)},
		Factory:  &toolkittest.Factory{Ops: ops},
	}
	tool := admin.NewJanitorRun(deps)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"registry":"s3://registry"}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var report admin.JanitorReport
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &report))
	assert.Equal(t, 1, report.PackagesScanned)
	assert.Equal(t, 2, report.TagsScanned)
	require.Len(t, report.OrphanedTags, 1)
	assert.Equal(t, "stale", report.OrphanedTags[0].Tag)
	assert.Equal(t, "gone-hash", report.OrphanedTags[0].TopHash)
}
