package search

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quiltdata/quiltmcp/internal/catalog"
)

func TestNormalize_AppliesFixedBackendWeights(t *testing.T) {
	hits := []catalog.SearchHit{
		{Backend: "elasticsearch", Score: 10},
		{Backend: "graphql", Score: 5},
		{Backend: "s3", Score: 1},
	}
	out := Normalize(hits)
	assert.InDelta(t, 1.0, out[0].Score, 0.001)
	assert.InDelta(t, 0.9, out[1].Score, 0.001)
	assert.InDelta(t, 0.6, out[2].Score, 0.001)
}

func TestDedupe_CollapsesToHighestScoringInstance(t *testing.T) {
	hits := []catalog.SearchHit{
		{Kind: catalog.HitObject, PhysicalURI: "s3://b/k", Score: 0.4, Backend: "s3"},
		{Kind: catalog.HitObject, PhysicalURI: "s3://b/k", Score: 0.9, Backend: "elasticsearch"},
	}
	out := Dedupe(hits)
	assert.Len(t, out, 1)
	assert.Equal(t, "elasticsearch", out[0].Backend)
}

func TestDedupe_PackageIdentityIgnoresPhysicalURI(t *testing.T) {
	hits := []catalog.SearchHit{
		{Kind: catalog.HitPackage, Registry: "bkt", Name: "team/pkg", TopHash: "abc", Score: 0.5},
		{Kind: catalog.HitPackage, Registry: "bkt", Name: "team/pkg", TopHash: "abc", Score: 0.7},
	}
	out := Dedupe(hits)
	assert.Len(t, out, 1)
	assert.Equal(t, 0.7, out[0].Score)
}

func TestCollapsePackageScope_BoostsManifestMatchesAndAttachesEntries(t *testing.T) {
	packageHits := []catalog.SearchHit{
		{Kind: catalog.HitPackage, Registry: "bkt", Name: "team/pkg", Score: 0.5},
	}
	entryHits := []catalog.SearchHit{
		{Kind: catalog.HitObject, Registry: "bkt", Name: "team/pkg", MatchedEntries: []catalog.ManifestEntry{{LogicalPath: "a.csv"}}},
	}
	out := CollapsePackageScope(packageHits, entryHits)
	assert.Len(t, out, 1)
	assert.Equal(t, 1.0, out[0].Score)
	assert.Len(t, out[0].MatchedEntries, 1)
}
