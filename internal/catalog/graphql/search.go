package graphql

import (
	"context"

	"github.com/quiltdata/quiltmcp/internal/catalog"
)

const metadataSearchQuery = `query Search($buckets: [String!], $text: String!) {
  searchPackages(buckets: $buckets, query: $text) {
    results { bucket name hash score }
  }
}`

type metadataSearchData struct {
	SearchPackages struct {
		Results []struct {
			Bucket string  `json:"bucket"`
			Name   string  `json:"name"`
			Hash   string  `json:"hash"`
			Score  float64 `json:"score"`
		} `json:"results"`
	} `json:"searchPackages"`
}

// Search answers metadata-predicate and package-scope queries via the
// catalog's searchPackages query; the GraphQL source always reports score
// 0.9 in the blended-score table (internal/search normalizes this further
// when merging with other backends).
func (b *Backend) Search(ctx context.Context, rc *catalog.RequestContext, q catalog.SearchQuery) ([]catalog.SearchHit, error) {
	var data metadataSearchData
	vars := map[string]any{"buckets": q.Buckets, "text": q.Text}
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, metadataSearchQuery, vars, &data); err != nil {
		return nil, err
	}
	hits := make([]catalog.SearchHit, len(data.SearchPackages.Results))
	for i, r := range data.SearchPackages.Results {
		hits[i] = catalog.SearchHit{
			Kind:     catalog.HitPackage,
			Score:    0.9,
			Backend:  "graphql",
			Registry: r.Bucket,
			Name:     r.Name,
			TopHash:  r.Hash,
		}
	}
	return hits, nil
}
