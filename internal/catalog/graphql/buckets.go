package graphql

import (
	"context"

	"github.com/quiltdata/quiltmcp/internal/catalog"
)

const bucketConfigsQuery = `query BucketConfigs { bucketConfigs { name title description canRead canWrite isRegistry } }`

type bucketConfigsData struct {
	BucketConfigs []struct {
		Name        string `json:"name"`
		Title       string `json:"title"`
		Description string `json:"description"`
		CanRead     bool   `json:"canRead"`
		CanWrite    bool   `json:"canWrite"`
		IsRegistry  bool   `json:"isRegistry"`
	} `json:"bucketConfigs"`
}

// BucketList queries the catalog's bucketConfigs, the authoritative source
// of read/write flags (the direct backend's IAM-derived flags are only a
// fallback — see DESIGN.md's Open Question decision).
func (b *Backend) BucketList(ctx context.Context, rc *catalog.RequestContext) ([]catalog.Bucket, error) {
	var data bucketConfigsData
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, bucketConfigsQuery, nil, &data); err != nil {
		return nil, err
	}
	out := make([]catalog.Bucket, len(data.BucketConfigs))
	for i, bc := range data.BucketConfigs {
		out[i] = catalog.Bucket{
			Name:        bc.Name,
			Title:       bc.Title,
			Description: bc.Description,
			CanRead:     bc.CanRead,
			CanWrite:    bc.CanWrite,
			IsRegistry:  bc.IsRegistry,
		}
	}
	return out, nil
}
