package direct

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/glue"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/awsdata"
	"github.com/quiltdata/quiltmcp/internal/catalog"
)

// BucketList falls back to enumerating Glue catalog databases tagged as
// registry buckets, since raw S3 has no notion of "registry" or
// read/write intent — this is a best-effort fallback; the GraphQL
// bucketConfigs query is authoritative when available (see DESIGN.md).
func (b *Backend) BucketList(ctx context.Context, rc *catalog.RequestContext) ([]catalog.Bucket, error) {
	glueClient, err := newGlueClient(ctx, rc)
	if err != nil {
		return nil, err
	}

	resp, err := glueClient.GetDatabases(ctx, &glue.GetDatabasesInput{})
	if err != nil {
		return nil, apperr.Wrap(apperr.UpstreamUnavailable, "list glue databases", err)
	}

	out := make([]catalog.Bucket, 0, len(resp.DatabaseList))
	for _, db := range resp.DatabaseList {
		if db.LocationUri == nil {
			continue
		}
		bucket, _, ok := awsdata.KeyFromURI(*db.LocationUri)
		if !ok {
			continue
		}
		out = append(out, catalog.Bucket{
			Name:       bucket,
			CanRead:    true,
			CanWrite:   true,
			IsRegistry: true,
		})
	}
	return out, nil
}
