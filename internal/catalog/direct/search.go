package direct

import (
	"context"
	"strings"

	"github.com/quiltdata/quiltmcp/internal/awsdata"
	"github.com/quiltdata/quiltmcp/internal/catalog"
)

// Search performs a plain S3 key-prefix/substring scan across the
// requested buckets — the direct backend's fallback text search, scored at
// the flat 0.6 weight internal/search's merge table assigns S3 results.
func (b *Backend) Search(ctx context.Context, rc *catalog.RequestContext, q catalog.SearchQuery) ([]catalog.SearchHit, error) {
	if q.Text == "" || len(q.Buckets) == 0 {
		return nil, nil
	}
	client, err := awsdata.NewS3Client(ctx, rc.Credentials, rc.ProxyURL)
	if err != nil {
		return nil, err
	}

	var hits []catalog.SearchHit
	needle := strings.ToLower(q.Text)
	for _, bucket := range q.Buckets {
		objs, err := awsdata.ListObjects(ctx, client, bucket, "")
		if err != nil {
			continue
		}
		for _, o := range objs {
			if !strings.Contains(strings.ToLower(o.Key), needle) {
				continue
			}
			hits = append(hits, catalog.SearchHit{
				Kind:        catalog.HitObject,
				Score:       0.6,
				Backend:     "s3",
				Bucket:      bucket,
				Key:         o.Key,
				PhysicalURI: "s3://" + bucket + "/" + o.Key,
			})
			if q.Limit > 0 && len(hits) >= q.Limit {
				return hits, nil
			}
		}
	}
	return hits, nil
}
