package direct

import (
	"context"
	"strings"

	"github.com/quiltdata/quiltmcp/internal/awsdata"
	"github.com/quiltdata/quiltmcp/internal/catalog"
)

func (b *Backend) TagList(ctx context.Context, rc *catalog.RequestContext, registry, name string) (map[string]string, error) {
	client, err := awsdata.NewS3Client(ctx, rc.Credentials, rc.ProxyURL)
	if err != nil {
		return nil, err
	}
	objs, err := awsdata.ListObjects(ctx, client, registry, pointerPrefix+name+"/")
	if err != nil {
		return nil, err
	}
	out := map[string]string{}
	for _, o := range objs {
		tag := strings.TrimPrefix(o.Key, pointerPrefix+name+"/")
		raw, err := awsdata.GetBytes(ctx, client, registry, o.Key, "", "")
		if err != nil {
			continue
		}
		out[tag] = strings.TrimSpace(string(raw))
	}
	return out, nil
}

func (b *Backend) TagAdd(ctx context.Context, rc *catalog.RequestContext, registry, name, tag, topHash string) error {
	client, err := awsdata.NewS3Client(ctx, rc.Credentials, rc.ProxyURL)
	if err != nil {
		return err
	}
	results := awsdata.PutBatch(ctx, client, registry, []awsdata.PutItem{
		{Key: pointerKey(name, tag), Content: []byte(topHash)},
	})
	return results[0].Err
}

// TagDelete removes the (name, tag) -> top_hash pointer only, never the
// underlying manifest — the same documented choice PackageDelete makes.
func (b *Backend) TagDelete(ctx context.Context, rc *catalog.RequestContext, registry, name, tag string) error {
	client, err := awsdata.NewS3Client(ctx, rc.Credentials, rc.ProxyURL)
	if err != nil {
		return err
	}
	_, err = client.DeleteObject(ctx, deleteInput(registry, pointerKey(name, tag)))
	return err
}
