package graphql

import (
	"context"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
)

const tagListQuery = `query TagList($registry: String!, $name: String!) {
  package(bucket: $registry, name: $name) { tags { tag hash } }
}`

type tagListData struct {
	Package struct {
		Tags []struct {
			Tag  string `json:"tag"`
			Hash string `json:"hash"`
		} `json:"tags"`
	} `json:"package"`
}

func (b *Backend) TagList(ctx context.Context, rc *catalog.RequestContext, registry, name string) (map[string]string, error) {
	var data tagListData
	vars := map[string]any{"registry": registry, "name": name}
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, tagListQuery, vars, &data); err != nil {
		return nil, err
	}
	out := make(map[string]string, len(data.Package.Tags))
	for _, t := range data.Package.Tags {
		out[t.Tag] = t.Hash
	}
	return out, nil
}

const tagAddMutation = `mutation TagAdd($registry: String!, $name: String!, $tag: String!, $hash: String!) {
  packageTag(bucket: $registry, name: $name, tag: $tag, hash: $hash) {
    __typename
    ... on InvalidInput { message }
    ... on OperationError { message }
  }
}`

func (b *Backend) TagAdd(ctx context.Context, rc *catalog.RequestContext, registry, name, tag, topHash string) error {
	var result struct {
		PackageTag unionResult `json:"packageTag"`
	}
	vars := map[string]any{"registry": registry, "name": name, "tag": tag, "hash": topHash}
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, tagAddMutation, vars, &result); err != nil {
		return err
	}
	if result.PackageTag.TypeName != "" && result.PackageTag.TypeName != "Success" {
		return apperr.New(resultKind(result.PackageTag.TypeName), result.PackageTag.Message)
	}
	return nil
}

const tagDeleteMutation = `mutation TagDelete($registry: String!, $name: String!, $tag: String!) {
  packageTagDelete(bucket: $registry, name: $name, tag: $tag) {
    __typename
    ... on InvalidInput { message }
    ... on OperationError { message }
  }
}`

// TagDelete removes the (name, tag) -> top_hash association only; it never
// touches the underlying revision. PackageDelete does not call this
// helper; without a top_hash it sends its own packageDelete mutation (see
// DESIGN.md for that choice).
func (b *Backend) TagDelete(ctx context.Context, rc *catalog.RequestContext, registry, name, tag string) error {
	var result struct {
		PackageTagDelete unionResult `json:"packageTagDelete"`
	}
	vars := map[string]any{"registry": registry, "name": name, "tag": tag}
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, tagDeleteMutation, vars, &result); err != nil {
		return err
	}
	if result.PackageTagDelete.TypeName != "" && result.PackageTagDelete.TypeName != "Success" {
		return apperr.New(resultKind(result.PackageTagDelete.TypeName), result.PackageTagDelete.Message)
	}
	return nil
}
