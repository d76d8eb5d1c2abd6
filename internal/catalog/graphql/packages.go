package graphql

import (
	"context"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/catalog/manifest"
)

const packageListQuery = `query PackageList($registry: String!, $prefix: String, $limit: Int) {
  packages(bucket: $registry, filter: $prefix, perPage: $limit) { name }
}`

type packageListData struct {
	Packages []struct {
		Name string `json:"name"`
	} `json:"packages"`
}

func (b *Backend) PackageList(ctx context.Context, rc *catalog.RequestContext, registry, prefix string, limit int) ([]string, error) {
	var data packageListData
	vars := map[string]any{"registry": registry, "prefix": prefix, "limit": limit}
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, packageListQuery, vars, &data); err != nil {
		return nil, err
	}
	names := make([]string, len(data.Packages))
	for i, p := range data.Packages {
		names[i] = p.Name
	}
	return names, nil
}

const packageManifestQuery = `query PackageManifest($registry: String!, $name: String!, $hash: String, $tag: String) {
  package(bucket: $registry, name: $name) {
    revision(hashOrTag: $hash, tag: $tag) {
      hash
      userMeta
      entries { logicalKey physicalKey size hash }
    }
  }
}`

type packageManifestData struct {
	Package struct {
		Revision struct {
			Hash     string         `json:"hash"`
			UserMeta map[string]any `json:"userMeta"`
			Entries  []struct {
				LogicalKey  string `json:"logicalKey"`
				PhysicalKey string `json:"physicalKey"`
				Size        int64  `json:"size"`
				Hash        string `json:"hash"`
			} `json:"entries"`
		} `json:"revision"`
	} `json:"package"`
}

func (b *Backend) PackageManifest(ctx context.Context, rc *catalog.RequestContext, ref catalog.PackageRef) (*catalog.Manifest, error) {
	var data packageManifestData
	vars := map[string]any{"registry": ref.Registry, "name": ref.Name, "hash": ref.TopHash, "tag": ref.Tag}
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, packageManifestQuery, vars, &data); err != nil {
		return nil, err
	}
	entries := make([]catalog.ManifestEntry, len(data.Package.Revision.Entries))
	for i, e := range data.Package.Revision.Entries {
		entries[i] = catalog.ManifestEntry{LogicalPath: e.LogicalKey, PhysicalURI: e.PhysicalKey, Size: e.Size, Hash: e.Hash}
	}
	return manifest.Build(ref.Registry, ref.Name, entries, data.Package.Revision.UserMeta)
}

// PackageBrowse returns the manifest filtered to entries under path; an
// empty path returns the full manifest, matching a directory-style browse.
func (b *Backend) PackageBrowse(ctx context.Context, rc *catalog.RequestContext, ref catalog.PackageRef, path string) (*catalog.Manifest, error) {
	m, err := b.PackageManifest(ctx, rc, ref)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return m, nil
	}
	filtered := m.Entries[:0:0]
	for _, e := range m.Entries {
		if len(e.LogicalPath) >= len(path) && e.LogicalPath[:len(path)] == path {
			filtered = append(filtered, e)
		}
	}
	return manifest.Build(ref.Registry, ref.Name, filtered, m.Metadata)
}

const packageVersionsQuery = `query PackageVersions($registry: String!, $name: String!) {
  package(bucket: $registry, name: $name) {
    revisions { hash modified message userMeta }
  }
}`

type packageVersionsData struct {
	Package struct {
		Revisions []struct {
			Hash     string `json:"hash"`
			Modified int64  `json:"modified"`
			Message  string `json:"message"`
		} `json:"revisions"`
	} `json:"package"`
}

func (b *Backend) PackageVersionsList(ctx context.Context, rc *catalog.RequestContext, registry, name string) ([]catalog.PackageVersion, error) {
	var data packageVersionsData
	vars := map[string]any{"registry": registry, "name": name}
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, packageVersionsQuery, vars, &data); err != nil {
		return nil, err
	}
	out := make([]catalog.PackageVersion, len(data.Package.Revisions))
	for i, r := range data.Package.Revisions {
		out[i] = catalog.PackageVersion{TopHash: r.Hash, Ts: r.Modified, Message: r.Message}
	}
	return out, nil
}

const pushPackageMutation = `mutation PushPackage($params: PackagePushParams!, $src: PackageConstructSource!) {
  packageConstruct(params: $params, src: $src) {
    __typename
    ... on PackagePushSuccess { package { revision { hash } } }
    ... on InvalidInput { message }
    ... on OperationError { message }
  }
}`

type pushResult struct {
	TypeName string `json:"__typename"`
	Message  string `json:"message"`
	Package  struct {
		Revision struct {
			Hash string `json:"hash"`
		} `json:"revision"`
	} `json:"package"`
}

func (b *Backend) pushRevision(ctx context.Context, rc *catalog.RequestContext, registry, name string, entries []catalog.Entry, copyMode catalog.CopyMode, message string, meta map[string]any) (*catalog.Manifest, error) {
	manifestEntries := make([]catalog.ManifestEntry, len(entries))
	gqlEntries := make([]map[string]any, len(entries))
	for i, e := range entries {
		physical := e.SourceURI
		var hash string
		var size int64
		if e.Content != nil {
			hash = manifest.EntryHash(e.Content)
			size = int64(len(e.Content))
		}
		manifestEntries[i] = catalog.ManifestEntry{LogicalPath: e.LogicalPath, PhysicalURI: physical, Size: size, Hash: hash}
		gqlEntries[i] = map[string]any{"logicalKey": e.LogicalPath, "physicalKey": physical, "copyMode": string(copyMode)}
	}

	var result struct {
		PackageConstruct pushResult `json:"packageConstruct"`
	}
	vars := map[string]any{
		"params": map[string]any{"bucket": registry, "name": name, "message": message, "userMeta": meta},
		"src":    map[string]any{"entries": gqlEntries, "copyData": copyMode != catalog.CopyModeNone},
	}
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, pushPackageMutation, vars, &result); err != nil {
		return nil, err
	}
	r := result.PackageConstruct
	if r.TypeName != "PackagePushSuccess" {
		return nil, apperr.New(resultKind(r.TypeName), r.Message)
	}

	built, err := manifest.Build(registry, name, manifestEntries, meta)
	if err != nil {
		return nil, err
	}
	built.TopHash = r.Package.Revision.Hash
	return built, nil
}

func (b *Backend) PackageCreateRevision(ctx context.Context, rc *catalog.RequestContext, registry, name string, entries []catalog.Entry, copyMode catalog.CopyMode, message string, meta map[string]any) (*catalog.Manifest, error) {
	return b.pushRevision(ctx, rc, registry, name, entries, copyMode, message, meta)
}

// PackageUpdateRevision fetches the base manifest, overlays the new entries
// by logical path, and pushes the merged set as a new revision.
func (b *Backend) PackageUpdateRevision(ctx context.Context, rc *catalog.RequestContext, registry, name string, base catalog.PackageRef, entries []catalog.Entry, copyMode catalog.CopyMode, message string) (*catalog.Manifest, error) {
	baseManifest, err := b.PackageManifest(ctx, rc, base)
	if err != nil {
		return nil, err
	}
	merged := map[string]catalog.Entry{}
	for _, e := range baseManifest.Entries {
		merged[e.LogicalPath] = catalog.Entry{LogicalPath: e.LogicalPath, SourceURI: e.PhysicalURI}
	}
	for _, e := range entries {
		merged[e.LogicalPath] = e
	}
	flat := make([]catalog.Entry, 0, len(merged))
	for _, e := range merged {
		flat = append(flat, e)
	}
	return b.pushRevision(ctx, rc, registry, name, flat, copyMode, message, baseManifest.Metadata)
}

// deletePackageMutation removes the package's tag-map entry entirely, used
// when no top_hash is given.
const deletePackageMutation = `mutation DeletePackage($registry: String!, $name: String!) {
  packageDelete(bucket: $registry, name: $name) {
    __typename
    ... on InvalidInput { message }
    ... on OperationError { message }
  }
}`

// deleteRevisionMutation removes one specific revision by hash, leaving the
// rest of the package's tag map untouched.
const deleteRevisionMutation = `mutation DeletePackageRevision($registry: String!, $name: String!, $hash: String!) {
  packageRevisionDelete(bucket: $registry, name: $name, hash: $hash) {
    __typename
    ... on InvalidInput { message }
    ... on OperationError { message }
  }
}`

// PackageDelete mirrors the direct backend's two-path branch (see
// internal/catalog/direct/packages.go): an empty topHash deletes the
// package's tag-map entry, a non-empty one deletes that specific revision
// only.
func (b *Backend) PackageDelete(ctx context.Context, rc *catalog.RequestContext, registry, name string, topHash string) error {
	var result struct {
		PackageDelete         unionResult `json:"packageDelete"`
		PackageRevisionDelete unionResult `json:"packageRevisionDelete"`
	}
	if topHash == "" {
		vars := map[string]any{"registry": registry, "name": name}
		if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, deletePackageMutation, vars, &result); err != nil {
			return err
		}
		if result.PackageDelete.TypeName != "" && result.PackageDelete.TypeName != "Success" {
			return apperr.New(resultKind(result.PackageDelete.TypeName), result.PackageDelete.Message)
		}
		return nil
	}
	vars := map[string]any{"registry": registry, "name": name, "hash": topHash}
	if err := b.do(ctx, rc.CatalogURL+"/graphql", rc.Token, deleteRevisionMutation, vars, &result); err != nil {
		return err
	}
	if result.PackageRevisionDelete.TypeName != "" && result.PackageRevisionDelete.TypeName != "Success" {
		return apperr.New(resultKind(result.PackageRevisionDelete.TypeName), result.PackageRevisionDelete.Message)
	}
	return nil
}
