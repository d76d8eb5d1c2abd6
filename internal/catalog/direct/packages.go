package direct

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/awsdata"
	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/catalog/manifest"
)

// Package objects live under a fixed prefix in the registry bucket,
// mirroring Quilt3's own package store layout: manifests are content
// addressed by top_hash, and a name/tag pointer file holds the current
// top_hash for that (name, tag) pair.
const (
	manifestPrefix = ".quilt/packages/"
	pointerPrefix  = ".quilt/named_packages/"
)

func pointerKey(name, tag string) string {
	return pointerPrefix + name + "/" + tag
}

func manifestKey(topHash string) string {
	return manifestPrefix + topHash
}

// metaKey is the companion object holding the revision's user-metadata
// blob. It sits alongside the tab-separated entry lines rather than a
// column within them, since metadata is an arbitrary JSON value and the
// entry format is fixed-width.
func metaKey(topHash string) string {
	return manifestKey(topHash) + ".meta.json"
}

func (b *Backend) PackageList(ctx context.Context, rc *catalog.RequestContext, registry, prefix string, limit int) ([]string, error) {
	client, err := awsdata.NewS3Client(ctx, rc.Credentials, rc.ProxyURL)
	if err != nil {
		return nil, err
	}
	objs, err := awsdata.ListObjects(ctx, client, registry, pointerPrefix+prefix)
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	var names []string
	for _, o := range objs {
		rest := strings.TrimPrefix(o.Key, pointerPrefix)
		parts := strings.SplitN(rest, "/", 2)
		if len(parts) != 2 || seen[parts[0]] {
			continue
		}
		seen[parts[0]] = true
		names = append(names, parts[0])
		if limit > 0 && len(names) >= limit {
			break
		}
	}
	return names, nil
}

// resolveTopHash follows a PackageRef's tag pointer when TopHash is empty.
func (b *Backend) resolveTopHash(ctx context.Context, rc *catalog.RequestContext, registry string, ref catalog.PackageRef) (string, error) {
	if ref.TopHash != "" {
		return ref.TopHash, nil
	}
	tag := ref.Tag
	if tag == "" {
		tag = "latest"
	}
	client, err := awsdata.NewS3Client(ctx, rc.Credentials, rc.ProxyURL)
	if err != nil {
		return "", err
	}
	b2, err := awsdata.GetBytes(ctx, client, registry, pointerKey(ref.Name, tag), "", "")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(b2)), nil
}

func (b *Backend) PackageManifest(ctx context.Context, rc *catalog.RequestContext, ref catalog.PackageRef) (*catalog.Manifest, error) {
	topHash, err := b.resolveTopHash(ctx, rc, ref.Registry, ref)
	if err != nil {
		return nil, err
	}
	client, err := awsdata.NewS3Client(ctx, rc.Credentials, rc.ProxyURL)
	if err != nil {
		return nil, err
	}
	raw, err := awsdata.GetBytes(ctx, client, ref.Registry, manifestKey(topHash), "", "")
	if err != nil {
		return nil, err
	}
	entries := decodeManifestLines(raw)

	var meta map[string]any
	metaRaw, err := awsdata.GetBytes(ctx, client, ref.Registry, metaKey(topHash), "", "")
	if err != nil && apperr.As(err).Kind != apperr.NotFound {
		return nil, err
	}
	if err == nil {
		meta, err = decodeMeta(metaRaw)
		if err != nil {
			return nil, err
		}
	}

	m, err := manifest.Build(ref.Registry, ref.Name, entries, meta)
	if err != nil {
		return nil, err
	}
	m.TopHash = topHash
	return m, nil
}

func (b *Backend) PackageBrowse(ctx context.Context, rc *catalog.RequestContext, ref catalog.PackageRef, path string) (*catalog.Manifest, error) {
	m, err := b.PackageManifest(ctx, rc, ref)
	if err != nil {
		return nil, err
	}
	if path == "" {
		return m, nil
	}
	filtered := make([]catalog.ManifestEntry, 0, len(m.Entries))
	for _, e := range m.Entries {
		if strings.HasPrefix(e.LogicalPath, path) {
			filtered = append(filtered, e)
		}
	}
	out, err := manifest.Build(ref.Registry, ref.Name, filtered, m.Metadata)
	if err != nil {
		return nil, err
	}
	out.TopHash = m.TopHash
	return out, nil
}

func (b *Backend) PackageVersionsList(ctx context.Context, rc *catalog.RequestContext, registry, name string) ([]catalog.PackageVersion, error) {
	client, err := awsdata.NewS3Client(ctx, rc.Credentials, rc.ProxyURL)
	if err != nil {
		return nil, err
	}
	objs, err := awsdata.ListObjects(ctx, client, registry, pointerPrefix+name+"/")
	if err != nil {
		return nil, err
	}
	out := make([]catalog.PackageVersion, 0, len(objs))
	for _, o := range objs {
		tag := strings.TrimPrefix(o.Key, pointerPrefix+name+"/")
		raw, err := awsdata.GetBytes(ctx, client, registry, o.Key, "", "")
		if err != nil {
			continue
		}
		out = append(out, catalog.PackageVersion{
			TopHash: strings.TrimSpace(string(raw)),
			Ts:      o.LastModified.Unix(),
			Tags:    []string{tag},
		})
	}
	return out, nil
}

func (b *Backend) PackageCreateRevision(ctx context.Context, rc *catalog.RequestContext, registry, name string, entries []catalog.Entry, copyMode catalog.CopyMode, message string, meta map[string]any) (*catalog.Manifest, error) {
	client, err := awsdata.NewS3Client(ctx, rc.Credentials, rc.ProxyURL)
	if err != nil {
		return nil, err
	}

	resolved := make([]catalog.ManifestEntry, len(entries))
	for i, e := range entries {
		physical := e.SourceURI
		var hash string
		var size int64
		if e.Content != nil {
			hash = manifest.EntryHash(e.Content)
			size = int64(len(e.Content))
			if copyMode != catalog.CopyModeNone {
				target := registry + "/objects/" + hash
				_, key, _ := awsdata.KeyFromURI("s3://" + target)
				results := awsdata.PutBatch(ctx, client, registry, []awsdata.PutItem{{Key: key, Content: e.Content}})
				if !results[0].Success {
					return nil, apperr.Wrap(apperr.UpstreamUnavailable, "copy inline content into registry", results[0].Err)
				}
				physical = "s3://" + registry + "/" + key
			}
		}
		resolved[i] = catalog.ManifestEntry{LogicalPath: e.LogicalPath, PhysicalURI: physical, Size: size, Hash: hash}
	}

	built, err := manifest.Build(registry, name, resolved, meta)
	if err != nil {
		return nil, err
	}

	items := []awsdata.PutItem{
		{Key: manifestKey(built.TopHash), Content: encodeManifestLines(built.Entries)},
		{Key: pointerKey(name, "latest"), Content: []byte(built.TopHash)},
	}
	if len(built.Metadata) > 0 {
		metaRaw, err := encodeMeta(built.Metadata)
		if err != nil {
			return nil, apperr.Wrap(apperr.Internal, "encode package metadata", err)
		}
		items = append(items, awsdata.PutItem{Key: metaKey(built.TopHash), Content: metaRaw})
	}
	results := awsdata.PutBatch(ctx, client, registry, items)
	for _, r := range results {
		if !r.Success {
			return nil, apperr.Wrap(apperr.UpstreamUnavailable, "commit package revision", r.Err)
		}
	}
	return built, nil
}

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
	return b.PackageCreateRevision(ctx, rc, registry, name, flat, copyMode, message, baseManifest.Metadata)
}

// PackageDelete, without a top_hash, removes the "latest" tag pointer only
// — matching the documented cross-backend choice in DESIGN.md — rather
// than the physical manifest or revision objects.
func (b *Backend) PackageDelete(ctx context.Context, rc *catalog.RequestContext, registry, name string, topHash string) error {
	client, err := awsdata.NewS3Client(ctx, rc.Credentials, rc.ProxyURL)
	if err != nil {
		return err
	}
	if topHash == "" {
		_, err := client.DeleteObject(ctx, deleteInput(registry, pointerKey(name, "latest")))
		if err != nil {
			return apperr.Wrap(apperr.UpstreamUnavailable, "delete package pointer", err)
		}
		return nil
	}
	_, err = client.DeleteObject(ctx, deleteInput(registry, manifestKey(topHash)))
	if err != nil {
		return apperr.Wrap(apperr.UpstreamUnavailable, "delete package manifest", err)
	}
	_, _ = client.DeleteObject(ctx, deleteInput(registry, metaKey(topHash)))
	return nil
}

// decodeManifestLines/encodeManifestLines use a minimal tab-separated
// format (logical_path, physical_uri, size, hash) — intentionally simpler
// than Quilt3's JSONL manifest format since the direct backend only needs
// round-trip fidelity with itself, not byte compatibility with an external
// manifest reader.
func encodeManifestLines(entries []catalog.ManifestEntry) []byte {
	var sb strings.Builder
	for _, e := range entries {
		sb.WriteString(e.LogicalPath)
		sb.WriteByte('\t')
		sb.WriteString(e.PhysicalURI)
		sb.WriteByte('\t')
		sb.WriteString(strconv.FormatInt(e.Size, 10))
		sb.WriteByte('\t')
		sb.WriteString(e.Hash)
		sb.WriteByte('\n')
	}
	return []byte(sb.String())
}

func decodeManifestLines(raw []byte) []catalog.ManifestEntry {
	lines := strings.Split(strings.TrimRight(string(raw), "\n"), "\n")
	entries := make([]catalog.ManifestEntry, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, "\t", 4)
		if len(parts) != 4 {
			continue
		}
		size, _ := strconv.ParseInt(parts[2], 10, 64)
		entries = append(entries, catalog.ManifestEntry{
			LogicalPath: parts[0],
			PhysicalURI: parts[1],
			Size:        size,
			Hash:        parts[3],
		})
	}
	return entries
}

func encodeMeta(meta map[string]any) ([]byte, error) {
	return json.Marshal(meta)
}

func decodeMeta(raw []byte) (map[string]any, error) {
	var meta map[string]any
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "decode package metadata", err)
	}
	return meta, nil
}

func deleteInput(bucket, key string) *s3.DeleteObjectInput {
	return &s3.DeleteObjectInput{Bucket: &bucket, Key: &key}
}
