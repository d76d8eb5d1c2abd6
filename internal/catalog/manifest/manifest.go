// Package manifest builds deterministic, content-addressed package
// manifests shared by the direct and GraphQL backends.
package manifest

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"

	"github.com/quiltdata/quiltmcp/internal/catalog"
)

// canonicalEntry is the exact byte shape hashed into top_hash. Field order
// and names are part of the hash's stability contract — changing either
// changes every existing top_hash.
type canonicalEntry struct {
	LogicalPath string `json:"logical_path"`
	PhysicalURI string `json:"physical_uri"`
	Size        int64  `json:"size"`
	Hash        string `json:"hash"`
}

// canonicalManifest is the exact byte shape hashed into top_hash: entries
// plus the user-metadata blob, per the write protocol's "manifest is
// entries plus metadata" step. encoding/json marshals map[string]any keys
// in sorted order, so meta's encoding is already deterministic.
type canonicalManifest struct {
	Entries  []canonicalEntry `json:"entries"`
	Metadata map[string]any   `json:"metadata,omitempty"`
}

// Build sorts entries by logical path, computes top_hash over the canonical
// JSON encoding of entries plus metadata, and returns a committed Manifest.
// Building the same entry set and metadata twice always yields the same
// top_hash: sorting makes the hash independent of caller-supplied ordering,
// satisfying the write protocol's idempotent-commit invariant.
func Build(registry, name string, entries []catalog.ManifestEntry, meta map[string]any) (*catalog.Manifest, error) {
	sorted := make([]catalog.ManifestEntry, len(entries))
	copy(sorted, entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LogicalPath < sorted[j].LogicalPath })

	canon := make([]canonicalEntry, len(sorted))
	for i, e := range sorted {
		canon[i] = canonicalEntry{
			LogicalPath: e.LogicalPath,
			PhysicalURI: e.PhysicalURI,
			Size:        e.Size,
			Hash:        e.Hash,
		}
	}

	b, err := json.Marshal(canonicalManifest{Entries: canon, Metadata: meta})
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(b)

	return &catalog.Manifest{
		Registry: registry,
		Name:     name,
		TopHash:  hex.EncodeToString(sum[:]),
		Entries:  sorted,
		Metadata: meta,
	}, nil
}

// EntryHash is the per-entry content hash for inline content, used when no
// upstream ETag/checksum is available (e.g. put-then-reference in the same
// revision).
func EntryHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}
