package direct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/catalog"
)

func TestEncodeDecodeManifestLines_RoundTrip(t *testing.T) {
	entries := []catalog.ManifestEntry{
		{LogicalPath: "a.txt", PhysicalURI: "s3://bkt/a.txt", Size: 10, Hash: "abc"},
		{LogicalPath: "dir/b.txt", PhysicalURI: "s3://bkt/dir/b.txt", Size: 20, Hash: "def"},
	}

	raw := encodeManifestLines(entries)
	decoded := decodeManifestLines(raw)

	require.Len(t, decoded, 2)
	assert.Equal(t, entries[0], decoded[0])
	assert.Equal(t, entries[1], decoded[1])
}

func TestDecodeManifestLines_EmptyInput(t *testing.T) {
	assert.Empty(t, decodeManifestLines([]byte("")))
}

func TestPointerKeyAndManifestKey(t *testing.T) {
	assert.Equal(t, ".quilt/named_packages/team/pkg/latest", pointerKey("team/pkg", "latest"))
	assert.Equal(t, ".quilt/packages/abc123", manifestKey("abc123"))
}

func TestMetaKey(t *testing.T) {
	assert.Equal(t, ".quilt/packages/abc123.meta.json", metaKey("abc123"))
}

func TestEncodeDecodeMeta_RoundTrip(t *testing.T) {
	meta := map[string]any{"owner": "team-a", "count": float64(3)}

	raw, err := encodeMeta(meta)
	require.NoError(t, err)
	decoded, err := decodeMeta(raw)
	require.NoError(t, err)

	assert.Equal(t, meta, decoded)
}
