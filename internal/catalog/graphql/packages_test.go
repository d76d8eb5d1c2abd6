package graphql

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/catalog"
)

func TestPackageManifest_DecodesUserMeta(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{
				"package": map[string]any{
					"revision": map[string]any{
						"hash":     "abc123",
						"userMeta": map[string]any{"owner": "team-a"},
						"entries":  []map[string]any{{"logicalKey": "a.txt", "physicalKey": "s3://bkt/a.txt", "size": 1, "hash": "ha"}},
					},
				},
			},
		})
	}))
	defer srv.Close()

	b := New(srv.Client(), nil)
	rc := &catalog.RequestContext{CatalogURL: srv.URL}

	m, err := b.PackageManifest(t.Context(), rc, catalog.PackageRef{Registry: "reg", Name: "team/pkg"})
	require.NoError(t, err)
	require.NotNil(t, m.Metadata)
	assert.Equal(t, "team-a", m.Metadata["owner"])
}

func TestPackageDelete_EmptyTopHashDeletesTagMapEntry(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query string `json:"query"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotQuery = body.Query
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"packageDelete": map[string]any{"__typename": "Success"}},
		})
	}))
	defer srv.Close()

	b := New(srv.Client(), nil)
	rc := &catalog.RequestContext{CatalogURL: srv.URL}

	err := b.PackageDelete(t.Context(), rc, "reg", "team/pkg", "")
	require.NoError(t, err)
	assert.Contains(t, gotQuery, "packageDelete(")
	assert.NotContains(t, gotQuery, "packageRevisionDelete(")
}

func TestPackageDelete_TopHashDeletesSpecificRevision(t *testing.T) {
	var gotVars map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		json.NewDecoder(r.Body).Decode(&body)
		gotVars = body.Variables
		assert.Contains(t, body.Query, "packageRevisionDelete(")
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"packageRevisionDelete": map[string]any{"__typename": "Success"}},
		})
	}))
	defer srv.Close()

	b := New(srv.Client(), nil)
	rc := &catalog.RequestContext{CatalogURL: srv.URL}

	err := b.PackageDelete(t.Context(), rc, "reg", "team/pkg", "abc123")
	require.NoError(t, err)
	assert.Equal(t, "abc123", gotVars["hash"])
}

func TestPackageDelete_OperationErrorPropagates(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"packageRevisionDelete": map[string]any{"__typename": "OperationError", "message": "revision in use"}},
		})
	}))
	defer srv.Close()

	b := New(srv.Client(), nil)
	rc := &catalog.RequestContext{CatalogURL: srv.URL}

	err := b.PackageDelete(t.Context(), rc, "reg", "team/pkg", "abc123")
	require.Error(t, err)
}
