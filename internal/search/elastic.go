package search

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
)

// ESBackend wraps the low-level esapi.SearchRequest against the catalog's
// fronted Elasticsearch index (no high-level ES client is used — the
// low-level API is what the catalog's object/package index expects, named
// rather than grounded; see DESIGN.md).
type ESBackend struct {
	Client *elasticsearch.Client
	Index  string
}

type esQuery struct {
	Query struct {
		Bool struct {
			Must   []map[string]any `json:"must"`
			Filter []map[string]any `json:"filter,omitempty"`
		} `json:"bool"`
	} `json:"query"`
}

type esHit struct {
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

type esSourceDoc struct {
	Bucket      string `json:"bucket"`
	Key         string `json:"key"`
	PhysicalURI string `json:"physical_uri"`
}

type esResponse struct {
	Hits struct {
		Hits []esHit `json:"hits"`
	} `json:"hits"`
}

// Search builds a bool query (a match clause for q.Text plus a terms
// filter on buckets when non-empty) and returns normalized object hits.
func (e *ESBackend) Search(ctx context.Context, q catalog.SearchQuery) ([]catalog.SearchHit, error) {
	var body esQuery
	body.Query.Bool.Must = []map[string]any{{"match": map[string]any{"content": q.Text}}}
	if len(q.Buckets) > 0 {
		body.Query.Bool.Filter = []map[string]any{{"terms": map[string]any{"bucket": q.Buckets}}}
	}

	buf, err := json.Marshal(body)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "encode elasticsearch query", err)
	}

	req := esapi.SearchRequest{
		Index: []string{e.Index},
		Body:  bytes.NewReader(buf),
	}
	resp, err := req.Do(ctx, e.Client)
	if err != nil {
		return nil, apperr.Wrap(apperr.UpstreamUnavailable, "elasticsearch search failed", err)
	}
	defer resp.Body.Close()
	if resp.IsError() {
		return nil, apperr.New(apperr.UpstreamUnavailable, "elasticsearch returned "+resp.Status())
	}

	var parsed esResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, apperr.Wrap(apperr.Internal, "decode elasticsearch response", err)
	}

	hits := make([]catalog.SearchHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		var doc esSourceDoc
		if err := json.Unmarshal(h.Source, &doc); err != nil {
			continue
		}
		physical := doc.PhysicalURI
		if physical == "" && doc.Bucket != "" && doc.Key != "" {
			physical = "s3://" + doc.Bucket + "/" + doc.Key
		}
		hits = append(hits, catalog.SearchHit{
			Kind:        catalog.HitObject,
			Score:       h.Score,
			Backend:     "elasticsearch",
			Bucket:      doc.Bucket,
			Key:         doc.Key,
			PhysicalURI: physical,
		})
	}
	return hits, nil
}

// SearchFileType adds a suffix filter for file-type-filter class queries
// (e.g. "*.csv" or "ext:csv"), reusing Search's bool-query shape.
func (e *ESBackend) SearchFileType(ctx context.Context, q catalog.SearchQuery, ext string) ([]catalog.SearchHit, error) {
	ext = strings.TrimPrefix(strings.TrimPrefix(ext, "*"), ".")
	q.Text = "*." + ext
	return e.Search(ctx, q)
}
