package awsdata

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/quiltdata/quiltmcp/internal/apperr"
)

type catalogConfig struct {
	StackPrefix string `json:"stackPrefix"`
}

// TabulatorDatabase discovers the tabulator database name
// (quilt-<stack-prefix>-tabulator) from the catalog's public config.json,
// which requires no authentication.
func TabulatorDatabase(ctx context.Context, client *http.Client, catalogURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, catalogURL+"/config.json", nil)
	if err != nil {
		return "", apperr.Wrap(apperr.Internal, "build config.json request", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return "", apperr.Wrap(apperr.UpstreamUnavailable, "fetch catalog config.json", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", apperr.New(apperr.UpstreamUnavailable, "catalog config.json unavailable")
	}

	var cfg catalogConfig
	if err := json.NewDecoder(resp.Body).Decode(&cfg); err != nil {
		return "", apperr.Wrap(apperr.Internal, "decode catalog config.json", err)
	}
	if cfg.StackPrefix == "" {
		return "", apperr.New(apperr.NotFound, "catalog config.json has no stackPrefix")
	}
	return "quilt-" + cfg.StackPrefix + "-tabulator", nil
}
