package athena

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/quiltdata/quiltmcp/internal/awsdata"
	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
)

// TabulatorQuery implements athena_tabulator_query: discover the catalog's
// tabulator database from its public config.json, then run the given SQL
// against it via Athena (spec §4.5's "tabulator routing").
type TabulatorQuery struct {
	deps *toolkit.Deps
}

func NewTabulatorQuery(deps *toolkit.Deps) *TabulatorQuery { return &TabulatorQuery{deps: deps} }

func (t *TabulatorQuery) Name() string { return "athena_tabulator_query" }
func (t *TabulatorQuery) Description() string {
	return "Run a SQL query against the catalog's tabulator database, discovered from the catalog's public config.json."
}
func (t *TabulatorQuery) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "sql": {"type": "string"},
    "catalog": {"type": "string", "default": "AwsDataCatalog"},
    "workgroup": {"type": "string", "description": "Explicit workgroup; when omitted, the first enabled workgroup is used (no configured default exists)"}
  },
  "required": ["sql"],
  "additionalProperties": false
}`)
}

type tabulatorQueryParams struct {
	SQL       string `json:"sql"`
	Catalog   string `json:"catalog,omitempty"`
	Workgroup string `json:"workgroup,omitempty"`
}

func (t *TabulatorQuery) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p tabulatorQueryParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.SQL == "" {
		return toolkit.ValidationError("sql is required"), nil
	}
	if p.Catalog == "" {
		p.Catalog = "AwsDataCatalog"
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}

	database, opErr := awsdata.TabulatorDatabase(ctx, http.DefaultClient, rc.CatalogURL)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	client, opErr := awsdata.NewAthenaClient(ctx, rc.Credentials)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	workgroup, opErr := awsdata.ResolveWorkgroup(ctx, client, p.Workgroup, "")
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	rows, opErr := awsdata.ExecuteQuery(ctx, client, awsdata.AthenaQuery{
		SQL:       p.SQL,
		Workgroup: workgroup,
		Catalog:   p.Catalog,
		Schema:    database,
	})
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"rows": rows, "count": len(rows), "workgroup": workgroup, "database": database})
}
