// Package athena implements the athena_query_execute tool: ad hoc SQL over
// the catalog's registered Athena workgroup/catalog/schema, the destination
// for the analytical search class (spec §4.6 routes SQL-shaped queries here
// rather than through search_query).
package athena

import (
	"context"
	"encoding/json"

	"github.com/quiltdata/quiltmcp/internal/awsdata"
	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
)

type Execute struct {
	deps *toolkit.Deps
}

func NewExecute(deps *toolkit.Deps) *Execute { return &Execute{deps: deps} }

func (t *Execute) Name() string        { return "athena_query_execute" }
func (t *Execute) Description() string { return "Run a SQL query against Athena and return the decoded result rows. Blocks until the query reaches a terminal state." }
func (t *Execute) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "sql": {"type": "string"},
    "catalog": {"type": "string", "default": "AwsDataCatalog"},
    "schema": {"type": "string", "description": "Athena database/schema name"},
    "workgroup": {"type": "string", "description": "Explicit workgroup; when omitted, the first enabled workgroup is used (no configured default exists)"}
  },
  "required": ["sql"],
  "additionalProperties": false
}`)
}

type executeParams struct {
	SQL       string `json:"sql"`
	Catalog   string `json:"catalog,omitempty"`
	Schema    string `json:"schema,omitempty"`
	Workgroup string `json:"workgroup,omitempty"`
}

func (t *Execute) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p executeParams
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
		Schema:    p.Schema,
	})
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}
	return mcp.JSONResult(map[string]any{"rows": rows, "count": len(rows), "workgroup": workgroup})
}
