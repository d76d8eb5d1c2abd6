// Package content provides MCP prompts and resources for the Quilt MCP
// server: static, reusable guidance a client can surface to a user or feed
// back to a model, distinct from the tool surface itself.
package content

import "github.com/quiltdata/quiltmcp/internal/mcp"

// SearchTipsPrompt explains the unified search_query classification so a
// caller can phrase queries to land in the query class they want.
type SearchTipsPrompt struct{}

func (p *SearchTipsPrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "search-tips",
		Description: "Guidance on phrasing search_query text so it classifies as a metadata-predicate, file-type, or free-text query; SQL-shaped text is rejected in favor of athena_query_execute.",
		Arguments:   []mcp.PromptArgument{},
	}
}

func (p *SearchTipsPrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	return &mcp.PromptsGetResult{
		Description: "search_query phrasing guide",
		Messages: []mcp.PromptMessage{
			{
				Role:    "user",
				Content: mcp.TextContent(searchTipsGuide),
			},
		},
	}, nil
}

const searchTipsGuide = `# Phrasing search_query

search_query classifies free text into one of four query classes before it
ever reaches a backend. Each routed class queries a primary and a fallback
backend concurrently:

1. Analytical — text starting with SELECT or WITH is rejected with
   VALIDATION_FAILED; run SQL through athena_query_execute instead.
2. Metadata predicate — a size comparison (e.g. "size>1000000",
   "bytes<=500") or a date operator ("before:", "after:", "since:",
   "modified>") routes to the catalog's GraphQL search as primary, with
   Elasticsearch as the fallback.
3. File-type filter — "ext:csv", "*.parquet", or text ending in an
   extension such as "results.csv" searches Elasticsearch for matching
   objects, with an S3 listing as the fallback.
4. Free text — everything else goes to the Elasticsearch full-text index,
   with GraphQL search and then an S3 listing as the fallback.

To get predictable, fast results: use a size or date operator when you are
filtering on those fields. Use the bucket and
buckets arguments to narrow the search before broadening to free text. The
response always reports fallback_used so a caller can tell which path
actually served the query.
`

// AthenaSQLPrompt is a short reminder of the Athena query contract: what
// catalog/schema/workgroup defaults apply and how results are shaped.
type AthenaSQLPrompt struct{}

func (p *AthenaSQLPrompt) Definition() mcp.PromptDefinition {
	return mcp.PromptDefinition{
		Name:        "athena-sql-tips",
		Description: "Defaults and gotchas for athena_query_execute: catalog/schema/workgroup resolution and result shape.",
		Arguments:   []mcp.PromptArgument{},
	}
}

func (p *AthenaSQLPrompt) Get(arguments map[string]string) (*mcp.PromptsGetResult, error) {
	return &mcp.PromptsGetResult{
		Description: "athena_query_execute usage guide",
		Messages: []mcp.PromptMessage{
			{
				Role:    "user",
				Content: mcp.TextContent(athenaSQLGuide),
			},
		},
	}, nil
}

const athenaSQLGuide = `# athena_query_execute

- catalog defaults to "AwsDataCatalog" when omitted.
- workgroup resolves to the explicit argument, else the first enabled
  workgroup visible to the caller's credentials; the server has no
  configured default workgroup.
- The call blocks until the query reaches a terminal state (SUCCEEDED,
  FAILED, or CANCELLED) and returns the decoded result rows plus the
  workgroup actually used.
- A table backed by a tabulator-managed Glue database must be addressed by
  that database's name exactly; athena_tabulator_query reports the database
  it used, or check the catalog UI if unsure which database a bucket's
  tables live in.
`
