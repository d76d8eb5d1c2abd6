package content

import "github.com/quiltdata/quiltmcp/internal/mcp"

// --- quiltmcp://tool-reference resource ---

// ToolReferenceResource exposes a static overview of the tool surface and
// its naming convention, so a client can orient without calling tools/list
// and cross-referencing descriptions.
type ToolReferenceResource struct{}

func (r *ToolReferenceResource) Definition() mcp.ResourceDefinition {
	return mcp.ResourceDefinition{
		URI:         "quiltmcp://tool-reference",
		Name:        "Quilt MCP Tool Reference",
		Description: "Overview of the quiltmcp tool modules, grouped by area, with their backend gating (direct vs graphql vs legacy-only).",
		MimeType:    "text/markdown",
	}
}

func (r *ToolReferenceResource) Read() (*mcp.ResourcesReadResult, error) {
	return &mcp.ResourcesReadResult{
		Contents: []mcp.ResourceContent{
			{
				URI:      "quiltmcp://tool-reference",
				MimeType: "text/markdown",
				Text:     toolReferenceContent,
			},
		},
	}, nil
}

const toolReferenceContent = `# Tool reference

## auth
- auth_status — resolves the caller's credentials against the active
  backend and reports whether they're usable.
- catalog_status — reports deployment/backend/transport/endpoint config.
  Never touches a backend.

## buckets
- buckets_list, buckets_objects_list, buckets_objects_get,
  buckets_objects_put — S3-backed object access, available on both
  backends.

## packaging
- packaging_list, packaging_browse, packaging_versions_list,
  packaging_manifest — read-only package/revision inspection.
- packaging_create, packaging_update, packaging_delete — revision
  mutation.
- packaging_tag_list, packaging_tag_add, packaging_tag_delete — named
  pointer (tag) management.

## search
- search_query — classifies free text (metadata predicate, file-type
  filter, or full text) and fans out to the matching backend chain.

## athena
- athena_query_execute — blocking SQL execution against Athena.

## admin (graphql backend only; PERMISSION_DENIED on direct)
- admin_policy_list, admin_policy_create, admin_policy_delete
- admin_role_list, admin_role_create
- admin_janitor_report — scans for tag-map entries whose manifest no
  longer exists.

## workflow (legacy deployment only; in-memory, lost on restart)
- workflow_start, workflow_advance, workflow_status, workflow_list
`
