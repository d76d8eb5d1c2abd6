package admin

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/config"
	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
)

// OrphanedTag is a tag pointing at a top_hash whose manifest object could
// not be found — the revision was deleted but the tag-map entry survived.
type OrphanedTag struct {
	Registry string `json:"registry"`
	Name     string `json:"name"`
	Tag      string `json:"tag"`
	TopHash  string `json:"top_hash"`
}

// JanitorReport summarizes an orphaned-tag scan, adapted from the teacher's
// janitor concept and re-pointed at packages/tags instead of graph entities.
type JanitorReport struct {
	PackagesScanned int           `json:"packages_scanned"`
	TagsScanned     int           `json:"tags_scanned"`
	OrphanedTags    []OrphanedTag `json:"orphaned_tags"`
}

// JanitorRun scans every package in a registry for tags pointing at
// manifests that no longer exist. GraphQL backend only, since orphaned
// tag-map entries are a catalog-API concept the direct backend's native
// pointer files can't distinguish from a simple missing package.
type JanitorRun struct {
	deps *toolkit.Deps
}

func NewJanitorRun(deps *toolkit.Deps) *JanitorRun { return &JanitorRun{deps: deps} }

func (t *JanitorRun) Name() string        { return "admin_janitor_report" }
func (t *JanitorRun) Description() string { return "Scan a registry's packages for tags pointing at revisions whose manifest no longer exists. GraphQL backend only." }
func (t *JanitorRun) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "registry": {"type": "string"},
    "prefix": {"type": "string"}
  },
  "required": ["registry"],
  "additionalProperties": false
}`)
}

type janitorParams struct {
	Registry string `json:"registry"`
	Prefix   string `json:"prefix,omitempty"`
}

func (t *JanitorRun) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p janitorParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Registry == "" {
		return toolkit.ValidationError("registry is required"), nil
	}

	rc, errResult, err := t.deps.Resolve(ctx)
	if errResult != nil || err != nil {
		return errResult, err
	}
	if rc.Backend != config.BackendGraphQL {
		return toolkit.ErrorResult(apperr.New(apperr.PermissionDenied, "janitor report requires the graphql backend").
			WithFixHint("configure deployment=remote or backend=graphql to run the janitor report")), nil
	}

	ops, opErr := t.deps.Factory.For(rc)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	names, opErr := ops.PackageList(ctx, rc, p.Registry, p.Prefix, 0)
	if opErr != nil {
		return toolkit.ErrorResult(opErr), nil
	}

	report := JanitorReport{PackagesScanned: len(names)}
	for _, name := range names {
		tags, opErr := ops.TagList(ctx, rc, p.Registry, name)
		if opErr != nil {
			continue // unreadable package tag-map is not this scan's concern
		}
		for tag, topHash := range tags {
			report.TagsScanned++
			_, opErr := ops.PackageManifest(ctx, rc, catalog.PackageRef{Registry: p.Registry, Name: name, TopHash: topHash})
			if opErr == nil {
				continue
			}
			var ae *apperr.Error
			if errors.As(opErr, &ae) && ae.Kind == apperr.NotFound {
				report.OrphanedTags = append(report.OrphanedTags, OrphanedTag{
					Registry: p.Registry, Name: name, Tag: tag, TopHash: topHash,
				})
			}
		}
	}

	return mcp.JSONResult(report)
}
