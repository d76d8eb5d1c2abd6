package catalog

import "context"

// QuiltOps is the polymorphic contract every tool module routes through.
// Both the direct (native AWS) backend and the GraphQL (catalog API) backend
// implement it in full; a capability a backend cannot support returns
// apperr.PermissionDenied with a fix_hint naming the other backend, rather
// than a partial or silently-degraded result.
type QuiltOps interface {
	AuthStatus(ctx context.Context, rc *RequestContext) (*AuthStatus, error)

	BucketList(ctx context.Context, rc *RequestContext) ([]Bucket, error)

	PackageList(ctx context.Context, rc *RequestContext, registry string, prefix string, limit int) ([]string, error)
	PackageBrowse(ctx context.Context, rc *RequestContext, ref PackageRef, path string) (*Manifest, error)
	PackageVersionsList(ctx context.Context, rc *RequestContext, registry, name string) ([]PackageVersion, error)
	PackageManifest(ctx context.Context, rc *RequestContext, ref PackageRef) (*Manifest, error)

	PackageCreateRevision(ctx context.Context, rc *RequestContext, registry, name string, entries []Entry, copyMode CopyMode, message string, meta map[string]any) (*Manifest, error)
	PackageUpdateRevision(ctx context.Context, rc *RequestContext, registry, name string, base PackageRef, entries []Entry, copyMode CopyMode, message string) (*Manifest, error)
	PackageDelete(ctx context.Context, rc *RequestContext, registry, name string, topHash string) error

	TagList(ctx context.Context, rc *RequestContext, registry, name string) (map[string]string, error)
	TagAdd(ctx context.Context, rc *RequestContext, registry, name, tag, topHash string) error
	TagDelete(ctx context.Context, rc *RequestContext, registry, name, tag string) error

	Search(ctx context.Context, rc *RequestContext, q SearchQuery) ([]SearchHit, error)

	AdminPolicyList(ctx context.Context, rc *RequestContext) ([]Policy, error)
	AdminPolicyCreate(ctx context.Context, rc *RequestContext, p Policy) (*Policy, error)
	AdminPolicyDelete(ctx context.Context, rc *RequestContext, name string) error
	AdminRoleList(ctx context.Context, rc *RequestContext) ([]Role, error)
	AdminRoleCreate(ctx context.Context, rc *RequestContext, r Role) (*Role, error)
}
