// Package toolkittest provides fakes for toolkit.Deps's three interfaces,
// so tool packages can unit test Execute paths without the real auth/AWS
// plumbing. Modeled on internal/awsdata/athena_test.go's fakeAthena: a
// struct implementing the narrow interface a caller actually uses,
// returning scripted results and recording its last call's arguments.
package toolkittest

import (
	"context"

	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/config"
	"github.com/quiltdata/quiltmcp/internal/search"
)

// Resolver lets tests control what Resolve returns without the real auth
// plane.
type Resolver struct {
	RC  *catalog.RequestContext
	Err error
}

func (f *Resolver) Resolve(ctx context.Context) (*catalog.RequestContext, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.RC, nil
}

// NewRC builds a minimal RequestContext for the given backend.
func NewRC(backend config.Backend) *catalog.RequestContext {
	return &catalog.RequestContext{
		RequestID:   "req-1",
		Deployment:  config.DeploymentLocal,
		Backend:     backend,
		Token:       "tok",
		CatalogURL:  "https://catalog.example.com",
		RegistryURL: "s3://registry",
	}
}

// Factory hands back a fixed QuiltOps, or an error if ForErr is set.
type Factory struct {
	Ops    catalog.QuiltOps
	ForErr error
}

func (f *Factory) For(rc *catalog.RequestContext) (catalog.QuiltOps, error) {
	if f.ForErr != nil {
		return nil, f.ForErr
	}
	return f.Ops, nil
}

// Searcher stubs internal/search.Engine's one exported method.
type Searcher struct {
	Result *search.Result
	Err    error
}

func (f *Searcher) Execute(ctx context.Context, rc *catalog.RequestContext, q catalog.SearchQuery) (*search.Result, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Result, nil
}

// Ops implements catalog.QuiltOps, recording the last call's arguments and
// returning whatever field a test sets. Every method a test doesn't care
// about returns its field's zero value with no error.
type Ops struct {
	AuthStatusResult *catalog.AuthStatus
	Buckets          []catalog.Bucket
	Packages         []string
	Versions         []catalog.PackageVersion
	ManifestResult   *catalog.Manifest
	Tags             map[string]string
	Policies         []catalog.Policy
	Policy           *catalog.Policy
	Roles            []catalog.Role
	Role             *catalog.Role
	Hits             []catalog.SearchHit
	Err              error

	LastRegistry string
	LastName     string
	LastPrefix   string
	LastTopHash  string
	LastTag      string
	LastEntries  []catalog.Entry
	LastPolicy   catalog.Policy
	LastRole     catalog.Role
}

func (f *Ops) AuthStatus(ctx context.Context, rc *catalog.RequestContext) (*catalog.AuthStatus, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.AuthStatusResult, nil
}

func (f *Ops) BucketList(ctx context.Context, rc *catalog.RequestContext) ([]catalog.Bucket, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Buckets, nil
}

func (f *Ops) PackageList(ctx context.Context, rc *catalog.RequestContext, registry, prefix string, limit int) ([]string, error) {
	f.LastRegistry, f.LastPrefix = registry, prefix
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Packages, nil
}

func (f *Ops) PackageBrowse(ctx context.Context, rc *catalog.RequestContext, ref catalog.PackageRef, path string) (*catalog.Manifest, error) {
	f.LastRegistry, f.LastName = ref.Registry, ref.Name
	if f.Err != nil {
		return nil, f.Err
	}
	return f.ManifestResult, nil
}

func (f *Ops) PackageVersionsList(ctx context.Context, rc *catalog.RequestContext, registry, name string) ([]catalog.PackageVersion, error) {
	f.LastRegistry, f.LastName = registry, name
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Versions, nil
}

func (f *Ops) PackageManifest(ctx context.Context, rc *catalog.RequestContext, ref catalog.PackageRef) (*catalog.Manifest, error) {
	f.LastRegistry, f.LastName, f.LastTopHash = ref.Registry, ref.Name, ref.TopHash
	if f.Err != nil {
		return nil, f.Err
	}
	return f.ManifestResult, nil
}

func (f *Ops) PackageCreateRevision(ctx context.Context, rc *catalog.RequestContext, registry, name string, entries []catalog.Entry, copyMode catalog.CopyMode, message string, meta map[string]any) (*catalog.Manifest, error) {
	f.LastRegistry, f.LastName, f.LastEntries = registry, name, entries
	if f.Err != nil {
		return nil, f.Err
	}
	return f.ManifestResult, nil
}

func (f *Ops) PackageUpdateRevision(ctx context.Context, rc *catalog.RequestContext, registry, name string, base catalog.PackageRef, entries []catalog.Entry, copyMode catalog.CopyMode, message string) (*catalog.Manifest, error) {
	f.LastRegistry, f.LastName, f.LastEntries = registry, name, entries
	if f.Err != nil {
		return nil, f.Err
	}
	return f.ManifestResult, nil
}

func (f *Ops) PackageDelete(ctx context.Context, rc *catalog.RequestContext, registry, name, topHash string) error {
	f.LastRegistry, f.LastName, f.LastTopHash = registry, name, topHash
	return f.Err
}

func (f *Ops) TagList(ctx context.Context, rc *catalog.RequestContext, registry, name string) (map[string]string, error) {
	f.LastRegistry, f.LastName = registry, name
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Tags, nil
}

func (f *Ops) TagAdd(ctx context.Context, rc *catalog.RequestContext, registry, name, tag, topHash string) error {
	f.LastRegistry, f.LastName, f.LastTag, f.LastTopHash = registry, name, tag, topHash
	return f.Err
}

func (f *Ops) TagDelete(ctx context.Context, rc *catalog.RequestContext, registry, name, tag string) error {
	f.LastRegistry, f.LastName, f.LastTag = registry, name, tag
	return f.Err
}

func (f *Ops) Search(ctx context.Context, rc *catalog.RequestContext, q catalog.SearchQuery) ([]catalog.SearchHit, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Hits, nil
}

func (f *Ops) AdminPolicyList(ctx context.Context, rc *catalog.RequestContext) ([]catalog.Policy, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Policies, nil
}

func (f *Ops) AdminPolicyCreate(ctx context.Context, rc *catalog.RequestContext, p catalog.Policy) (*catalog.Policy, error) {
	f.LastPolicy = p
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Policy, nil
}

func (f *Ops) AdminPolicyDelete(ctx context.Context, rc *catalog.RequestContext, name string) error {
	f.LastName = name
	return f.Err
}

func (f *Ops) AdminRoleList(ctx context.Context, rc *catalog.RequestContext) ([]catalog.Role, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Roles, nil
}

func (f *Ops) AdminRoleCreate(ctx context.Context, rc *catalog.RequestContext, r catalog.Role) (*catalog.Role, error) {
	f.LastRole = r
	if f.Err != nil {
		return nil, f.Err
	}
	return f.Role, nil
}
