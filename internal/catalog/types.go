// Package catalog defines the QuiltOps contract shared by the direct and
// GraphQL backends, plus the request-scoped context every operation takes.
package catalog

import (
	"github.com/quiltdata/quiltmcp/internal/auth"
	"github.com/quiltdata/quiltmcp/internal/config"
)

// RequestContext is built once per request by internal/session's Resolver,
// which each tool calls at the top of Execute (the transport in internal/mcp
// only carries the raw bearer token), and is threaded
// explicitly into every QuiltOps call. It never outlives its request and is
// immutable after construction — credentials, client handles, and claims
// travel with it rather than through ambient context-value lookups.
type RequestContext struct {
	RequestID   string
	Deployment  config.Deployment
	Backend     config.Backend
	Claims      *auth.Claims
	Credentials *auth.CredentialBundle
	Token       string // raw bearer token, forwarded to the catalog's GraphQL API
	CatalogURL  string
	RegistryURL string
	ProxyURL    string
}

// Bucket describes one registry or non-registry bucket visible to the caller.
type Bucket struct {
	Name        string
	Title       string
	Description string
	CanRead     bool
	CanWrite    bool
	IsRegistry  bool
}

// CopyMode governs whether referenced physical objects are copied into the
// registry bucket during a revision write.
type CopyMode string

const (
	CopyModeNone CopyMode = "none"
	CopyModeNew  CopyMode = "new"
	CopyModeAll  CopyMode = "all"
)

// Entry is one requested logical-path -> source mapping for a package write.
type Entry struct {
	LogicalPath string
	SourceURI   string // s3://bucket/key, present when Content is empty
	Content     []byte // inline content, present when SourceURI is empty
}

// ManifestEntry is one resolved, hashed entry in a committed manifest.
type ManifestEntry struct {
	LogicalPath string `json:"logical_path"`
	PhysicalURI string `json:"physical_uri"`
	Size        int64  `json:"size"`
	Hash        string `json:"hash"`
}

// Manifest is the committed shape of a package revision.
type Manifest struct {
	Registry string            `json:"registry"`
	Name     string            `json:"name"`
	TopHash  string            `json:"top_hash"`
	Entries  []ManifestEntry   `json:"entries"`
	Metadata map[string]any    `json:"metadata,omitempty"`
}

// PackageRef resolves (registry, name) via a tag to a top_hash or latest.
type PackageRef struct {
	Registry string
	Name     string
	TopHash  string
	Tag      string
}

// PackageVersion is one entry in a package's version history.
type PackageVersion struct {
	TopHash string
	Ts      int64
	Message string
	Tags    []string
}

// AuthStatus is the result of QuiltOps.AuthStatus.
type AuthStatus struct {
	LoggedIn bool
	Subject  string
	Catalog  string
	Registry string
}

// SearchScope is the scope a SearchQuery is evaluated against.
type SearchScope string

const (
	ScopeBucket  SearchScope = "bucket"
	ScopePackage SearchScope = "package"
	ScopeGlobal  SearchScope = "global"
)

// SearchType restricts which result kinds a SearchQuery returns.
type SearchType string

const (
	SearchTypePackages SearchType = "packages"
	SearchTypeObjects  SearchType = "objects"
	SearchTypeBoth     SearchType = "both"
)

// SearchQuery is the normalized input to QuiltOps.Search / internal/search.
type SearchQuery struct {
	Text    string
	Scope   SearchScope
	Buckets []string // normalized from bucket|buckets
	Type    SearchType
	Limit   int
}

// HitKind tags a SearchHit as a package or an object.
type HitKind string

const (
	HitPackage HitKind = "package"
	HitObject  HitKind = "object"
)

// SearchHit is a tagged union of PackageHit | ObjectHit fields, flattened
// into one struct for transport simplicity; Kind discriminates which fields
// are meaningful.
type SearchHit struct {
	Kind      HitKind
	Score     float64
	Backend   string
	Registry  string
	Name      string
	TopHash   string
	PhysicalURI string
	Bucket    string
	Key       string
	MatchedEntries []ManifestEntry // PackageHit only, up to 100
}

// DedupeKey returns the identity used to collapse duplicate hits across
// backends: (kind, physical_uri) for objects, (kind, registry, name,
// top_hash) for packages.
func (h SearchHit) DedupeKey() string {
	if h.Kind == HitObject {
		return string(HitObject) + "|" + h.PhysicalURI
	}
	return string(HitPackage) + "|" + h.Registry + "|" + h.Name + "|" + h.TopHash
}

// PolicyPermission is the bucket-permission level a managed policy grants.
type PolicyPermission string

const (
	PermissionRead      PolicyPermission = "READ"
	PermissionReadWrite PolicyPermission = "READ_WRITE"
)

// BucketPermission pairs a bucket name with the level a managed policy grants.
type BucketPermission struct {
	Bucket string
	Level  PolicyPermission
}

// Policy is either managed (bucket permissions) or unmanaged (IAM ARN).
type Policy struct {
	Name        string
	Managed     bool
	Permissions []BucketPermission // managed only
	IAMArn      string             // unmanaged only
	Roles       []string           // roles this policy is attached to
}

// Role is either managed (composed of policies) or unmanaged (IAM role ARN).
type Role struct {
	Name     string
	Managed  bool
	Policies []string // managed only
	IAMArn   string   // unmanaged only
}
