package direct

import (
	"context"

	"github.com/quiltdata/quiltmcp/internal/catalog"
)

// Admin operations have no native-AWS-SDK equivalent (they are
// catalog-managed concepts, not S3/Glue ones) — every method here returns
// the same PERMISSION_DENIED with a fix_hint naming the GraphQL backend.

func (b *Backend) AdminPolicyList(ctx context.Context, rc *catalog.RequestContext) ([]catalog.Policy, error) {
	return nil, b.adminUnsupported()
}

func (b *Backend) AdminPolicyCreate(ctx context.Context, rc *catalog.RequestContext, p catalog.Policy) (*catalog.Policy, error) {
	return nil, b.adminUnsupported()
}

func (b *Backend) AdminPolicyDelete(ctx context.Context, rc *catalog.RequestContext, name string) error {
	return b.adminUnsupported()
}

func (b *Backend) AdminRoleList(ctx context.Context, rc *catalog.RequestContext) ([]catalog.Role, error) {
	return nil, b.adminUnsupported()
}

func (b *Backend) AdminRoleCreate(ctx context.Context, rc *catalog.RequestContext, r catalog.Role) (*catalog.Role, error) {
	return nil, b.adminUnsupported()
}
