package graphql

import (
	"context"

	"github.com/quiltdata/quiltmcp/internal/catalog"
)

func (b *Backend) AuthStatus(ctx context.Context, rc *catalog.RequestContext) (*catalog.AuthStatus, error) {
	if rc.Claims == nil {
		return &catalog.AuthStatus{LoggedIn: false, Catalog: rc.CatalogURL, Registry: rc.RegistryURL}, nil
	}
	return &catalog.AuthStatus{
		LoggedIn: true,
		Subject:  rc.Claims.Subject,
		Catalog:  rc.CatalogURL,
		Registry: rc.RegistryURL,
	}, nil
}
