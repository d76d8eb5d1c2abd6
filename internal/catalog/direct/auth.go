package direct

import (
	"context"

	"github.com/quiltdata/quiltmcp/internal/catalog"
)

func (b *Backend) AuthStatus(ctx context.Context, rc *catalog.RequestContext) (*catalog.AuthStatus, error) {
	if rc.Credentials == nil && rc.Claims == nil {
		return &catalog.AuthStatus{LoggedIn: false, Registry: rc.RegistryURL}, nil
	}
	subject := ""
	if rc.Claims != nil {
		subject = rc.Claims.Subject
	}
	return &catalog.AuthStatus{LoggedIn: true, Subject: subject, Registry: rc.RegistryURL}, nil
}
