// Package direct implements catalog.QuiltOps against native AWS SDK calls
// (S3, Glue) with no catalog GraphQL dependency — the "legacy" backend used
// when no catalog URL is configured.
package direct

import (
	"log/slog"
	"net/http"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
)

// Backend implements catalog.QuiltOps directly against AWS, bypassing the
// Quilt catalog's GraphQL API. Admin operations have no native-SDK
// equivalent and always return PERMISSION_DENIED with a fix_hint pointing
// at the GraphQL backend.
type Backend struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// New builds a direct backend holding the factory's pooled http.Client. No
// direct-backend operation sends requests through it; every call goes
// through the AWS SDK clients built per request.
func New(httpClient *http.Client, logger *slog.Logger) *Backend {
	return &Backend{httpClient: httpClient, logger: logger}
}

var _ catalog.QuiltOps = (*Backend)(nil)

var errAdminRequiresGraphQL = apperr.New(apperr.PermissionDenied, "admin operations require the graphql backend").
	WithFixHint("configure deployment=remote or backend=graphql to use admin tools")

func (b *Backend) adminUnsupported() error { return errAdminRequiresGraphQL }
