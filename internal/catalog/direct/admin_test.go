package direct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
)

func TestAdminOps_AllReturnPermissionDeniedWithGraphQLHint(t *testing.T) {
	b := New(nil, nil)
	ctx := t.Context()
	rc := &catalog.RequestContext{}

	_, err := b.AdminPolicyList(ctx, rc)
	require.Error(t, err)
	appErr := apperr.As(err)
	assert.Equal(t, apperr.PermissionDenied, appErr.Kind)
	assert.Contains(t, appErr.FixHint, "graphql")

	err = b.AdminPolicyDelete(ctx, rc, "p")
	require.Error(t, err)
	assert.Equal(t, apperr.PermissionDenied, apperr.As(err).Kind)

	_, err = b.AdminRoleList(ctx, rc)
	require.Error(t, err)
	assert.Equal(t, apperr.PermissionDenied, apperr.As(err).Kind)
}
