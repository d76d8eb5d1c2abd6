package awsdata

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/athena"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/auth"
)

// NewAthenaClient builds an *athena.Client for one request using the same
// JWT-derived-credentials-then-ambient order as NewS3Client.
func NewAthenaClient(ctx context.Context, bundle *auth.CredentialBundle) (*athena.Client, error) {
	var opts []func(*config.LoadOptions) error
	if bundle != nil {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(bundle.AccessKeyID, bundle.SecretAccessKey, bundle.SessionToken),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, apperr.Wrap(apperr.Internal, "load aws config", err)
	}
	return athena.NewFromConfig(cfg), nil
}
