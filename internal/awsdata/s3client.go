// Package awsdata builds request-scoped AWS clients and implements the
// S3/Athena data-plane operations the direct catalog backend and the
// unified search fallback both depend on.
package awsdata

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/auth"
)

// NewS3Client builds an *s3.Client for one request: JWT-derived credentials
// win when present, falling through to ambient credentials (instance role,
// shared config, env) otherwise. An optional proxyURL overrides the S3
// endpoint, grounded on evalgo-org-eve/storage/s3aws.go's
// EndpointResolverWithOptionsFunc override pattern used for MinIO/Hetzner
// S3-compatible endpoints — here used for a Quilt-catalog S3 proxy instead.
func NewS3Client(ctx context.Context, bundle *auth.CredentialBundle, proxyURL string) (*s3.Client, error) {
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

	var s3Opts []func(*s3.Options)
	if proxyURL != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(proxyURL)
			o.UsePathStyle = true
		})
	}

	return s3.NewFromConfig(cfg, s3Opts...), nil
}
