package direct

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/athena"
	"github.com/aws/aws-sdk-go-v2/service/glue"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/catalog"
)

// loadConfig resolves an aws.Config for this request: JWT-derived
// credentials win when present, falling through to ambient credentials
// otherwise — the same order internal/awsdata.NewS3Client uses for S3.
func loadConfig(ctx context.Context, rc *catalog.RequestContext) (aws.Config, error) {
	var opts []func(*config.LoadOptions) error
	if rc.Credentials != nil {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(rc.Credentials.AccessKeyID, rc.Credentials.SecretAccessKey, rc.Credentials.SessionToken),
		))
	}
	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, apperr.Wrap(apperr.Internal, "load aws config", err)
	}
	return cfg, nil
}

func newGlueClient(ctx context.Context, rc *catalog.RequestContext) (*glue.Client, error) {
	cfg, err := loadConfig(ctx, rc)
	if err != nil {
		return nil, err
	}
	return glue.NewFromConfig(cfg), nil
}

func newAthenaClient(ctx context.Context, rc *catalog.RequestContext) (*athena.Client, error) {
	cfg, err := loadConfig(ctx, rc)
	if err != nil {
		return nil, err
	}
	return athena.NewFromConfig(cfg), nil
}
