package auth

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// EnvSecretSource returns a fixed secret value, typically read from an
// environment variable once at startup (MCP_JWT_SECRET).
type EnvSecretSource struct {
	Value string
}

func (e EnvSecretSource) Resolve(ctx context.Context) (string, error) {
	if e.Value == "" {
		return "", fmt.Errorf("no jwt secret configured")
	}
	return e.Value, nil
}

// ssmClient is the subset of the SSM API this package depends on, so tests
// can substitute a fake without pulling in network credentials.
type ssmClient interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// SSMSecretSource resolves the secret from an AWS SSM Parameter Store
// SecureString parameter. It wins over EnvSecretSource when both are
// configured (see NewSecretSource).
type SSMSecretSource struct {
	Client        ssmClient
	ParameterName string
}

func (s SSMSecretSource) Resolve(ctx context.Context) (string, error) {
	out, err := s.Client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           &s.ParameterName,
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return "", fmt.Errorf("fetching ssm parameter %s: %w", s.ParameterName, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return "", fmt.Errorf("ssm parameter %s has no value", s.ParameterName)
	}
	return *out.Parameter.Value, nil
}

// NewSecretSource picks the parameter-store source when a parameter name is
// configured, otherwise falls back to the plain env-resolved secret.
func NewSecretSource(envSecret, ssmParamName string, ssmClient ssmClient) SecretSource {
	if ssmParamName != "" && ssmClient != nil {
		return SSMSecretSource{Client: ssmClient, ParameterName: ssmParamName}
	}
	return EnvSecretSource{Value: envSecret}
}
