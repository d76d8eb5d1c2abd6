package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"github.com/quiltdata/quiltmcp/internal/apperr"
)

// Outcome is the result tag a credential probe returns: ok (a bundle was
// produced), skip (this probe doesn't apply, try the next), or err (this
// probe applies but failed — Resolve stops the whole chain at the first Err,
// whether or not require-jwt is set; later probes are not tried).
// Modeled as an ordered pipeline of probes rather than a fallback tower of
// try/catch, per the auth-plane regression this guards against.
type Outcome int

const (
	Skip Outcome = iota
	OK
	Err
)

// Probe attempts to produce a credential bundle from one source.
type Probe func(ctx context.Context, claims *Claims, token string) (*CredentialBundle, Outcome, error)

// CredentialChain is an ordered list of probes; the first OK wins.
type CredentialChain struct {
	probes []Probe
}

// NewCredentialChain builds the standard probe pipeline: embedded bundle,
// catalog credential-exchange endpoint, then (only outside require-jwt)
// ambient credentials from the process environment or instance role — or,
// when assumeRoleARN is configured, that same ambient identity's STS
// AssumeRole output instead, scoping registry access down to one role
// regardless of which identity the host process actually runs as.
func NewCredentialChain(catalogURL string, httpClient *http.Client, requireJWT bool, assumeRoleARN string) *CredentialChain {
	probes := []Probe{
		EmbeddedBundleProbe(),
		CatalogExchangeProbe(catalogURL, httpClient),
	}
	if !requireJWT {
		if assumeRoleARN != "" {
			probes = append(probes, AssumeRoleProbe(assumeRoleARN))
		} else {
			probes = append(probes, AmbientCredentialsProbe())
		}
	}
	return &CredentialChain{probes: probes}
}

// Resolve runs the pipeline in order. The first probe to return OK wins; a
// probe returning Err aborts the chain immediately (its error is strict —
// it means "this source applies but failed", not "try the next one").
// Exhausting every probe without an OK yields AUTH_NO_CREDENTIALS.
func (c *CredentialChain) Resolve(ctx context.Context, claims *Claims, token string) (*CredentialBundle, error) {
	for _, probe := range c.probes {
		bundle, outcome, err := probe(ctx, claims, token)
		switch outcome {
		case OK:
			return bundle, nil
		case Err:
			return nil, err
		case Skip:
			continue
		}
	}
	return nil, apperr.New(apperr.AuthNoCredentials, "no credential source produced usable AWS credentials")
}

// EmbeddedBundleProbe uses the credential bundle embedded directly in the
// JWT claims, when present.
func EmbeddedBundleProbe() Probe {
	return func(ctx context.Context, claims *Claims, token string) (*CredentialBundle, Outcome, error) {
		if claims == nil || claims.Bundle == nil {
			return nil, Skip, nil
		}
		return claims.Bundle, OK, nil
	}
}

type credentialExchangeResponse struct {
	AccessKeyID     string `json:"AccessKeyId"`
	SecretAccessKey string `json:"SecretAccessKey"`
	SessionToken    string `json:"SessionToken"`
	Expiration      string `json:"Expiration"`
}

// CatalogExchangeProbe calls the catalog's /api/auth/get_credentials
// endpoint with the bearer token and expects a JSON credential bundle.
func CatalogExchangeProbe(catalogURL string, httpClient *http.Client) Probe {
	return func(ctx context.Context, claims *Claims, token string) (*CredentialBundle, Outcome, error) {
		if token == "" || catalogURL == "" {
			return nil, Skip, nil
		}

		url := catalogURL + "/api/auth/get_credentials"
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, Err, apperr.Wrap(apperr.UpstreamUnavailable, "building credential exchange request", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)

		resp, err := httpClient.Do(req)
		if err != nil {
			return nil, Err, apperr.Wrap(apperr.UpstreamUnavailable, "calling catalog credential exchange", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotFound {
			// Catalog doesn't offer this endpoint; let the next probe try.
			return nil, Skip, nil
		}
		if resp.StatusCode != http.StatusOK {
			return nil, Err, apperr.New(apperr.UpstreamUnavailable, fmt.Sprintf("credential exchange returned status %d", resp.StatusCode))
		}

		var out credentialExchangeResponse
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			return nil, Err, apperr.Wrap(apperr.UpstreamUnavailable, "decoding credential exchange response", err)
		}
		if out.AccessKeyID == "" || out.SecretAccessKey == "" {
			return nil, Err, apperr.New(apperr.AuthNoCredentials, "credential exchange returned an empty bundle")
		}

		bundle := &CredentialBundle{
			AccessKeyID:     out.AccessKeyID,
			SecretAccessKey: out.SecretAccessKey,
			SessionToken:    out.SessionToken,
		}
		if out.Expiration != "" {
			if t, err := time.Parse(time.RFC3339, out.Expiration); err == nil {
				bundle.Expiration = t
			}
		}
		return bundle, OK, nil
	}
}

// AmbientCredentialsProbe falls back to the process's ambient AWS
// credentials (environment, container role, instance profile). Only wired
// into the chain when require-jwt is false.
func AmbientCredentialsProbe() Probe {
	return func(ctx context.Context, claims *Claims, token string) (*CredentialBundle, Outcome, error) {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, Skip, nil
		}
		creds, err := cfg.Credentials.Retrieve(ctx)
		if err != nil {
			return nil, Skip, nil
		}
		return &CredentialBundle{
			AccessKeyID:     creds.AccessKeyID,
			SecretAccessKey: creds.SecretAccessKey,
			SessionToken:    creds.SessionToken,
			Expiration:      creds.Expires,
		}, OK, nil
	}
}

// AssumeRoleProbe exchanges the process's ambient identity for a scoped
// session by calling STS AssumeRole, so every request that falls through to
// this probe runs under roleARN rather than whatever role the host happens
// to carry.
func AssumeRoleProbe(roleARN string) Probe {
	return func(ctx context.Context, claims *Claims, token string) (*CredentialBundle, Outcome, error) {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, Skip, nil
		}
		client := sts.NewFromConfig(cfg)
		sessionName := "quiltmcp"
		out, err := client.AssumeRole(ctx, &sts.AssumeRoleInput{
			RoleArn:         &roleARN,
			RoleSessionName: &sessionName,
		})
		if err != nil {
			return nil, Err, apperr.Wrap(apperr.AuthNoCredentials, "assuming configured IAM role", err)
		}
		bundle := &CredentialBundle{
			AccessKeyID:     *out.Credentials.AccessKeyId,
			SecretAccessKey: *out.Credentials.SecretAccessKey,
			SessionToken:    *out.Credentials.SessionToken,
		}
		if out.Credentials.Expiration != nil {
			bundle.Expiration = *out.Credentials.Expiration
		}
		return bundle, OK, nil
	}
}
