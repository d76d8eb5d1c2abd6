// Package config resolves server configuration from CLI flags, environment
// variables, a deployment preset, and built-in defaults, in that precedence
// order (highest first).
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds all configuration for the Quilt MCP server.
type Config struct {
	Catalog   CatalogConfig   `toml:"catalog"`
	Server    ServerConfig    `toml:"server"`
	Transport TransportConfig `toml:"transport"`
	Auth      AuthConfig      `toml:"auth"`
	Log       LogConfig       `toml:"log"`
}

// CatalogConfig holds Quilt catalog/registry connection details.
type CatalogConfig struct {
	URL              string `toml:"url"`               // GraphQL catalog URL; required for backend=graphql
	RegistryURL      string `toml:"registry_url"`      // Registry (S3) URL/bucket host
	ElasticsearchURL string `toml:"elasticsearch_url"` // Optional; unset disables the ES search primary
	S3ProxyURL       string `toml:"s3_proxy_url"`      // Optional S3 endpoint override, e.g. a VPC-local proxy
}

// ServerConfig holds MCP server metadata.
type ServerConfig struct {
	Name    string `toml:"name"`
	Version string `toml:"version"`
}

// TransportConfig holds transport-related settings.
type TransportConfig struct {
	// Port is the HTTP listen port. Only used when Transport resolves to http.
	Port string `toml:"port"`
	// Host is the HTTP listen address. Only used when Transport resolves to http.
	Host string `toml:"host"`
	// CORSOrigins is a comma-separated list of allowed CORS origins (default: "*").
	CORSOrigins string `toml:"cors_origins"`
}

// AuthConfig holds JWT auth-plane settings.
type AuthConfig struct {
	RequireJWT      bool   `toml:"require_jwt"`
	JWTSecret       string `toml:"jwt_secret"`
	JWTSecretParam  string `toml:"jwt_secret_param"` // SSM parameter name; wins if both set
	JWTKeyID        string `toml:"jwt_kid"`          // Expected "kid" header; empty skips the check
	JWTIssuer       string `toml:"jwt_issuer"`       // Expected "iss" claim; empty skips the check
	JWTAudience     string `toml:"jwt_audience"`     // Expected "aud" claim; empty skips the check
	AssumeRoleARN   string `toml:"assume_role_arn"`  // Optional IAM role to assume via STS for the ambient-credentials probe
	ServiceTimeoutS int    `toml:"service_timeout"`  // Outbound HTTP timeout in seconds
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Deployment is the deployment preset {remote, local, legacy}.
type Deployment string

const (
	DeploymentRemote Deployment = "remote"
	DeploymentLocal  Deployment = "local"
	DeploymentLegacy Deployment = "legacy"
)

// Backend is the QuiltOps implementation kind.
type Backend string

const (
	BackendDirect  Backend = "direct"
	BackendGraphQL Backend = "graphql"
)

// Transport is the wire transport kind.
type Transport string

const (
	TransportStdio Transport = "stdio"
	TransportHTTP  Transport = "http"
)

// Resolved is the fully resolved, validated configuration for a single run:
// the deployment preset expanded into (backend, transport), with any
// explicit overrides already applied.
type Resolved struct {
	Config
	Deployment Deployment
	Backend    Backend
	Transport  Transport
}

// presets maps each deployment mode to its default (backend, transport) pair.
var presets = map[Deployment]struct {
	Backend   Backend
	Transport Transport
}{
	DeploymentRemote: {BackendGraphQL, TransportHTTP},
	DeploymentLocal:  {BackendGraphQL, TransportStdio},
	DeploymentLegacy: {BackendDirect, TransportStdio},
}

// Flags carries CLI-flag overrides; a zero value means "not set by the user".
type Flags struct {
	Deployment        string
	Backend           string
	Transport         string
	CatalogURL        string
	RegistryURL       string
	S3ProxyURL        string
	RequireJWT        *bool
	JWTKeyID          string
	JWTIssuer         string
	JWTAudience       string
	AssumeRoleARN     string
	ServiceTimeoutSec int
	SkipBanner        bool
	ConfigPath        string
}

// InvalidError reports a configuration validation failure together with the
// offending field, so callers can emit CONFIG_INVALID diagnostics.
type InvalidError struct {
	Field   string
	Message string
}

func (e *InvalidError) Error() string {
	return fmt.Sprintf("config invalid: %s: %s", e.Field, e.Message)
}

// Load builds a Resolved config from CLI flags, a TOML config file, and
// environment variables, then validates the resulting combination.
//
// Config file search order (first found wins):
//  1. Path passed via Flags.ConfigPath (from --config flag)
//  2. QUILTMCP_CONFIG environment variable
//  3. ./quiltmcp.toml (current directory)
//  4. ~/.config/quiltmcp/quiltmcp.toml (XDG-style)
func Load(flags Flags) (*Resolved, error) {
	cfg := &Config{
		Catalog: CatalogConfig{
			URL: "http://localhost:3002",
		},
		Server: ServerConfig{
			Name:    "quilt-mcp-server",
			Version: "0.1.0",
		},
		Transport: TransportConfig{
			Port:        "8000",
			Host:        "0.0.0.0",
			CORSOrigins: "*",
		},
		Auth: AuthConfig{
			ServiceTimeoutS: 60,
		},
		Log: LogConfig{
			Level: "info",
		},
	}

	if err := cfg.loadFile(flags.ConfigPath); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	cfg.applyFlags(flags)

	deployment := Deployment(envOrDefault("QUILT_DEPLOYMENT", flags.Deployment, string(DeploymentLocal)))
	preset, ok := presets[deployment]
	if !ok {
		return nil, &InvalidError{Field: "deployment", Message: fmt.Sprintf("unknown deployment preset %q", deployment)}
	}

	backend := preset.Backend
	if v := envOrDefault("QUILT_BACKEND_OVERRIDE", flags.Backend, ""); v != "" {
		backend = Backend(v)
	}
	transport := preset.Transport
	if v := envOrDefault("QUILT_TRANSPORT_OVERRIDE", flags.Transport, ""); v != "" {
		transport = Transport(v)
	}

	if backend != BackendDirect && backend != BackendGraphQL {
		return nil, &InvalidError{Field: "backend", Message: fmt.Sprintf("must be %q or %q, got %q", BackendDirect, BackendGraphQL, backend)}
	}
	if transport != TransportStdio && transport != TransportHTTP {
		return nil, &InvalidError{Field: "transport", Message: fmt.Sprintf("must be %q or %q, got %q", TransportStdio, TransportHTTP, transport)}
	}

	resolved := &Resolved{
		Config:     *cfg,
		Deployment: deployment,
		Backend:    backend,
		Transport:  transport,
	}

	if err := resolved.validate(); err != nil {
		return nil, err
	}

	return resolved, nil
}

func envOrDefault(envKey, flagVal, def string) string {
	if flagVal != "" {
		return flagVal
	}
	if v := os.Getenv(envKey); v != "" {
		return v
	}
	return def
}

func (c *Config) loadFile(configPath string) error {
	path := resolveConfigPath(configPath)
	if path == "" {
		return nil // no config file found; rely on defaults + env
	}
	if _, err := toml.DecodeFile(path, c); err != nil {
		return fmt.Errorf("reading config file %s: %w", path, err)
	}
	return nil
}

func resolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if p := os.Getenv("QUILTMCP_CONFIG"); p != "" {
		return p
	}
	if _, err := os.Stat("quiltmcp.toml"); err == nil {
		return "quiltmcp.toml"
	}
	if home, err := os.UserHomeDir(); err == nil {
		p := home + "/.config/quiltmcp/quiltmcp.toml"
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// applyEnv overlays environment variables on top of existing config values.
// An env var only takes effect if it is non-empty.
func (c *Config) applyEnv() {
	envOverride("QUILT_CATALOG_URL", &c.Catalog.URL)
	envOverride("QUILT_REGISTRY_URL", &c.Catalog.RegistryURL)
	envOverride("QUILT_ELASTICSEARCH_URL", &c.Catalog.ElasticsearchURL)
	envOverride("QUILT_S3_PROXY_URL", &c.Catalog.S3ProxyURL)

	envOverride("SPECMCP_PORT", &c.Transport.Port)
	envOverride("SPECMCP_HOST", &c.Transport.Host)
	envOverride("SPECMCP_CORS_ORIGINS", &c.Transport.CORSOrigins)

	envOverride("MCP_JWT_SECRET", &c.Auth.JWTSecret)
	envOverride("MCP_JWT_SECRET_PARAMETER", &c.Auth.JWTSecretParam)
	envOverride("MCP_JWT_KID", &c.Auth.JWTKeyID)
	envOverride("MCP_JWT_ISSUER", &c.Auth.JWTIssuer)
	envOverride("MCP_JWT_AUDIENCE", &c.Auth.JWTAudience)
	envOverride("QUILT_ASSUME_ROLE_ARN", &c.Auth.AssumeRoleARN)
	if v := os.Getenv("MCP_REQUIRE_JWT"); v != "" {
		c.Auth.RequireJWT = v == "true" || v == "1"
	}
	if v := os.Getenv("SERVICE_TIMEOUT"); v != "" {
		var secs int
		if _, err := fmt.Sscanf(v, "%d", &secs); err == nil && secs > 0 {
			c.Auth.ServiceTimeoutS = secs
		}
	}

	envOverride("SPECMCP_LOG_LEVEL", &c.Log.Level)
}

func (c *Config) applyFlags(f Flags) {
	if f.CatalogURL != "" {
		c.Catalog.URL = f.CatalogURL
	}
	if f.RegistryURL != "" {
		c.Catalog.RegistryURL = f.RegistryURL
	}
	if f.S3ProxyURL != "" {
		c.Catalog.S3ProxyURL = f.S3ProxyURL
	}
	if f.RequireJWT != nil {
		c.Auth.RequireJWT = *f.RequireJWT
	}
	if f.JWTKeyID != "" {
		c.Auth.JWTKeyID = f.JWTKeyID
	}
	if f.JWTIssuer != "" {
		c.Auth.JWTIssuer = f.JWTIssuer
	}
	if f.JWTAudience != "" {
		c.Auth.JWTAudience = f.JWTAudience
	}
	if f.AssumeRoleARN != "" {
		c.Auth.AssumeRoleARN = f.AssumeRoleARN
	}
	if f.ServiceTimeoutSec > 0 {
		c.Auth.ServiceTimeoutS = f.ServiceTimeoutSec
	}
}

// validate checks that the resolved (backend, transport, auth) combination
// is internally consistent.
func (r *Resolved) validate() error {
	if r.Deployment == DeploymentRemote && r.Transport == TransportStdio {
		return &InvalidError{Field: "transport", Message: "remote deployment requires the http transport"}
	}
	if r.Backend == BackendGraphQL && r.Catalog.URL == "" {
		return &InvalidError{Field: "catalog-url", Message: "required for graphql backend"}
	}
	if r.Backend == BackendGraphQL && r.Catalog.RegistryURL == "" {
		return &InvalidError{Field: "registry-url", Message: "required for graphql backend"}
	}
	if r.Auth.RequireJWT && r.Auth.JWTSecret == "" && r.Auth.JWTSecretParam == "" {
		return &InvalidError{Field: "jwt-secret", Message: "require-jwt is set but no jwt-secret or jwt-secret-param configured"}
	}
	return nil
}

func envOverride(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}
