// Command quiltmcp runs the Quilt catalog MCP server.
//
// It speaks MCP (JSON-RPC 2.0) over stdio or Streamable HTTP, backed by
// either a Quilt catalog's GraphQL API or native AWS SDK calls, chosen by
// --deployment (remote, local, legacy).
//
// Optional environment variables:
//
//	QUILT_CATALOG_URL         - GraphQL catalog URL (required for backend=graphql)
//	QUILT_REGISTRY_URL        - Registry (S3) URL
//	QUILT_ELASTICSEARCH_URL   - Optional ES endpoint for the search_query fan-out primary
//	QUILT_S3_PROXY_URL        - Optional S3 endpoint override (e.g. a VPC-local proxy)
//	MCP_JWT_SECRET            - HS256 shared secret for bearer token validation
//	MCP_JWT_SECRET_PARAMETER  - SSM parameter name carrying the secret; wins over MCP_JWT_SECRET
//	MCP_JWT_KID               - Expected JWT "kid" header; empty skips the check
//	MCP_JWT_ISSUER            - Expected JWT "iss" claim; empty skips the check
//	MCP_JWT_AUDIENCE          - Expected JWT "aud" claim; empty skips the check
//	MCP_REQUIRE_JWT           - "true" to reject requests without a bearer token
//	QUILT_ASSUME_ROLE_ARN     - Optional IAM role ARN assumed via STS for the ambient-credentials probe
//	SPECMCP_LOG_LEVEL         - Log level: debug, info, warn, error (default: info)
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/elastic/go-elasticsearch/v8"

	"github.com/quiltdata/quiltmcp/internal/auth"
	"github.com/quiltdata/quiltmcp/internal/catalog"
	"github.com/quiltdata/quiltmcp/internal/catalog/direct"
	"github.com/quiltdata/quiltmcp/internal/catalog/graphql"
	"github.com/quiltdata/quiltmcp/internal/config"
	"github.com/quiltdata/quiltmcp/internal/content"
	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/scheduler"
	"github.com/quiltdata/quiltmcp/internal/search"
	"github.com/quiltdata/quiltmcp/internal/session"
	"github.com/quiltdata/quiltmcp/internal/tools/admin"
	"github.com/quiltdata/quiltmcp/internal/tools/athena"
	authtools "github.com/quiltdata/quiltmcp/internal/tools/auth"
	"github.com/quiltdata/quiltmcp/internal/tools/buckets"
	"github.com/quiltdata/quiltmcp/internal/tools/packaging"
	toolsearch "github.com/quiltdata/quiltmcp/internal/tools/search"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
	"github.com/quiltdata/quiltmcp/internal/tools/workflow"
)

// Version is set via ldflags at build time.
var Version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "quiltmcp: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if _, ok := err.(*config.InvalidError); ok {
		return 2
	}
	return 1
}

func run() error {
	flags := parseFlags()

	cfg, err := config.Load(flags)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logLevel := parseLogLevel(cfg.Log.Level)
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))

	version := cfg.Server.Version
	if Version != "dev" {
		version = Version
	}

	if !cfg.SkipBanner {
		logger.Info("starting quiltmcp",
			"version", version,
			"deployment", cfg.Deployment,
			"backend", cfg.Backend,
			"transport", cfg.Transport,
		)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	resolver, validator, cache, err := buildResolver(ctx, cfg)
	if err != nil {
		return fmt.Errorf("building session resolver: %w", err)
	}

	sched := scheduler.NewScheduler(logger)
	sched.AddJob(credentialCacheEvictJob{cache: cache}, 5*time.Minute)
	sched.Start(ctx)
	defer sched.Stop()

	factory := catalog.NewFactory(
		func(c *http.Client, l *slog.Logger) catalog.QuiltOps { return direct.New(c, l) },
		func(c *http.Client, l *slog.Logger) catalog.QuiltOps { return graphql.New(c, l) },
		logger,
	)

	engine := buildSearchEngine(cfg, logger)

	deps := &toolkit.Deps{Resolver: resolver, Factory: factory, Search: engine}

	registry := mcp.NewRegistry()
	registerTools(registry, cfg, deps)

	server := mcp.NewServer(registry, mcp.ServerInfo{
		Name:    cfg.Server.Name,
		Version: version,
	}, logger)

	if cfg.Transport == config.TransportHTTP {
		return runHTTP(ctx, cfg, server, validator, version, logger)
	}
	return server.Run(ctx)
}

func registerTools(registry *mcp.Registry, cfg *config.Resolved, deps *toolkit.Deps) {
	registry.Register(authtools.NewAuthStatus(deps))
	registry.Register(authtools.NewCatalogStatus(cfg))

	registry.Register(buckets.NewList(deps))
	registry.Register(buckets.NewObjectsList(deps))
	registry.Register(buckets.NewObjectsGet(deps))
	registry.Register(buckets.NewObjectsPut(deps))

	registry.Register(packaging.NewList(deps))
	registry.Register(packaging.NewBrowse(deps))
	registry.Register(packaging.NewVersionsList(deps))
	registry.Register(packaging.NewManifest(deps))
	registry.Register(packaging.NewCreate(deps))
	registry.Register(packaging.NewUpdate(deps))
	registry.Register(packaging.NewDelete(deps))
	registry.Register(packaging.NewTagList(deps))
	registry.Register(packaging.NewTagAdd(deps))
	registry.Register(packaging.NewTagDelete(deps))

	registry.Register(toolsearch.NewQuery(deps))
	registry.Register(athena.NewExecute(deps))
	registry.Register(athena.NewTabulatorQuery(deps))

	registry.Register(admin.NewPolicyList(deps))
	registry.Register(admin.NewPolicyCreate(deps))
	registry.Register(admin.NewPolicyDelete(deps))
	registry.Register(admin.NewRoleList(deps))
	registry.Register(admin.NewRoleCreate(deps))
	registry.Register(admin.NewJanitorRun(deps))

	if cfg.Deployment == config.DeploymentLegacy {
		store := workflow.NewStore()
		registry.Register(workflow.NewStart(store))
		registry.Register(workflow.NewAdvance(store))
		registry.Register(workflow.NewStatus(store))
		registry.Register(workflow.NewList(store))
	}

	registry.RegisterPrompt(&content.SearchTipsPrompt{})
	registry.RegisterPrompt(&content.AthenaSQLPrompt{})
	registry.RegisterResource(&content.ToolReferenceResource{})
}

// buildResolver wires the auth plane (C3) into a session.Resolver: a
// secret source (SSM wins when configured), a JWT validator, a credential
// chain, and a shared credential cache.
func buildResolver(ctx context.Context, cfg *config.Resolved) (*session.Resolver, *auth.Validator, *auth.CredentialCache, error) {
	var ssmClient *ssm.Client
	if cfg.Auth.JWTSecretParam != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("loading aws config for ssm: %w", err)
		}
		ssmClient = ssm.NewFromConfig(awsCfg)
	}
	secrets := auth.NewSecretSource(cfg.Auth.JWTSecret, cfg.Auth.JWTSecretParam, ssmClient)
	validator := auth.NewValidator(secrets, cfg.Auth.JWTKeyID, cfg.Auth.JWTIssuer, cfg.Auth.JWTAudience)

	httpClient := &http.Client{Timeout: time.Duration(cfg.Auth.ServiceTimeoutS) * time.Second}
	chain := auth.NewCredentialChain(cfg.Catalog.URL, httpClient, cfg.Auth.RequireJWT, cfg.Auth.AssumeRoleARN)
	cache := auth.NewCredentialCache()

	return session.NewResolver(cfg, validator, chain, cache), validator, cache, nil
}

// credentialCacheEvictJob periodically clears expired credential bundles so
// the cache doesn't grow unbounded across long-lived server processes.
type credentialCacheEvictJob struct {
	cache *auth.CredentialCache
}

func (j credentialCacheEvictJob) Name() string { return "credential-cache-evict" }

func (j credentialCacheEvictJob) Run(ctx context.Context) error {
	j.cache.Evict()
	return nil
}

// buildSearchEngine wires the unified search fan-out (C8): an optional ES
// primary when an endpoint is configured, graphql/direct always available
// as the metadata-predicate primary and S3-list fallback.
func buildSearchEngine(cfg *config.Resolved, logger *slog.Logger) *search.Engine {
	httpClient := &http.Client{Timeout: time.Duration(cfg.Auth.ServiceTimeoutS) * time.Second}

	var es *search.ESBackend
	if cfg.Catalog.ElasticsearchURL != "" {
		client, err := elasticsearch.NewClient(elasticsearch.Config{
			Addresses: []string{cfg.Catalog.ElasticsearchURL},
		})
		if err != nil {
			logger.Warn("elasticsearch client unavailable, search_query will skip the ES primary", "error", err)
		} else {
			es = &search.ESBackend{Client: client, Index: "quilt"}
		}
	}

	return &search.Engine{
		ES:      es,
		GraphQL: graphql.New(httpClient, logger),
		Direct:  direct.New(httpClient, logger),
	}
}

func runHTTP(ctx context.Context, cfg *config.Resolved, server *mcp.Server, validator mcp.TokenValidator, version string, logger *slog.Logger) error {
	httpServer := mcp.NewHTTPServer(server, cfg.Config.Transport.CORSOrigins, cfg.Auth.RequireJWT, validator, version, logger)

	addr := cfg.Config.Transport.Host + ":" + cfg.Config.Transport.Port
	srv := &http.Server{
		Addr:    addr,
		Handler: httpServer.Handler(),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func parseFlags() config.Flags {
	var f config.Flags
	var requireJWT string

	flag.StringVar(&f.Deployment, "deployment", "", "deployment preset: remote, local, legacy")
	flag.StringVar(&f.Backend, "backend", "", "backend override: direct, graphql")
	flag.StringVar(&f.Transport, "transport", "", "transport override: stdio, http")
	flag.StringVar(&f.CatalogURL, "catalog-url", "", "Quilt catalog GraphQL URL")
	flag.StringVar(&f.RegistryURL, "registry-url", "", "registry (S3) URL")
	flag.StringVar(&f.S3ProxyURL, "s3-proxy-url", "", "optional S3 endpoint override")
	flag.StringVar(&requireJWT, "require-jwt", "", "true/false: reject requests without a bearer token")
	flag.StringVar(&f.JWTKeyID, "jwt-kid", "", "expected JWT \"kid\" header; empty skips the check")
	flag.StringVar(&f.JWTIssuer, "jwt-issuer", "", "expected JWT \"iss\" claim; empty skips the check")
	flag.StringVar(&f.JWTAudience, "jwt-audience", "", "expected JWT \"aud\" claim; empty skips the check")
	flag.StringVar(&f.AssumeRoleARN, "assume-role-arn", "", "IAM role to assume via STS for the ambient-credentials probe")
	flag.IntVar(&f.ServiceTimeoutSec, "service-timeout", 0, "outbound HTTP timeout in seconds")
	flag.BoolVar(&f.SkipBanner, "skip-banner", false, "suppress the startup banner log line")
	flag.StringVar(&f.ConfigPath, "config", "", "path to a quiltmcp.toml config file")
	flag.Parse()

	if requireJWT != "" {
		v := strings.EqualFold(requireJWT, "true") || requireJWT == "1"
		f.RequireJWT = aws.Bool(v)
	}
	return f
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
