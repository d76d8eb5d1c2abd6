package catalog

import (
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/quiltdata/quiltmcp/internal/config"
)

// Factory builds the QuiltOps backend for a request, picking direct or
// graphql per the resolved deployment/backend configuration. It owns one
// shared http.Client for connection pooling across every backend instance it
// hands out, mirroring a per-process (not per-request) transport.
type Factory struct {
	httpClient *http.Client
	logger     *slog.Logger

	newDirect  func(*http.Client, *slog.Logger) QuiltOps
	newGraphQL func(*http.Client, *slog.Logger) QuiltOps
}

// NewFactory builds a Factory with a connection-pooled http.Client tuned the
// way the teacher's client factory tunes its transport: bounded idle/total
// connections per host, explicit dial/TLS/response-header timeouts, HTTP/2
// kept on.
func NewFactory(newDirect, newGraphQL func(*http.Client, *slog.Logger) QuiltOps, logger *slog.Logger) *Factory {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		MaxConnsPerHost:     50,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   30 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 60 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,

		DisableKeepAlives: false,
		ForceAttemptHTTP2: true,
	}

	return &Factory{
		httpClient: &http.Client{Transport: transport},
		logger:     logger,
		newDirect:  newDirect,
		newGraphQL: newGraphQL,
	}
}

// For returns the QuiltOps implementation for rc.Backend. It is cheap to
// call per-request: backend instances are stateless wrappers around the
// factory's shared http.Client.
func (f *Factory) For(rc *RequestContext) (QuiltOps, error) {
	switch rc.Backend {
	case config.BackendDirect:
		return f.newDirect(f.httpClient, f.logger), nil
	case config.BackendGraphQL:
		return f.newGraphQL(f.httpClient, f.logger), nil
	default:
		return nil, fmt.Errorf("catalog: unknown backend %q", rc.Backend)
	}
}
