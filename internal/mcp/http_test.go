package mcp

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/auth"
)

func testHTTPServer(t *testing.T, requireJWT bool, validator TokenValidator) *HTTPServer {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := NewRegistry()
	server := NewServer(registry, ServerInfo{Name: "test", Version: "0.0.1"}, logger)
	return NewHTTPServer(server, "*", requireJWT, validator, "0.0.1", logger)
}

func initializeRequest() []byte {
	b, _ := json.Marshal(Request{JSONRPC: "2.0", ID: json.RawMessage(`1`), Method: "initialize"})
	return b
}

func TestHandleMCP_MissingProtocolVersionRejected(t *testing.T) {
	h := testHTTPServer(t, false, nil)
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(string(initializeRequest())))
	w := httptest.NewRecorder()

	h.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleMCP_SupportedProtocolVersionAccepted(t *testing.T) {
	h := testHTTPServer(t, false, nil)
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(string(initializeRequest())))
	req.Header.Set("mcp-protocol-version", supportedProtocolVersion)
	w := httptest.NewRecorder()

	h.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestHandleMCP_RequireJWTRejectsMissingToken(t *testing.T) {
	h := testHTTPServer(t, true, nil)
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(string(initializeRequest())))
	req.Header.Set("mcp-protocol-version", supportedProtocolVersion)
	w := httptest.NewRecorder()

	h.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleMCP_NoTokenAllowedWhenNotRequired(t *testing.T) {
	h := testHTTPServer(t, false, nil)
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(string(initializeRequest())))
	req.Header.Set("mcp-protocol-version", supportedProtocolVersion)
	w := httptest.NewRecorder()

	h.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

type rejectingValidator struct{}

func (rejectingValidator) Validate(ctx context.Context, token string) (*auth.Claims, error) {
	return nil, assertAuthInvalid{}
}

type assertAuthInvalid struct{}

func (assertAuthInvalid) Error() string { return "bad signature" }

func TestHandleMCP_InvalidTokenRejectedEvenWithoutRequireJWT(t *testing.T) {
	h := testHTTPServer(t, false, rejectingValidator{})
	req := httptest.NewRequest(http.MethodPost, "/mcp", strings.NewReader(string(initializeRequest())))
	req.Header.Set("mcp-protocol-version", supportedProtocolVersion)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	w := httptest.NewRecorder()

	h.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestHandleHealth_DoesNotRequireProtocolVersion(t *testing.T) {
	h := testHTTPServer(t, false, nil)
	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()

	h.Handler().ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "ok")
}
