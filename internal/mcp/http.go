// Package mcp provides the MCP protocol server implementation.
// This file implements the Streamable HTTP transport per MCP spec 2025-03-26.
package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/auth"
)

// supportedProtocolVersion is the MCP-Protocol-Version this transport
// accepts; every non-OPTIONS request must declare it.
const supportedProtocolVersion = "2024-11-05"

// TokenValidator is the subset of auth.Validator the HTTP transport needs,
// kept as an interface so tests can substitute a fake without real JWTs.
type TokenValidator interface {
	Validate(ctx context.Context, token string) (*auth.Claims, error)
}

// HTTPServer wraps Server with Streamable HTTP transport (MCP spec 2025-03-26).
// It serves a single MCP endpoint that accepts POST (JSON-RPC messages). GET
// offers no SSE stream: it answers 405, or 400 when Accept lacks
// text/event-stream.
//
// Authentication: clients send their catalog bearer token (JWT) as an
// Authorization header. The raw token is injected into the request context
// for downstream credential exchange; when RequireJWT is set, a missing or
// invalid token is rejected before the request ever reaches the registry.
type HTTPServer struct {
	server     *Server
	cors       string
	version    string
	logger     *slog.Logger
	requireJWT bool
	validator  TokenValidator
	sessions   sync.Map // sessionID -> *session
}

// session tracks an MCP session established via initialize.
type session struct {
	id        string
	createdAt time.Time
}

// NewHTTPServer creates an HTTP transport wrapper around the core MCP server.
// validator may be nil when no JWT enforcement is configured; any token
// presented is then passed through unvalidated, while requireJWT still
// rejects a request that carries no token at all.
func NewHTTPServer(server *Server, corsOrigins string, requireJWT bool, validator TokenValidator, version string, logger *slog.Logger) *HTTPServer {
	return &HTTPServer{
		server:     server,
		cors:       corsOrigins,
		requireJWT: requireJWT,
		validator:  validator,
		version:    version,
		logger:     logger,
	}
}

// Handler returns an http.Handler that serves the MCP Streamable HTTP endpoint.
func (h *HTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/mcp", h.handleMCP)
	mux.HandleFunc("/health", h.handleHealth)
	mux.HandleFunc("/healthz", h.handleHealth)
	mux.HandleFunc("/", h.handleHealth)
	return mux
}

// handleHealth responds to health check probes. It never touches the
// catalog backend — a healthy process answers even if the catalog is down.
func (h *HTTPServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":    "ok",
		"route":     r.URL.Path,
		"transport": "http",
		"version":   h.version,
	})
}

// handleMCP is the single MCP endpoint that supports POST and GET.
func (h *HTTPServer) handleMCP(w http.ResponseWriter, r *http.Request) {
	h.setCORS(w, r)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if rpcErr := h.checkProtocolVersion(r); rpcErr != nil {
		h.writeJSONError(w, http.StatusBadRequest, rpcErr.Code, rpcErr.Message, rpcErr.Data)
		return
	}

	req, authErr := h.authenticate(r)
	if authErr != nil {
		h.writeJSONError(w, http.StatusUnauthorized, ErrCodeInvalidRequest, authErr.Message, authErr)
		return
	}

	switch r.Method {
	case http.MethodPost:
		h.handlePost(w, req)
	case http.MethodGet:
		h.handleGet(w, req)
	case http.MethodDelete:
		h.handleDelete(w, req)
	default:
		w.Header().Set("Allow", "GET, POST, DELETE, OPTIONS")
		http.Error(w, `{"error":"method not allowed"}`, http.StatusMethodNotAllowed)
	}
}

// checkProtocolVersion requires the mcp-protocol-version header on every
// request and rejects an unrecognized value with PROTOCOL_MISMATCH.
func (h *HTTPServer) checkProtocolVersion(r *http.Request) *RPCError {
	version := r.Header.Get("mcp-protocol-version")
	if version == "" {
		appErr := apperr.New(apperr.ProtocolMismatch, "missing required mcp-protocol-version header").
			WithFixHint(fmt.Sprintf("send mcp-protocol-version: %s", supportedProtocolVersion))
		return &RPCError{Code: ErrCodeInvalidRequest, Message: appErr.Message, Data: appErr}
	}
	if version != supportedProtocolVersion {
		appErr := apperr.New(apperr.ProtocolMismatch, fmt.Sprintf("unsupported mcp-protocol-version %q", version)).
			WithFixHint(fmt.Sprintf("use mcp-protocol-version: %s", supportedProtocolVersion))
		return &RPCError{Code: ErrCodeInvalidRequest, Message: appErr.Message, Data: appErr}
	}
	return nil
}

// authenticate extracts the bearer token (if any), injects it into the
// request context for downstream credential exchange, and — only when a
// token is present or require-jwt demands one — validates it. Absence of a
// token is only an error when RequireJWT is set; a present-but-invalid
// token is always rejected, regardless of RequireJWT.
func (h *HTTPServer) authenticate(r *http.Request) (*http.Request, *apperr.Error) {
	token := bearerToken(r)

	if token == "" {
		if h.requireJWT {
			return nil, apperr.New(apperr.AuthNoCredentials, "request carries no bearer token")
		}
		return r, nil
	}

	if h.validator != nil {
		claims, err := h.validator.Validate(r.Context(), token)
		if err != nil {
			return nil, apperr.As(err)
		}
		_ = claims // claims are re-derived explicitly where needed; not stashed in context
	}

	ctx := auth.WithToken(r.Context(), token)
	return r.WithContext(ctx), nil
}

func bearerToken(r *http.Request) string {
	const prefix = "Bearer "
	h := r.Header.Get("Authorization")
	if !strings.HasPrefix(h, prefix) {
		return ""
	}
	return strings.TrimPrefix(h, prefix)
}

// handlePost processes JSON-RPC messages from the client.
func (h *HTTPServer) handlePost(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 10*1024*1024)) // 10MB limit
	if err != nil {
		http.Error(w, `{"error":"failed to read request body"}`, http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if len(body) == 0 {
		http.Error(w, `{"error":"empty request body"}`, http.StatusBadRequest)
		return
	}

	trimmed := strings.TrimSpace(string(body))
	if strings.HasPrefix(trimmed, "[") {
		h.handleBatch(w, r, body)
		return
	}

	h.handleSingle(w, r, body)
}

// handleSingle processes a single JSON-RPC message.
func (h *HTTPServer) handleSingle(w http.ResponseWriter, r *http.Request, body []byte) {
	var peek struct {
		ID     json.RawMessage `json:"id,omitempty"`
		Method string          `json:"method,omitempty"`
	}
	if err := json.Unmarshal(body, &peek); err != nil {
		h.writeJSONError(w, http.StatusBadRequest, ErrCodeParse, "Parse error", err.Error())
		return
	}

	isNotification := peek.ID == nil || string(peek.ID) == "null"
	if isNotification {
		_ = h.server.HandleMessage(r.Context(), body)
		w.WriteHeader(http.StatusAccepted)
		return
	}

	resp := h.server.HandleMessage(r.Context(), body)
	if resp == nil {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	if peek.Method == "initialize" && resp.Error == nil {
		sessionID := h.createSession()
		w.Header().Set("Mcp-Session-Id", sessionID)
	}

	if peek.Method != "initialize" {
		sessionID := r.Header.Get("Mcp-Session-Id")
		if sessionID != "" {
			if _, ok := h.sessions.Load(sessionID); !ok {
				http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
				return
			}
		}
	}

	h.writeJSON(w, http.StatusOK, resp)
}

// handleBatch processes a JSON-RPC batch.
func (h *HTTPServer) handleBatch(w http.ResponseWriter, r *http.Request, body []byte) {
	var messages []json.RawMessage
	if err := json.Unmarshal(body, &messages); err != nil {
		h.writeJSONError(w, http.StatusBadRequest, ErrCodeParse, "Parse error", err.Error())
		return
	}

	if len(messages) == 0 {
		h.writeJSONError(w, http.StatusBadRequest, ErrCodeInvalidRequest, "Empty batch", nil)
		return
	}

	var responses []*Response
	allNotifications := true

	for _, msg := range messages {
		var peek struct {
			ID json.RawMessage `json:"id,omitempty"`
		}
		if err := json.Unmarshal(msg, &peek); err != nil {
			continue
		}

		isNotification := peek.ID == nil || string(peek.ID) == "null"
		if !isNotification {
			allNotifications = false
		}

		resp := h.server.HandleMessage(r.Context(), msg)
		if resp != nil {
			responses = append(responses, resp)
		}
	}

	if allNotifications || len(responses) == 0 {
		w.WriteHeader(http.StatusAccepted)
		return
	}

	h.writeJSON(w, http.StatusOK, responses)
}

// handleGet opens an SSE stream for server-initiated messages.
// For now, we return 405 since the server doesn't send unsolicited messages.
func (h *HTTPServer) handleGet(w http.ResponseWriter, r *http.Request) {
	accept := r.Header.Get("Accept")
	if !strings.Contains(accept, "text/event-stream") {
		http.Error(w, `{"error":"Accept header must include text/event-stream"}`, http.StatusBadRequest)
		return
	}

	// Per MCP spec: server MAY return 405 if it doesn't offer an SSE stream.
	w.Header().Set("Allow", "POST, DELETE, OPTIONS")
	http.Error(w, `{"error":"SSE stream not supported; use POST for requests"}`, http.StatusMethodNotAllowed)
}

// handleDelete terminates a session.
func (h *HTTPServer) handleDelete(w http.ResponseWriter, r *http.Request) {
	sessionID := r.Header.Get("Mcp-Session-Id")
	if sessionID == "" {
		http.Error(w, `{"error":"Mcp-Session-Id header required"}`, http.StatusBadRequest)
		return
	}

	if _, ok := h.sessions.LoadAndDelete(sessionID); !ok {
		http.Error(w, `{"error":"session not found"}`, http.StatusNotFound)
		return
	}

	h.logger.Info("session terminated", "session_id", sessionID)
	w.WriteHeader(http.StatusOK)
}

// createSession generates a new session ID and stores it.
func (h *HTTPServer) createSession() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("session-%d", time.Now().UnixNano())
	}
	id := hex.EncodeToString(b)
	h.sessions.Store(id, &session{
		id:        id,
		createdAt: time.Now(),
	})
	h.logger.Info("session created", "session_id", id)
	return id
}

// setCORS sets CORS headers on the response.
func (h *HTTPServer) setCORS(w http.ResponseWriter, r *http.Request) {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return
	}

	if h.cors == "*" {
		w.Header().Set("Access-Control-Allow-Origin", "*")
	} else {
		allowed := strings.Split(h.cors, ",")
		for _, a := range allowed {
			if strings.TrimSpace(a) == origin {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				break
			}
		}
	}

	w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, Accept, Mcp-Session-Id, mcp-protocol-version")
	w.Header().Set("Access-Control-Expose-Headers", "Mcp-Session-Id")
}

// writeJSON writes a JSON response with the given status code.
func (h *HTTPServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("failed to write JSON response", "error", err)
	}
}

// writeJSONError writes a JSON-RPC error response.
func (h *HTTPServer) writeJSONError(w http.ResponseWriter, httpStatus int, code int, message string, data any) {
	resp := &Response{
		JSONRPC: "2.0",
		Error: &RPCError{
			Code:    code,
			Message: message,
			Data:    data,
		},
	}
	h.writeJSON(w, httpStatus, resp)
}
