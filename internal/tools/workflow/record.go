// Package workflow implements the legacy workflow_* tool module: in-memory,
// non-persistent bookkeeping of named multi-step workflows. Registered only
// when deployment=legacy, per spec §3/§9's explicit non-goal to persist it.
package workflow

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"sync"

	"github.com/quiltdata/quiltmcp/internal/apperr"
	"github.com/quiltdata/quiltmcp/internal/mcp"
	"github.com/quiltdata/quiltmcp/internal/tools/toolkit"
)

// Record is the WorkflowRecord entity: (id, name, steps, status). Exists
// only for the process lifetime; never written to disk or a database.
type Record struct {
	ID     string   `json:"id"`
	Name   string   `json:"name"`
	Steps  []string `json:"steps"`
	Status string   `json:"status"`
}

const (
	StatusPending  = "pending"
	StatusRunning  = "running"
	StatusComplete = "complete"
)

// Store is the guarded in-process map backing every workflow_* tool.
type Store struct {
	mu      sync.Mutex
	records map[string]*Record
}

func NewStore() *Store {
	return &Store{records: make(map[string]*Record)}
}

func (s *Store) create(name string, steps []string) *Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := &Record{ID: newID(), Name: name, Steps: steps, Status: StatusPending}
	s.records[r.ID] = r
	return r
}

func (s *Store) get(id string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	return r, ok
}

func (s *Store) setStatus(id, status string) (*Record, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.records[id]
	if !ok {
		return nil, false
	}
	r.Status = status
	return r, true
}

func (s *Store) list() []*Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*Record, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, r)
	}
	return out
}

func newID() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// --- tools ---

type Start struct{ store *Store }

func NewStart(store *Store) *Start { return &Start{store: store} }

func (t *Start) Name() string        { return "workflow_start" }
func (t *Start) Description() string { return "Start a new in-memory workflow record with a name and ordered steps. Lost on server restart." }
func (t *Start) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "name": {"type": "string"},
    "steps": {"type": "array", "items": {"type": "string"}}
  },
  "required": ["name", "steps"],
  "additionalProperties": false
}`)
}

type startParams struct {
	Name  string   `json:"name"`
	Steps []string `json:"steps"`
}

func (t *Start) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p startParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.Name == "" {
		return toolkit.ValidationError("name is required"), nil
	}
	if len(p.Steps) == 0 {
		return toolkit.ValidationError("steps must be non-empty"), nil
	}
	return mcp.JSONResult(t.store.create(p.Name, p.Steps))
}

type Advance struct{ store *Store }

func NewAdvance(store *Store) *Advance { return &Advance{store: store} }

func (t *Advance) Name() string        { return "workflow_advance" }
func (t *Advance) Description() string { return "Advance a workflow record to a new status (pending, running, complete)." }
func (t *Advance) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {
    "id": {"type": "string"},
    "status": {"type": "string", "enum": ["pending", "running", "complete"]}
  },
  "required": ["id", "status"],
  "additionalProperties": false
}`)
}

type advanceParams struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

func (t *Advance) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p advanceParams
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.ID == "" {
		return toolkit.ValidationError("id is required"), nil
	}
	switch p.Status {
	case StatusPending, StatusRunning, StatusComplete:
	default:
		return toolkit.ValidationError("status must be one of pending, running, complete"), nil
	}

	r, ok := t.store.setStatus(p.ID, p.Status)
	if !ok {
		return toolkit.ErrorResult(apperr.New(apperr.NotFound, "no workflow record with that id")), nil
	}
	return mcp.JSONResult(r)
}

type Status struct{ store *Store }

func NewStatus(store *Store) *Status { return &Status{store: store} }

func (t *Status) Name() string        { return "workflow_status" }
func (t *Status) Description() string { return "Look up a workflow record by id." }
func (t *Status) InputSchema() json.RawMessage {
	return json.RawMessage(`{
  "type": "object",
  "properties": {"id": {"type": "string"}},
  "required": ["id"],
  "additionalProperties": false
}`)
}

func (t *Status) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	var p struct {
		ID string `json:"id"`
	}
	if res := toolkit.ParseParams(params, &p); res != nil {
		return res, nil
	}
	if p.ID == "" {
		return toolkit.ValidationError("id is required"), nil
	}
	r, ok := t.store.get(p.ID)
	if !ok {
		return toolkit.ErrorResult(apperr.New(apperr.NotFound, "no workflow record with that id")), nil
	}
	return mcp.JSONResult(r)
}

type List struct{ store *Store }

func NewList(store *Store) *List { return &List{store: store} }

func (t *List) Name() string        { return "workflow_list" }
func (t *List) Description() string { return "List every in-memory workflow record for this process." }
func (t *List) InputSchema() json.RawMessage {
	return json.RawMessage(`{"type":"object","properties":{},"additionalProperties":false}`)
}

func (t *List) Execute(ctx context.Context, params json.RawMessage) (*mcp.ToolsCallResult, error) {
	records := t.store.list()
	return mcp.JSONResult(map[string]any{"records": records, "count": len(records)})
}
