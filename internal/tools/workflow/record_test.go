package workflow

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quiltdata/quiltmcp/internal/apperr"
)

func TestStart_CreatesPendingRecord(t *testing.T) {
	store := NewStore()
	tool := NewStart(store)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"name":"ingest","steps":["fetch","transform","load"]}`))
	require.NoError(t, err)
	require.False(t, res.IsError)

	var r Record
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &r))
	assert.Equal(t, "ingest", r.Name)
	assert.Equal(t, []string{"fetch", "transform", "load"}, r.Steps)
	assert.Equal(t, StatusPending, r.Status)
	assert.NotEmpty(t, r.ID)
}

func TestStart_RequiresNameAndSteps(t *testing.T) {
	store := NewStore()
	tool := NewStart(store)

	res, err := tool.Execute(context.Background(), json.RawMessage(`{"name":"","steps":[]}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))

	res, err = tool.Execute(context.Background(), json.RawMessage(`{"name":"ingest","steps":[]}`))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestAdvance_UpdatesExistingRecordStatus(t *testing.T) {
	store := NewStore()
	r := store.create("ingest", []string{"fetch"})
	tool := NewAdvance(store)

	params, _ := json.Marshal(map[string]string{"id": r.ID, "status": StatusRunning})
	res, err := tool.Execute(context.Background(), params)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got Record
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &got))
	assert.Equal(t, StatusRunning, got.Status)

	stored, ok := store.get(r.ID)
	require.True(t, ok)
	assert.Equal(t, StatusRunning, stored.Status)
}

func TestAdvance_UnknownIDReturnsNotFound(t *testing.T) {
	store := NewStore()
	tool := NewAdvance(store)

	params, _ := json.Marshal(map[string]string{"id": "nope", "status": StatusRunning})
	res, err := tool.Execute(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.NotFound))
}

func TestAdvance_RejectsUnknownStatus(t *testing.T) {
	store := NewStore()
	r := store.create("ingest", []string{"fetch"})
	tool := NewAdvance(store)

	params, _ := json.Marshal(map[string]string{"id": r.ID, "status": "sideways"})
	res, err := tool.Execute(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.ValidationFailed))
}

func TestStatus_LooksUpByID(t *testing.T) {
	store := NewStore()
	r := store.create("ingest", []string{"fetch"})
	tool := NewStatus(store)

	params, _ := json.Marshal(map[string]string{"id": r.ID})
	res, err := tool.Execute(context.Background(), params)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got Record
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &got))
	assert.Equal(t, r.ID, got.ID)
}

func TestStatus_UnknownIDReturnsNotFound(t *testing.T) {
	store := NewStore()
	tool := NewStatus(store)

	params, _ := json.Marshal(map[string]string{"id": "nope"})
	res, err := tool.Execute(context.Background(), params)
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, res.Content[0].Text, string(apperr.NotFound))
}

func TestList_ReturnsEveryRecord(t *testing.T) {
	store := NewStore()
	store.create("ingest", []string{"fetch"})
	store.create("export", []string{"dump"})
	tool := NewList(store)

	res, err := tool.Execute(context.Background(), nil)
	require.NoError(t, err)
	require.False(t, res.IsError)

	var got struct {
		Records []Record `json:"records"`
		Count   int      `json:"count"`
	}
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].Text), &got))
	assert.Equal(t, 2, got.Count)
	assert.Len(t, got.Records, 2)
}
