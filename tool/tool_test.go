package tool

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nementium/agentcore/internal/testutil"
	"github.com/nementium/agentcore/logging"
	"github.com/nementium/agentcore/model"
	"github.com/nementium/agentcore/record"
	"github.com/nementium/agentcore/search"
)

func testInvocation() *Invocation {
	return &Invocation{User: "maria", Logger: logging.NoOpLogger{}}
}

func TestFunctionToolValidatesRequiredArgs(t *testing.T) {
	ft := NewFunctionTool("echo", "echoes", map[string]any{
		"type":       "object",
		"properties": map[string]any{"text": map[string]any{"type": "string"}},
		"required":   []string{"text"},
	}, func(ctx context.Context, inv *Invocation, args map[string]any) (any, error) {
		return args["text"], nil
	})

	_, err := ft.Call(context.Background(), testInvocation(), map[string]any{})
	require.Error(t, err)

	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrorCodeValidation, te.Code)
}

func TestFunctionToolValidatesArgTypes(t *testing.T) {
	ft := NewFunctionTool("count", "counts", map[string]any{
		"type":       "object",
		"properties": map[string]any{"n": map[string]any{"type": "integer"}},
		"required":   []string{"n"},
	}, func(ctx context.Context, inv *Invocation, args map[string]any) (any, error) {
		return args["n"], nil
	})

	_, err := ft.Call(context.Background(), testInvocation(), map[string]any{"n": "tres"})
	require.Error(t, err)

	// JSON numbers arrive as float64 and must pass as integers.
	out, err := ft.Call(context.Background(), testInvocation(), map[string]any{"n": float64(3)})
	require.NoError(t, err)
	assert.Equal(t, float64(3), out)
}

func TestFunctionToolWrapsHandlerErrors(t *testing.T) {
	ft := NewFunctionTool("boom", "fails", nil,
		func(ctx context.Context, inv *Invocation, args map[string]any) (any, error) {
			return nil, errors.New("db unreachable")
		})

	_, err := ft.Call(context.Background(), testInvocation(), nil)
	var te *ToolError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, ErrorCodeExecution, te.Code)
	assert.Contains(t, te.Message, "db unreachable")
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	r := NewRegistry(nil)
	ft := NewCurrentDateTool(nil)
	require.NoError(t, r.Register(ft))
	assert.Error(t, r.Register(ft))
}

func TestRegistryFinalActionFlag(t *testing.T) {
	r := NewRegistry(nil)
	store := record.NewMemoryStore()
	mailer := &fakeMailer{}

	require.NoError(t, r.Register(NewListContactsTool(store)))
	require.NoError(t, r.RegisterFinalAction(NewSendEmailTool(store, mailer)))

	assert.False(t, r.IsFinalAction("list_contacts"))
	assert.True(t, r.IsFinalAction("send_email_notification"))
}

func TestRegistryDispatchUnknownTool(t *testing.T) {
	r := NewRegistry(nil)
	res := r.Dispatch(context.Background(), testInvocation(), model.ToolCall{ID: "c1", Name: "nope"})

	assert.False(t, res.Success)
	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Content), &payload))
	assert.Equal(t, false, payload["success"])
}

func TestRegistryDispatchBadArgumentsJSON(t *testing.T) {
	r := NewRegistry(nil)
	require.NoError(t, r.Register(NewCurrentDateTool(nil)))

	res := r.Dispatch(context.Background(), testInvocation(), model.ToolCall{
		ID: "c1", Name: "get_current_date", Arguments: "{not json",
	})
	assert.False(t, res.Success)
}

func TestRegistryDispatchSerializesPayload(t *testing.T) {
	r := NewRegistry(nil)
	fixed := time.Date(2026, 8, 28, 10, 30, 0, 0, time.UTC)
	require.NoError(t, r.Register(NewCurrentDateTool(func() time.Time { return fixed })))

	res := r.Dispatch(context.Background(), testInvocation(), model.ToolCall{
		ID: "c1", Name: "get_current_date", Arguments: "{}",
	})
	require.True(t, res.Success)

	var payload map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.Content), &payload))
	assert.Equal(t, "2026-08-28", payload["date"])
	assert.Equal(t, "10:30", payload["time"])
}

func TestListContactsScopedToOwnerAndActive(t *testing.T) {
	store := record.NewMemoryStore()
	ctx := context.Background()
	_, _ = store.Insert(ctx, ContactsTable, testutil.ContactRecord(record.Record{"id": float64(1), "nombre": "Carlos Pérez"}))
	_, _ = store.Insert(ctx, ContactsTable, testutil.ContactRecord(record.Record{"id": float64(2), "nombre": "Lucía Gómez", "username": "otra"}))
	_, _ = store.Insert(ctx, ContactsTable, testutil.ContactRecord(record.Record{"id": float64(3), "nombre": "Baja", "activo": false}))

	ft := NewListContactsTool(store)
	out, err := ft.Call(ctx, testInvocation(), map[string]any{})
	require.NoError(t, err)

	payload := out.(map[string]any)
	assert.Equal(t, 1, payload["count"])
}

func TestListContactsFirstWordRetry(t *testing.T) {
	store := record.NewMemoryStore()
	ctx := context.Background()
	_, _ = store.Insert(ctx, ContactsTable, testutil.ContactRecord(record.Record{"id": float64(1), "nombre": "Carlos Pérez"}))

	ft := NewListContactsTool(store)
	out, err := ft.Call(ctx, testInvocation(), map[string]any{"search_term": "carlos martínez"})
	require.NoError(t, err)

	payload := out.(map[string]any)
	assert.Equal(t, 1, payload["count"], "first word should match after the full term fails")
}

func TestListContactsMatchesEmail(t *testing.T) {
	store := record.NewMemoryStore()
	ctx := context.Background()
	_, _ = store.Insert(ctx, ContactsTable, testutil.ContactRecord(record.Record{
		"id": float64(1), "nombre": "Carlos Pérez", "email": "carlos@example.com",
	}))
	_, _ = store.Insert(ctx, ContactsTable, testutil.ContactRecord(record.Record{
		"id": float64(2), "nombre": "Lucía Gómez", "email": "lucia@otra.example",
	}))

	ft := NewListContactsTool(store)
	out, err := ft.Call(ctx, testInvocation(), map[string]any{"search_term": "example.com"})
	require.NoError(t, err)

	payload := out.(map[string]any)
	assert.Equal(t, 1, payload["count"])
	contacts := payload["contacts"].([]map[string]any)
	assert.Equal(t, "Carlos Pérez", contacts[0]["nombre"])
}

func TestWebSearchToolClampsResults(t *testing.T) {
	searcher := &staticSearcher{results: []search.Result{{Title: "t", URL: "u"}}}
	ft := NewWebSearchTool(searcher)

	out, err := ft.Call(context.Background(), testInvocation(), map[string]any{
		"query": "acme", "max_results": float64(99),
	})
	require.NoError(t, err)
	assert.Equal(t, 10, searcher.gotMax)

	payload := out.(map[string]any)
	assert.Equal(t, 1, payload["count"])
}

type staticSearcher struct {
	results []search.Result
	gotMax  int
}

func (s *staticSearcher) Search(_ context.Context, _ string, max int) ([]search.Result, error) {
	s.gotMax = max
	return s.results, nil
}
