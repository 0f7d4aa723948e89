package assist

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nementium/agentcore/internal/testutil"
	"github.com/nementium/agentcore/model"
	"github.com/nementium/agentcore/notify"
	"github.com/nementium/agentcore/record"
	"github.com/nementium/agentcore/tool"
)

type capturingCompleter struct {
	inner    *model.MockProvider
	requests []model.Request
}

func (c *capturingCompleter) Complete(ctx context.Context, req model.Request) (*model.Response, error) {
	c.requests = append(c.requests, req)
	return c.inner.Complete(ctx, req)
}

type recordingMailer struct {
	calls []notify.EmailRequest
	err   error
}

func (m *recordingMailer) SendEmail(_ context.Context, req notify.EmailRequest) (*notify.SendResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls = append(m.calls, req)
	return &notify.SendResult{ID: "msg-1"}, nil
}

func newTestRegistry(t *testing.T, mailer notify.Mailer) (*tool.Registry, record.Store) {
	t.Helper()
	store := record.NewMemoryStore()
	_, err := store.Insert(context.Background(), tool.ContactsTable, testutil.ContactRecord(nil))
	require.NoError(t, err)

	registry := tool.NewRegistry(nil)
	require.NoError(t, registry.Register(tool.NewListContactsTool(store)))
	require.NoError(t, registry.Register(tool.NewCurrentDateTool(nil)))
	require.NoError(t, registry.RegisterFinalAction(tool.NewSendEmailTool(store, mailer)))
	return registry, store
}

func TestPlainAnswerPassesThrough(t *testing.T) {
	mock := model.NewMockProvider("p").AddTextResponse("El modelo 303 se presenta trimestralmente.")
	registry, _ := newTestRegistry(t, &recordingMailer{})
	a := New(mock, registry)

	result, err := a.HandleMessage(context.Background(), TurnRequest{
		Username: "maria", Message: "¿Cuándo se presenta el 303?",
	})
	require.NoError(t, err)

	assert.Equal(t, "El modelo 303 se presenta trimestralmente.", result.Response)
	assert.Empty(t, result.Actions)
	assert.Equal(t, 1, mock.CallCount())
}

func TestToolRoundThenAnswer(t *testing.T) {
	mock := model.NewMockProvider("p").
		AddToolCallResponse("c1", "list_contacts", `{"search_term":"carlos"}`).
		AddTextResponse("Tienes un contacto: Carlos Pérez (carlos@example.com).")
	registry, _ := newTestRegistry(t, &recordingMailer{})
	a := New(mock, registry)

	result, err := a.HandleMessage(context.Background(), TurnRequest{
		Username: "maria", Message: "¿Qué contactos tengo?",
	})
	require.NoError(t, err)

	assert.Contains(t, result.Response, "Carlos Pérez")
	require.Len(t, result.Actions, 1)
	assert.Equal(t, "list_contacts", result.Actions[0].Tool)
	assert.Equal(t, 2, mock.CallCount())
}

func TestFinalActionShortCircuits(t *testing.T) {
	mock := model.NewMockProvider("p").
		AddToolCallResponse("c1", "send_email_notification",
			`{"contact_id":1,"subject":"Hola","body":"<p>Hola</p>","expected_email":"carlos@example.com"}`)
	mailer := &recordingMailer{}
	registry, _ := newTestRegistry(t, mailer)
	a := New(mock, registry)

	result, err := a.HandleMessage(context.Background(), TurnRequest{
		Username: "maria", Message: "Envía el email a Carlos, confirmado.",
	})
	require.NoError(t, err)

	assert.Contains(t, result.Response, "✅ Email enviado correctamente a Carlos Pérez")
	assert.Contains(t, result.Response, "¿En qué más puedo ayudarte?")
	assert.Equal(t, 1, mock.CallCount(), "no provider call may follow a final action")
	assert.Len(t, mailer.calls, 1)
	require.Len(t, result.Actions, 1)
	assert.Equal(t, "send_email_notification", result.Actions[0].Tool)
}

func TestFinalActionFailureIsDeterministic(t *testing.T) {
	mock := model.NewMockProvider("p").
		AddToolCallResponse("c1", "send_email_notification",
			`{"contact_id":1,"subject":"Hola","body":"<p>Hola</p>","expected_email":"impostor@example.com"}`)
	mailer := &recordingMailer{}
	registry, _ := newTestRegistry(t, mailer)
	a := New(mock, registry)

	result, err := a.HandleMessage(context.Background(), TurnRequest{
		Username: "maria", Message: "Envía el email.",
	})
	require.NoError(t, err)

	assert.Contains(t, result.Response, "❌")
	assert.Contains(t, result.Response, "no coincide")
	assert.Equal(t, 1, mock.CallCount())
	assert.Empty(t, mailer.calls)
}

func TestIterationCapRoutesToClosingModelTurn(t *testing.T) {
	summary := "Resumen final tras agotar las rondas de herramientas."
	mock := model.NewMockProvider("p")
	for i := 0; i < DefaultMaxIterations; i++ {
		mock.AddToolCallResponse("c", "get_current_date", "{}")
	}
	mock.AddTextResponse(summary)
	registry, _ := newTestRegistry(t, &recordingMailer{})
	a := New(mock, registry)

	result, err := a.HandleMessage(context.Background(), TurnRequest{
		Username: "maria", Message: "bucle",
	})
	require.NoError(t, err)

	// Exhausted tool rounds still end with one closing provider call.
	assert.Equal(t, DefaultMaxIterations+1, mock.CallCount())
	assert.Equal(t, summary, result.Response)
	assert.Len(t, result.Actions, DefaultMaxIterations)
}

func TestIterationCapTerminatesRunawayToolCalls(t *testing.T) {
	mock := model.NewMockProvider("p")
	for i := 0; i < 10; i++ {
		mock.AddToolCallResponse("c", "get_current_date", "{}")
	}
	registry, _ := newTestRegistry(t, &recordingMailer{})
	a := New(mock, registry)

	result, err := a.HandleMessage(context.Background(), TurnRequest{
		Username: "maria", Message: "bucle",
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultMaxIterations+1, mock.CallCount())
	assert.NotEmpty(t, result.Response)
	assert.Len(t, result.Actions, DefaultMaxIterations)
}

func TestProviderFailureYieldsApology(t *testing.T) {
	mock := model.NewMockProvider("p").AddError(errors.New("all providers down"))
	registry, _ := newTestRegistry(t, &recordingMailer{})
	a := New(mock, registry)

	result, err := a.HandleMessage(context.Background(), TurnRequest{
		Username: "maria", Message: "hola",
	})
	require.NoError(t, err)
	assert.Contains(t, result.Response, "Lo siento")
}

func TestGenericResponseAfterActionsCompresses(t *testing.T) {
	generic := "I can help with " + strings.Repeat("muchas cosas distintas, ", 12) + "y más."
	require.Greater(t, len(generic), 200)

	mock := model.NewMockProvider("p").
		AddToolCallResponse("c1", "get_current_date", "{}").
		AddTextResponse(generic)
	registry, _ := newTestRegistry(t, &recordingMailer{})
	a := New(mock, registry)

	result, err := a.HandleMessage(context.Background(), TurnRequest{
		Username: "maria", Message: "¿qué día es?",
	})
	require.NoError(t, err)

	assert.Equal(t, "¿En qué más puedo ayudarte?", result.Response)
}

func TestSendConfirmationIsNeverCompressed(t *testing.T) {
	confirmation := "✅ Email enviado correctamente a carlos@example.com. " + strings.Repeat("Detalles adicionales. ", 15)
	mock := model.NewMockProvider("p").
		AddToolCallResponse("c1", "get_current_date", "{}").
		AddTextResponse(confirmation)
	registry, _ := newTestRegistry(t, &recordingMailer{})
	a := New(mock, registry)

	result, err := a.HandleMessage(context.Background(), TurnRequest{
		Username: "maria", Message: "envía y confirma",
	})
	require.NoError(t, err)
	assert.Equal(t, confirmation, result.Response)
}

func TestHistoryIsTruncatedToLimit(t *testing.T) {
	mock := model.NewMockProvider("p").AddTextResponse("ok")
	completer := &capturingCompleter{inner: mock}
	registry, _ := newTestRegistry(t, &recordingMailer{})
	a := New(completer, registry)

	var history []HistoryItem
	for i := 0; i < 25; i++ {
		history = append(history, HistoryItem{Role: model.RoleUser, Content: "mensaje"})
	}

	_, err := a.HandleMessage(context.Background(), TurnRequest{
		Username: "maria", Message: "actual", History: history,
	})
	require.NoError(t, err)

	require.Len(t, completer.requests, 1)
	// 10 history turns plus the current message.
	assert.Len(t, completer.requests[0].Messages, DefaultHistoryLimit+1)
	assert.NotEmpty(t, completer.requests[0].System)
}

func TestWelcomeAfterActionCompresses(t *testing.T) {
	mock := model.NewMockProvider("p").
		AddToolCallResponse("c1", "get_current_date", "{}").
		AddTextResponse("¡Hola! Soy tu asistente de Nementium.ai y puedo ayudarte con muchas cosas.")
	registry, _ := newTestRegistry(t, &recordingMailer{})
	a := New(mock, registry)

	result, err := a.HandleMessage(context.Background(), TurnRequest{
		Username: "maria", Message: "gracias",
	})
	require.NoError(t, err)
	assert.Equal(t, "¿En qué más puedo ayudarte?", result.Response)
}
