package tool

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nementium/agentcore/fault"
	"github.com/nementium/agentcore/internal/testutil"
	"github.com/nementium/agentcore/notify"
	"github.com/nementium/agentcore/record"
)

type fakeMailer struct {
	calls []notify.EmailRequest
	err   error
}

func (m *fakeMailer) SendEmail(_ context.Context, req notify.EmailRequest) (*notify.SendResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls = append(m.calls, req)
	return &notify.SendResult{ID: "msg-1"}, nil
}

type fakeMessenger struct {
	calls []string
	texts []string
	err   error
}

func (m *fakeMessenger) SendMessage(_ context.Context, chatID, text string) (*notify.SendResult, error) {
	if m.err != nil {
		return nil, m.err
	}
	m.calls = append(m.calls, chatID)
	m.texts = append(m.texts, text)
	return &notify.SendResult{ID: "42"}, nil
}

func seedContact(t *testing.T, store record.Store, overrides record.Record) {
	t.Helper()
	_, err := store.Insert(context.Background(), ContactsTable, testutil.ContactRecord(overrides))
	require.NoError(t, err)
}

func emailArgs(expected string) map[string]any {
	return map[string]any{
		"contact_id":     float64(1),
		"subject":        "Informe mensual",
		"body":           "<p>Hola</p>",
		"expected_email": expected,
	}
}

func TestSendEmailHappyPath(t *testing.T) {
	store := record.NewMemoryStore()
	seedContact(t, store, nil)
	mailer := &fakeMailer{}

	ft := NewSendEmailTool(store, mailer)
	out, err := ft.Call(context.Background(), testInvocation(), emailArgs("carlos@example.com"))
	require.NoError(t, err)

	payload := out.(map[string]any)
	assert.Equal(t, true, payload["success"])
	assert.Contains(t, payload["message"], "✅ Email enviado correctamente a Carlos Pérez")

	require.Len(t, mailer.calls, 1)
	assert.Equal(t, "carlos@example.com", mailer.calls[0].To)
	assert.Equal(t, "Informe mensual", mailer.calls[0].Subject)
}

func TestSendEmailNormalizesExpectedEmail(t *testing.T) {
	store := record.NewMemoryStore()
	seedContact(t, store, nil)
	mailer := &fakeMailer{}

	ft := NewSendEmailTool(store, mailer)
	out, err := ft.Call(context.Background(), testInvocation(), emailArgs("  CARLOS@Example.COM "))
	require.NoError(t, err)

	payload := out.(map[string]any)
	assert.Equal(t, true, payload["success"])
	assert.Len(t, mailer.calls, 1)
}

func TestSendEmailIdentityMismatchNeverSends(t *testing.T) {
	store := record.NewMemoryStore()
	seedContact(t, store, nil)
	mailer := &fakeMailer{}

	ft := NewSendEmailTool(store, mailer)
	out, err := ft.Call(context.Background(), testInvocation(), emailArgs("otro@example.com"))
	require.NoError(t, err)

	payload := out.(map[string]any)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, string(fault.IdentityMismatch), payload["code"])
	assert.Empty(t, mailer.calls, "transport must not be invoked on identity mismatch")
}

func TestSendEmailUnknownContact(t *testing.T) {
	store := record.NewMemoryStore()
	mailer := &fakeMailer{}

	ft := NewSendEmailTool(store, mailer)
	out, err := ft.Call(context.Background(), testInvocation(), emailArgs("carlos@example.com"))
	require.NoError(t, err)

	payload := out.(map[string]any)
	assert.Equal(t, false, payload["success"])
	assert.Equal(t, string(fault.NotFound), payload["code"])
	assert.Empty(t, mailer.calls)
}

func TestSendEmailContactOfAnotherUserIsNotFound(t *testing.T) {
	store := record.NewMemoryStore()
	seedContact(t, store, record.Record{"username": "otra"})
	mailer := &fakeMailer{}

	ft := NewSendEmailTool(store, mailer)
	out, err := ft.Call(context.Background(), testInvocation(), emailArgs("carlos@example.com"))
	require.NoError(t, err)

	payload := out.(map[string]any)
	assert.Equal(t, string(fault.NotFound), payload["code"])
	assert.Empty(t, mailer.calls)
}

func TestSendEmailMissingDestination(t *testing.T) {
	store := record.NewMemoryStore()
	seedContact(t, store, record.Record{"email": ""})
	mailer := &fakeMailer{}

	ft := NewSendEmailTool(store, mailer)
	out, err := ft.Call(context.Background(), testInvocation(), emailArgs("carlos@example.com"))
	require.NoError(t, err)

	payload := out.(map[string]any)
	assert.Equal(t, string(fault.MissingDestination), payload["code"])
	assert.Empty(t, mailer.calls)
}

func TestSendEmailTransportFailure(t *testing.T) {
	store := record.NewMemoryStore()
	seedContact(t, store, nil)
	mailer := &fakeMailer{err: errors.New("smtp down")}

	ft := NewSendEmailTool(store, mailer)
	out, err := ft.Call(context.Background(), testInvocation(), emailArgs("carlos@example.com"))
	require.NoError(t, err)

	payload := out.(map[string]any)
	assert.Equal(t, false, payload["success"])
	assert.Contains(t, payload["error"], "no se pudo enviar el email")
}

func telegramArgs(expected string) map[string]any {
	return map[string]any{
		"contact_id":                 float64(1),
		"message":                    "Reunión a las 10",
		"expected_telegram_username": expected,
	}
}

func TestSendTelegramHappyPath(t *testing.T) {
	store := record.NewMemoryStore()
	seedContact(t, store, record.Record{
		"telegram_chat_id":  "555001",
		"telegram_username": "carlosp",
	})
	messenger := &fakeMessenger{}

	ft := NewSendTelegramTool(store, messenger)
	out, err := ft.Call(context.Background(), testInvocation(), telegramArgs("@CarlosP"))
	require.NoError(t, err)

	payload := out.(map[string]any)
	assert.Equal(t, true, payload["success"])
	assert.Contains(t, payload["message"], "✅ Mensaje enviado a Carlos Pérez")

	require.Len(t, messenger.calls, 1)
	assert.Equal(t, "555001", messenger.calls[0])
	assert.Contains(t, messenger.texts[0], "Notificación de maria")
	assert.Contains(t, messenger.texts[0], "Reunión a las 10")
}

func TestSendTelegramIdentityMismatchNeverSends(t *testing.T) {
	store := record.NewMemoryStore()
	seedContact(t, store, record.Record{
		"telegram_chat_id":  "555001",
		"telegram_username": "carlosp",
	})
	messenger := &fakeMessenger{}

	ft := NewSendTelegramTool(store, messenger)
	out, err := ft.Call(context.Background(), testInvocation(), telegramArgs("@impostor"))
	require.NoError(t, err)

	payload := out.(map[string]any)
	assert.Equal(t, string(fault.IdentityMismatch), payload["code"])
	assert.Empty(t, messenger.calls)
}

func TestSendTelegramRequiresLinkedChat(t *testing.T) {
	store := record.NewMemoryStore()
	seedContact(t, store, record.Record{"telegram_username": "carlosp"})
	messenger := &fakeMessenger{}

	ft := NewSendTelegramTool(store, messenger)
	out, err := ft.Call(context.Background(), testInvocation(), telegramArgs("carlosp"))
	require.NoError(t, err)

	payload := out.(map[string]any)
	assert.Equal(t, string(fault.MissingDestination), payload["code"])
	assert.Empty(t, messenger.calls)
}

func TestNormalizeTelegramUsername(t *testing.T) {
	assert.Equal(t, "carlosp", NormalizeTelegramUsername(" @CarlosP "))
	assert.Equal(t, "carlosp", NormalizeTelegramUsername("carlosp"))
}
