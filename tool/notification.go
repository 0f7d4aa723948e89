package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/nementium/agentcore/fault"
	"github.com/nementium/agentcore/notify"
	"github.com/nementium/agentcore/record"
)

// The notification tools are the final actions of the assistant. Both take
// the destination the model believes it is sending to (expected_email or
// expected_telegram_username) and refuse to send when it does not match the
// contact record; the contact id alone is never trusted.

// NormalizeEmail lowercases and trims an email for comparison.
func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// NormalizeTelegramUsername lowercases, trims and strips one leading @.
func NormalizeTelegramUsername(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.TrimPrefix(s, "@")
}

func failure(err error) map[string]any {
	out := map[string]any{"success": false, "error": fault.UserMessage(err)}
	if code := fault.CodeOf(err); code != "" {
		out["code"] = string(code)
	}
	return out
}

func contactIDArg(args map[string]any) (int64, error) {
	switch v := args["contact_id"].(type) {
	case float64:
		return int64(v), nil
	case int:
		return int64(v), nil
	case int64:
		return v, nil
	case string:
		var id int64
		if _, err := fmt.Sscanf(strings.TrimSpace(v), "%d", &id); err == nil {
			return id, nil
		}
	}
	return 0, fmt.Errorf("contact_id debe ser un número")
}

// NewSendEmailTool creates the send_email_notification final action.
func NewSendEmailTool(store record.Store, mailer notify.Mailer) *FunctionTool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"contact_id": map[string]any{
				"type":        "integer",
				"description": "Id del contacto destinatario (de list_contacts)",
			},
			"subject": map[string]any{
				"type":        "string",
				"description": "Asunto del email",
			},
			"body": map[string]any{
				"type":        "string",
				"description": "Cuerpo del email en HTML sencillo",
			},
			"expected_email": map[string]any{
				"type":        "string",
				"description": "Email que el usuario confirmó como destinatario; debe coincidir con el del contacto",
			},
		},
		"required": []string{"contact_id", "subject", "body", "expected_email"},
	}

	return NewFunctionTool(
		"send_email_notification",
		"Envía un email a un contacto del usuario. ACCIÓN FINAL: confirma antes el destinatario con el usuario y pasa su email en expected_email.",
		params,
		func(ctx context.Context, inv *Invocation, args map[string]any) (any, error) {
			contactID, err := contactIDArg(args)
			if err != nil {
				return nil, NewValidationError("send_email_notification", err.Error(), nil)
			}
			subject, _ := args["subject"].(string)
			body, _ := args["body"].(string)
			expected, _ := args["expected_email"].(string)

			contact, err := ResolveContact(ctx, store, inv.User, contactID)
			if err != nil {
				return failure(err), nil
			}
			if contact.Email == "" {
				return failure(fault.New(fault.MissingDestination,
					"el contacto %s no tiene email registrado", contact.Name)), nil
			}
			if NormalizeEmail(expected) != NormalizeEmail(contact.Email) {
				inv.Logger.Warn("email identity mismatch, refusing to send",
					"contact_id", contactID, "expected", expected)
				return failure(fault.New(fault.IdentityMismatch,
					"el email confirmado (%s) no coincide con el del contacto %s", expected, contact.Name)), nil
			}

			if _, err := mailer.SendEmail(ctx, notify.EmailRequest{
				To:      contact.Email,
				Subject: subject,
				HTML:    body,
			}); err != nil {
				return failure(fault.Wrap(err, fault.ToolExecution,
					"no se pudo enviar el email a %s", contact.Name)), nil
			}

			return map[string]any{
				"success": true,
				"message": fmt.Sprintf("✅ Email enviado correctamente a %s (%s)", contact.Name, contact.Email),
			}, nil
		},
	)
}

// NewSendTelegramTool creates the send_telegram_notification final action.
func NewSendTelegramTool(store record.Store, messenger notify.Messenger) *FunctionTool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"contact_id": map[string]any{
				"type":        "integer",
				"description": "Id del contacto destinatario (de list_contacts)",
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Mensaje a enviar",
			},
			"expected_telegram_username": map[string]any{
				"type":        "string",
				"description": "Usuario de Telegram confirmado; debe coincidir con el del contacto",
			},
		},
		"required": []string{"contact_id", "message", "expected_telegram_username"},
	}

	return NewFunctionTool(
		"send_telegram_notification",
		"Envía un mensaje de Telegram a un contacto vinculado. ACCIÓN FINAL: confirma antes el destinatario y pasa su usuario en expected_telegram_username.",
		params,
		func(ctx context.Context, inv *Invocation, args map[string]any) (any, error) {
			contactID, err := contactIDArg(args)
			if err != nil {
				return nil, NewValidationError("send_telegram_notification", err.Error(), nil)
			}
			message, _ := args["message"].(string)
			expected, _ := args["expected_telegram_username"].(string)

			contact, err := ResolveContact(ctx, store, inv.User, contactID)
			if err != nil {
				return failure(err), nil
			}
			if contact.TelegramChatID == "" {
				return failure(fault.New(fault.MissingDestination,
					"el contacto %s no tiene Telegram vinculado", contact.Name)), nil
			}
			if NormalizeTelegramUsername(expected) != NormalizeTelegramUsername(contact.TelegramUsername) {
				inv.Logger.Warn("telegram identity mismatch, refusing to send",
					"contact_id", contactID, "expected", expected)
				return failure(fault.New(fault.IdentityMismatch,
					"el usuario de Telegram confirmado (%s) no coincide con el del contacto %s", expected, contact.Name)), nil
			}

			text := notify.FormatNotification(inv.User, message)
			if _, err := messenger.SendMessage(ctx, contact.TelegramChatID, text); err != nil {
				return failure(fault.Wrap(err, fault.ToolExecution,
					"no se pudo enviar el mensaje de Telegram a %s", contact.Name)), nil
			}

			return map[string]any{
				"success": true,
				"message": fmt.Sprintf("✅ Mensaje enviado a %s por Telegram", contact.Name),
			}, nil
		},
	)
}
