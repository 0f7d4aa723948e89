package tool

import (
	"context"
	"fmt"
	"strings"

	"github.com/nementium/agentcore/fault"
	"github.com/nementium/agentcore/record"
)

// ContactsTable is the record store table holding user contacts.
const ContactsTable = "user_contacts"

// Contact is one address book entry owned by a user.
type Contact struct {
	ID               int64
	Name             string
	Email            string
	Phone            string
	TelegramChatID   string
	TelegramUsername string
	Owner            string
	Active           bool
}

func contactFromRecord(row record.Record) Contact {
	return Contact{
		ID:               row.Int64("id"),
		Name:             row.Str("nombre"),
		Email:            row.Str("email"),
		Phone:            row.Str("telefono"),
		TelegramChatID:   row.Str("telegram_chat_id"),
		TelegramUsername: row.Str("telegram_username"),
		Owner:            row.Str("username"),
		Active:           row.Bool("activo"),
	}
}

// ResolveContact loads one active contact by id, scoped to the owner. A
// contact belonging to another user is indistinguishable from a missing one.
func ResolveContact(ctx context.Context, store record.Store, owner string, contactID int64) (Contact, error) {
	row, err := store.SelectOne(ctx, ContactsTable, "*", map[string]string{
		"id":       fmt.Sprintf("%d", contactID),
		"username": owner,
		"activo":   "true",
	})
	if err != nil {
		if fault.Is(err, fault.NotFound) {
			return Contact{}, fault.New(fault.NotFound, "no existe el contacto %d", contactID)
		}
		return Contact{}, err
	}
	return contactFromRecord(row), nil
}

// NewListContactsTool creates the list_contacts tool. It lists the caller's
// active contacts, optionally filtered by a partial match on name or email.
// When a multi-word term matches nothing, the first word is retried on its
// own.
func NewListContactsTool(store record.Store) *FunctionTool {
	params := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"search_term": map[string]any{
				"type":        "string",
				"description": "Filtro opcional por nombre o email del contacto",
			},
		},
	}

	return NewFunctionTool(
		"list_contacts",
		"Lista los contactos activos del usuario. Úsala para obtener el id, email y datos de Telegram de un contacto antes de enviarle una notificación.",
		params,
		func(ctx context.Context, inv *Invocation, args map[string]any) (any, error) {
			rows, err := store.Select(ctx, ContactsTable, "*", map[string]string{
				"username": inv.User,
				"activo":   "true",
			})
			if err != nil {
				return nil, fmt.Errorf("consultando contactos: %w", err)
			}

			contacts := make([]Contact, 0, len(rows))
			for _, row := range rows {
				contacts = append(contacts, contactFromRecord(row))
			}

			term, _ := args["search_term"].(string)
			term = strings.TrimSpace(term)
			if term != "" {
				filtered := filterContacts(contacts, term)
				if len(filtered) == 0 {
					if first := strings.Fields(term); len(first) > 1 {
						filtered = filterContacts(contacts, first[0])
					}
				}
				contacts = filtered
			}

			out := make([]map[string]any, 0, len(contacts))
			for _, c := range contacts {
				out = append(out, map[string]any{
					"id":           c.ID,
					"nombre":       c.Name,
					"email":        c.Email,
					"has_telegram": c.TelegramChatID != "",
				})
			}
			return map[string]any{"contacts": out, "count": len(out)}, nil
		},
	)
}

func filterContacts(contacts []Contact, term string) []Contact {
	term = strings.ToLower(term)
	var out []Contact
	for _, c := range contacts {
		if strings.Contains(strings.ToLower(c.Name), term) ||
			strings.Contains(strings.ToLower(c.Email), term) {
			out = append(out, c)
		}
	}
	return out
}
