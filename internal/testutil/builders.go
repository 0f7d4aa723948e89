// Package testutil holds record builders shared by package tests.
package testutil

import "github.com/nementium/agentcore/record"

// ContactRecord builds a user_contacts row with sensible defaults, applying
// overrides last.
func ContactRecord(overrides record.Record) record.Record {
	row := record.Record{
		"id":                float64(1),
		"nombre":            "Carlos Pérez",
		"email":             "carlos@example.com",
		"telefono":          "+34600111222",
		"telegram_chat_id":  "",
		"telegram_username": "",
		"username":          "maria",
		"activo":            true,
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}

// LeadRecord builds a web_contacts row with sensible defaults, applying
// overrides last.
func LeadRecord(overrides record.Record) record.Record {
	row := record.Record{
		"id":      float64(1),
		"name":    "Ana López",
		"email":   "ana@acme.example",
		"company": "Acme SL",
		"message": "Quiero información",
		"status":  "new",
	}
	for k, v := range overrides {
		row[k] = v
	}
	return row
}
