package enrich

import "github.com/nementium/agentcore/record"

// LeadsTable is the record store table holding web leads.
const LeadsTable = "web_contacts"

// Lead statuses. Transitions are monotonic: new -> processing ->
// emailed | error. The pipeline is the only writer after intake.
const (
	StatusNew        = "new"
	StatusProcessing = "processing"
	StatusEmailed    = "emailed"
	StatusError      = "error"
)

// Lead is one row of the leads table.
type Lead struct {
	ID        int64
	Name      string
	Email     string
	Phone     string
	Company   string
	Message   string
	SourceURL string
	Status    string
}

func leadFromRecord(rec record.Record) Lead {
	return Lead{
		ID:        rec.Int64("id"),
		Name:      rec.Str("name"),
		Email:     rec.Str("email"),
		Phone:     rec.Str("phone"),
		Company:   rec.Str("company"),
		Message:   rec.Str("message"),
		SourceURL: rec.Str("source_url"),
		Status:    rec.Str("status"),
	}
}
