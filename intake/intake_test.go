package intake

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nementium/agentcore/enrich"
	"github.com/nementium/agentcore/record"
)

type stubEnqueuer struct {
	ids []int64
	err error
}

func (s *stubEnqueuer) Enqueue(leadID int64) error {
	if s.err != nil {
		return s.err
	}
	s.ids = append(s.ids, leadID)
	return nil
}

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"612 345 678", "+34612345678"},
		{"912-345-678", "+34912345678"},
		{"0034612345678", "+34612345678"},
		{"+34 612 345 678", "+34612345678"},
		{"123456789", "+123456789"},
		{"(612) 345678", "+34612345678"},
		{"", ""},
		{"--", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeString(t *testing.T) {
	assert.Equal(t, "Ana López", NormalizeString("  Ana   López \n"))
	assert.Equal(t, "", NormalizeString("   "))
}

func TestValidateRejectsBadInput(t *testing.T) {
	base := LeadInput{Name: "Ana López", Email: "ana@acme.example"}

	tests := []struct {
		name   string
		mutate func(in *LeadInput)
	}{
		{"missing name", func(in *LeadInput) { in.Name = "" }},
		{"name too short", func(in *LeadInput) { in.Name = "A" }},
		{"missing email", func(in *LeadInput) { in.Email = "" }},
		{"malformed email", func(in *LeadInput) { in.Email = "not-an-email" }},
		{"short phone", func(in *LeadInput) { in.Phone = "+3461" }},
		{"bad source url", func(in *LeadInput) { in.SourceURL = "ftp://example.com" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := base
			tt.mutate(&in)
			assert.Error(t, in.Validate())
		})
	}

	assert.NoError(t, base.Validate())
}

func TestSubmitStoresAndEnqueues(t *testing.T) {
	store := record.NewMemoryStore()
	enq := &stubEnqueuer{}
	i := New(store, enq)

	leadID, err := i.Submit(context.Background(), LeadInput{
		Name:      "  Ana   López ",
		Email:     " Ana@Acme.example ",
		Phone:     "612 345 678",
		Company:   "Acme SL",
		Message:   "Queremos automatizar facturas",
		SourceURL: "https://nementium.ai/contacto",
	})
	require.NoError(t, err)
	assert.Equal(t, []int64{leadID}, enq.ids)

	rec, err := store.SelectOne(context.Background(), enrich.LeadsTable, "*", nil)
	require.NoError(t, err)
	assert.Equal(t, "Ana López", rec.Str("name"))
	assert.Equal(t, "ana@acme.example", rec.Str("email"))
	assert.Equal(t, "+34612345678", rec.Str("phone"))
	assert.Equal(t, enrich.StatusNew, rec.Str("status"))
	assert.NotEmpty(t, rec.Str("created_at"))
}

func TestSubmitRejectsInvalidInputWithoutStoring(t *testing.T) {
	store := record.NewMemoryStore()
	enq := &stubEnqueuer{}
	i := New(store, enq)

	_, err := i.Submit(context.Background(), LeadInput{Name: "Ana", Email: "bad"})
	require.Error(t, err)

	rows, serr := store.Select(context.Background(), enrich.LeadsTable, "*", nil)
	require.NoError(t, serr)
	assert.Empty(t, rows)
	assert.Empty(t, enq.ids)
}

func TestSubmitSucceedsWhenQueueIsFull(t *testing.T) {
	store := record.NewMemoryStore()
	i := New(store, &stubEnqueuer{err: errors.New("queue full")})

	leadID, err := i.Submit(context.Background(), LeadInput{Name: "Ana López", Email: "ana@acme.example"})
	require.NoError(t, err)

	status, err := i.Status(context.Background(), leadID)
	require.NoError(t, err)
	assert.Equal(t, enrich.StatusNew, status.Str("status"))
}
