// Package intake is the lead intake boundary: it normalizes and validates a
// contact form submission, stores it with status new and hands the lead id
// to the background dispatcher. HTTP transport stays outside; callers adapt
// their framework of choice to Submit.
package intake

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/nementium/agentcore/enrich"
	"github.com/nementium/agentcore/fault"
	"github.com/nementium/agentcore/logging"
	"github.com/nementium/agentcore/record"
)

var (
	emailRegexp = regexp.MustCompile(`^[a-zA-Z0-9_.+-]+@[a-zA-Z0-9-]+\.[a-zA-Z0-9-.]+$`)
	phoneRegexp = regexp.MustCompile(`^\+?[0-9]{9,15}$`)
	nameRegexp  = regexp.MustCompile(`^[\p{L}\p{N}_\s'\-.]{2,100}$`)
	urlRegexp   = regexp.MustCompile(`^https?://[^\s<>"{}|\\^` + "`" + `\[\]]+$`)

	spaceRegexp    = regexp.MustCompile(`\s+`)
	nonPhoneRegexp = regexp.MustCompile(`[^\d+]`)
)

// NormalizeString trims and collapses internal whitespace.
func NormalizeString(value string) string {
	return spaceRegexp.ReplaceAllString(strings.TrimSpace(value), " ")
}

// NormalizeEmail trims and lowercases.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// NormalizePhone strips separators and prefixes Spanish mobile/landline
// numbers with +34. A 00 international prefix becomes +.
func NormalizePhone(phone string) string {
	phone = nonPhoneRegexp.ReplaceAllString(phone, "")
	if phone == "" {
		return ""
	}
	if strings.HasPrefix(phone, "00") {
		phone = "+" + phone[2:]
	}
	if len(phone) == 9 && strings.ContainsRune("6789", rune(phone[0])) {
		phone = "+34" + phone
	}
	if !strings.HasPrefix(phone, "+") {
		phone = "+" + phone
	}
	return phone
}

// LeadInput is one contact form submission. Name and Email are mandatory.
type LeadInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone,omitempty"`
	Company   string `json:"company,omitempty"`
	Message   string `json:"message,omitempty"`
	SourceURL string `json:"source_url,omitempty"`
}

// Normalize returns a cleaned copy of the input.
func (in LeadInput) Normalize() LeadInput {
	return LeadInput{
		Name:      NormalizeString(in.Name),
		Email:     NormalizeEmail(in.Email),
		Phone:     NormalizePhone(in.Phone),
		Company:   NormalizeString(in.Company),
		Message:   NormalizeString(in.Message),
		SourceURL: NormalizeString(in.SourceURL),
	}
}

// Validate checks a normalized input. The messages are user facing and stay
// in Spanish.
func (in LeadInput) Validate() error {
	switch {
	case in.Name == "":
		return fmt.Errorf("el nombre es obligatorio")
	case !nameRegexp.MatchString(in.Name):
		return fmt.Errorf("el nombre contiene caracteres no válidos o una longitud incorrecta")
	}

	switch {
	case in.Email == "":
		return fmt.Errorf("el email es obligatorio")
	case len(in.Email) > 254:
		return fmt.Errorf("el email es demasiado largo")
	case !emailRegexp.MatchString(in.Email):
		return fmt.Errorf("el formato del email no es válido")
	}

	if in.Phone != "" && !phoneRegexp.MatchString(in.Phone) {
		return fmt.Errorf("el formato del teléfono no es válido, use formato internacional (+34612345678)")
	}
	if len(in.Company) > 200 {
		return fmt.Errorf("el nombre de empresa no puede exceder 200 caracteres")
	}
	if len(in.Message) > 5000 {
		return fmt.Errorf("el mensaje no puede exceder 5000 caracteres")
	}
	if in.SourceURL != "" {
		if len(in.SourceURL) > 500 {
			return fmt.Errorf("la URL de origen es demasiado larga")
		}
		if !urlRegexp.MatchString(in.SourceURL) {
			return fmt.Errorf("la URL de origen no es válida")
		}
	}
	return nil
}

// Enqueuer hands a stored lead to background processing. *dispatch.Dispatcher
// satisfies it.
type Enqueuer interface {
	Enqueue(leadID int64) error
}

// Intake stores submissions and schedules their enrichment.
type Intake struct {
	store    record.Store
	enqueuer Enqueuer
	logger   logging.Logger
	now      func() time.Time
}

// Options configures an Intake.
type Options struct {
	Logger logging.Logger
}

// New creates an Intake.
func New(store record.Store, enqueuer Enqueuer, optFns ...func(o *Options)) *Intake {
	opts := Options{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Intake{store: store, enqueuer: enqueuer, logger: opts.Logger, now: time.Now}
}

// Submit normalizes, validates and stores the submission with status new,
// then enqueues the lead. A full dispatch queue does not fail the
// submission: the lead is stored and can be reprocessed later.
func (i *Intake) Submit(ctx context.Context, in LeadInput) (int64, error) {
	in = in.Normalize()
	if err := in.Validate(); err != nil {
		return 0, err
	}

	rows, err := i.store.Insert(ctx, enrich.LeadsTable, record.Record{
		"source_url": in.SourceURL,
		"name":       in.Name,
		"email":      in.Email,
		"phone":      in.Phone,
		"company":    in.Company,
		"message":    in.Message,
		"status":     enrich.StatusNew,
		"created_at": i.now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return 0, fmt.Errorf("storing lead: %w", err)
	}
	if len(rows) == 0 {
		return 0, fault.New(fault.NotFound, "lead insert returned no representation")
	}
	leadID := rows[0].Int64("id")
	i.logger.Info("lead stored", "lead_id", leadID, "email", in.Email)

	if err := i.enqueuer.Enqueue(leadID); err != nil {
		i.logger.Warn("lead enqueue failed, stays in status new", "lead_id", leadID, "error", err.Error())
	}
	return leadID, nil
}

// Status returns the processing state of a stored lead.
func (i *Intake) Status(ctx context.Context, leadID int64) (record.Record, error) {
	return i.store.SelectOne(ctx, enrich.LeadsTable,
		"id,name,email,status,email_sent_at,error,created_at",
		map[string]string{"id": fmt.Sprintf("%d", leadID)})
}
