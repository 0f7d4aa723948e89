package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/resend/resend-go/v2"

	"github.com/nementium/agentcore/logging"
)

// ResendMailer delivers email through the Resend API.
type ResendMailer struct {
	client    *resend.Client
	fromEmail string
	fromName  string
	logger    logging.Logger
}

// ResendOptions configures a ResendMailer.
type ResendOptions struct {
	FromName string
	Logger   logging.Logger
}

// NewResendMailer creates a mailer sending from the given address.
func NewResendMailer(apiKey, fromEmail string, optFns ...func(o *ResendOptions)) *ResendMailer {
	opts := ResendOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	return &ResendMailer{
		client:    resend.NewClient(apiKey),
		fromEmail: fromEmail,
		fromName:  opts.FromName,
		logger:    opts.Logger,
	}
}

// SendEmail delivers one email and returns the provider message id.
func (m *ResendMailer) SendEmail(ctx context.Context, req EmailRequest) (*SendResult, error) {
	from := m.fromEmail
	if m.fromName != "" {
		from = fmt.Sprintf("%s <%s>", m.fromName, m.fromEmail)
	}

	start := time.Now()
	sent, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      []string{req.To},
		Subject: req.Subject,
		Html:    req.HTML,
	})
	if err != nil {
		m.logger.Error("email send failed", "to", req.To, "error", err.Error())
		return nil, fmt.Errorf("sending email to %s: %w", req.To, err)
	}

	m.logger.Info("email sent",
		"to", req.To, "message_id", sent.Id, "duration_ms", time.Since(start).Milliseconds())
	return &SendResult{ID: sent.Id}, nil
}
