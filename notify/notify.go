// Package notify holds the outbound transports (email, Telegram) behind
// small interfaces so tools and the pipeline can be tested against fakes.
package notify

import "context"

// EmailRequest is one outbound email.
type EmailRequest struct {
	To      string
	Subject string
	HTML    string
}

// SendResult reports a delivered message.
type SendResult struct {
	// ID is the transport assigned message id.
	ID string
}

// Mailer delivers email.
type Mailer interface {
	SendEmail(ctx context.Context, req EmailRequest) (*SendResult, error)
}

// Messenger delivers chat messages to a linked chat channel.
type Messenger interface {
	SendMessage(ctx context.Context, chatID, text string) (*SendResult, error)
}
