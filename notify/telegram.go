package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/nementium/agentcore/logging"
)

// TelegramMessenger delivers chat messages through the Telegram Bot API.
type TelegramMessenger struct {
	bot    *tgbotapi.BotAPI
	logger logging.Logger
}

// TelegramOptions configures a TelegramMessenger.
type TelegramOptions struct {
	Logger logging.Logger
}

// NewTelegramMessenger creates a messenger for the given bot token. The
// constructor verifies the token against the Bot API.
func NewTelegramMessenger(token string, optFns ...func(o *TelegramOptions)) (*TelegramMessenger, error) {
	opts := TelegramOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	return &TelegramMessenger{bot: bot, logger: opts.Logger}, nil
}

// SendMessage delivers one HTML formatted message to a linked chat. The bot
// API client has no context support, so ctx is checked before sending.
func (m *TelegramMessenger) SendMessage(ctx context.Context, chatID, text string) (*SendResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	numericID, err := strconv.ParseInt(chatID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram chat id %q: %w", chatID, err)
	}

	msg := tgbotapi.NewMessage(numericID, text)
	msg.ParseMode = tgbotapi.ModeHTML

	sent, err := m.bot.Send(msg)
	if err != nil {
		m.logger.Error("telegram send failed", "chat_id", chatID, "error", err.Error())
		return nil, fmt.Errorf("sending telegram message to %s: %w", chatID, err)
	}

	m.logger.Info("telegram message sent", "chat_id", chatID, "message_id", sent.MessageID)
	return &SendResult{ID: strconv.Itoa(sent.MessageID)}, nil
}

// FormatNotification wraps a message body with the notification header shown
// to linked contacts.
func FormatNotification(fromUsername, body string) string {
	return fmt.Sprintf("📬 Notificación de %s:\n\n%s", fromUsername, body)
}
