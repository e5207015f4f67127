package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"gritsee-inspector/internal/domain/port"
)

// TelegramNotifier posts batch digests to a fixed chat.
type TelegramNotifier struct {
	api    *tgbotapi.BotAPI
	chatID int64
}

// NewTelegramNotifier authorizes the bot. Returns an error when the token is
// rejected; callers treat the notifier as optional.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	return &TelegramNotifier{api: api, chatID: chatID}, nil
}

// NotifyBatch sends a short completion summary.
func (n *TelegramNotifier) NotifyBatch(ctx context.Context, digest port.BatchDigest) error {
	_ = ctx

	text := fmt.Sprintf(
		"Batch finished for %s\nProcessed: %d\nFailed: %d\nPass rate: %.2f%%",
		digest.Location, digest.Processed, digest.Failed, digest.PassRate,
	)

	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.api.Send(msg); err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	return nil
}

var _ port.Notifier = (*TelegramNotifier)(nil)
