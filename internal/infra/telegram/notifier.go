// File: internal/infra/telegram/notifier.go
package telegram

import (
	"context"
	"fmt"

	"research-paper-ai/internal/domain/ports/adapter"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"
)

var _ adapter.CompletionNotifier = (*Notifier)(nil)

// Notifier pushes terminal-state messages for paper jobs to a fixed chat.
// It is best-effort by contract: callers ignore delivery errors.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	log    *zerolog.Logger
}

func NewNotifier(token string, chatID int64, log *zerolog.Logger) (*Notifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &Notifier{bot: bot, chatID: chatID, log: log}, nil
}

func (n *Notifier) NotifyCompleted(ctx context.Context, paperID, title string, score float64) error {
	text := fmt.Sprintf("✅ Paper completed\n%s\nScore: %.1f\nID: %s", title, score, paperID)
	return n.send(ctx, text)
}

func (n *Notifier) NotifyFailed(ctx context.Context, paperID, title string, cause error) error {
	text := fmt.Sprintf("❌ Paper failed\n%s\nID: %s\nCause: %v", title, paperID, cause)
	return n.send(ctx, text)
}

func (n *Notifier) send(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		n.log.Warn().Err(err).Msg("telegram send failed")
		return err
	}
	return nil
}

var _ adapter.CompletionNotifier = (*NoopNotifier)(nil)

// NoopNotifier is used when no telegram token is configured.
type NoopNotifier struct{}

func (NoopNotifier) NotifyCompleted(context.Context, string, string, float64) error { return nil }
func (NoopNotifier) NotifyFailed(context.Context, string, string, error) error      { return nil }
