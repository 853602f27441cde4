package telegram

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"persona-agent/internal/core/domain"
	"persona-agent/internal/core/ports"
)

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Reporter posts the outcome of each processed profile to a Telegram chat.
type Reporter struct {
	bot          sender
	chatID       int64
	failuresOnly bool
}

var _ ports.Reporter = (*Reporter)(nil)

func NewReporter(token, chatIDStr string, failuresOnly bool) (*Reporter, error) {
	chatID, err := strconv.ParseInt(chatIDStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat id: %w", err)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Reporter{bot: bot, chatID: chatID, failuresOnly: failuresOnly}, nil
}

func (r *Reporter) Report(ctx context.Context, outcome domain.Outcome) error {
	if r.failuresOnly && outcome.Status == domain.OutcomeSaved {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(r.chatID, formatOutcome(outcome))
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := r.bot.Send(msg)
	return err
}

func formatOutcome(o domain.Outcome) string {
	name := o.Username
	if name == "" {
		name = o.Input
	}

	var icon string
	switch o.Status {
	case domain.OutcomeSaved:
		icon = "✅"
	case domain.OutcomeEmpty:
		icon = "📭"
	case domain.OutcomeDegraded:
		icon = "⚠️"
	default:
		icon = "❌"
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s *%s* %s", icon, escapeMarkdown(name), escapeMarkdown(string(o.Status)))
	if o.Anomalies > 0 {
		fmt.Fprintf(&sb, "\nanomalies: %d", o.Anomalies)
	}
	if o.Err != nil {
		fmt.Fprintf(&sb, "\nstage: %s\nerror: %s", o.Stage, escapeMarkdown(o.Err.Error()))
	}
	return sb.String()
}

// escapeMarkdown escapes characters that break Telegram's legacy Markdown.
func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(text)
}
