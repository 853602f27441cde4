package telegram

import (
	"context"
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"persona-agent/internal/core/domain"
)

type fakeSender struct {
	sent []tgbotapi.MessageConfig
}

func (f *fakeSender) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func TestReporter_Report(t *testing.T) {
	bot := &fakeSender{}
	r := &Reporter{bot: bot, chatID: 42}

	err := r.Report(context.Background(), domain.Outcome{
		Username: "Hungry_Move",
		Status:   domain.OutcomeSkipped,
		Stage:    domain.StageFetch,
		Err:      domain.NewFetchError(domain.ErrUserNotFound, "Hungry_Move", nil),
	})
	require.NoError(t, err)
	require.Len(t, bot.sent, 1)

	msg := bot.sent[0]
	assert.Equal(t, int64(42), msg.ChatID)
	assert.Equal(t, tgbotapi.ModeMarkdown, msg.ParseMode)
	assert.Contains(t, msg.Text, "Hungry\\_Move")
	assert.Contains(t, msg.Text, "stage: fetch")
	assert.Contains(t, msg.Text, "user not found")
}

func TestReporter_FailuresOnly(t *testing.T) {
	bot := &fakeSender{}
	r := &Reporter{bot: bot, chatID: 1, failuresOnly: true}

	require.NoError(t, r.Report(context.Background(), domain.Outcome{Username: "u1", Status: domain.OutcomeSaved}))
	assert.Empty(t, bot.sent)

	require.NoError(t, r.Report(context.Background(), domain.Outcome{
		Username: "u1", Status: domain.OutcomeDegraded, Stage: domain.StageGenerate,
		Err: errors.New("model unavailable"),
	}))
	assert.Len(t, bot.sent, 1)
}

func TestFormatOutcome_UsesInputWhenNoUsername(t *testing.T) {
	text := formatOutcome(domain.Outcome{Input: "not a url", Status: domain.OutcomeSkipped, Err: errors.New("bad")})
	assert.Contains(t, text, "not a url")
}

func TestNewReporter_InvalidChatID(t *testing.T) {
	_, err := NewReporter("token", "abc", false)
	require.Error(t, err)
}
