package telegram

import (
	"errors"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/camuig/stock-quest/internal/config"
	"github.com/camuig/stock-quest/internal/logger"
)

type fakeBot struct {
	sent []tgbotapi.MessageConfig
	err  error
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	if msg, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, msg)
	}
	return tgbotapi.Message{}, f.err
}

func TestDisabledNotifierSendsNothing(t *testing.T) {
	n := NewNotifier(config.Default(), logger.Discard())
	assert.NotPanics(t, func() {
		n.NotifyLevelUp(2, "Novice Trader")
		n.NotifyError("save", errors.New("boom"))
	})
}

func TestNotifierMessages(t *testing.T) {
	bot := &fakeBot{}
	n := &Notifier{bot: bot, chatID: 42, enabled: true, logger: logger.Discard()}

	n.NotifyLevelUp(3, "Learning Investor")
	n.NotifyAchievement("Profit Maker")
	n.NotifyRefresh(4, 1, 125000, 3200.5)

	require.Len(t, bot.sent, 3)
	for _, m := range bot.sent {
		assert.Equal(t, int64(42), m.ChatID)
		assert.Equal(t, tgbotapi.ModeMarkdown, m.ParseMode)
	}
	assert.Contains(t, bot.sent[0].Text, "Level 3: Learning Investor")
	assert.Contains(t, bot.sent[1].Text, "Profit Maker")
	assert.Contains(t, bot.sent[2].Text, "₹125000.00")
	assert.Contains(t, bot.sent[2].Text, "Failed: 1")
}

func TestRefreshTextOmitsFailuresWhenNone(t *testing.T) {
	assert.NotContains(t, refreshText(2, 0, 10, -1), "Failed")
	assert.Contains(t, refreshText(2, 0, 10, -1), "🔴")
}

func TestSendErrorIsLogged(t *testing.T) {
	bot := &fakeBot{err: errors.New("forbidden")}
	n := &Notifier{bot: bot, chatID: 1, enabled: true, logger: logger.Discard()}
	assert.NotPanics(t, func() { n.NotifyStatus("hello") })
	assert.Len(t, bot.sent, 1)
}
