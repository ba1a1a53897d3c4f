package telegram

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/camuig/stock-quest/internal/config"
	"github.com/camuig/stock-quest/internal/logger"
)

// sender is the subset of tgbotapi.BotAPI the notifier uses.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type Notifier struct {
	bot     sender
	chatID  int64
	enabled bool
	logger  *logger.Logger
}

func NewNotifier(cfg *config.Config, log *logger.Logger) *Notifier {
	if !cfg.Telegram.Enabled {
		return &Notifier{enabled: false, logger: log}
	}

	bot, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken)
	if err != nil {
		log.Error("failed to create telegram bot", "error", err)
		return &Notifier{enabled: false, logger: log}
	}

	log.Info("telegram bot connected", "username", bot.Self.UserName)

	return &Notifier{
		bot:     bot,
		chatID:  cfg.Telegram.ChatID,
		enabled: true,
		logger:  log,
	}
}

func (n *Notifier) NotifyLevelUp(level int, title string) {
	n.send(levelUpText(level, title))
}

func (n *Notifier) NotifyAchievement(name string) {
	n.send(achievementText(name))
}

func (n *Notifier) NotifyRefresh(updated, failed int, totalValue, totalProfit float64) {
	n.send(refreshText(updated, failed, totalValue, totalProfit))
}

func (n *Notifier) NotifyError(context string, err error) {
	n.send(fmt.Sprintf("⚠️ *Error* [%s]\n%v", context, err))
}

func (n *Notifier) NotifyStatus(message string) {
	n.send(message)
}

func levelUpText(level int, title string) string {
	return fmt.Sprintf("🎉 *LEVEL UP!*\nLevel %d: %s", level, title)
}

func achievementText(name string) string {
	return fmt.Sprintf("🏆 *Achievement unlocked*\n%s", name)
}

func refreshText(updated, failed int, totalValue, totalProfit float64) string {
	emoji := "🔴"
	if totalProfit > 0 {
		emoji = "💰"
	}
	msg := fmt.Sprintf("%s *Prices refreshed*\nUpdated: %d\nValue: ₹%.2f\nP&L: ₹%.2f",
		emoji, updated, totalValue, totalProfit)
	if failed > 0 {
		msg += fmt.Sprintf("\nFailed: %d", failed)
	}
	return msg
}

func (n *Notifier) send(text string) {
	if !n.enabled {
		return
	}

	msg := tgbotapi.NewMessage(n.chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown

	if _, err := n.bot.Send(msg); err != nil {
		n.logger.Error("send telegram message", "error", err)
	}
}
