package services

import (
	"fmt"
	"html"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"agencydesk/internal/models"
)

type TelegramService struct {
	bot         *tgbotapi.BotAPI
	salesChatID int64
	log         *zap.Logger
}

// NewTelegramService logs the bot in. An empty token yields a service that
// sends nothing.
func NewTelegramService(botToken string, salesChatID int64, log *zap.Logger) (*TelegramService, error) {
	if log == nil {
		log = zap.NewNop()
	}
	t := &TelegramService{salesChatID: salesChatID, log: log}
	if botToken == "" {
		return t, nil
	}
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, fmt.Errorf("telegram login: %w", err)
	}
	log.Info("[tg] authorized", zap.String("bot", bot.Self.UserName))
	t.bot = bot
	return t, nil
}

func (t *TelegramService) SendMessage(chatID int64, text string) error {
	if t == nil || t.bot == nil || chatID == 0 {
		if t != nil {
			t.log.Debug("[tg][skip] bot or chatID empty", zap.Int64("chat_id", chatID))
		}
		return nil
	}
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.DisableWebPagePreview = true

	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram sendMessage failed: %w", err)
	}
	return nil
}

// AnnounceWon posts the closed deal to the sales chat.
func (t *TelegramService) AnnounceWon(deal models.Deal) error {
	if t == nil {
		return nil
	}
	return t.SendMessage(t.salesChatID, wonMessage(deal))
}

func wonMessage(deal models.Deal) string {
	kind := "avulso"
	if deal.DealType != nil && *deal.DealType == models.DealTypeRecurring {
		kind = "recorrente"
	}
	return fmt.Sprintf("🎉 <b>Negócio ganho</b>\n%s (%s)\n%s · %s",
		html.EscapeString(deal.Title),
		html.EscapeString(deal.CompanyName),
		FormatBRL(deal.Value),
		kind,
	)
}
