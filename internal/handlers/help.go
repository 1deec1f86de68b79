package handlers

import (
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

const helpText = `Команды:
/start - статус участия
/help - эта подсказка

Чтобы отправить отчёт о задании дня, пришли фотографию в этот чат.`

// HelpHandler handles the /help command
type HelpHandler struct {
	logger *logrus.Logger
}

func NewHelpHandler(logger *logrus.Logger) *HelpHandler {
	return &HelpHandler{logger: logger}
}

func (h *HelpHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	if _, err := bot.Send(tgbotapi.NewMessage(message.Chat.ID, helpText)); err != nil {
		return fmt.Errorf("failed to send help message: %w", err)
	}
	return nil
}
