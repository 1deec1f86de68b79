package handlers

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/lomaya/internal/service"
)

// StartHandler handles the /start command
type StartHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewStartHandler creates a new start command handler
func NewStartHandler(svc *service.Service, logger *logrus.Logger) *StartHandler {
	return &StartHandler{
		svc:    svc,
		logger: logger,
	}
}

// Handle greets the user and tells them where their participation stands
func (h *StartHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	user, shift, err := h.svc.ParticipationByTelegramID(context.Background(), message.From.ID)
	if err != nil {
		return fmt.Errorf("lookup participation: %w", err)
	}

	var text string
	switch {
	case user == nil:
		text = "Привет! Это бот проекта «Ломая барьеры». Чтобы принять участие, заполни заявку на сайте проекта."
	case shift == nil:
		text = fmt.Sprintf("Привет, %s! Сейчас у тебя нет активной смены. Мы сообщим, когда заявка будет рассмотрена.", user.Name)
	default:
		text = fmt.Sprintf("Привет, %s! Ты участвуешь в смене «%s». Присылай фото-отчёт о задании дня прямо в этот чат.",
			user.Name, shift.Title)
	}

	if _, err := bot.Send(tgbotapi.NewMessage(message.Chat.ID, text)); err != nil {
		return fmt.Errorf("failed to send start message: %w", err)
	}

	h.logger.WithFields(logrus.Fields{
		"chat_id":    message.Chat.ID,
		"user_id":    message.From.ID,
		"registered": user != nil,
	}).Info("Sent start message")

	return nil
}
