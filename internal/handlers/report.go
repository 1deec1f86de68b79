package handlers

import (
	"context"
	"errors"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"

	"github.com/Kerhoff/lomaya/internal/models"
	"github.com/Kerhoff/lomaya/internal/service"
)

const telegramFilePrefix = "tg://file/"

// ReportHandler accepts a photo as the report for today's task
type ReportHandler struct {
	svc    *service.Service
	logger *logrus.Logger
}

// NewReportHandler creates a new ReportHandler.
func NewReportHandler(svc *service.Service, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{svc: svc, logger: logger}
}

// Handle stores the largest version of the photo as the report
func (h *ReportHandler) Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error {
	ref, ok := photoReportRef(message)
	if !ok {
		return nil
	}

	userTask, err := h.svc.SubmitReportForTelegramUser(context.Background(), message.From.ID, ref, time.Now())
	if err != nil && !errors.Is(err, models.ErrNotFound) && !errors.Is(err, models.ErrInvalidStateTransition) &&
		!errors.Is(err, models.ErrConflict) {
		return err
	}

	if _, sendErr := bot.Send(tgbotapi.NewMessage(message.Chat.ID, reportReply(err))); sendErr != nil {
		h.logger.WithError(sendErr).Warn("Failed to send report reply")
	}
	if err == nil {
		h.logger.WithFields(logrus.Fields{
			"user_id":      message.From.ID,
			"user_task_id": userTask.ID,
		}).Info("Report received")
	}
	return nil
}

// photoReportRef returns a reference to the largest size of the photo. The
// direct download URL embeds the bot token, so only the file id is stored;
// it can be resolved through getFile when the report is viewed.
func photoReportRef(message *tgbotapi.Message) (string, bool) {
	if len(message.Photo) == 0 {
		return "", false
	}
	photo := message.Photo[len(message.Photo)-1]
	if photo.FileID == "" {
		return "", false
	}
	return telegramFilePrefix + photo.FileID, true
}

func reportReply(err error) string {
	switch {
	case err == nil:
		return "Отчёт отправлен на проверку."
	case errors.Is(err, models.ErrCannotAcceptReport):
		return "Отчёт за сегодня уже отправлен и ждёт проверки или принят."
	case errors.Is(err, models.ErrNotFound):
		return "Сегодня для тебя нет задания."
	case errors.Is(err, models.ErrConflict):
		return "Это фото уже было отправлено раньше. Пришли, пожалуйста, новое."
	}
	return "Этот отчёт сейчас не может быть принят."
}
