package service

import (
	"fmt"
	"time"

	"github.com/Kerhoff/lomaya/internal/models"
)

const defaultDeclineMessage = "К сожалению, на данный момент мы не можем зарегистрировать вас в проекте. " +
	"Вы можете написать на почту info@stopdrugs.ru, чтобы узнать подробности."

func approvedMessage(user *models.User, shift *models.Shift) string {
	if shift == nil {
		return fmt.Sprintf("Привет, %s! Поздравляем, ваша заявка одобрена!", user.FullName())
	}
	return fmt.Sprintf(
		"Привет, %s! Поздравляем, вы в проекте «%s»! %s будет первый день заданий, ждите сообщений от бота.",
		user.FullName(), shift.Title, shift.StartedAt.Format("02.01.2006"))
}

func declinedMessage(reason *DeclineReason) string {
	if reason != nil && reason.Message != "" {
		return reason.Message
	}
	return defaultDeclineMessage
}

func reportApprovedMessage(date time.Time, balance int) string {
	return fmt.Sprintf("Твой отчёт от %s принят! Тебе начислен 1 ломбарьерчик. Суммарное количество ломбарьерчиков: %d",
		date.Format("02.01.2006"), balance)
}

func reportDeclinedMessage(date time.Time) string {
	return fmt.Sprintf("К сожалению, мы не можем принять твой отчёт от %s. Пришли, пожалуйста, новое фото.",
		date.Format("02.01.2006"))
}

func taskMessage(task *models.Task) string {
	return fmt.Sprintf("Задание на сегодня: %s\n%s\nПришли фото-отчёт в ответ на это сообщение.", task.Description, task.URL)
}
