package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Router dispatches incoming messages to command and photo handlers
type Router struct {
	logger   *logrus.Logger
	handlers map[string]CommandHandler
	photo    CommandHandler
}

// CommandHandler defines the interface for message handlers
type CommandHandler interface {
	Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error
}

// NewRouter creates a new message router
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		logger:   logger,
		handlers: make(map[string]CommandHandler),
	}
}

// RegisterCommand registers a command handler
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.handlers[command] = handler
	r.logger.Debugf("Registered command: %s", command)
}

// RegisterPhotoHandler sets the handler for photo messages
func (r *Router) RegisterPhotoHandler(handler CommandHandler) {
	r.photo = handler
}

// HandleMessage handles incoming messages
func (r *Router) HandleMessage(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	if message.From == nil {
		return
	}

	fields := logrus.Fields{
		"chat_id":    message.Chat.ID,
		"user_id":    message.From.ID,
		"message_id": message.MessageID,
	}
	r.logger.WithFields(fields).Debug("Received message")

	handler, name := r.resolve(message)
	if handler == nil {
		if message.IsCommand() {
			r.logger.WithFields(fields).WithField("command", message.Command()).Warn("Unknown command")
			bot.Send(tgbotapi.NewMessage(message.Chat.ID, "Неизвестная команда. Список команд: /help"))
		}
		return
	}

	args := strings.Fields(message.CommandArguments())
	if err := handler.Handle(bot, message, args); err != nil {
		r.logger.WithFields(fields).WithField("handler", name).WithError(err).Error("Message handler failed")
		bot.Send(tgbotapi.NewMessage(message.Chat.ID, "Что-то пошло не так. Попробуйте ещё раз позже."))
	}
}

func (r *Router) resolve(message *tgbotapi.Message) (CommandHandler, string) {
	switch {
	case len(message.Photo) > 0:
		return r.photo, "photo"
	case message.IsCommand():
		return r.handlers[message.Command()], message.Command()
	}
	return nil, ""
}
