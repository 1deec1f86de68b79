package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Bot wraps the Telegram bot API. It receives reports from members and
// delivers workflow notifications.
type Bot struct {
	api    *tgbotapi.BotAPI
	logger *logrus.Logger
	router *Router
}

// NewBot creates a new Telegram bot instance
func NewBot(token string, logger *logrus.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Infof("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:    api,
		logger: logger,
		router: NewRouter(logger),
	}, nil
}

// Start polls for updates until ctx is cancelled. Each message is handled in
// its own goroutine so a slow report submission does not hold up the rest.
func (b *Bot) Start(ctx context.Context) error {
	// polling and a webhook are mutually exclusive on Telegram's side
	if _, err := b.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 60
	cfg.AllowedUpdates = []string{"message"}
	updates := b.api.GetUpdatesChan(cfg)

	b.logger.WithField("bot", b.api.Self.UserName).Info("Listening for reports and commands")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			b.logger.Info("Bot stopped")
			return nil
		case update, ok := <-updates:
			if !ok {
				return fmt.Errorf("update channel closed")
			}
			go b.handleUpdate(update)
		}
	}
}

// updateKind names what a member sent, for logs and metrics
func updateKind(message *tgbotapi.Message) string {
	switch {
	case message == nil:
		return "other"
	case len(message.Photo) > 0:
		return "photo"
	case message.IsCommand():
		return "command"
	}
	return "text"
}

func (b *Bot) handleUpdate(update tgbotapi.Update) {
	kind := updateKind(update.Message)
	updatesReceived.WithLabelValues(kind).Inc()

	fields := logrus.Fields{"update_id": update.UpdateID, "kind": kind}
	defer func() {
		if r := recover(); r != nil {
			b.logger.WithFields(fields).Errorf("Panic while handling update: %v", r)
		}
	}()

	if update.Message == nil {
		return
	}
	if kind == "photo" {
		b.logger.WithFields(fields).WithField("chat_id", update.Message.Chat.ID).Info("Report photo received")
	}
	b.router.HandleMessage(b.api, update.Message)
}

// Notify sends a plain text message to a user. For private chats the chat id
// equals the user's Telegram id.
func (b *Bot) Notify(ctx context.Context, telegramID int64, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := tgbotapi.NewMessage(telegramID, text)

	_, err := b.api.Send(msg)
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	return nil
}

// RegisterCommand registers a command handler on the router
func (b *Bot) RegisterCommand(command string, handler CommandHandler) {
	b.router.RegisterCommand(command, handler)
}

// RegisterPhotoHandler sets the handler for messages carrying a photo
func (b *Bot) RegisterPhotoHandler(handler CommandHandler) {
	b.router.RegisterPhotoHandler(handler)
}