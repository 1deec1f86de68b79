package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func TestUpdateKind(t *testing.T) {
	command := &tgbotapi.Message{
		Text:     "/start",
		Entities: []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}

	tests := []struct {
		name    string
		message *tgbotapi.Message
		want    string
	}{
		{"no message", nil, "other"},
		{"photo", &tgbotapi.Message{Photo: []tgbotapi.PhotoSize{{FileID: "f"}}}, "photo"},
		{"command", command, "command"},
		{"text", &tgbotapi.Message{Text: "привет"}, "text"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := updateKind(tt.message); got != tt.want {
				t.Fatalf("updateKind() = %q, want %q", got, tt.want)
			}
		})
	}
}
