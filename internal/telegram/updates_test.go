package telegram

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"

	"linkchain/internal/models"
)

func TestTextMessage(t *testing.T) {
	u := tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: 42, FirstName: "Ada", LastName: "Lovelace"},
		Chat: &tgbotapi.Chat{ID: -100, Type: "supergroup"},
		Text: "/chain@linkchain_bot",
	}}

	msg, ok := TextMessage(u)
	assert.True(t, ok)
	assert.Equal(t, models.TextMessage{
		FromUserID: "42",
		FromName:   "Ada Lovelace",
		ChatID:     "-100",
		ChatType:   models.ChatSupergroup,
		Text:       "/chain@linkchain_bot",
	}, msg)
}

func TestTextMessage_Ignored(t *testing.T) {
	tests := []struct {
		name string
		u    tgbotapi.Update
	}{
		{name: "no message", u: tgbotapi.Update{}},
		{name: "no text", u: tgbotapi.Update{Message: &tgbotapi.Message{
			From: &tgbotapi.User{ID: 1}, Chat: &tgbotapi.Chat{ID: 1, Type: "private"},
		}}},
		{name: "no sender", u: tgbotapi.Update{Message: &tgbotapi.Message{
			Chat: &tgbotapi.Chat{ID: 1, Type: "channel"}, Text: "hi",
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := TextMessage(tt.u)
			assert.False(t, ok)
		})
	}
}

func TestButtonPress(t *testing.T) {
	u := tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:   "cb",
		From: &tgbotapi.User{ID: 7, UserName: "grace"},
		Message: &tgbotapi.Message{
			MessageID: 99,
			Chat:      &tgbotapi.Chat{ID: -5, Type: "group"},
		},
		Data: "add_instagram",
	}}

	press, ok := ButtonPress(u)
	assert.True(t, ok)
	assert.Equal(t, models.ButtonPress{
		CallbackID:  "cb",
		FromUserID:  "7",
		FromName:    "grace",
		ChatID:      "-5",
		ChatType:    models.ChatGroup,
		MessageID:   "99",
		ActionToken: "add_instagram",
	}, press)
}
