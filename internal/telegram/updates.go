package telegram

import (
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"linkchain/internal/models"
)

// TextMessage extracts a text message event from u.
func TextMessage(u tgbotapi.Update) (models.TextMessage, bool) {
	m := u.Message
	if m == nil || m.From == nil || m.Chat == nil || m.Text == "" {
		return models.TextMessage{}, false
	}
	return models.TextMessage{
		FromUserID: strconv.FormatInt(m.From.ID, 10),
		FromName:   displayName(m.From),
		ChatID:     strconv.FormatInt(m.Chat.ID, 10),
		ChatType:   models.ChatType(m.Chat.Type),
		Text:       m.Text,
	}, true
}

// ButtonPress extracts a button press event from u.
func ButtonPress(u tgbotapi.Update) (models.ButtonPress, bool) {
	q := u.CallbackQuery
	if q == nil || q.From == nil {
		return models.ButtonPress{}, false
	}
	press := models.ButtonPress{
		CallbackID:  q.ID,
		FromUserID:  strconv.FormatInt(q.From.ID, 10),
		FromName:    displayName(q.From),
		ActionToken: q.Data,
	}
	// Presses on messages too old for Telegram to include carry no message.
	if q.Message != nil && q.Message.Chat != nil {
		press.ChatID = strconv.FormatInt(q.Message.Chat.ID, 10)
		press.ChatType = models.ChatType(q.Message.Chat.Type)
		press.MessageID = strconv.Itoa(q.Message.MessageID)
	}
	return press, true
}

func displayName(u *tgbotapi.User) string {
	name := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if name == "" {
		name = u.UserName
	}
	return name
}
