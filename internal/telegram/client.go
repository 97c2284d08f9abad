// Package telegram adapts the Telegram Bot API to the bot's core: it sends
// and edits messages, answers button presses, and turns updates into events.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"linkchain/internal/models"
)

// ErrInvalidChatID is returned for chat or message ids that are not Telegram integers.
var ErrInvalidChatID = errors.New("invalid telegram id")

// notModified is the API description for an edit that changes nothing.
const notModified = "message is not modified"

// API is the subset of *tgbotapi.BotAPI the client uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Client sends bot messages through the Bot API.
type Client struct {
	api      API
	username string
}

// NewBot connects to the Bot API with token and reports the bot's identity.
func NewBot(token string, debug bool) (*tgbotapi.BotAPI, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to telegram: %w", err)
	}
	bot.Debug = debug
	return bot, nil
}

// NewClient creates a client. username is the bot's @username without the @.
func NewClient(api API, username string) *Client {
	return &Client{api: api, username: username}
}

// Username returns the bot's username.
func (c *Client) Username() string {
	return c.username
}

// DeepLink returns a link that opens the private chat with the bot and sends
// /start with payload.
func (c *Client) DeepLink(payload string) string {
	return fmt.Sprintf("https://t.me/%s?start=%s", c.username, payload)
}

// Publish sends msg to a chat and returns the new message id.
func (c *Client) Publish(ctx context.Context, chatID string, msg models.Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	id, err := parseID(chatID)
	if err != nil {
		return "", err
	}

	out := tgbotapi.NewMessage(id, msg.Text)
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableWebPagePreview = true
	if msg.HasButtons() {
		out.ReplyMarkup = keyboard(msg.Buttons)
	}

	sent, err := c.api.Send(out)
	if err != nil {
		return "", fmt.Errorf("failed to send message: %w", err)
	}
	return strconv.Itoa(sent.MessageID), nil
}

// Edit replaces the text and buttons of an existing message. A message
// without buttons loses its keyboard.
func (c *Client) Edit(ctx context.Context, chatID, messageID string, msg models.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id, err := parseID(chatID)
	if err != nil {
		return err
	}
	mid, err := strconv.Atoi(messageID)
	if err != nil {
		return fmt.Errorf("%w: message %q", ErrInvalidChatID, messageID)
	}

	edit := tgbotapi.NewEditMessageText(id, mid, msg.Text)
	edit.ParseMode = tgbotapi.ModeHTML
	edit.DisableWebPagePreview = true
	if msg.HasButtons() {
		markup := keyboard(msg.Buttons)
		edit.ReplyMarkup = &markup
	}

	if _, err := c.api.Request(edit); err != nil {
		if strings.Contains(err.Error(), notModified) {
			return nil
		}
		return fmt.Errorf("failed to edit message: %w", err)
	}
	return nil
}

// Answer acknowledges a button press. text is shown as a toast; url, when
// set, opens a link such as a deep link into the private chat.
func (c *Client) Answer(ctx context.Context, callbackID, text, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	cb := tgbotapi.NewCallback(callbackID, text)
	cb.URL = url
	if _, err := c.api.Request(cb); err != nil {
		return fmt.Errorf("failed to answer callback: %w", err)
	}
	return nil
}

func keyboard(rows [][]models.Button) tgbotapi.InlineKeyboardMarkup {
	markup := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, b := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(b.Label, b.Action.Token()))
		}
		markup = append(markup, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(markup...)
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: chat %q", ErrInvalidChatID, s)
	}
	return id, nil
}
