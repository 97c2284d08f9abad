package handlers

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"

	"linkchain/internal/chain"
	"linkchain/internal/conversation"
	"linkchain/internal/metrics"
	"linkchain/internal/models"
	"linkchain/internal/store"
	"linkchain/internal/telegram"
)

// User-facing notices sent by the dispatcher itself.
const (
	RetryNotice      = "Something went wrong on my side. Please try again in a moment."
	ChainInGroupOnly = "Chains live in group chats. Add me to a group and send /chain there."
)

// Event outcomes recorded in metrics.
const (
	outcomeOK      = "ok"
	outcomeIgnored = "ignored"
	outcomeError   = "error"
)

var errIgnored = errors.New("event ignored")

// Messenger is the transport the dispatcher replies through.
type Messenger interface {
	chain.Messenger
	Answer(ctx context.Context, callbackID, text, url string) error
	DeepLink(payload string) string
	Username() string
}

// Dispatcher routes transport events to the conversation state machine and
// the chain service. Every event is handled as an independent unit of work.
type Dispatcher struct {
	links     store.LinkStore
	machine   *conversation.Machine
	chains    *chain.Service
	messenger Messenger
	timeout   time.Duration
}

// NewDispatcher creates a dispatcher. timeout bounds the handling of one event.
func NewDispatcher(links store.LinkStore, machine *conversation.Machine, chains *chain.Service, messenger Messenger, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		links:     links,
		machine:   machine,
		chains:    chains,
		messenger: messenger,
		timeout:   timeout,
	}
}

// HandleUpdate converts a Bot API update into an event and handles it.
func (d *Dispatcher) HandleUpdate(ctx context.Context, u tgbotapi.Update) {
	if msg, ok := telegram.TextMessage(u); ok {
		d.HandleText(ctx, msg)
		return
	}
	if press, ok := telegram.ButtonPress(u); ok {
		d.HandleButton(ctx, press)
		return
	}
	metrics.RecordEvent("other", outcomeIgnored)
}

// HandleText handles an incoming text message.
func (d *Dispatcher) HandleText(ctx context.Context, msg models.TextMessage) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	log := slog.With("event_id", uuid.NewString(), "user_id", msg.FromUserID, "chat_id", msg.ChatID)

	err := d.routeText(ctx, log, msg)
	switch {
	case errors.Is(err, errIgnored):
		metrics.RecordEvent("text", outcomeIgnored)
	case err != nil:
		metrics.RecordEvent("text", outcomeError)
		log.Error("failed to handle message", "error", err)
		d.send(ctx, log, msg.ChatID, models.Message{Text: RetryNotice})
	default:
		metrics.RecordEvent("text", outcomeOK)
		log.Debug("message handled")
	}
}

func (d *Dispatcher) routeText(ctx context.Context, log *slog.Logger, msg models.TextMessage) error {
	cmd, args := d.command(msg.Text)

	if msg.ChatType.IsGroup() {
		if cmd != "chain" {
			return errIgnored
		}
		if err := d.links.SetDisplayName(ctx, msg.FromUserID, msg.FromName); err != nil {
			return err
		}
		_, err := d.chains.StartChain(ctx, msg.ChatID, msg.ChatType, msg.FromUserID)
		return err
	}
	if msg.ChatType != models.ChatPrivate {
		return errIgnored
	}

	if err := d.links.SetDisplayName(ctx, msg.FromUserID, msg.FromName); err != nil {
		return err
	}

	var (
		res conversation.Result
		err error
	)
	switch cmd {
	case "start":
		res, err = d.machine.Start(ctx, msg.FromUserID, args)
	case "profile":
		res, err = d.machine.ShowProfile(ctx, msg.FromUserID)
	case "cancel":
		res, err = d.machine.Cancel(ctx, msg.FromUserID)
	case "help":
		res.Reply = models.Message{Text: conversation.HelpText()}
	case "chain":
		res.Reply = models.Message{Text: ChainInGroupOnly}
	default:
		res, err = d.machine.HandleText(ctx, msg.FromUserID, msg.Text)
	}
	if err != nil {
		return err
	}
	return d.reply(ctx, log, msg.ChatID, msg.FromUserID, res)
}

// reply sends a conversation result. When the user's links changed, every
// chain showing the user is re-rendered first.
func (d *Dispatcher) reply(ctx context.Context, log *slog.Logger, chatID, userID string, res conversation.Result) error {
	if res.ProfileChanged {
		if err := d.chains.RefreshMember(ctx, userID); err != nil {
			log.Warn("failed to refresh chains after profile change", "error", err)
		}
	}
	_, err := d.messenger.Publish(ctx, chatID, res.Reply)
	return err
}

// command splits "/name@bot args" into name and args. Commands addressed to
// another bot and plain text return an empty name.
func (d *Dispatcher) command(text string) (string, string) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", ""
	}
	head, args, _ := strings.Cut(text, " ")
	name, target, addressed := strings.Cut(head[1:], "@")
	if addressed && !strings.EqualFold(target, d.messenger.Username()) {
		return "", ""
	}
	return strings.ToLower(name), strings.TrimSpace(args)
}

// HandleButton handles an inline button press. The press is always answered.
func (d *Dispatcher) HandleButton(ctx context.Context, p models.ButtonPress) {
	ctx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	log := slog.With("event_id", uuid.NewString(), "user_id", p.FromUserID, "chat_id", p.ChatID, "action", p.ActionToken)

	notice, url, err := d.routeButton(ctx, log, p)
	switch {
	case errors.Is(err, errIgnored):
		metrics.RecordEvent("button", outcomeIgnored)
	case err != nil:
		metrics.RecordEvent("button", outcomeError)
		log.Error("failed to handle button", "error", err)
		notice, url = RetryNotice, ""
	default:
		metrics.RecordEvent("button", outcomeOK)
		log.Debug("button handled")
	}

	if err := d.messenger.Answer(ctx, p.CallbackID, notice, url); err != nil {
		log.Warn("failed to answer button", "error", err)
	}
}

func (d *Dispatcher) routeButton(ctx context.Context, log *slog.Logger, p models.ButtonPress) (string, string, error) {
	action, err := models.ParseAction(p.ActionToken)
	if err != nil {
		log.Warn("unknown button action")
		return "", "", errIgnored
	}

	if action.IsChainAction() {
		if !p.ChatType.IsGroup() || p.MessageID == "" {
			return chain.StaleNotice, "", errIgnored
		}
		return d.chainButton(ctx, log, p, action)
	}

	if p.ChatType != models.ChatPrivate {
		return "", "", errIgnored
	}
	if err := d.links.SetDisplayName(ctx, p.FromUserID, p.FromName); err != nil {
		return "", "", err
	}
	res, err := d.machine.HandleAction(ctx, p.FromUserID, action)
	if err != nil {
		return "", "", err
	}
	return "", "", d.reply(ctx, log, p.ChatID, p.FromUserID, res)
}

func (d *Dispatcher) chainButton(ctx context.Context, log *slog.Logger, p models.ButtonPress, action models.Action) (string, string, error) {
	out, err := d.chains.HandleChainAction(ctx, chain.Press{
		GroupID:   p.ChatID,
		UserID:    p.FromUserID,
		Name:      p.FromName,
		MessageID: p.MessageID,
		Action:    action,
	})
	if err != nil {
		return "", "", err
	}

	var url string
	if out.NeedsCapture != "" {
		// The deep link restarts the capture even if this prompt never arrives.
		url = d.messenger.DeepLink(string(out.NeedsCapture))
		res, err := d.machine.Prompt(ctx, p.FromUserID, out.NeedsCapture)
		if err != nil {
			log.Error("failed to enter capture state", "platform", out.NeedsCapture, "error", err)
		} else {
			d.send(ctx, log, p.FromUserID, res.Reply)
		}
	}
	if out.Private {
		d.send(ctx, log, p.FromUserID, models.Message{Text: html.EscapeString(out.Notice)})
	}
	return out.Notice, url, nil
}

// send delivers msg best-effort. Private chats fail until the user has
// started the bot.
func (d *Dispatcher) send(ctx context.Context, log *slog.Logger, chatID string, msg models.Message) {
	if _, err := d.messenger.Publish(ctx, chatID, msg); err != nil {
		log.Warn("failed to deliver message", "to", chatID, "error", err)
	}
}
