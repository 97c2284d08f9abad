package handlers

import (
	"context"
	"errors"
	"html"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"linkchain/internal/chain"
	"linkchain/internal/config"
	"linkchain/internal/conversation"
	"linkchain/internal/models"
	"linkchain/internal/render"
	"linkchain/internal/store"
)

const (
	user  = "501"
	group = "-100200"
)

type sent struct {
	chatID string
	msg    models.Message
}

type answer struct {
	callbackID, text, url string
}

type fakeMessenger struct {
	mu      sync.Mutex
	nextID  int
	sent    []sent
	edits   []sent
	answers []answer
}

func (f *fakeMessenger) Publish(_ context.Context, chatID string, msg models.Message) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.sent = append(f.sent, sent{chatID: chatID, msg: msg})
	return strconv.Itoa(f.nextID), nil
}

func (f *fakeMessenger) Edit(_ context.Context, chatID, _ string, msg models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.edits = append(f.edits, sent{chatID: chatID, msg: msg})
	return nil
}

func (f *fakeMessenger) Answer(_ context.Context, callbackID, text, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.answers = append(f.answers, answer{callbackID, text, url})
	return nil
}

func (f *fakeMessenger) DeepLink(payload string) string {
	return "https://t.me/linkchain_bot?start=" + payload
}

func (f *fakeMessenger) Username() string { return "linkchain_bot" }

// failingStore fails every display-name write.
type failingStore struct {
	*store.Memory
}

func (failingStore) SetDisplayName(context.Context, string, string) error {
	return errors.New("connection refused")
}

func newDispatcher(t *testing.T, links store.LinkStore, states store.StateStore) (*Dispatcher, *fakeMessenger) {
	t.Helper()
	r, err := render.New(config.DefaultCopy())
	require.NoError(t, err)
	fm := &fakeMessenger{}
	machine := conversation.New(links, states, time.Hour)
	chains := chain.NewService(links, r, fm, time.Second)
	return NewDispatcher(links, machine, chains, fm, 5*time.Second), fm
}

func privateText(text string) models.TextMessage {
	return models.TextMessage{FromUserID: user, FromName: "Ada", ChatID: user, ChatType: models.ChatPrivate, Text: text}
}

func groupText(text string) models.TextMessage {
	return models.TextMessage{FromUserID: user, FromName: "Ada", ChatID: group, ChatType: models.ChatSupergroup, Text: text}
}

func TestHandleText_StartEntersCapture(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	d, fm := newDispatcher(t, mem, mem)

	d.HandleText(ctx, privateText("/start"))

	state, err := mem.GetAwaiting(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, models.AwaitingLinkedInCapture, state)
	require.Len(t, fm.sent, 1)
	assert.Equal(t, user, fm.sent[0].chatID)

	profile, _, _ := mem.GetProfile(ctx, user)
	assert.Equal(t, "Ada", profile.DisplayName)
}

func TestHandleText_PrivateCommands(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{name: "help", text: "/help", want: conversation.HelpText()},
		{name: "chain outside group", text: "/chain", want: ChainInGroupOnly},
		{name: "addressed to this bot", text: "/help@LinkChain_Bot", want: conversation.HelpText()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mem := store.NewMemory()
			d, fm := newDispatcher(t, mem, mem)

			d.HandleText(context.Background(), privateText(tt.text))

			require.Len(t, fm.sent, 1)
			assert.Equal(t, tt.want, fm.sent[0].msg.Text)
		})
	}
}

func TestHandleText_GroupChain(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	d, fm := newDispatcher(t, mem, mem)

	d.HandleText(ctx, groupText("/chain@linkchain_bot"))

	require.Len(t, fm.sent, 1)
	assert.Equal(t, group, fm.sent[0].chatID)
	assert.True(t, fm.sent[0].msg.HasButtons())
	active, _ := mem.GetActiveChain(ctx, group)
	assert.Equal(t, "1", active)
}

func TestHandleText_GroupIgnored(t *testing.T) {
	for _, text := range []string{"hello everyone", "/chain@other_bot", "/start", "/help"} {
		t.Run(text, func(t *testing.T) {
			mem := store.NewMemory()
			d, fm := newDispatcher(t, mem, mem)

			d.HandleText(context.Background(), groupText(text))

			assert.Empty(t, fm.sent)
			_, ok, _ := mem.GetProfile(context.Background(), user)
			assert.False(t, ok)
		})
	}
}

func TestHandleText_CollaboratorErrorSendsRetryNotice(t *testing.T) {
	mem := store.NewMemory()
	d, fm := newDispatcher(t, failingStore{mem}, mem)

	d.HandleText(context.Background(), privateText("/start"))

	require.Len(t, fm.sent, 1)
	assert.Equal(t, RetryNotice, fm.sent[0].msg.Text)
	state, _ := mem.GetAwaiting(context.Background(), user)
	assert.Equal(t, models.AwaitingNone, state)
}

func startChain(t *testing.T, d *Dispatcher, fm *fakeMessenger) string {
	t.Helper()
	d.HandleText(context.Background(), groupText("/chain"))
	require.NotEmpty(t, fm.sent)
	return strconv.Itoa(fm.nextID)
}

func TestHandleButton_AddWithoutLinkRedirectsToPrivateChat(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	d, fm := newDispatcher(t, mem, mem)
	chainID := startChain(t, d, fm)

	d.HandleButton(ctx, models.ButtonPress{
		CallbackID: "cb1", FromUserID: "777", FromName: "Grace",
		ChatID: group, ChatType: models.ChatSupergroup, MessageID: chainID,
		ActionToken: "add_instagram",
	})

	require.Len(t, fm.answers, 1)
	assert.Equal(t, "https://t.me/linkchain_bot?start=instagram", fm.answers[0].url)

	last := fm.sent[len(fm.sent)-1]
	assert.Equal(t, "777", last.chatID, "capture prompt goes to the private chat")
	state, _ := mem.GetAwaiting(ctx, "777")
	assert.Equal(t, models.AwaitingInstagramCapture, state)

	members, _ := mem.GetMembers(ctx, group)
	assert.Empty(t, members)
	assert.Empty(t, fm.edits)
}

func TestHandleButton_AddAndRemove(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.SetProfileField(ctx, "777", models.PlatformLinkedIn, "https://linkedin.com/in/grace"))
	d, fm := newDispatcher(t, mem, mem)
	chainID := startChain(t, d, fm)

	press := models.ButtonPress{
		CallbackID: "cb1", FromUserID: "777", FromName: "Grace",
		ChatID: group, ChatType: models.ChatSupergroup, MessageID: chainID,
		ActionToken: "add_linkedin",
	}
	d.HandleButton(ctx, press)

	require.Len(t, fm.edits, 1)
	assert.Contains(t, fm.edits[0].msg.Text, `1. Grace - <a href="https://linkedin.com/in/grace">LinkedIn</a>`)

	press.CallbackID, press.ActionToken = "cb2", "remove_me"
	d.HandleButton(ctx, press)

	require.Len(t, fm.answers, 2)
	assert.Equal(t, chain.RemovedNotice, fm.answers[1].text)
	last := fm.sent[len(fm.sent)-1]
	assert.Equal(t, "777", last.chatID)
	assert.Equal(t, html.EscapeString(chain.RemovedNotice), last.msg.Text)
	assert.False(t, mem.HasContribution(group, "777"))
}

func TestHandleButton_StaleChain(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	d, fm := newDispatcher(t, mem, mem)
	first := startChain(t, d, fm)
	startChain(t, d, fm)
	archived := len(fm.edits)

	d.HandleButton(ctx, models.ButtonPress{
		CallbackID: "cb", FromUserID: user, ChatID: group, ChatType: models.ChatGroup,
		MessageID: first, ActionToken: "remove_me",
	})

	require.Len(t, fm.answers, 1)
	assert.Equal(t, chain.StaleNotice, fm.answers[0].text)

	d.HandleButton(ctx, models.ButtonPress{
		CallbackID: "cb2", FromUserID: "999", FromName: "Mallory", ChatID: group, ChatType: models.ChatGroup,
		MessageID: first, ActionToken: "add_linkedin",
	})

	require.Len(t, fm.answers, 2)
	assert.Equal(t, chain.StaleNotice, fm.answers[1].text)
	_, known, err := mem.GetProfile(ctx, "999")
	require.NoError(t, err)
	assert.False(t, known, "stale presses leave no trace in the store")
	assert.Len(t, fm.edits, archived)
}

func TestProfileChangeRefreshesGroupChains(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.SetProfileField(ctx, "777", models.PlatformLinkedIn, "https://linkedin.com/in/grace"))
	d, fm := newDispatcher(t, mem, mem)
	chainID := startChain(t, d, fm)

	d.HandleButton(ctx, models.ButtonPress{
		CallbackID: "cb1", FromUserID: "777", FromName: "Grace",
		ChatID: group, ChatType: models.ChatSupergroup, MessageID: chainID,
		ActionToken: "add_linkedin",
	})
	require.Len(t, fm.edits, 1)

	d.HandleButton(ctx, models.ButtonPress{
		CallbackID: "cb2", FromUserID: "777", FromName: "Grace",
		ChatID: "777", ChatType: models.ChatPrivate, ActionToken: "remove_linkedin",
	})

	require.Len(t, fm.edits, 2)
	assert.Equal(t, group, fm.edits[1].chatID)
	assert.NotContains(t, fm.edits[1].msg.Text, "linkedin.com/in/grace")

	d.HandleText(ctx, models.TextMessage{
		FromUserID: "777", FromName: "Grace", ChatID: "777", ChatType: models.ChatPrivate,
		Text: "https://linkedin.com/in/grace-hopper",
	})

	require.Len(t, fm.edits, 3)
	assert.Contains(t, fm.edits[2].msg.Text, `1. Grace - <a href="https://linkedin.com/in/grace-hopper">LinkedIn</a>`)
}

func TestHandleButton_UnknownTokenIsAnswered(t *testing.T) {
	mem := store.NewMemory()
	d, fm := newDispatcher(t, mem, mem)

	d.HandleButton(context.Background(), models.ButtonPress{
		CallbackID: "cb", FromUserID: user, ChatID: user, ChatType: models.ChatPrivate, ActionToken: "launch_rockets",
	})

	require.Len(t, fm.answers, 1)
	assert.Equal(t, "cb", fm.answers[0].callbackID)
	assert.Empty(t, fm.sent)
}

func TestHandleButton_PrivateSkip(t *testing.T) {
	ctx := context.Background()
	mem := store.NewMemory()
	require.NoError(t, mem.SetAwaiting(ctx, user, models.AwaitingInstagramCapture, time.Hour))
	d, fm := newDispatcher(t, mem, mem)

	d.HandleButton(ctx, models.ButtonPress{
		CallbackID: "cb", FromUserID: user, ChatID: user, ChatType: models.ChatPrivate, ActionToken: "skip",
	})

	state, _ := mem.GetAwaiting(ctx, user)
	assert.Equal(t, models.AwaitingNone, state)
	require.Len(t, fm.sent, 1)
	require.Len(t, fm.answers, 1)
}

func TestHandleButton_ErrorAnsweredWithRetry(t *testing.T) {
	mem := store.NewMemory()
	d, fm := newDispatcher(t, failingStore{mem}, mem)

	d.HandleButton(context.Background(), models.ButtonPress{
		CallbackID: "cb", FromUserID: user, ChatID: user, ChatType: models.ChatPrivate, ActionToken: "show_profile",
	})

	require.Len(t, fm.answers, 1)
	assert.Equal(t, RetryNotice, fm.answers[0].text)
}
