// Package conversation implements the private, per-user link capture
// conversation: what input a user is expected to send next, and what happens
// when it arrives.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"html"
	"time"

	"linkchain/internal/models"
	"linkchain/internal/store"
	"linkchain/internal/validation"
)

// ErrUnsupportedAction is returned for actions that belong to a group chain.
var ErrUnsupportedAction = errors.New("action is not handled in private chat")

// Result is the reply to send and the state transition that produced it.
type Result struct {
	Reply models.Message
	From  models.Awaiting
	To    models.Awaiting
	// ProfileChanged is set when a stored link was added, replaced or cleared.
	ProfileChanged bool
}

// Machine is the conversation state machine. It holds no per-user state of
// its own; every call reads and writes through the stores.
type Machine struct {
	links  store.LinkStore
	states store.StateStore
	ttl    time.Duration
}

// New creates a state machine. ttl bounds how long an unanswered prompt
// keeps expecting input.
func New(links store.LinkStore, states store.StateStore, ttl time.Duration) *Machine {
	return &Machine{links: links, states: states, ttl: ttl}
}

// Start handles /start. payload is the optional deep-link parameter naming a
// platform to capture.
func (m *Machine) Start(ctx context.Context, userID, payload string) (Result, error) {
	from, err := m.states.GetAwaiting(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	profile, _, err := m.links.GetProfile(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	platform, requested := models.ParsePlatform(payload)
	if requested && profile.Has(platform) {
		requested = false
	}
	if !requested {
		missing, ok := profile.FirstMissing()
		if !ok {
			return m.profileResult(ctx, userID, from, profile, "You're all set. Here are your links:")
		}
		platform = missing
	}

	intro := "Welcome! 👋 I keep your professional links so you can add them to group chains.\n\n"
	if requested {
		intro = ""
	}
	return m.enter(ctx, userID, from, models.CaptureState(platform), intro+capturePrompt(platform))
}

// Prompt puts the user into the capture state for platform. It is used when a
// user tries to contribute a link they have not captured yet.
func (m *Machine) Prompt(ctx context.Context, userID string, platform models.Platform) (Result, error) {
	from, err := m.states.GetAwaiting(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	text := fmt.Sprintf("To add yourself to the group chain with %s, I need your link first.\n\n%s",
		platform.Label(), capturePrompt(platform))
	return m.enter(ctx, userID, from, models.CaptureState(platform), text)
}

// ShowProfile handles /profile.
func (m *Machine) ShowProfile(ctx context.Context, userID string) (Result, error) {
	from, err := m.states.GetAwaiting(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	profile, _, err := m.links.GetProfile(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	return m.profileResult(ctx, userID, from, profile, "Your links:")
}

// Cancel handles /cancel and the Skip button: the pending expectation is
// dropped without validating anything.
func (m *Machine) Cancel(ctx context.Context, userID string) (Result, error) {
	from, err := m.states.GetAwaiting(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if err := m.states.SetAwaiting(ctx, userID, models.AwaitingNone, 0); err != nil {
		return Result{}, err
	}
	return Result{
		Reply: models.Message{Text: "Okay, skipped. Send /profile whenever you want to add or change your links."},
		From:  from,
		To:    models.AwaitingNone,
	}, nil
}

// HandleText processes free text against the user's pending expectation.
// Invalid input never mutates the store or the state.
func (m *Machine) HandleText(ctx context.Context, userID, text string) (Result, error) {
	state, err := m.states.GetAwaiting(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	switch state {
	case models.AwaitingLinkedInCapture, models.AwaitingInstagramCapture,
		models.AwaitingLinkedInEdit, models.AwaitingInstagramEdit:
		return m.handleExpected(ctx, userID, state, text)
	case models.AwaitingNone:
		return m.handleIdle(ctx, userID, text)
	}
	return Result{}, fmt.Errorf("unhandled conversation state %v", state)
}

// HandleAction processes a private-chat button.
func (m *Machine) HandleAction(ctx context.Context, userID string, action models.Action) (Result, error) {
	switch action {
	case models.ActionCaptureLinkedIn, models.ActionCaptureInstagram,
		models.ActionEditLinkedIn, models.ActionEditInstagram:
		platform, _ := action.Platform()
		return m.beginInput(ctx, userID, platform)
	case models.ActionRemoveLinkedIn, models.ActionRemoveInstagram:
		platform, _ := action.Platform()
		return m.removeLink(ctx, userID, platform)
	case models.ActionShowProfile:
		return m.ShowProfile(ctx, userID)
	case models.ActionSkip:
		return m.Cancel(ctx, userID)
	case models.ActionAddLinkedIn, models.ActionAddInstagram, models.ActionRemoveMe:
		return Result{}, fmt.Errorf("%w: %v", ErrUnsupportedAction, action)
	}
	return Result{}, fmt.Errorf("%w: %v", models.ErrUnknownAction, action)
}

func (m *Machine) handleExpected(ctx context.Context, userID string, state models.Awaiting, text string) (Result, error) {
	platform, _ := state.Platform()

	value, ok, hint := validation.ValidateLink(platform, text)
	if !ok {
		return Result{
			Reply: models.Message{
				Text:    "❌ " + html.EscapeString(hint),
				Buttons: [][]models.Button{{skipButton()}},
			},
			From: state,
			To:   state,
		}, nil
	}

	profile, _, err := m.links.GetProfile(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	if state.IsEdit() && !profile.Has(platform) {
		if err := m.states.SetAwaiting(ctx, userID, models.AwaitingNone, 0); err != nil {
			return Result{}, err
		}
		return Result{
			Reply: models.Message{
				Text:    fmt.Sprintf("You have no %s link to edit anymore. Tap below to add one.", platform.Label()),
				Buttons: [][]models.Button{{addButton(platform)}},
			},
			From: state,
			To:   models.AwaitingNone,
		}, nil
	}

	if err := m.links.SetProfileField(ctx, userID, platform, value); err != nil {
		return Result{}, err
	}
	if err := m.states.SetAwaiting(ctx, userID, models.AwaitingNone, 0); err != nil {
		return Result{}, err
	}

	if state.IsEdit() {
		profile = withLink(profile, platform, value)
		return Result{
			Reply: models.Message{
				Text:    fmt.Sprintf("✅ Updated your %s link.\n\n%s", platform.Label(), describeProfile(profile)),
				Buttons: profileButtons(profile),
			},
			From:           state,
			To:             models.AwaitingNone,
			ProfileChanged: true,
		}, nil
	}

	return Result{
		Reply:          savedReply(withLink(profile, platform, value), platform),
		From:           state,
		To:             models.AwaitingNone,
		ProfileChanged: true,
	}, nil
}

// handleIdle accepts a full profile URL for a platform the user has not set
// yet, and otherwise explains what to do.
func (m *Machine) handleIdle(ctx context.Context, userID, text string) (Result, error) {
	platform, value, ok := validation.DetectLink(text)
	if !ok {
		return Result{
			Reply: models.Message{Text: helpText},
			From:  models.AwaitingNone,
			To:    models.AwaitingNone,
		}, nil
	}

	profile, _, err := m.links.GetProfile(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	if profile.Has(platform) {
		return Result{
			Reply: models.Message{
				Text:    fmt.Sprintf("You already have a %s link on file. Tap below to change it.", platform.Label()),
				Buttons: [][]models.Button{{editButton(platform)}},
			},
			From: models.AwaitingNone,
			To:   models.AwaitingNone,
		}, nil
	}

	if err := m.links.SetProfileField(ctx, userID, platform, value); err != nil {
		return Result{}, err
	}
	return Result{
		Reply:          savedReply(withLink(profile, platform, value), platform),
		From:           models.AwaitingNone,
		To:             models.AwaitingNone,
		ProfileChanged: true,
	}, nil
}

// beginInput enters the capture state for a missing link, or the edit state
// for an existing one.
func (m *Machine) beginInput(ctx context.Context, userID string, platform models.Platform) (Result, error) {
	from, err := m.states.GetAwaiting(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	profile, _, err := m.links.GetProfile(ctx, userID)
	if err != nil {
		return Result{}, err
	}

	if profile.Has(platform) {
		text := fmt.Sprintf("Your current %s link is %s\n\nSend the new one. %s",
			platform.Label(), html.EscapeString(profile.Link(platform)), html.EscapeString(validation.FormatHint(platform)))
		return m.enter(ctx, userID, from, models.EditState(platform), text)
	}
	return m.enter(ctx, userID, from, models.CaptureState(platform), capturePrompt(platform))
}

func (m *Machine) removeLink(ctx context.Context, userID string, platform models.Platform) (Result, error) {
	from, err := m.states.GetAwaiting(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	if err := m.links.SetProfileField(ctx, userID, platform, ""); err != nil {
		return Result{}, err
	}
	if err := m.states.SetAwaiting(ctx, userID, models.AwaitingNone, 0); err != nil {
		return Result{}, err
	}

	profile, _, err := m.links.GetProfile(ctx, userID)
	if err != nil {
		return Result{}, err
	}
	return Result{
		Reply: models.Message{
			Text: fmt.Sprintf("🗑 Removed your %s link. It no longer shows in any group chain.\n\n%s",
				platform.Label(), describeProfile(profile)),
			Buttons: profileButtons(profile),
		},
		From:           from,
		To:             models.AwaitingNone,
		ProfileChanged: true,
	}, nil
}

func (m *Machine) enter(ctx context.Context, userID string, from, to models.Awaiting, text string) (Result, error) {
	if err := m.states.SetAwaiting(ctx, userID, to, m.ttl); err != nil {
		return Result{}, err
	}
	return Result{
		Reply: models.Message{Text: text, Buttons: [][]models.Button{{skipButton()}}},
		From:  from,
		To:    to,
	}, nil
}

func (m *Machine) profileResult(ctx context.Context, userID string, from models.Awaiting, profile models.Profile, heading string) (Result, error) {
	if from != models.AwaitingNone {
		if err := m.states.SetAwaiting(ctx, userID, models.AwaitingNone, 0); err != nil {
			return Result{}, err
		}
	}
	return Result{
		Reply: models.Message{
			Text:    heading + "\n\n" + describeProfile(profile),
			Buttons: profileButtons(profile),
		},
		From: from,
		To:   models.AwaitingNone,
	}, nil
}

func withLink(p models.Profile, platform models.Platform, value string) models.Profile {
	switch platform {
	case models.PlatformLinkedIn:
		p.LinkedIn = value
	case models.PlatformInstagram:
		p.Instagram = value
	}
	return p
}
