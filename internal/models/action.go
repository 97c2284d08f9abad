package models

import (
	"errors"
	"fmt"
)

// ErrUnknownAction is returned when a button token does not name an Action.
var ErrUnknownAction = errors.New("unknown action")

// Action is the closed set of button behaviours. Chain actions are pressed
// on a group's chain message; the rest belong to the private conversation.
type Action int

// Actions.
const (
	ActionAddLinkedIn Action = iota + 1
	ActionAddInstagram
	ActionRemoveMe
	ActionCaptureLinkedIn
	ActionCaptureInstagram
	ActionEditLinkedIn
	ActionEditInstagram
	ActionRemoveLinkedIn
	ActionRemoveInstagram
	ActionShowProfile
	ActionSkip
)

// Tokens are sent as callback data, which Telegram limits to 64 bytes.
var actionTokens = map[Action]string{
	ActionAddLinkedIn:      "add_linkedin",
	ActionAddInstagram:     "add_instagram",
	ActionRemoveMe:         "remove_me",
	ActionCaptureLinkedIn:  "capture_linkedin",
	ActionCaptureInstagram: "capture_instagram",
	ActionEditLinkedIn:     "edit_linkedin",
	ActionEditInstagram:    "edit_instagram",
	ActionRemoveLinkedIn:   "remove_linkedin",
	ActionRemoveInstagram:  "remove_instagram",
	ActionShowProfile:      "show_profile",
	ActionSkip:             "skip",
}

// Token returns the wire token for the action.
func (a Action) Token() string {
	return actionTokens[a]
}

func (a Action) String() string {
	if token, ok := actionTokens[a]; ok {
		return token
	}
	return fmt.Sprintf("action(%d)", int(a))
}

// ParseAction maps a wire token back to its Action.
func ParseAction(token string) (Action, error) {
	for action, t := range actionTokens {
		if t == token {
			return action, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAction, token)
}

// IsChainAction reports whether the action is pressed on a group chain.
func (a Action) IsChainAction() bool {
	switch a {
	case ActionAddLinkedIn, ActionAddInstagram, ActionRemoveMe:
		return true
	}
	return false
}

// Platform returns the platform an action concerns, if any.
func (a Action) Platform() (Platform, bool) {
	switch a {
	case ActionAddLinkedIn, ActionCaptureLinkedIn, ActionEditLinkedIn, ActionRemoveLinkedIn:
		return PlatformLinkedIn, true
	case ActionAddInstagram, ActionCaptureInstagram, ActionEditInstagram, ActionRemoveInstagram:
		return PlatformInstagram, true
	}
	return "", false
}

// ContributeAction returns the chain action that contributes a platform.
func ContributeAction(p Platform) Action {
	if p == PlatformInstagram {
		return ActionAddInstagram
	}
	return ActionAddLinkedIn
}

// CaptureAction returns the private action that starts capturing a platform.
func CaptureAction(p Platform) Action {
	if p == PlatformInstagram {
		return ActionCaptureInstagram
	}
	return ActionCaptureLinkedIn
}

// EditAction returns the private action that starts editing a platform.
func EditAction(p Platform) Action {
	if p == PlatformInstagram {
		return ActionEditInstagram
	}
	return ActionEditLinkedIn
}

// RemoveLinkAction returns the private action that clears a platform link.
func RemoveLinkAction(p Platform) Action {
	if p == PlatformInstagram {
		return ActionRemoveInstagram
	}
	return ActionRemoveLinkedIn
}
