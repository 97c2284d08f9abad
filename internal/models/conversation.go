package models

// Awaiting is the single pending input expectation tracked per user in the
// private conversation.
type Awaiting int

// Awaiting states.
const (
	AwaitingNone Awaiting = iota
	AwaitingLinkedInCapture
	AwaitingInstagramCapture
	AwaitingLinkedInEdit
	AwaitingInstagramEdit
)

var awaitingNames = map[Awaiting]string{
	AwaitingNone:             "none",
	AwaitingLinkedInCapture:  "linkedin_capture",
	AwaitingInstagramCapture: "instagram_capture",
	AwaitingLinkedInEdit:     "linkedin_edit",
	AwaitingInstagramEdit:    "instagram_edit",
}

// String returns the storage name of the state.
func (a Awaiting) String() string {
	if name, ok := awaitingNames[a]; ok {
		return name
	}
	return "unknown"
}

// ParseAwaiting converts a storage name back into a state.
func ParseAwaiting(s string) (Awaiting, bool) {
	for state, name := range awaitingNames {
		if name == s {
			return state, true
		}
	}
	return AwaitingNone, false
}

// Platform returns the platform whose link the state expects.
func (a Awaiting) Platform() (Platform, bool) {
	switch a {
	case AwaitingLinkedInCapture, AwaitingLinkedInEdit:
		return PlatformLinkedIn, true
	case AwaitingInstagramCapture, AwaitingInstagramEdit:
		return PlatformInstagram, true
	}
	return "", false
}

// IsEdit reports whether the state only overwrites an existing link.
func (a Awaiting) IsEdit() bool {
	return a == AwaitingLinkedInEdit || a == AwaitingInstagramEdit
}

// CaptureState returns the first-time capture state for a platform.
func CaptureState(p Platform) Awaiting {
	if p == PlatformInstagram {
		return AwaitingInstagramCapture
	}
	return AwaitingLinkedInCapture
}

// EditState returns the edit state for a platform.
func EditState(p Platform) Awaiting {
	if p == PlatformInstagram {
		return AwaitingInstagramEdit
	}
	return AwaitingLinkedInEdit
}
