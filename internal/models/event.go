package models

// ChatType is the kind of chat an event arrived from.
type ChatType string

// Chat types reported by the transport.
const (
	ChatPrivate    ChatType = "private"
	ChatGroup      ChatType = "group"
	ChatSupergroup ChatType = "supergroup"
	ChatChannel    ChatType = "channel"
)

// IsGroup reports whether chains may live in this chat.
func (t ChatType) IsGroup() bool {
	return t == ChatGroup || t == ChatSupergroup
}

// TextMessage is an incoming text message.
type TextMessage struct {
	FromUserID string
	FromName   string
	ChatID     string
	ChatType   ChatType
	Text       string
}

// ButtonPress is an incoming inline button press.
type ButtonPress struct {
	CallbackID  string
	FromUserID  string
	FromName    string
	ChatID      string
	ChatType    ChatType
	MessageID   string
	ActionToken string
}

// Button is a labeled action offered with a message.
type Button struct {
	Label  string
	Action Action
}

// Message is display text plus the declarative affordances offered with it.
// A message with no buttons has no interactive affordances.
type Message struct {
	Text    string
	Buttons [][]Button
}

// HasButtons reports whether the message offers any action.
func (m Message) HasButtons() bool {
	for _, row := range m.Buttons {
		if len(row) > 0 {
			return true
		}
	}
	return false
}
