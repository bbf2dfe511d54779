package dialog

import "github.com/m3rciful/nezabudrama/core/logger"

// EventKind discriminates inbound events.
type EventKind int

const (
	EventCommand EventKind = iota + 1
	EventText
	EventTap
)

// Event is one inbound update reduced to what the engine needs.
type Event struct {
	Kind   EventKind
	UserID int64
	// Command is the command name without the slash.
	Command string
	Text    string
	// Data is the raw callback payload of a tap.
	Data string
}

// Command builds a command event.
func Command(userID int64, name string) Event {
	return Event{Kind: EventCommand, UserID: userID, Command: name}
}

// Text builds a free text event.
func Text(userID int64, body string) Event {
	return Event{Kind: EventText, UserID: userID, Text: body}
}

// Tap builds a button tap event.
func Tap(userID int64, data string) Event {
	return Event{Kind: EventTap, UserID: userID, Data: data}
}

// String summarizes the event for incident reports.
func (e Event) String() string {
	switch e.Kind {
	case EventCommand:
		return "command /" + e.Command
	case EventText:
		return "text " + logger.SanitizeLimit(e.Text, 64)
	case EventTap:
		return "tap " + logger.SanitizeLimit(e.Data, 64)
	}
	return "unknown"
}
