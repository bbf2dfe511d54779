package commands

import tele "gopkg.in/telebot.v4"

// Command is a slash command with its handler and menu metadata.
// Arguments after the command name are available via c.Message().Payload.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	// AdminOnly commands are hidden from the menu and gated by the admin allow-list.
	AdminOnly bool
	Hidden    bool
	Aliases   []string
}
