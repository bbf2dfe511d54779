package telegram

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/nezabudrama/core/logger"
	"github.com/m3rciful/nezabudrama/core/telegram/commands"
)

// Registry holds bot commands and the catch-all callback and text handlers.
// Callback data is routed as a raw token to a single handler, so the registry
// does not keep per-key callback entries.
type Registry struct {
	commands     map[string]commands.Command
	callback     tele.HandlerFunc
	textFallback tele.HandlerFunc
}

// NewRegistry creates an empty Registry whose callback handler acknowledges and ignores taps.
func NewRegistry() *Registry {
	return &Registry{
		commands: make(map[string]commands.Command),
		callback: func(c tele.Context) error {
			return c.Respond()
		},
	}
}

// RegisterCommand adds a new command. Invalid or duplicate registrations are logged and skipped.
func (r *Registry) RegisterCommand(name string, cmd commands.Command) {
	if r == nil || name == "" || cmd.Handler == nil || cmd.Description == "" {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "invalid"),
		)
		return
	}
	if name[0] != '/' {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.skip",
			slog.String("name", name),
			slog.String("reason", "no_slash_prefix"),
		)
		return
	}
	if _, exists := r.commands[name]; exists {
		logger.TWire.LogAttrs(context.Background(), slog.LevelWarn, "register.command.duplicate",
			slog.String("name", name),
		)
		return
	}
	r.commands[name] = cmd
}

// ListCommands returns commands sorted by name, optionally without hidden and admin-only ones.
func (r *Registry) ListCommands(visibleOnly bool) []tele.Command {
	var list []tele.Command
	for cmd, meta := range r.commands {
		if visibleOnly && (meta.Hidden || meta.AdminOnly) {
			continue
		}
		list = append(list, tele.Command{Text: strings.TrimPrefix(cmd, "/"), Description: meta.Description})
	}
	sort.Slice(list, func(i, j int) bool { return list[i].Text < list[j].Text })
	return list
}

// LookupCommand resolves the first word of text ("/name@bot args") against names and aliases.
// It returns the canonical key, the command and the remaining arguments.
func (r *Registry) LookupCommand(text string) (string, commands.Command, string, bool) {
	head, args, _ := strings.Cut(strings.TrimSpace(text), " ")
	head, _, _ = strings.Cut(head, "@")
	if head == "" {
		return "", commands.Command{}, "", false
	}
	if !strings.HasPrefix(head, "/") {
		head = "/" + head
	}
	args = strings.TrimSpace(args)
	if cmd, ok := r.commands[head]; ok {
		return head, cmd, args, true
	}
	for key, cmd := range r.commands {
		for _, alias := range cmd.Aliases {
			if alias == head || "/"+alias == head {
				return key, cmd, args, true
			}
		}
	}
	return "", commands.Command{}, "", false
}

// Commands returns all registered commands.
func (r *Registry) Commands() map[string]commands.Command {
	return r.commands
}

// SetCallbackHandler installs the handler receiving every callback query.
func (r *Registry) SetCallbackHandler(h tele.HandlerFunc) {
	if h != nil {
		r.callback = h
	}
}

// CallbackHandler returns the handler receiving every callback query.
func (r *Registry) CallbackHandler() tele.HandlerFunc {
	return r.callback
}

// SetTextFallback sets a global fallback handler for text that is not a command.
func (r *Registry) SetTextFallback(h tele.HandlerFunc) {
	r.textFallback = h
}

// TextFallback returns the current text fallback handler.
func (r *Registry) TextFallback() tele.HandlerFunc {
	return r.textFallback
}

// InitBotCommands publishes the visible commands to the Telegram command menu.
func InitBotCommands(bot *tele.Bot, reg *Registry) {
	list := reg.ListCommands(true)
	if err := bot.SetCommands(list); err != nil {
		logger.TWire.LogAttrs(context.Background(), slog.LevelError, "register.commands.set_failed",
			slog.String("err", err.Error()),
		)
		return
	}
	logger.TWire.LogAttrs(context.Background(), slog.LevelInfo, "register.commands.set",
		slog.Int("commands", len(list)),
	)
}
