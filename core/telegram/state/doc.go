// Package state stores per-user conversation sessions for Telegram bots and
// serializes concurrent updates from the same user.
// It is domain-agnostic: the session type is supplied by the bot.
package state
