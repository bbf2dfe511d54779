// Package render builds the bot's screens and defines the transport contract they are drawn through.
package render

import (
	"context"
	"errors"
)

// Button is an inline button carrying an encoded action token.
type Button struct {
	Text string
	Data string
}

// Screen is one message: text, optional inline keyboard and an optional photo.
type Screen struct {
	Text string
	// Markdown selects legacy Markdown parsing; user supplied text inside must be escaped.
	Markdown bool
	Rows     [][]Button
	// PhotoURL sends the screen as a photo with Text as its caption.
	PhotoURL string
}

// EditOutcome classifies an edit attempt.
type EditOutcome int

const (
	Applied EditOutcome = iota
	// NoOpIdentical means the message already shows exactly this content.
	NoOpIdentical
	Failed
)

func (o EditOutcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case NoOpIdentical:
		return "noop_identical"
	}
	return "failed"
}

// EditResult is the outcome of FrontEnd.Edit.
type EditResult struct {
	Outcome EditOutcome
	// Uneditable marks failures caused by the target message itself, such as a photo
	// or a message that no longer exists. A new message can replace it.
	Uneditable bool
	Err        error
}

// ErrUneditable is reported for targets that cannot be edited in place.
var ErrUneditable = errors.New("render: message cannot be edited")

// FrontEnd draws screens for the user of the current update.
// Edit and Delete act on the message the update originated from.
type FrontEnd interface {
	Reply(ctx context.Context, s Screen) error
	Edit(ctx context.Context, s Screen) EditResult
	Delete(ctx context.Context) error
	// Answer acknowledges a button tap; text may be empty.
	Answer(ctx context.Context, text string) error
}

// EditOrReply redraws the current message with s. An edit that would not change anything
// is absorbed, an uneditable target gets a fresh message and any other failure is returned.
// Photo screens are always sent as new messages.
func EditOrReply(ctx context.Context, fe FrontEnd, s Screen) error {
	if s.PhotoURL != "" {
		return fe.Reply(ctx, s)
	}
	r := fe.Edit(ctx, s)
	switch r.Outcome {
	case Applied, NoOpIdentical:
		return nil
	}
	if r.Uneditable {
		return fe.Reply(ctx, s)
	}
	if r.Err == nil {
		return errors.New("render: edit failed")
	}
	return r.Err
}
