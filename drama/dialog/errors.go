package dialog

import (
	"errors"
	"fmt"

	"github.com/m3rciful/nezabudrama/drama/render"
	"github.com/m3rciful/nezabudrama/drama/token"
)

// ValidationError rejects user input. The current step is prompted again with Screen
// and nothing collected so far changes.
type ValidationError struct {
	Screen render.Screen
}

func (e *ValidationError) Error() string { return "dialog: invalid input: " + e.Screen.Text }
func (e *ValidationError) Code() string  { return "validation" }

// AuthorizationError stops a privileged flow for a user outside the admin allow-list.
type AuthorizationError struct {
	Message string
}

func (e *AuthorizationError) Error() string { return "dialog: denied: " + e.Message }
func (e *AuthorizationError) Code() string  { return "denied" }

// NotFoundError ends the current step with Screen, which must offer a way back.
type NotFoundError struct {
	Screen render.Screen
}

func (e *NotFoundError) Error() string { return "dialog: not found: " + e.Screen.Text }
func (e *NotFoundError) Code() string  { return "not_found" }

// TransientStoreError wraps a failed repository call. Writes set Retry so the step can be
// repeated; reads leave it nil and the flow ends.
type TransientStoreError struct {
	Op    string
	Err   error
	Retry *render.Screen
}

func (e *TransientStoreError) Error() string { return fmt.Sprintf("dialog: %s: %v", e.Op, e.Err) }
func (e *TransientStoreError) Unwrap() error { return e.Err }
func (e *TransientStoreError) Code() string  { return "store" }

// TokenError reports a button payload that did not decode.
type TokenError struct {
	Outcome token.Outcome
	Reason  string
}

func (e *TokenError) Error() string { return "dialog: token " + e.Outcome.String() + ": " + e.Reason }
func (e *TokenError) Code() string  { return e.Outcome.String() }

// ErrMissingContext is returned when a tap refers to search state the session no longer has.
var ErrMissingContext = errors.New("dialog: search context missing")

// PanicError carries a recovered panic out of a flow handler.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string { return fmt.Sprintf("dialog: panic: %v", e.Value) }
func (e *PanicError) Code() string  { return "panic" }

func invalid(s render.Screen) error { return &ValidationError{Screen: s} }

func notFound(s render.Screen) error { return &NotFoundError{Screen: s} }

func readFailed(op string, err error) error { return &TransientStoreError{Op: op, Err: err} }

func writeFailed(op string, err error, retry render.Screen) error {
	return &TransientStoreError{Op: op, Err: err, Retry: &retry}
}
