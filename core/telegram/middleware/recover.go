package middleware

import (
	"fmt"
	"log/slog"
	"runtime/debug"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/nezabudrama/core/logger"
)

// PanicHook is notified after a handler panic has been recovered and logged.
type PanicHook func(c tele.Context, recovered any, stack []byte)

// RecoverMiddleware catches panics in handlers and prevents the bot from crashing.
func RecoverMiddleware(next tele.HandlerFunc) tele.HandlerFunc {
	return RecoverWith(nil)(next)
}

// RecoverWith recovers panics, logs them and passes them to hook when set.
// The recovered panic is returned as an error so the handler summary marks the update failed.
func RecoverWith(hook PanicHook) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) (err error) {
			defer func() {
				r := recover()
				if r == nil {
					return
				}
				stack := debug.Stack()
				logger.TG.Error("panic recovered",
					slog.String("event", "tg.panic"),
					slog.Any("err", r),
					slog.String("stack", string(stack)),
				)
				if hook != nil {
					hook(c, r, stack)
				}
				err = fmt.Errorf("panic: %v", r)
			}()
			return next(c)
		}
	}
}
