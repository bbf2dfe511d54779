package router

import (
	"log/slog"
	"time"

	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/nezabudrama/core/logger"
	tg "github.com/m3rciful/nezabudrama/core/telegram"
	"github.com/m3rciful/nezabudrama/core/telegram/middleware"
)

// CallbackRoute hands every callback query, with its raw data, to the registry's callback handler.
func CallbackRoute(reg *tg.Registry) tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		cb := c.Callback()
		if cb == nil {
			return nil
		}
		key := middleware.CallbackKey(cb.Data)
		name := "callback." + normalizeHandlerName(key)
		h := reg.CallbackHandler()
		return handleWithSummary(c, name, start, func() error {
			return h(c)
		}, slog.String("cb_key", logger.SanitizeLimit(key, 64)))
	}
	return tg.Route{
		Endpoint: tele.OnCallback,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(handler)),
	}
}
