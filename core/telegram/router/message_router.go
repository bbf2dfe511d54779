package router

import (
	"time"

	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/nezabudrama/core/telegram"
	"github.com/m3rciful/nezabudrama/core/telegram/middleware"
)

// TextOptions controls fallback behaviour for text and media updates.
type TextOptions struct {
	// UnknownMedia answers photos, documents, stickers and other non-text messages.
	UnknownMedia tele.HandlerFunc
}

// mediaEndpoints lists the non-text message kinds routed to UnknownMedia.
var mediaEndpoints = []string{
	tele.OnPhoto, tele.OnDocument, tele.OnSticker, tele.OnVideo,
	tele.OnVoice, tele.OnAudio, tele.OnAnimation, tele.OnLocation, tele.OnContact,
}

// TextRoutes routes free text to the matching command (for forms telebot did not
// match as an endpoint) and otherwise to the registry's text fallback.
func TextRoutes(reg *tg.Registry, opts TextOptions) []tg.Route {
	textHandler := func(c tele.Context) error {
		start := time.Now()

		if reg != nil {
			if key, cmd, _, ok := reg.LookupCommand(c.Text()); ok && cmd.Handler != nil && !cmd.AdminOnly {
				return handleWithSummary(c, normalizeHandlerName(key), start, func() error {
					return cmd.Handler(c)
				})
			}
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "text", start, func() error {
					return fb(c)
				})
			}
		}
		logHandlerSummary(c, "unknown_text", start, "skip", nil)
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		if opts.UnknownMedia == nil {
			logHandlerSummary(c, "unexpected_media", start, "skip", nil)
			return nil
		}
		return handleWithSummary(c, "unexpected_media", start, func() error {
			return opts.UnknownMedia(c)
		})
	}

	routes := []tg.Route{{
		Endpoint: tele.OnText,
		Handler:  middleware.RecoverMiddleware(middleware.LoggerMiddleware(textHandler)),
	}}
	wrappedMedia := middleware.RecoverMiddleware(middleware.LoggerMiddleware(mediaHandler))
	for _, ep := range mediaEndpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: wrappedMedia})
	}
	return routes
}
