package telegram

import (
	"testing"
	"time"

	tele "gopkg.in/telebot.v4"
)

func TestBuildPoller(t *testing.T) {
	p := BuildPoller(PollerOptions{RunMode: "WEBHOOK", Webhook: WebhookOptions{Listen: "0.0.0.0", Port: 8443, URL: "https://bot.example"}})
	wh, ok := p.(*tele.Webhook)
	if !ok {
		t.Fatalf("expected webhook poller, got %T", p)
	}
	if wh.Listen != "0.0.0.0:8443" || wh.Endpoint.PublicURL != "https://bot.example" {
		t.Fatalf("unexpected webhook settings: %+v", wh)
	}

	p = BuildPoller(PollerOptions{RunMode: "longpoll"})
	lp, ok := p.(*tele.LongPoller)
	if !ok {
		t.Fatalf("expected long poller, got %T", p)
	}
	if lp.Timeout != 10*time.Second {
		t.Fatalf("default timeout = %s", lp.Timeout)
	}
	if got := BuildPoller(PollerOptions{LongPollTimeoutSeconds: 25}).(*tele.LongPoller).Timeout; got != 25*time.Second {
		t.Fatalf("timeout = %s", got)
	}
}
