// Package poster turns public cloud-disk links into direct image links.
package poster

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m3rciful/nezabudrama/core/logger"
	"github.com/m3rciful/nezabudrama/core/telegram/netutil"
)

const (
	// DefaultEndpoint is the Yandex Disk public download API.
	DefaultEndpoint = "https://cloud-api.yandex.net/v1/disk/public/resources/download"
	// DefaultPrefix is the shape of a Yandex Disk public link.
	DefaultPrefix = "https://disk.yandex.ru/"
)

var (
	// ErrUnsupportedLink is returned for links outside the allowed prefixes.
	ErrUnsupportedLink = errors.New("poster: unsupported link")
	// ErrNoHref is returned when the API answers without a direct link.
	ErrNoHref = errors.New("poster: no direct link in response")
)

// Options configures a Resolver. Zero values select the Yandex defaults.
type Options struct {
	Endpoint        string
	AllowedPrefixes []string
	Timeout         time.Duration
	Client          *http.Client
}

// Resolver asks the disk API for the direct download link of a public file.
type Resolver struct {
	client   *http.Client
	endpoint string
	prefixes []string
}

// NewResolver builds a Resolver.
func NewResolver(opts Options) *Resolver {
	if opts.Endpoint == "" {
		opts.Endpoint = DefaultEndpoint
	}
	if len(opts.AllowedPrefixes) == 0 {
		opts.AllowedPrefixes = []string{DefaultPrefix}
	}
	if opts.Client == nil {
		opts.Client = netutil.NewClient(netutil.ClientOptions{Timeout: opts.Timeout, RetryAttempts: 1})
	}
	return &Resolver{client: opts.Client, endpoint: opts.Endpoint, prefixes: opts.AllowedPrefixes}
}

// Supported reports whether link has one of the allowed prefixes.
func (r *Resolver) Supported(link string) bool {
	for _, p := range r.prefixes {
		if strings.HasPrefix(link, p) {
			return true
		}
	}
	return false
}

// Resolve returns the direct link for the public link.
func (r *Resolver) Resolve(ctx context.Context, link string) (string, error) {
	link = strings.TrimSpace(link)
	if !r.Supported(link) {
		return "", ErrUnsupportedLink
	}
	start := time.Now()
	href, err := r.fetch(ctx, link)
	attrs := []slog.Attr{
		slog.String("status", logger.Status(err)),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	}
	if err != nil {
		logger.Warn(ctx, "poster", "poster.resolve", append(attrs, slog.String("err", logger.SanitizeLimit(err.Error(), 256)))...)
		return "", err
	}
	logger.Debug(ctx, "poster", "poster.resolve", attrs...)
	return href, nil
}

func (r *Resolver) fetch(ctx context.Context, link string) (string, error) {
	u, err := url.Parse(r.endpoint)
	if err != nil {
		return "", fmt.Errorf("poster: endpoint: %w", err)
	}
	q := u.Query()
	q.Set("public_key", link)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("poster: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("poster: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return "", fmt.Errorf("poster: api status %d", resp.StatusCode)
	}
	var body struct {
		Href string `json:"href"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return "", fmt.Errorf("poster: decode response: %w", err)
	}
	if body.Href == "" {
		return "", ErrNoHref
	}
	return body.Href, nil
}
