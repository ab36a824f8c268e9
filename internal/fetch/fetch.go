// Package fetch retrieves the rendered content of the monitored page.
package fetch

import (
	"context"
	"net/http"
	"time"
)

// DefaultUserAgent mimics a desktop browser; the monitored site serves a
// degraded page to obvious bots.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Fetcher returns the fully rendered textual content of the page at url.
// Any network or HTTP failure surfaces as an error; callers treat an error
// or empty content as "page unavailable this run".
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Config controls fetcher behavior shared by both implementations.
type Config struct {
	UserAgent string
	Timeout   time.Duration
}

func (c Config) userAgent() string {
	if c.UserAgent != "" {
		return c.UserAgent
	}
	return DefaultUserAgent
}

func (c Config) timeout() time.Duration {
	if c.Timeout > 0 {
		return c.Timeout
	}
	return 30 * time.Second
}

// browserHeaders returns the request headers sent alongside the user agent.
func browserHeaders() http.Header {
	h := http.Header{}
	h.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	h.Set("Accept-Language", "en-US,en;q=0.5")
	h.Set("Connection", "keep-alive")
	return h
}
