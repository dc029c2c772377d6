package upstream

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"
)

const versionsService = "Version feed"

// VersionsClient proxies the executor version feed with a small in-process
// cache so page loads do not hammer the feed.
type VersionsClient struct {
	feedURL   string
	userAgent string
	cacheTTL  time.Duration
	http      *http.Client

	mu       sync.Mutex
	cached   json.RawMessage
	cachedAt time.Time
}

func NewVersionsClient(feedURL string) *VersionsClient {
	if feedURL == "" {
		feedURL = "https://weao.xyz/api/versions/current"
	}

	return &VersionsClient{
		feedURL:   feedURL,
		userAgent: "WEAO-3PService",
		cacheTTL:  5 * time.Minute,
		http:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *VersionsClient) Current(ctx context.Context) (json.RawMessage, *Error) {
	c.mu.Lock()
	if c.cached != nil && time.Since(c.cachedAt) < c.cacheTTL {
		cached := c.cached
		c.mu.Unlock()
		return cached, nil
	}
	c.mu.Unlock()

	req, err := newJSONRequest(ctx, http.MethodGet, c.feedURL, nil)
	if err != nil {
		return nil, NewTransportError(versionsService)
	}
	req.Header.Set("User-Agent", c.userAgent)

	var payload json.RawMessage
	status, body, uerr := doJSON(c.http, req, versionsService, &payload)
	if uerr != nil {
		return nil, uerr
	}

	if status >= 400 {
		return nil, NormalizeStatus(status, providerMessage(body))
	}

	c.mu.Lock()
	c.cached = payload
	c.cachedAt = time.Now()
	c.mu.Unlock()

	return payload, nil
}
