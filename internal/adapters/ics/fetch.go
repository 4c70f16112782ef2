// Package ics reads holiday calendar feeds and writes coach week calendars.
package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"
)

// DefaultMaxBytes caps a feed body; public holiday feeds are a few kilobytes.
const DefaultMaxBytes = 2 << 20

// ErrFeedTooLarge is returned when a feed body exceeds the size cap.
var ErrFeedTooLarge = errors.New("ics feed exceeds size limit")

type cacheEntry struct {
	etag         string
	lastModified string
	body         []byte
}

// Fetcher downloads ICS feeds with conditional requests.
// The last good body per URL is kept in memory and served on 304 or upstream failure.
type Fetcher struct {
	client   *http.Client
	maxBytes int64

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewFetcher creates a Fetcher. A nil client gets a 15 second timeout.
func NewFetcher(client *http.Client) *Fetcher {
	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}
	return &Fetcher{
		client:   client,
		maxBytes: DefaultMaxBytes,
		cache:    make(map[string]cacheEntry),
	}
}

// Fetch returns the body of the feed at rawURL.
// PRE: rawURL is an absolute http(s) URL
// POST: Returns fresh or cached body; error only when neither is available
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	if rawURL == "" {
		return nil, errors.New("feed URL is empty")
	}
	f.mu.Lock()
	cached, hasCache := f.cache[rawURL]
	f.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if cached.etag != "" {
		req.Header.Set("If-None-Match", cached.etag)
	}
	if cached.lastModified != "" {
		req.Header.Set("If-Modified-Since", cached.lastModified)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		if hasCache {
			slog.Warn("ics_fetch_failed_using_cache", "url", redactURL(rawURL), "error", err)
			return cached.body, nil
		}
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBytes+1))
		if err != nil {
			return nil, err
		}
		if int64(len(body)) > f.maxBytes {
			return nil, ErrFeedTooLarge
		}
		f.mu.Lock()
		f.cache[rawURL] = cacheEntry{
			etag:         resp.Header.Get("ETag"),
			lastModified: resp.Header.Get("Last-Modified"),
			body:         body,
		}
		f.mu.Unlock()
		slog.Info("ics_fetch", "url", redactURL(rawURL), "bytes", len(body))
		return body, nil
	case http.StatusNotModified:
		if !hasCache {
			return nil, errors.New("received 304 Not Modified without a cached body")
		}
		return cached.body, nil
	default:
		if hasCache {
			slog.Warn("ics_fetch_failed_using_cache", "url", redactURL(rawURL), "status", resp.StatusCode)
			return cached.body, nil
		}
		return nil, fmt.Errorf("fetch %s: %s", redactURL(rawURL), resp.Status)
	}
}

// redactURL drops query strings and credentials; private feed URLs embed secrets there.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "invalid-url"
	}
	u.User = nil
	u.RawQuery = ""
	return u.String()
}
