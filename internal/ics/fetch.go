package ics

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/teemow/calview/internal/instrumentation"
)

// maxFeedSize bounds the feed body read into memory.
const maxFeedSize = 16 << 20

// cacheMeta is the HTTP cache metadata for the feed.
type cacheMeta struct {
	URL          string    `json:"url"`
	ETag         string    `json:"etag,omitempty"`
	LastModified string    `json:"last_modified,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// fetch returns the current feed body. It sends a conditional request when a
// cached copy exists and falls back to the cached copy when the server is
// unreachable or answers with an error.
func (s *Source) fetch(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	meta, cached := s.meta, s.body
	s.mu.Unlock()

	if cached == nil && s.cacheDir != "" {
		meta, cached = s.loadDiskCache()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build ICS request: %w", err)
	}
	req.Header.Set("Accept", "text/calendar")
	if cached != nil {
		if meta.ETag != "" {
			req.Header.Set("If-None-Match", meta.ETag)
		}
		if meta.LastModified != "" {
			req.Header.Set("If-Modified-Since", meta.LastModified)
		}
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return s.fallback(ctx, cached, fmt.Errorf("ICS fetch failed: %w", err))
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedSize))
		if err != nil {
			return s.fallback(ctx, cached, fmt.Errorf("failed to read ICS body: %w", err))
		}
		meta = cacheMeta{
			URL:          s.url,
			ETag:         resp.Header.Get("ETag"),
			LastModified: resp.Header.Get("Last-Modified"),
			UpdatedAt:    time.Now().UTC(),
		}
		s.store(meta, body)
		s.metrics.RecordICSFetch(ctx, instrumentation.FetchResultFetched)
		s.logger.Debug("ics fetch success", "url", redactURL(s.url), "bytes", len(body))
		return body, nil

	case http.StatusNotModified:
		if cached == nil {
			return nil, errors.New("received 304 Not Modified but no cached body available")
		}
		s.store(meta, cached)
		s.metrics.RecordICSFetch(ctx, instrumentation.FetchResultNotModified)
		s.logger.Debug("ics feed not modified; using cache", "url", redactURL(s.url))
		return cached, nil

	default:
		return s.fallback(ctx, cached, fmt.Errorf("ICS fetch failed: %s", resp.Status))
	}
}

func (s *Source) fallback(ctx context.Context, cached []byte, err error) ([]byte, error) {
	s.metrics.RecordICSFetch(ctx, instrumentation.FetchResultError)
	if cached == nil {
		return nil, err
	}
	s.logger.Warn("ics fetch failed, using cached body", "url", redactURL(s.url), "error", err.Error())
	return cached, nil
}

func (s *Source) store(meta cacheMeta, body []byte) {
	s.mu.Lock()
	s.meta, s.body = meta, body
	s.mu.Unlock()

	if s.cacheDir == "" {
		return
	}
	if err := s.saveDiskCache(meta, body); err != nil {
		s.logger.Warn("ics cache save failed", "url", redactURL(s.url), "error", err.Error())
	}
}

func (s *Source) cachePath() string {
	sum := sha256.Sum256([]byte(s.url))
	return filepath.Join(s.cacheDir, hex.EncodeToString(sum[:8]))
}

func (s *Source) loadDiskCache() (cacheMeta, []byte) {
	dir := s.cachePath()

	var meta cacheMeta
	data, err := os.ReadFile(filepath.Join(dir, "meta.json"))
	if err != nil || json.Unmarshal(data, &meta) != nil || meta.URL != s.url {
		return cacheMeta{}, nil
	}
	body, err := os.ReadFile(filepath.Join(dir, "body.ics"))
	if err != nil {
		return cacheMeta{}, nil
	}
	return meta, body
}

func (s *Source) saveDiskCache(meta cacheMeta, body []byte) error {
	dir := s.cachePath()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}

	// Body first so meta never points at a missing body.
	if err := os.WriteFile(filepath.Join(dir, "body.ics"), body, 0o600); err != nil {
		return err
	}
	data, err := json.MarshalIndent(&meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, "meta.json"), data, 0o600)
}

// redactURL keeps only the scheme and host of a feed URL. Private feed URLs
// carry their access token in the path or query.
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "ics://...(redacted)"
	}
	return u.Scheme + "://" + u.Host + "/...(redacted)"
}
