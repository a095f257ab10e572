package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/classpulse/classpulse-backend/internal/apperror"
	"github.com/classpulse/classpulse-backend/internal/config"
	"github.com/classpulse/classpulse-backend/internal/credential"
	"github.com/rs/zerolog"
)

// Doer abstracts *http.Client so tests can inject failing transports.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client wraps every remote platform call with credential validation,
// error classification and retry-with-backoff. All typed fetchers
// (courses, coursework, submissions, files) go through execute.
type Client struct {
	http       Doer
	creds      *credential.Store
	baseURL    string
	driveURL   string
	provider   string
	maxRetries int
	// sleep is injectable so tests can assert backoff without waiting.
	sleep func(ctx context.Context, d time.Duration) error
	log   zerolog.Logger
}

// NewClient creates a platform Client. MaxRetries below 1 is clamped
// to 1 so every call makes at least one attempt.
func NewClient(httpClient Doer, creds *credential.Store, cfg *config.Config, log zerolog.Logger) *Client {
	maxRetries := cfg.MaxRetries
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Client{
		http:       httpClient,
		creds:      creds,
		baseURL:    cfg.PlatformBaseURL,
		driveURL:   cfg.DriveBaseURL,
		provider:   cfg.Provider,
		maxRetries: maxRetries,
		sleep:      sleepCtx,
		log:        log.With().Str("component", "platform_client").Logger(),
	}
}

// execute performs one remote call with up to maxRetries attempts.
// The credential is re-read before every attempt, so a missing token
// fails fast without network dispatch and a disconnect that lands
// during a backoff wait fails the next attempt instead of dispatching
// with stale authorization. Only transient failures (429, transport
// errors, 5xx) are retried; the wait before re-attempt grows as
// 2^attempt seconds. After exhausting retries the last transient error
// is surfaced.
func (c *Client) execute(ctx context.Context, userID, op, method, url string, body []byte, contentType string) ([]byte, error) {
	var lastErr error
	for attempt := 1; attempt <= c.maxRetries; attempt++ {
		token, err := c.creds.Get(ctx, userID, c.provider)
		if err != nil {
			return nil, err
		}

		data, err := c.attempt(ctx, userID, token, op, method, url, body, contentType)
		if err == nil {
			return data, nil
		}
		if !apperror.Retryable(err) {
			return nil, err
		}

		lastErr = err
		c.log.Warn().
			Str("op", op).
			Int("attempt", attempt).
			Err(err).
			Msg("Transient platform failure")

		if serr := c.sleep(ctx, backoffDelay(attempt)); serr != nil {
			return nil, serr
		}
	}
	return nil, lastErr
}

// attempt performs a single HTTP round trip and classifies the outcome.
func (c *Client) attempt(ctx context.Context, userID, token, op, method, url string, body []byte, contentType string) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, apperror.New(apperror.KindInvalidResponse, op, err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperror.New(apperror.KindTransient, op, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperror.New(apperror.KindTransient, op, err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return data, nil

	case resp.StatusCode == http.StatusUnauthorized:
		// Invalidate immediately so in-flight and subsequent calls fail
		// fast instead of repeating the same failure.
		if cerr := c.creds.Clear(ctx, userID, c.provider); cerr != nil {
			c.log.Error().Err(cerr).Str("op", op).Msg("Failed to clear expired credential")
		}
		return nil, apperror.New(apperror.KindAuthExpired, op, fmt.Errorf("status %d", resp.StatusCode))

	case resp.StatusCode == http.StatusForbidden:
		return nil, apperror.New(apperror.KindForbidden, op, fmt.Errorf("status %d", resp.StatusCode))

	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, apperror.New(apperror.KindTransient, op, fmt.Errorf("status %d", resp.StatusCode))

	default:
		return nil, apperror.New(apperror.KindInvalidResponse, op, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}
}

// backoffDelay returns the wait before re-attempting after the given
// attempt number: 2s, 4s, 8s, ...
func backoffDelay(attempt int) time.Duration {
	return time.Duration(1<<attempt) * time.Second
}

// sleepCtx blocks for d or until the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// decodeObject parses data as a JSON object into out. Anything else
// (an array, a bare scalar, malformed JSON) is a contract violation
// with the remote service and reported as InvalidResponse.
func decodeObject(data []byte, op string, out interface{}) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return apperror.New(apperror.KindInvalidResponse, op, fmt.Errorf("expected JSON object"))
	}
	if err := json.Unmarshal(trimmed, out); err != nil {
		return apperror.New(apperror.KindInvalidResponse, op, err)
	}
	return nil
}
