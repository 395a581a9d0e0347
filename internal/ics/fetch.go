package ics

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"
)

const (
	defaultAttempts   = 3
	initialBackoff    = 500 * time.Millisecond
	maxBackoff        = 8 * time.Second
	defaultTimeout    = 10 * time.Second
	maxAcceptableSize = 8 << 20 // calendar feeds beyond 8 MiB are not legitimate
)

// Fetcher retrieves the iCal feed over HTTPS with a per-attempt timeout and
// bounded exponential backoff between attempts.
type Fetcher struct {
	client   *http.Client
	url      string
	attempts int
}

func NewFetcher(feedURL string, timeout time.Duration, attempts int) *Fetcher {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	if attempts <= 0 {
		attempts = defaultAttempts
	}
	return &Fetcher{
		client:   &http.Client{Timeout: timeout},
		url:      feedURL,
		attempts: attempts,
	}
}

// Fetch returns the raw ICS text. Network failures and 5xx responses are
// retried; an empty body or a 4xx response fails immediately.
func (f *Fetcher) Fetch(ctx context.Context) (string, error) {
	if strings.TrimSpace(f.url) == "" {
		return "", errors.New("ics feed url is not configured")
	}

	backoff := retry.WithMaxRetries(uint64(f.attempts-1),
		retry.WithCappedDuration(maxBackoff, retry.NewExponential(initialBackoff)))

	var body string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		fetched, attemptErr := f.fetchOnce(ctx)
		if attemptErr != nil {
			return attemptErr
		}
		body = fetched
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("fetch ics feed after %d attempts: %w", f.attempts, err)
	}
	return body, nil
}

func (f *Fetcher) fetchOnce(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("Accept", "text/calendar")

	resp, err := f.client.Do(req)
	if err != nil {
		slog.Debug("ics fetch attempt failed", "err", err)
		return "", retry.RetryableError(err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		statusErr := fmt.Errorf("ics feed returned %s", resp.Status)
		if resp.StatusCode >= 500 {
			return "", retry.RetryableError(statusErr)
		}
		return "", statusErr
	}

	payload, err := io.ReadAll(io.LimitReader(resp.Body, maxAcceptableSize))
	if err != nil {
		return "", retry.RetryableError(fmt.Errorf("read ics body: %w", err))
	}

	if strings.TrimSpace(string(payload)) == "" {
		return "", errors.New("ics feed body is empty")
	}
	return string(payload), nil
}
