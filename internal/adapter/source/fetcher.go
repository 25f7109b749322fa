// Package source reads raw TabNet exports from disk or over HTTP.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/couchcryptid/storm-data-shared/retry"
	"golang.org/x/text/encoding/charmap"
)

// maxExportSize bounds a single export. The municipality table is a few MB.
const maxExportSize = 64 << 20

// Remote exports are retried on transport errors and 5xx/429 responses.
const (
	maxAttempts    = 3
	initialBackoff = 500 * time.Millisecond
	maxBackoff     = 5 * time.Second
)

// ErrTooLarge is returned for exports above maxExportSize.
var ErrTooLarge = errors.New("export too large")

// Fetcher implements domain.SourceFetcher for local files and http(s) URLs.
type Fetcher struct {
	httpClient *http.Client
	logger     *slog.Logger
	attempts   int
	backoff    time.Duration
}

// NewFetcher creates a fetcher whose HTTP requests time out after timeout.
func NewFetcher(timeout time.Duration, logger *slog.Logger) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		attempts:   maxAttempts,
		backoff:    initialBackoff,
	}
}

// Fetch returns the export text at location. Exports that are not valid UTF-8
// are assumed to be Windows-1252, the other encoding TabNet offers.
func (f *Fetcher) Fetch(ctx context.Context, location string) (string, error) {
	var (
		data []byte
		err  error
	)
	if strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://") {
		data, err = f.fetchHTTP(ctx, location)
	} else {
		data, err = readFile(location)
	}
	if err != nil {
		return "", err
	}

	if !utf8.Valid(data) {
		f.logger.Debug("export is not utf-8, decoding as windows-1252", "location", location)
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return "", fmt.Errorf("decode %s: %w", location, err)
		}
		data = decoded
	}
	return string(data), nil
}

func (f *Fetcher) fetchHTTP(ctx context.Context, location string) ([]byte, error) {
	backoff := f.backoff
	for attempt := 1; ; attempt++ {
		data, retryable, err := f.fetchOnce(ctx, location)
		if err == nil {
			return data, nil
		}
		if !retryable || ctx.Err() != nil || attempt >= f.attempts {
			return nil, err
		}
		f.logger.Warn("export fetch failed, retrying",
			"location", location, "attempt", attempt, "backoff", backoff, "error", err)
		if !retry.SleepWithContext(ctx, backoff) {
			return nil, fmt.Errorf("fetch %s: %w", location, ctx.Err())
		}
		backoff = retry.NextBackoff(backoff, maxBackoff)
	}
}

// fetchOnce performs one GET and reports whether a failure is worth retrying.
func (f *Fetcher) fetchOnce(ctx context.Context, location string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
	if err != nil {
		return nil, false, fmt.Errorf("create request: %w", err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("fetch %s: %w", location, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		retryable := resp.StatusCode >= http.StatusInternalServerError || resp.StatusCode == http.StatusTooManyRequests
		return nil, retryable, fmt.Errorf("fetch %s: status %d", location, resp.StatusCode)
	}
	data, err := readLimited(resp.Body, location)
	return data, false, err
}

func readFile(path string) ([]byte, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export: %w", err)
	}
	defer fh.Close()
	return readLimited(fh, path)
}

func readLimited(r io.Reader, location string) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxExportSize+1))
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", location, err)
	}
	if len(data) > maxExportSize {
		return nil, fmt.Errorf("%w: %s", ErrTooLarge, location)
	}
	return data, nil
}
