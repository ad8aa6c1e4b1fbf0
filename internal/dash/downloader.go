package dash

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"mpdharvest/internal/logger"
)

// SegmentDownloader is responsible for downloading individual media segments with robust retry logic.
type SegmentDownloader struct {
	httpClient *http.Client
	logger     logger.Logger
	userAgent  string

	MaxRetries     int
	RetryDelay     time.Duration
	RequestTimeout time.Duration
}

// NewSegmentDownloader creates a new downloader.
func NewSegmentDownloader(client *http.Client, log logger.Logger, userAgent string) *SegmentDownloader {
	return &SegmentDownloader{
		httpClient:     client,
		logger:         log,
		userAgent:      userAgent,
		MaxRetries:     3,
		RetryDelay:     100 * time.Millisecond,
		RequestTimeout: 30 * time.Second,
	}
}

// Download fetches url with a per-attempt timeout, retrying failed attempts.
func (sd *SegmentDownloader) Download(ctx context.Context, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= sd.MaxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(sd.RetryDelay):
			}
		}

		sd.logger.Debugf("Downloading %s (Attempt %d/%d)", url, attempt, sd.MaxRetries)
		data, err := sd.attempt(ctx, url)
		if err == nil {
			sd.logger.Debugf("Successfully downloaded %s", url)
			return data, nil
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		lastErr = fmt.Errorf("download attempt %d failed for %s: %w", attempt, url, err)
		sd.logger.Warnf("%v", lastErr)
	}

	return nil, fmt.Errorf("failed to download %s after %d attempts: %w", url, sd.MaxRetries, lastErr)
}

func (sd *SegmentDownloader) attempt(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, sd.RequestTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	if sd.userAgent != "" {
		req.Header.Set("User-Agent", sd.userAgent)
	}

	resp, err := sd.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	return readOK(resp)
}
