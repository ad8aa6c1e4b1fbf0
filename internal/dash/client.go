package dash

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"mpdharvest/internal/logger"
)

// maxRedirects bounds the redirects followed while fetching a manifest.
const maxRedirects = 5

// Client fetches manifests from the origin server.
type Client struct {
	httpClient *http.Client
	logger     logger.Logger
	userAgent  string
}

// NewClient creates a new DASH client. Redirects are followed by the client
// itself so that the final manifest location is known; segment URLs are
// resolved against it.
func NewClient(log logger.Logger, userAgent string, timeout time.Duration) *Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.ResponseHeaderTimeout = timeout
	transport.MaxIdleConnsPerHost = 32

	return &Client{
		httpClient: &http.Client{
			Transport: transport,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		logger:    log,
		userAgent: userAgent,
	}
}

// HttpClient returns the underlying http.Client instance.
func (c *Client) HttpClient() *http.Client {
	return c.httpClient
}

// FetchManifest retrieves the manifest at manifestURL. It returns the body
// and the URL the manifest was finally served from.
func (c *Client) FetchManifest(ctx context.Context, manifestURL string) ([]byte, string, error) {
	c.logger.Debugf("Fetching MPD from URL: %s", manifestURL)

	finalURL := manifestURL
	for redirects := 0; ; redirects++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, finalURL, nil)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create new request for MPD: %w", err)
		}
		if c.userAgent != "" {
			req.Header.Set("User-Agent", c.userAgent)
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch MPD from %s: %w", finalURL, err)
		}

		if isRedirect(resp.StatusCode) {
			location, err := resp.Location()
			resp.Body.Close()
			if err != nil {
				return nil, "", fmt.Errorf("redirect location error: %w", err)
			}
			if redirects == maxRedirects {
				return nil, "", fmt.Errorf("failed to fetch MPD: more than %d redirects from %s", maxRedirects, manifestURL)
			}
			finalURL = location.String()
			c.logger.Debugf("Redirected to: %s", finalURL)
			continue
		}

		data, err := readOK(resp)
		if err != nil {
			return nil, "", fmt.Errorf("failed to fetch MPD from %s: %w", finalURL, err)
		}
		c.logger.Debugf("Successfully fetched MPD (%d bytes) from %s", len(data), finalURL)
		return data, finalURL, nil
	}
}

func isRedirect(code int) bool {
	switch code {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	}
	return false
}

// readOK reads and closes the body of a 200 response.
func readOK(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("received status code %d", resp.StatusCode)
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}
	return data, nil
}
