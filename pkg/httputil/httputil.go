package httputil

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Client wraps an http.Client with the small request surface needed to
// talk to an explorer endpoint.
type Client struct {
	inner *http.Client
}

// NewClient returns a Client with the given per-request timeout.
func NewClient(timeout time.Duration) *Client {
	return &Client{
		inner: &http.Client{Timeout: timeout},
	}
}

// Get performs a GET request against the given URL and returns the status
// code along with the response body as a string. The context cancels the
// request while in flight.
func (c *Client) Get(
	ctx context.Context, url string, header map[string]string,
) (int, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, "", err
	}
	for key, value := range header {
		req.Header.Set(key, value)
	}

	rs, err := c.inner.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer rs.Body.Close()

	bodyBytes, err := io.ReadAll(rs.Body)
	if err != nil {
		return 0, "", err
	}

	return rs.StatusCode, string(bodyBytes), nil
}
