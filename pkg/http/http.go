// Package http provides the rate-limited, retrying HTTP client the
// registry clients share. Retry of transient failures lives here, at the
// transport edge; the resolution core never retries anything itself.
package http

import (
	"context"
	"net/http"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"
)

// RLHTTPClient is a rate limited HTTP client.
type RLHTTPClient struct {
	Client      *retryablehttp.Client
	Ratelimiter *rate.Limiter
}

// Do sends an HTTP request, waiting for rate limiter clearance first.
func (c *RLHTTPClient) Do(req *retryablehttp.Request) (*http.Response, error) {
	if err := c.Ratelimiter.Wait(req.Context()); err != nil {
		return nil, err
	}
	return c.Client.Do(req)
}

// NewClient returns a rate limited http client with sane retry defaults.
func NewClient(rl *rate.Limiter) *RLHTTPClient {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil
	// A 429 is surfaced to the caller instead of retried; the limiter in
	// front of the client is the throttling policy.
	client.CheckRetry = func(ctx context.Context, resp *http.Response, err error) (bool, error) {
		if resp != nil && resp.StatusCode == http.StatusTooManyRequests {
			return false, nil
		}
		return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
	}
	return &RLHTTPClient{
		Client:      client,
		Ratelimiter: rl,
	}
}
