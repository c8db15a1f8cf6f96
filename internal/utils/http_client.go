package utils

import (
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
)

const userAgent = "go-farrier-sync"

// HTTPClient is the resty client shared by the server adapter and the
// offline cache.
type HTTPClient struct {
	*resty.Client
}

// HTTPClientOption configures a new [HTTPClient].
type HTTPClientOption func(*resty.Client)

// WithBaseURL resolves relative request URLs against url.
func WithBaseURL(url string) HTTPClientOption {
	return func(c *resty.Client) { c.SetBaseURL(url) }
}

// WithTimeout bounds every request. Non-positive values keep the default.
func WithTimeout(d time.Duration) HTTPClientOption {
	return func(c *resty.Client) {
		if d > 0 {
			c.SetTimeout(d)
		}
	}
}

// WithHeader sets a header on every request.
func WithHeader(name, value string) HTTPClientOption {
	return func(c *resty.Client) { c.SetHeader(name, value) }
}

// WithoutRedirects hands 3xx responses back to the caller instead of
// following them.
func WithoutRedirects() HTTPClientOption {
	return func(c *resty.Client) {
		c.SetRedirectPolicy(resty.RedirectPolicyFunc(func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}))
	}
}

// NewHTTPClient returns an independent client configured by opts.
func NewHTTPClient(opts ...HTTPClientOption) *HTTPClient {
	c := resty.New().SetHeader("User-Agent", userAgent)
	for _, opt := range opts {
		opt(c)
	}
	return &HTTPClient{Client: c}
}
