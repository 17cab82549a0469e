package eczane

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL   = "https://www.eczaneler.gen.tr"
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Fetcher retrieves the raw duty page for a city and optional district slug.
type Fetcher interface {
	Fetch(ctx context.Context, citySlug, districtSlug string) ([]byte, error)
}

// Client talks to the duty pharmacy site.
type Client struct {
	http      *http.Client
	baseURL   string
	userAgent string
	limiter   *rate.Limiter // nil means unlimited
	log       zerolog.Logger
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.http = h }
}

func WithBaseURL(raw string) Option {
	return func(c *Client) {
		if raw != "" {
			c.baseURL = strings.TrimRight(raw, "/")
		}
	}
}

func WithUserAgent(ua string) Option {
	return func(c *Client) {
		if ua != "" {
			c.userAgent = ua
		}
	}
}

// WithRateLimiter spaces out requests to the site. Fetch waits on l before
// every request.
func WithRateLimiter(l *rate.Limiter) Option {
	return func(c *Client) { c.limiter = l }
}

func WithLogger(l zerolog.Logger) Option {
	return func(c *Client) { c.log = l }
}

// NewTransport returns the transport used by default. The site is a single
// hardcoded endpoint whose certificate chain does not always validate, so
// verification is turned off here on purpose.
func NewTransport() *http.Transport {
	t := http.DefaultTransport.(*http.Transport).Clone()
	t.TLSClientConfig = &tls.Config{InsecureSkipVerify: true} //nolint:gosec
	return t
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Transport: NewTransport()},
		baseURL:   DefaultBaseURL,
		userAgent: DefaultUserAgent,
		log:       zerolog.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// URL builds the page address, e.g. https://www.eczaneler.gen.tr/nobetci-istanbul-kadikoy.
func (c *Client) URL(citySlug, districtSlug string) string {
	if districtSlug != "" {
		return fmt.Sprintf("%s/nobetci-%s-%s", c.baseURL, citySlug, districtSlug)
	}
	return fmt.Sprintf("%s/nobetci-%s", c.baseURL, citySlug)
}

// Fetch issues exactly one GET for the page. It does not retry.
func (c *Client) Fetch(ctx context.Context, citySlug, districtSlug string) ([]byte, error) {
	u := c.URL(citySlug, districtSlug)
	c.log.Debug().Str("url", u).Msg("fetching duty page")

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &FetchError{Message: "rate limit: " + err.Error(), Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &FetchError{Message: err.Error(), Err: err}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "tr-TR,tr;q=0.9,en-US;q=0.8,en;q=0.7")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &FetchError{Message: err.Error(), Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		msg := resp.Status
		if len(b) > 0 {
			msg = fmt.Sprintf("%s: %s", resp.Status, strings.TrimSpace(string(b)))
		}
		return nil, &FetchError{StatusCode: resp.StatusCode, Message: msg}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &FetchError{StatusCode: resp.StatusCode, Message: "read body: " + err.Error(), Err: err}
	}
	return body, nil
}

// IsFetchError reports whether err came from a failed page fetch.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
