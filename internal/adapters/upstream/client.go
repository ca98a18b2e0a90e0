// Package upstream is the paced, retrying HTTP client shared by the report adapters
package upstream

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"reportrelay/internal/core/version"
	perr "reportrelay/internal/platform/errors"
	"reportrelay/internal/platform/logger"
	pstrings "reportrelay/internal/platform/strings"
	ptime "reportrelay/internal/platform/time"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultRetryBase = 500 * time.Millisecond
	maxBackoff       = 30 * time.Second

	// SnippetLen bounds response text quoted in errors
	SnippetLen = 200
)

// Options configures the Client
type Options struct {
	// Name labels logs and errors, e.g. sellercentral
	Name      string
	BaseURL   string
	UserAgent string
	Timeout   time.Duration

	// RatePerSec and Burst pace every attempt; zero rate disables pacing
	RatePerSec float64
	Burst      int

	// MaxRetries is how many extra attempts transport errors and retryable statuses get
	MaxRetries int
	RetryBase  time.Duration

	// Header is sent on every request; per request headers win
	Header http.Header

	// FollowRedirects lets the client chase 3xx; off means the 3xx is returned as is
	FollowRedirects bool
}

// Request is one call relative to BaseURL
type Request struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
	Header      http.Header
}

// Client is a minimal HTTP client with pacing, retries and structured errors
type Client struct {
	http    *http.Client
	opts    Options
	limiter *rate.Limiter
	log     logger.Logger
	now     func() time.Time
	sleep   func(context.Context, time.Duration) error
}

// New creates a Client with sane defaults
func New(o Options) *Client {
	if o.UserAgent == "" {
		o.UserAgent = version.UserAgent()
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.MaxRetries < 0 {
		o.MaxRetries = 0
	}
	if o.RetryBase <= 0 {
		o.RetryBase = defaultRetryBase
	}
	o.BaseURL = strings.TrimRight(o.BaseURL, "/")

	hc := &http.Client{Timeout: o.Timeout}
	if !o.FollowRedirects {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error { return http.ErrUseLastResponse }
	}

	var lim *rate.Limiter
	if o.RatePerSec > 0 {
		burst := o.Burst
		if burst <= 0 {
			burst = 1
		}
		lim = rate.NewLimiter(rate.Limit(o.RatePerSec), burst)
	}

	return &Client{
		http:    hc,
		opts:    o,
		limiter: lim,
		log:     *logger.Named(pstrings.FirstNonEmpty(o.Name, "upstream")),
		now:     time.Now,
		sleep:   ptime.Sleep,
	}
}

// Name returns the client label
func (c *Client) Name() string { return c.opts.Name }

// URL resolves path and query against BaseURL
func (c *Client) URL(path string, q url.Values) string {
	u := c.opts.BaseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}
	return u
}

// Do sends r, retrying transport errors and retryable statuses
// any other status, including 3xx when redirects are off, is returned to the caller
// the caller owns the response body
func (c *Client) Do(ctx context.Context, r Request) (*http.Response, error) {
	method := pstrings.FirstNonEmpty(r.Method, http.MethodGet)
	target := c.URL(r.Path, r.Query)

	for attempt := 0; ; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s pacing interrupted", c.opts.Name)
			}
		}

		var body io.Reader
		if r.Body != nil {
			body = bytes.NewReader(r.Body)
		}
		req, err := http.NewRequestWithContext(ctx, method, target, body)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "%s new request failed", c.opts.Name)
		}
		c.headers(req, r)

		start := c.now()
		resp, err := c.http.Do(req)
		lat := c.now().Sub(start)

		if err != nil {
			if ctx.Err() != nil || !c.shouldRetry(attempt) {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s %s %s failed", c.opts.Name, method, r.Path)
			}
			back := c.backoff(attempt)
			c.log.Warn().Err(err).Dur("retry_in", back).Int("attempt", attempt).Msg("transport error retrying")
			if err := c.sleep(ctx, back); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s retry interrupted", c.opts.Name)
			}
			continue
		}

		c.log.Debug().
			Str("method", method).
			Str("path", r.Path).
			Int("status", resp.StatusCode).
			Int("attempt", attempt).
			Dur("latency", lat).
			Msg("http response")

		if perr.RetryableStatus(resp.StatusCode) && c.shouldRetry(attempt) {
			back := retryAfter(resp.Header)
			if back <= 0 {
				back = c.backoff(attempt)
			}
			c.log.Warn().Int("status", resp.StatusCode).Dur("retry_in", back).Int("attempt", attempt).Msg("retryable status backing off")
			_ = DrainAndClose(resp.Body)
			if err := c.sleep(ctx, back); err != nil {
				return nil, perr.Wrapf(err, perr.ErrorCodeUnavailable, "%s retry interrupted", c.opts.Name)
			}
			continue
		}
		return resp, nil
	}
}

func (c *Client) headers(req *http.Request, r Request) {
	req.Header.Set("User-Agent", c.opts.UserAgent)
	for k, vs := range c.opts.Header {
		for _, v := range vs {
			if v != "" {
				req.Header.Add(k, v)
			}
		}
	}
	for k, vs := range r.Header {
		req.Header.Del(k)
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if r.ContentType != "" {
		req.Header.Set("Content-Type", r.ContentType)
	}
}

func (c *Client) backoff(attempt int) time.Duration {
	d := c.opts.RetryBase << uint(attempt)
	if d <= 0 || d > maxBackoff {
		return maxBackoff
	}
	return d
}

func (c *Client) shouldRetry(attempt int) bool {
	return attempt < c.opts.MaxRetries
}
