package httpclient

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/go-faster/errors"
	"github.com/rs/zerolog"
)

// Options configures a Client.
type Options struct {
	BaseURL            string
	Timeout            time.Duration // default 30 seconds
	Retries            int           // total attempts, default 1
	ExponentialBackoff bool
	MinimumWait        time.Duration // default 1 second
	MaximumWait        time.Duration // default 10 seconds
	FollowRedirects    bool
	Headers            map[string]string
	Proxies            ProxyProvider

	// Observe is called once per attempt with the response status code or "error".
	Observe func(status string)
}

// SetDefaults fills unset options.
func (o *Options) SetDefaults() *Options {
	if o.Timeout <= 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Retries < 1 {
		o.Retries = 1
	}
	if o.MinimumWait <= 0 {
		o.MinimumWait = time.Second
	}
	if o.MaximumWait < o.MinimumWait {
		o.MaximumWait = o.MinimumWait * 10
	}
	if o.Proxies == nil {
		o.Proxies = NullProxy{}
	}
	return o
}

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Client sends requests relative to a base URL with retries.
type Client struct {
	opt    Options
	base   *url.URL
	http   *http.Client
	logger zerolog.Logger

	mu     sync.RWMutex
	closed bool
}

// New creates a client. The base URL must be absolute.
func New(opt Options, logger zerolog.Logger) (*Client, error) {
	o := opt.SetDefaults()
	if o.BaseURL == "" {
		return nil, ErrBaseURL
	}
	base, err := url.Parse(o.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.Wrapf(ErrBaseURL, "parse %q", o.BaseURL)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = proxyFunc(o.Proxies)

	hc := &http.Client{
		Timeout:   o.Timeout,
		Transport: transport,
	}
	if !o.FollowRedirects {
		hc.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	return &Client{
		opt:    *o,
		base:   base,
		http:   hc,
		logger: logger.With().Str("component", "httpclient").Logger(),
	}, nil
}

// RequestOption customizes a single request.
type RequestOption func(*request)

type request struct {
	overrideBase bool
	header       http.Header
	body         []byte
}

// WithOverrideBase treats the target as an absolute URL instead of resolving it against the base.
func WithOverrideBase() RequestOption {
	return func(r *request) { r.overrideBase = true }
}

func WithHeader(key, value string) RequestOption {
	return func(r *request) { r.header.Set(key, value) }
}

// WithBody attaches a request body, replayed on every attempt.
func WithBody(contentType string, body []byte) RequestOption {
	return func(r *request) {
		r.body = body
		r.header.Set("Content-Type", contentType)
	}
}

func (c *Client) Get(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodGet, target, opts...)
}

func (c *Client) Post(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPost, target, opts...)
}

func (c *Client) Put(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPut, target, opts...)
}

func (c *Client) Delete(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodDelete, target, opts...)
}

func (c *Client) Patch(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodPatch, target, opts...)
}

func (c *Client) Head(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodHead, target, opts...)
}

func (c *Client) Options(ctx context.Context, target string, opts ...RequestOption) (*Response, error) {
	return c.Do(ctx, http.MethodOptions, target, opts...)
}

// Do sends a request, retrying transport failures and 5xx/429 responses.
// Any other non-2xx response is returned immediately as a *StatusError.
func (c *Client) Do(ctx context.Context, method, target string, opts ...RequestOption) (*Response, error) {
	c.mu.RLock()
	closed := c.closed
	c.mu.RUnlock()
	if closed {
		return nil, ErrClientClosed
	}

	req := &request{header: make(http.Header)}
	for _, opt := range opts {
		opt(req)
	}

	fullURL, err := c.resolve(target, req.overrideBase)
	if err != nil {
		return nil, err
	}

	attempt := 0
	operation := func() (*Response, error) {
		attempt++
		resp, err := c.send(ctx, method, fullURL, req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			se := &StatusError{
				Method:     method,
				URL:        fullURL,
				StatusCode: resp.StatusCode,
				Status:     strconv.Itoa(resp.StatusCode) + " " + http.StatusText(resp.StatusCode),
				Header:     resp.Header,
				Body:       resp.Body,
			}
			if se.Retryable() {
				return nil, se
			}
			return nil, backoff.Permanent(se)
		}
		return resp, nil
	}

	notify := func(err error, wait time.Duration) {
		c.logger.Warn().
			Err(err).
			Str("method", method).
			Str("url", fullURL).
			Int("attempt", attempt).
			Int("max_attempts", c.opt.Retries).
			Dur("wait", wait).
			Msg("Request failed, retrying")
	}

	resp, err := backoff.RetryNotifyWithData(operation, c.policy(ctx), notify)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("url", fullURL).Int("attempts", attempt).Msg("Request failed")
		return nil, err
	}
	return resp, nil
}

// Close marks the client closed and drops idle connections.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClientClosed
	}
	c.closed = true
	c.http.CloseIdleConnections()
	return nil
}

func (c *Client) GetType() string { return "httpclient" }

func (c *Client) Shutdown(context.Context) error { return c.Close() }

func (c *Client) GetStatus() map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return map[string]interface{}{
		"base_url": c.base.String(),
		"retries":  c.opt.Retries,
		"closed":   c.closed,
	}
}

// BaseURL returns the configured base.
func (c *Client) BaseURL() string { return c.base.String() }

func (c *Client) policy(ctx context.Context) backoff.BackOffContext {
	var b backoff.BackOff
	if c.opt.ExponentialBackoff {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = c.opt.MinimumWait
		exp.MaxInterval = c.opt.MaximumWait
		exp.MaxElapsedTime = 0
		b = exp
	} else {
		b = backoff.NewConstantBackOff(c.opt.MinimumWait)
	}
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.opt.Retries-1)), ctx)
}

func (c *Client) resolve(target string, overrideBase bool) (string, error) {
	ref, err := url.Parse(target)
	if err != nil {
		return "", errors.Wrapf(err, "parse target %q", target)
	}
	if overrideBase {
		return ref.String(), nil
	}
	return c.base.ResolveReference(ref).String(), nil
}

func (c *Client) send(ctx context.Context, method, fullURL string, req *request) (*Response, error) {
	var body io.Reader
	if req.body != nil {
		body = bytes.NewReader(req.body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, backoff.Permanent(errors.Wrap(err, "build request"))
	}
	for k, v := range c.opt.Headers {
		httpReq.Header.Set(k, v)
	}
	for k, vs := range req.header {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe("error")
		return nil, errors.Wrapf(err, "%s %s", method, fullURL)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		c.observe("error")
		return nil, errors.Wrap(err, "read response body")
	}
	c.observe(strconv.Itoa(httpResp.StatusCode))

	return &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}, nil
}

func (c *Client) observe(status string) {
	if c.opt.Observe != nil {
		c.opt.Observe(status)
	}
}
