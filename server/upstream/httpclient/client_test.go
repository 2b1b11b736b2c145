package httpclient

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, mutate func(*Options)) *Client {
	t.Helper()
	opt := Options{
		BaseURL:            baseURL,
		Timeout:            2 * time.Second,
		Retries:            3,
		ExponentialBackoff: true,
		MinimumWait:        time.Millisecond,
		MaximumWait:        5 * time.Millisecond,
		FollowRedirects:    true,
	}
	if mutate != nil {
		mutate(&opt)
	}
	c, err := New(opt, zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestGetResolvesAgainstBase(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/cards/1", r.URL.Path)
		assert.Equal(t, "mtgapi", r.Header.Get("User-Agent"))
		w.Header().Set("Ratelimit-Remaining", "10")
		_, _ = w.Write([]byte(`{"card":{}}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(o *Options) {
		o.Headers = map[string]string{"User-Agent": "mtgapi"}
	})

	resp, err := c.Get(context.Background(), "/v1/cards/1")
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, `{"card":{}}`, string(resp.Body))
	assert.Equal(t, "10", resp.Header.Get("Ratelimit-Remaining"))
}

func TestRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	var observed []string
	c := newTestClient(t, srv.URL, func(o *Options) {
		o.Observe = func(status string) { observed = append(observed, status) }
	})

	resp, err := c.Get(context.Background(), "/")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(resp.Body))
	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []string{"503", "503", "200"}, observed)
}

func TestRetriesExhausted(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(o *Options) { o.ExponentialBackoff = false })

	_, err := c.Get(context.Background(), "/")
	require.Error(t, err)
	se, ok := AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusTooManyRequests, se.StatusCode)
	assert.Equal(t, int32(3), calls.Load())
}

func TestClientErrorIsPermanent(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":"Not Found","status":404}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)

	_, err := c.Get(context.Background(), "/missing")
	require.Error(t, err)
	se, ok := AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, se.StatusCode)
	assert.Equal(t, "404 Not Found", se.Status)
	assert.JSONEq(t, `{"error":"Not Found","status":404}`, string(se.Body))
	assert.False(t, se.Retryable())
	assert.Equal(t, int32(1), calls.Load())
}

func TestOverrideBase(t *testing.T) {
	images := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/image.webp", r.URL.Path)
		_, _ = w.Write([]byte{0x52, 0x49, 0x46, 0x46})
	}))
	defer images.Close()

	c := newTestClient(t, "http://127.0.0.1:1", nil)

	resp, err := c.Get(context.Background(), images.URL+"/image.webp", WithOverrideBase())
	require.NoError(t, err)
	assert.Equal(t, []byte{0x52, 0x49, 0x46, 0x46}, resp.Body)
}

func TestVerbsAndBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		w.Header().Set("X-Method", r.Method)
		w.Header().Set("X-Content-Type", r.Header.Get("Content-Type"))
		_, _ = w.Write(body)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, nil)
	ctx := context.Background()

	calls := map[string]func(context.Context, string, ...RequestOption) (*Response, error){
		http.MethodPost:    c.Post,
		http.MethodPut:     c.Put,
		http.MethodPatch:   c.Patch,
		http.MethodDelete:  c.Delete,
		http.MethodOptions: c.Options,
	}
	for method, call := range calls {
		resp, err := call(ctx, "/", WithBody("application/json", []byte(`{"a":1}`)))
		require.NoError(t, err, method)
		assert.Equal(t, method, resp.Header.Get("X-Method"))
		assert.Equal(t, "application/json", resp.Header.Get("X-Content-Type"))
		assert.Equal(t, `{"a":1}`, string(resp.Body))
	}

	resp, err := c.Head(ctx, "/")
	require.NoError(t, err)
	assert.Equal(t, http.MethodHead, resp.Header.Get("X-Method"))
	assert.Empty(t, resp.Body)
}

func TestRedirectPolicy(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/old" {
			http.Redirect(w, r, "/new", http.StatusFound)
			return
		}
		_, _ = w.Write([]byte("moved"))
	}))
	defer srv.Close()

	follow := newTestClient(t, srv.URL, nil)
	resp, err := follow.Get(context.Background(), "/old")
	require.NoError(t, err)
	assert.Equal(t, "moved", string(resp.Body))

	stay := newTestClient(t, srv.URL, func(o *Options) { o.FollowRedirects = false })
	_, err = stay.Get(context.Background(), "/old")
	se, ok := AsStatusError(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusFound, se.StatusCode)
}

func TestContextCancelStopsRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, func(o *Options) {
		o.Retries = 50
		o.MinimumWait = 50 * time.Millisecond
		o.MaximumWait = 50 * time.Millisecond
	})

	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Millisecond)
	defer cancel()

	_, err := c.Get(ctx, "/")
	require.Error(t, err)
	assert.Less(t, calls.Load(), int32(50))
}

func TestClose(t *testing.T) {
	c, err := New(Options{BaseURL: "http://localhost"}, zerolog.Nop())
	require.NoError(t, err)

	require.NoError(t, c.Close())
	assert.ErrorIs(t, c.Close(), ErrClientClosed)

	_, err = c.Get(context.Background(), "/")
	assert.ErrorIs(t, err, ErrClientClosed)
}

func TestNewValidation(t *testing.T) {
	_, err := New(Options{}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrBaseURL)

	_, err = New(Options{BaseURL: "not a url"}, zerolog.Nop())
	assert.True(t, errors.Is(err, ErrBaseURL))
}

func TestDefaults(t *testing.T) {
	o := (&Options{}).SetDefaults()
	assert.Equal(t, 30*time.Second, o.Timeout)
	assert.Equal(t, 1, o.Retries)
	assert.Equal(t, time.Second, o.MinimumWait)
	assert.Equal(t, 10*time.Second, o.MaximumWait)
	assert.IsType(t, NullProxy{}, o.Proxies)
}
