package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// Proxy is a pair of outbound proxy URLs. Empty values mean a direct connection.
type Proxy struct {
	HTTP  string
	HTTPS string
}

// Empty reports whether no proxy is configured.
func (p Proxy) Empty() bool {
	return p.HTTP == "" && p.HTTPS == ""
}

// String hides any userinfo so the proxy can be logged.
func (p Proxy) String() string {
	return fmt.Sprintf("Proxy(http=%s, https=%s)", obfuscate(p.HTTP), obfuscate(p.HTTPS))
}

// URL picks the proxy for a request scheme. HTTPS falls back to the HTTP proxy.
func (p Proxy) URL(scheme string) (*url.URL, error) {
	raw := p.HTTP
	if scheme == "https" && p.HTTPS != "" {
		raw = p.HTTPS
	}
	if raw == "" {
		return nil, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, ErrInvalidProxy
	}
	return u, nil
}

func obfuscate(raw string) string {
	if _, rest, ok := strings.Cut(raw, "@"); ok {
		return "***@" + rest
	}
	return raw
}

// ProxyProvider supplies the proxy to use for the next outbound request.
type ProxyProvider interface {
	Proxy(ctx context.Context) (Proxy, error)
}

// NullProxy always connects directly.
type NullProxy struct{}

func (NullProxy) Proxy(context.Context) (Proxy, error) { return Proxy{}, nil }

// StaticProxy returns the same proxy for every request.
type StaticProxy struct {
	Value Proxy
}

func (s StaticProxy) Proxy(context.Context) (Proxy, error) { return s.Value, nil }

// proxyFunc adapts a provider to http.Transport.Proxy.
func proxyFunc(provider ProxyProvider) func(*http.Request) (*url.URL, error) {
	return func(req *http.Request) (*url.URL, error) {
		p, err := provider.Proxy(req.Context())
		if err != nil {
			return nil, err
		}
		return p.URL(req.URL.Scheme)
	}
}
