// Package httpx holds the shared client for outbound calls.
package httpx

import (
	"net"
	"net/http"
	"time"
)

const UserAgent = "bookgalaxy/1.0"

// agent stamps every outbound request with UserAgent unless the caller set one.
type agent struct{ next http.RoundTripper }

func (a agent) RoundTrip(r *http.Request) (*http.Response, error) {
	if r.Header.Get("User-Agent") != "" {
		return a.next.RoundTrip(r)
	}
	r = r.Clone(r.Context())
	r.Header.Set("User-Agent", UserAgent)
	return a.next.RoundTrip(r)
}

// New builds a client with pooled keep-alive connections. Mail relays are
// slow to accept but quick to connect, hence the short dial timeout.
func New(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: agent{next: &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   5 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout: 5 * time.Second,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 4,
			IdleConnTimeout:     90 * time.Second,
		}},
	}
}

var defaultClient = New(10 * time.Second)

func Client() *http.Client { return defaultClient }
