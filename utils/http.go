package utils

import (
	"net/http"
	"time"

	"github.com/marcus-crane/depotfinder/shared"
)

type UARoundtripper struct {
	RT        http.RoundTripper
	UserAgent string
}

func (uart *UARoundtripper) RoundTrip(req *http.Request) (*http.Response, error) {
	rt := uart.RT
	if rt == nil {
		// Looked up per request so tests that swap the default transport still apply
		rt = http.DefaultTransport
	}
	ua := uart.UserAgent
	if ua == "" {
		ua = shared.USER_AGENT
	}
	if req.Header.Get("User-Agent") == "" {
		req = req.Clone(req.Context())
		req.Header.Set("User-Agent", ua)
	}
	return rt.RoundTrip(req)
}

func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: &UARoundtripper{},
	}
}
