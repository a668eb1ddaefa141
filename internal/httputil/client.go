// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package httputil provides the HTTP client shared by outbound API calls.
package httputil

import "net/http"

// NewClient returns an HTTP client that stamps every request with userAgent.
// It sets no timeout: a request ends when the server answers or the
// request's context is cancelled.
func NewClient(userAgent string) *http.Client {
	return &http.Client{
		Transport: &userAgentTransport{
			base:      http.DefaultTransport,
			userAgent: userAgent,
		},
	}
}

// userAgentTransport sets the User-Agent header before delegating to base.
type userAgentTransport struct {
	base      http.RoundTripper
	userAgent string
}

func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.userAgent == "" {
		return t.base.RoundTrip(req)
	}
	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	r.Header.Set("User-Agent", t.userAgent)
	return t.base.RoundTrip(r)
}
