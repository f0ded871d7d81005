package rest

import (
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"golang.org/x/oauth2"
)

// bearerTransport attaches the persisted token to each request. The token is
// read per request so login and logout take effect immediately.
type bearerTransport struct {
	next   http.RoundTripper
	tokens TokenLoader
}

func (t *bearerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.tokens == nil {
		return t.next.RoundTrip(req)
	}
	token, err := t.tokens.Load(req.Context())
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}
	if token == "" {
		return t.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	(&oauth2.Token{AccessToken: token, TokenType: "Bearer"}).SetAuthHeader(r)
	return t.next.RoundTrip(r)
}

// requestIDTransport stamps requests built outside Client.do, such as the
// token exchange.
type requestIDTransport struct {
	next http.RoundTripper
}

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return t.next.RoundTrip(req)
	}
	r := req.Clone(req.Context())
	r.Header.Set(RequestIDHeader, uuid.NewString())
	return t.next.RoundTrip(r)
}
