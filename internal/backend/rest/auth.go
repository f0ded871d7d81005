package rest

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"golang.org/x/oauth2"

	"todoboard/internal/service"
)

// Login exchanges credentials at the token endpoint using the OAuth2
// resource owner password grant. The token is returned, not persisted.
func (c *Client) Login(ctx context.Context, creds service.Credentials) (service.Token, error) {
	conf := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  c.baseURL + "/token",
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, c.auth)

	tok, err := conf.PasswordCredentialsToken(ctx, creds.Username, creds.Password)
	if err != nil {
		return service.Token{}, loginError(err)
	}
	c.log.Debug("token issued", "token_type", tok.TokenType)
	return service.Token{AccessToken: tok.AccessToken, TokenType: tok.TokenType}, nil
}

func loginError(err error) error {
	const op = "login"
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		return &service.ServerError{Op: op, StatusCode: re.Response.StatusCode, Message: detailMessage(re.Body)}
	}
	var ue *url.Error
	if errors.As(err, &ue) {
		return &service.NetworkError{Op: op, Err: err}
	}
	return fmt.Errorf("%s: %w", op, err)
}

// Me returns the identity bound to the current token.
func (c *Client) Me(ctx context.Context) (service.User, error) {
	var u service.User
	err := c.do(ctx, "identity", http.MethodGet, "/users/me", nil, nil, &u)
	return u, err
}

// Register creates an account. The response body is not interpreted.
func (c *Client) Register(ctx context.Context, in service.Registration) error {
	return c.do(ctx, "register", http.MethodPost, "/register", nil, in, nil)
}
