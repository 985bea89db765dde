package taskclient

import (
	"context"
	"errors"
	"net/http"
)

// Register creates an account. It does not log in; call Login afterwards
// to obtain a credential. A rejected email or password yields a
// *ValidationError.
func (c *Client) Register(ctx context.Context, email, password string) (*User, error) {
	body := credentialsRequest{Email: email, Password: password}
	data, err := c.do(ctx, http.MethodPost, "/auth/register", nil, body)
	if err != nil {
		return nil, err
	}
	user, err := decodeInto[User](data)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Login exchanges credentials for a bearer token, stores it on the client
// for subsequent calls, and returns it for callers that persist sessions.
// Wrong credentials yield ErrUnauthorized.
func (c *Client) Login(ctx context.Context, email, password string) (string, error) {
	body := credentialsRequest{Email: email, Password: password}
	data, err := c.do(ctx, http.MethodPost, "/auth/login", nil, body)
	if err != nil {
		return "", err
	}
	resp, err := decodeInto[tokenResponse](data)
	if err != nil {
		return "", err
	}
	if resp.Token == "" {
		return "", errors.New("task api: login response carried no token")
	}
	c.SetToken(resp.Token)
	return resp.Token, nil
}

// Logout drops the held credential. The server keeps the token valid until
// it expires; this only stops the client from sending it.
func (c *Client) Logout() {
	c.ClearToken()
}
