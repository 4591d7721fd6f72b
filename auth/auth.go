package auth

import (
	"context"
	"errors"
	"strings"
)

// ErrNoCredentials indicates a credential source had no token to offer.
var ErrNoCredentials = errors.New("auth: no credentials available")

// ErrTokenExpired indicates the bearer token's exp claim has passed.
var ErrTokenExpired = errors.New("auth: access token expired")

// Credentials supplies the bearer token for outgoing requests.
// Implementations must be safe for concurrent use.
type Credentials interface {
	Token(ctx context.Context) (string, error)
}

// CredentialsFunc adapts a function to the Credentials interface.
type CredentialsFunc func(ctx context.Context) (string, error)

func (f CredentialsFunc) Token(ctx context.Context) (string, error) { return f(ctx) }

// Static returns Credentials that always yield token.
func Static(token string) Credentials {
	token = strings.TrimSpace(token)
	return CredentialsFunc(func(context.Context) (string, error) {
		if token == "" {
			return "", ErrNoCredentials
		}
		return token, nil
	})
}
