package auth

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// RoundTripperOption configures a RoundTripper.
type RoundTripperOption func(*RoundTripper)

// WithLeeway sets clock skew tolerance for the exp pre-check.
func WithLeeway(d time.Duration) RoundTripperOption {
	return func(rt *RoundTripper) { rt.leeway = d }
}

// WithClock overrides the time source used for the exp pre-check.
func WithClock(now func() time.Time) RoundTripperOption {
	return func(rt *RoundTripper) { rt.now = now }
}

// RoundTripper sets the Authorization header on every request it forwards.
type RoundTripper struct {
	base   http.RoundTripper
	creds  Credentials
	leeway time.Duration
	now    func() time.Time
	parser *jwt.Parser
}

var _ http.RoundTripper = (*RoundTripper)(nil)

// NewRoundTripper wraps base (http.DefaultTransport when nil) so that each
// request carries "Authorization: Bearer <token>" from creds.
func NewRoundTripper(base http.RoundTripper, creds Credentials, opts ...RoundTripperOption) *RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	rt := &RoundTripper{
		base:   base,
		creds:  creds,
		now:    time.Now,
		parser: jwt.NewParser(),
	}
	for _, o := range opts {
		if o != nil {
			o(rt)
		}
	}
	return rt
}

func (rt *RoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	tok, err := rt.creds.Token(req.Context())
	if err == nil {
		err = rt.checkExpiry(tok)
	}
	if err != nil {
		// RoundTrip must close the body even when it fails.
		if req.Body != nil {
			_ = req.Body.Close()
		}
		return nil, err
	}

	r2 := req.Clone(req.Context())
	r2.Header.Set("Authorization", "Bearer "+tok)
	return rt.base.RoundTrip(r2)
}

// checkExpiry rejects JWTs whose exp claim has passed. Tokens that are not
// JWTs, or carry no exp, pass through.
func (rt *RoundTripper) checkExpiry(tok string) error {
	if strings.Count(tok, ".") != 2 {
		return nil
	}
	claims := jwt.MapClaims{}
	if _, _, err := rt.parser.ParseUnverified(tok, claims); err != nil {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}
	if rt.now().After(exp.Time.Add(rt.leeway)) {
		return fmt.Errorf("%w (exp %s)", ErrTokenExpired, exp.Time.UTC().Format(time.RFC3339))
	}
	return nil
}
