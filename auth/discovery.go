package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"github.com/ggoodman/payments-go/internal/logctx"
	"github.com/ggoodman/payments-go/tokencache"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// DiscoveryOption configures NewFromDiscovery.
type DiscoveryOption func(*discoveryConfig)

type discoveryConfig struct {
	scopes   []string
	cache    tokencache.Cache
	cacheKey string
	client   *http.Client
	log      *slog.Logger
}

// WithScopes requests the given scopes in the client credentials grant.
func WithScopes(scopes ...string) DiscoveryOption {
	return func(c *discoveryConfig) { c.scopes = append(c.scopes, scopes...) }
}

// WithTokenCache shares issued tokens through cache under key. Every
// process using the same cache and key reuses one token until it expires.
func WithTokenCache(cache tokencache.Cache, key string) DiscoveryOption {
	return func(c *discoveryConfig) {
		c.cache = cache
		c.cacheKey = key
	}
}

// WithDiscoveryHTTPClient sets the client used for both discovery and the
// token endpoint.
func WithDiscoveryHTTPClient(client *http.Client) DiscoveryOption {
	return func(c *discoveryConfig) { c.client = client }
}

// WithDiscoveryLogHandler sets the slog handler for token refresh
// diagnostics.
func WithDiscoveryLogHandler(h slog.Handler) DiscoveryOption {
	return func(c *discoveryConfig) { c.log = logctx.New(h) }
}

// DiscoveryCredentials obtains access tokens with the OAuth 2.0 client
// credentials grant against an issuer found through OpenID Connect
// discovery. Tokens are reused until they expire.
type DiscoveryCredentials struct {
	tokenURL string
	src      oauth2.TokenSource
}

// NewFromDiscovery fetches issuer's discovery document and prepares a
// client credentials grant against its token endpoint. No token is
// requested until the first call to Token.
//
// Values carried by ctx (such as an oauth2.HTTPClient) apply to later token
// requests; its cancellation only bounds discovery.
func NewFromDiscovery(ctx context.Context, issuer, clientID, clientSecret string, opts ...DiscoveryOption) (*DiscoveryCredentials, error) {
	if clientID == "" {
		return nil, errors.New("auth: client id is required")
	}
	cfg := &discoveryConfig{log: logctx.New(nil)}
	for _, o := range opts {
		if o != nil {
			o(cfg)
		}
	}
	if cfg.client != nil {
		ctx = oidc.ClientContext(ctx, cfg.client)
	}

	provider, err := oidc.NewProvider(ctx, issuer)
	if err != nil {
		return nil, fmt.Errorf("auth: oidc discovery for %s: %w", issuer, err)
	}
	tokenURL := provider.Endpoint().TokenURL
	if tokenURL == "" {
		return nil, fmt.Errorf("auth: issuer %s advertises no token endpoint", issuer)
	}

	cc := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		Scopes:       cfg.scopes,
	}

	var src oauth2.TokenSource = cc.TokenSource(context.WithoutCancel(ctx))
	if cfg.cache != nil {
		key := cfg.cacheKey
		if key == "" {
			key = issuer + "|" + clientID
		}
		src = &cachedSource{
			ctx:   context.WithoutCancel(ctx),
			cache: cfg.cache,
			key:   key,
			next:  src,
			log:   cfg.log,
		}
	}

	return &DiscoveryCredentials{
		tokenURL: tokenURL,
		src:      oauth2.ReuseTokenSource(nil, src),
	}, nil
}

// TokenURL reports the token endpoint found during discovery.
func (d *DiscoveryCredentials) TokenURL() string { return d.tokenURL }

func (d *DiscoveryCredentials) Token(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	tok, err := d.src.Token()
	if err != nil {
		return "", fmt.Errorf("auth: obtain access token: %w", err)
	}
	if tok.AccessToken == "" {
		return "", ErrNoCredentials
	}
	return tok.AccessToken, nil
}

// cachedSource consults a shared cache before running the grant and
// publishes fresh tokens to it.
type cachedSource struct {
	ctx   context.Context
	cache tokencache.Cache
	key   string
	next  oauth2.TokenSource
	log   *slog.Logger
}

func (s *cachedSource) Token() (*oauth2.Token, error) {
	item, err := s.cache.Get(s.ctx, s.key)
	if err != nil {
		s.log.Debug("token cache read failed", slog.String("key", s.key), slog.String("err", err.Error()))
	} else if item != nil {
		var tok oauth2.Token
		if err := json.Unmarshal(item.Data, &tok); err == nil && tok.Valid() {
			return &tok, nil
		}
	}

	tok, err := s.next.Token()
	if err != nil {
		return nil, err
	}

	var ttl time.Duration
	if !tok.Expiry.IsZero() {
		ttl = time.Until(tok.Expiry)
		if ttl <= 0 {
			return tok, nil
		}
	}
	data, err := json.Marshal(tok)
	if err != nil {
		return tok, nil
	}
	if err := s.cache.Set(s.ctx, s.key, data, ttl); err != nil {
		s.log.Debug("token cache write failed", slog.String("key", s.key), slog.String("err", err.Error()))
	}
	return tok, nil
}

var _ Credentials = (*DiscoveryCredentials)(nil)
