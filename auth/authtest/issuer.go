// Package authtest provides an in-process OpenID issuer for tests.
package authtest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Issuer serves an OpenID discovery document and a client credentials
// token endpoint that mints HS256 JWTs.
type Issuer struct {
	*httptest.Server

	ClientID     string
	ClientSecret string
	Key          []byte

	mu     sync.Mutex
	ttl    time.Duration
	issued atomic.Int64
}

// NewIssuer starts an issuer accepting the given client credentials.
// Tokens are valid for an hour unless changed with SetTTL.
func NewIssuer(clientID, clientSecret string) *Issuer {
	iss := &Issuer{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Key:          []byte("authtest-signing-key"),
		ttl:          time.Hour,
	}
	mux := http.NewServeMux()
	mux.HandleFunc("/.well-known/openid-configuration", iss.handleDiscovery)
	mux.HandleFunc("/token", iss.handleToken)
	iss.Server = httptest.NewServer(mux)
	return iss
}

// SetTTL changes the lifetime of tokens minted from now on.
func (iss *Issuer) SetTTL(d time.Duration) {
	iss.mu.Lock()
	iss.ttl = d
	iss.mu.Unlock()
}

// Issued reports how many tokens the endpoint has minted.
func (iss *Issuer) Issued() int { return int(iss.issued.Load()) }

func (iss *Issuer) handleDiscovery(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"issuer":                                iss.URL,
		"authorization_endpoint":                iss.URL + "/authorize",
		"token_endpoint":                        iss.URL + "/token",
		"jwks_uri":                              iss.URL + "/jwks",
		"response_types_supported":              []string{"code"},
		"subject_types_supported":               []string{"public"},
		"id_token_signing_alg_values_supported": []string{"HS256"},
		"grant_types_supported":                 []string{"client_credentials"},
	})
}

func (iss *Issuer) handleToken(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseForm(); err != nil {
		writeOAuthError(w, http.StatusBadRequest, "invalid_request")
		return
	}
	if r.PostForm.Get("grant_type") != "client_credentials" {
		writeOAuthError(w, http.StatusBadRequest, "unsupported_grant_type")
		return
	}
	id, secret, ok := r.BasicAuth()
	if !ok {
		id, secret = r.PostForm.Get("client_id"), r.PostForm.Get("client_secret")
	}
	if id != iss.ClientID || secret != iss.ClientSecret {
		writeOAuthError(w, http.StatusUnauthorized, "invalid_client")
		return
	}

	iss.mu.Lock()
	ttl := iss.ttl
	iss.mu.Unlock()

	tok, err := SignToken(iss.Key, iss.URL, id, time.Now().Add(ttl), r.PostForm.Get("scope"))
	if err != nil {
		writeOAuthError(w, http.StatusInternalServerError, "server_error")
		return
	}
	iss.issued.Add(1)

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{
		"access_token": tok,
		"token_type":   "Bearer",
		"expires_in":   int(ttl / time.Second),
	})
}

func writeOAuthError(w http.ResponseWriter, status int, code string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": code})
}

// SignToken mints an HS256 JWT. An empty scope is omitted.
func SignToken(key []byte, issuer, subject string, exp time.Time, scope string) (string, error) {
	claims := jwt.MapClaims{
		"iss": issuer,
		"sub": subject,
		"iat": time.Now().Unix(),
		"exp": exp.Unix(),
	}
	if s := strings.TrimSpace(scope); s != "" {
		claims["scope"] = s
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(key)
}
