// Package auth attaches credentials to outgoing API requests.
//
// The public surface is small: a Credentials value yields the current bearer
// token, and NewRoundTripper installs it on every request sent through an
// http.Client. The request builder never sees credentials; they are applied
// by the transport's client just before transmission.
//
// # Credential sources
//
//	Static(token)            a fixed access token
//	NewFileCredentials       a token read from a file and reloaded whenever
//	                         the file changes (mounted secrets, sidecars)
//	NewFromDiscovery         OAuth 2.0 client credentials against a token
//	                         endpoint found through OpenID Connect discovery
//
// Example:
//
//	creds, err := auth.NewFromDiscovery(ctx, "https://issuer.example", clientID, clientSecret,
//	    auth.WithScopes("PAYMENTS_READ", "PAYMENTS_WRITE"),
//	)
//	if err != nil { log.Fatal(err) }
//	hc := &http.Client{Transport: auth.NewRoundTripper(nil, creds)}
//
// # Expiry
//
// When a token is a JWT, the round tripper reads its exp claim (without
// verifying the signature; the client is not the audience) and refuses to
// send a request with an expired token, returning ErrTokenExpired. WithLeeway
// tolerates clock skew. Opaque tokens are sent as-is.
package auth
