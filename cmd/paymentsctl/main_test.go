package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ggoodman/payments-go/auth/authtest"
)

func newServer(t *testing.T, status int, reply string) (*httptest.Server, *http.Request, *[]byte) {
	t.Helper()
	var (
		got  http.Request
		body []byte
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = *r.Clone(context.Background())
		body, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	t.Setenv("PAYMENTS_BASE_URL", srv.URL)
	t.Setenv("PAYMENTS_ACCESS_TOKEN", "env-token")
	return srv, &got, &body
}

func TestRun_List(t *testing.T) {
	_, got, _ := newServer(t, 200, `{"payments":[{"id":"pay_1"}]}`)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"list", "-sort", "ASC", "-total", "500"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if got.URL.RawQuery != "sort_order=ASC&total=500" {
		t.Fatalf("unexpected query %s", got.URL.RawQuery)
	}
	if got.Header.Get("Authorization") != "Bearer env-token" {
		t.Fatalf("unexpected authorization %q", got.Header.Get("Authorization"))
	}
	var out struct {
		Payments []struct {
			ID string `json:"id"`
		} `json:"payments"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil || len(out.Payments) != 1 || out.Payments[0].ID != "pay_1" {
		t.Fatalf("unexpected output %s", stdout.String())
	}
}

func TestRun_Create(t *testing.T) {
	_, got, body := newServer(t, 200, `{"payment":{"id":"pay_2"}}`)
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), []string{"create", "-source", "cnon:ok", "-amount", "250", "-idempotency-key", "k-1"}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if got.Method != http.MethodPost || got.URL.Path != "/v2/payments" {
		t.Fatalf("unexpected request %s %s", got.Method, got.URL.Path)
	}
	want := `{"amount_money":{"amount":250,"currency":"USD"},"autocomplete":true,"idempotency_key":"k-1","source_id":"cnon:ok"}`
	if string(*body) != want {
		t.Fatalf("unexpected body %s", *body)
	}
}

func TestRun_CreateRequiresSource(t *testing.T) {
	newServer(t, 200, `{}`)
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"create", "-amount", "1"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected usage exit, got %d", code)
	}
}

func TestRun_ByID(t *testing.T) {
	for cmd, path := range map[string]string{
		"get":      "/v2/payments/pay_1",
		"cancel":   "/v2/payments/pay_1/cancel",
		"complete": "/v2/payments/pay_1/complete",
	} {
		t.Run(cmd, func(t *testing.T) {
			_, got, _ := newServer(t, 200, `{"payment":{"id":"pay_1"}}`)
			var stdout, stderr bytes.Buffer
			if code := run(context.Background(), []string{cmd, "pay_1"}, &stdout, &stderr); code != 0 {
				t.Fatalf("exit %d: %s", code, stderr.String())
			}
			if got.URL.Path != path {
				t.Fatalf("unexpected path %s", got.URL.Path)
			}
		})
	}
}

func TestRun_CancelByKey(t *testing.T) {
	_, got, body := newServer(t, 200, `{}`)
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"cancel-by-key", "k-9"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if got.URL.Path != "/v2/payments/cancel" || string(*body) != `{"idempotency_key":"k-9"}` {
		t.Fatalf("unexpected request %s %s", got.URL.Path, *body)
	}
}

func TestRun_StatusError(t *testing.T) {
	newServer(t, 401, `{"errors":[{"category":"AUTHENTICATION_ERROR","code":"UNAUTHORIZED"}]}`)
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"get", "pay_1"}, &stdout, &stderr); code != 1 {
		t.Fatalf("expected exit 1, got %d", code)
	}
	if !strings.Contains(stderr.String(), "UNAUTHORIZED") {
		t.Fatalf("error body not reported: %s", stderr.String())
	}
}

func TestRun_TokenFile(t *testing.T) {
	_, got, _ := newServer(t, 200, `{}`)
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("file-token\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"-token-file", path, "list"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	if got.Header.Get("Authorization") != "Bearer file-token" {
		t.Fatalf("unexpected authorization %q", got.Header.Get("Authorization"))
	}
}

func TestRun_OIDCIssuer(t *testing.T) {
	_, got, _ := newServer(t, 200, `{}`)
	iss := authtest.NewIssuer("cli", "s3cret")
	defer iss.Close()

	var stdout, stderr bytes.Buffer
	args := []string{"-oidc-issuer", iss.URL, "-client-id", "cli", "-client-secret", "s3cret", "-scopes", "PAYMENTS_READ", "list"}
	if code := run(context.Background(), args, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	authz := got.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Bearer ") || strings.Count(authz, ".") != 2 {
		t.Fatalf("expected issued jwt, got %q", authz)
	}
	if iss.Issued() != 1 {
		t.Fatalf("expected one grant, got %d", iss.Issued())
	}
}

func TestRun_Schema(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), []string{"schema"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout.String(), "Payment\n") {
		t.Fatalf("model list missing Payment: %s", stdout.String())
	}

	stdout.Reset()
	if code := run(context.Background(), []string{"schema", "Money"}, &stdout, &stderr); code != 0 {
		t.Fatalf("exit %d: %s", code, stderr.String())
	}
	var out struct {
		Model       string `json:"model"`
		Fingerprint string `json:"fingerprint"`
		Schema      struct {
			Type     string   `json:"type"`
			Required []string `json:"required"`
		} `json:"schema"`
	}
	if err := json.Unmarshal(stdout.Bytes(), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Model != "Money" || len(out.Fingerprint) != 64 || out.Schema.Type != "object" || len(out.Schema.Required) != 2 {
		t.Fatalf("unexpected schema output %s", stdout.String())
	}
}

func TestRun_UnknownTokenCache(t *testing.T) {
	newServer(t, 200, `{}`)
	var stdout, stderr bytes.Buffer
	args := []string{"-oidc-issuer", "https://issuer.invalid", "-token-cache", "bogus", "list"}
	if code := run(context.Background(), args, &stdout, &stderr); code != 2 {
		t.Fatalf("expected usage exit, got %d: %s", code, stderr.String())
	}
	if !strings.Contains(stderr.String(), `unknown token cache "bogus"`) {
		t.Fatalf("unexpected stderr %q", stderr.String())
	}
}

func TestRun_Usage(t *testing.T) {
	var stdout, stderr bytes.Buffer
	if code := run(context.Background(), nil, &stdout, &stderr); code != 2 {
		t.Fatalf("expected usage exit, got %d", code)
	}
	if code := run(context.Background(), []string{"refund"}, &stdout, &stderr); code != 2 {
		t.Fatalf("expected usage exit for unknown command, got %d", code)
	}
}
