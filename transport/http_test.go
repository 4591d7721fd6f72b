package transport

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHTTP_SendRoundTrip(t *testing.T) {
	var gotBody string
	var gotHeader http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotHeader = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	tr := NewHTTP()
	resp, err := tr.Send(context.Background(), &Request{
		Method: http.MethodPost,
		URL:    srv.URL + "/v2/payments",
		Header: http.Header{"Content-Type": []string{"application/json"}},
		Body:   []byte(`{"a":1}`),
	})
	if err != nil {
		t.Fatalf("send: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("unexpected status %d", resp.StatusCode)
	}
	if string(resp.Body) != `{"ok":true}` {
		t.Fatalf("unexpected body %s", resp.Body)
	}
	if gotBody != `{"a":1}` {
		t.Fatalf("server saw body %q", gotBody)
	}
	if gotHeader.Get(RequestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}
}

func TestHTTP_KeepsCallerRequestID(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get(RequestIDHeader)
	}))
	defer srv.Close()

	h := http.Header{}
	h.Set(RequestIDHeader, "caller-id")
	if _, err := NewHTTP().Send(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL, Header: h}); err != nil {
		t.Fatalf("send: %v", err)
	}
	if got != "caller-id" {
		t.Fatalf("expected caller request id, got %q", got)
	}
	if h.Get(RequestIDHeader) != "caller-id" || len(h) != 1 {
		t.Fatalf("caller headers mutated: %v", h)
	}
}

func TestHTTP_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"errors":[{"code":"NOT_FOUND"}]}`))
	}))
	defer srv.Close()

	_, err := NewHTTP().Send(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	var serr *StatusError
	if !errors.As(err, &serr) {
		t.Fatalf("expected *StatusError, got %v", err)
	}
	if serr.StatusCode() != http.StatusNotFound {
		t.Fatalf("unexpected status %d", serr.StatusCode())
	}
	if string(serr.Response.Body) != `{"errors":[{"code":"NOT_FOUND"}]}` {
		t.Fatalf("error body not retained: %s", serr.Response.Body)
	}
}

func TestHTTP_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	_, err := NewHTTP().Send(context.Background(), &Request{
		Method:  http.MethodGet,
		URL:     srv.URL,
		Timeout: 50 * time.Millisecond,
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestHTTP_BodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("0123456789"))
	}))
	defer srv.Close()

	_, err := NewHTTP(WithMaxBodyBytes(4)).Send(context.Background(), &Request{Method: http.MethodGet, URL: srv.URL})
	if !errors.Is(err, ErrResponseTooLarge) {
		t.Fatalf("expected ErrResponseTooLarge, got %v", err)
	}
}
