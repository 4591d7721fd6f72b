package payments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ggoodman/payments-go/auth"
	"github.com/ggoodman/payments-go/request"
	"github.com/ggoodman/payments-go/schema"
	"github.com/ggoodman/payments-go/transport"
	"github.com/google/uuid"
)

type capture struct {
	method string
	uri    string
	body   []byte
	header http.Header
}

func newAPIServer(t *testing.T, status int, reply string) (*httptest.Server, *capture) {
	t.Helper()
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		c.method = r.Method
		c.uri = r.URL.RequestURI()
		c.body = body
		c.header = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, reply)
	}))
	t.Cleanup(srv.Close)
	return srv, c
}

func newTestClient(t *testing.T, srv *httptest.Server, opts ...Option) *Client {
	t.Helper()
	client, err := NewClient(append([]Option{WithBaseURL(srv.URL), WithCredentials(auth.Static("sandbox-token"))}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return client
}

const paymentReply = `{"payment":{"id":"pay_1","status":"APPROVED","amount_money":{"amount":100,"currency":"USD"}}}`

func TestListPayments(t *testing.T) {
	srv, c := newAPIServer(t, 200, `{"payments":[{"id":"pay_1","total_money":{"amount":500,"currency":"USD"}}],"cursor":"next"}`)
	client := newTestClient(t, srv)

	resp, err := client.Payments.ListPayments(context.Background(), ListPaymentsParams{
		BeginTime: String("2024-01-01T00:00:00Z"),
		SortOrder: String("ASC"),
		Total:     Int64(500),
		Last4:     String("1111"),
	})
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	want := "/v2/payments?begin_time=2024-01-01T00%3A00%3A00Z&sort_order=ASC&total=500&last_4=1111"
	if c.uri != want {
		t.Fatalf("unexpected uri\n got %s\nwant %s", c.uri, want)
	}
	if c.method != http.MethodGet {
		t.Fatalf("unexpected method %s", c.method)
	}
	if c.header.Get("Authorization") != "Bearer sandbox-token" {
		t.Fatalf("missing bearer token")
	}
	if c.header.Get("User-Agent") != "payments-go/"+Version {
		t.Fatalf("unexpected user agent %q", c.header.Get("User-Agent"))
	}
	if c.header.Get(transport.RequestIDHeader) == "" {
		t.Fatalf("missing request id")
	}
	r := resp.Result
	if len(r.Payments) != 1 || *r.Payments[0].ID != "pay_1" || r.Payments[0].TotalMoney.Amount != 500 {
		t.Fatalf("unexpected payments %+v", r.Payments)
	}
	if r.Cursor == nil || *r.Cursor != "next" {
		t.Fatalf("unexpected cursor %v", r.Cursor)
	}
}

func TestListPayments_NoFilters(t *testing.T) {
	srv, c := newAPIServer(t, 200, `{}`)
	client := newTestClient(t, srv)
	resp, err := client.Payments.ListPayments(context.Background(), ListPaymentsParams{})
	if err != nil {
		t.Fatalf("ListPayments: %v", err)
	}
	if c.uri != "/v2/payments" {
		t.Fatalf("unexpected uri %s", c.uri)
	}
	if resp.Result.Payments != nil || resp.Result.Cursor != nil {
		t.Fatalf("expected empty result, got %+v", resp.Result)
	}
}

func TestCreatePayment(t *testing.T) {
	srv, c := newAPIServer(t, 200, paymentReply)
	client := newTestClient(t, srv)

	key := NewIdempotencyKey()
	resp, err := client.Payments.CreatePayment(context.Background(), CreatePaymentRequest{
		SourceID:       "cnon:card-nonce-ok",
		IdempotencyKey: key,
		AmountMoney:    Money{Amount: 100, Currency: "USD"},
		Autocomplete:   Bool(false),
	})
	if err != nil {
		t.Fatalf("CreatePayment: %v", err)
	}
	if c.method != http.MethodPost || c.uri != "/v2/payments" {
		t.Fatalf("unexpected request %s %s", c.method, c.uri)
	}
	want := `{"amount_money":{"amount":100,"currency":"USD"},"autocomplete":false,"idempotency_key":"` + key + `","source_id":"cnon:card-nonce-ok"}`
	if string(c.body) != want {
		t.Fatalf("unexpected body\n got %s\nwant %s", c.body, want)
	}
	if c.header.Get("Content-Type") != "application/json" {
		t.Fatalf("unexpected content type %q", c.header.Get("Content-Type"))
	}
	if p := resp.Result.Payment; p == nil || *p.ID != "pay_1" || p.AmountMoney.Currency != "USD" {
		t.Fatalf("unexpected payment %+v", p)
	}
}

func TestCreatePaymentSchema_RejectsNonObject(t *testing.T) {
	client, err := NewClient()
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	req := client.Payments.f.CreateRequest(http.MethodPost, "/v2/payments")
	_, err = req.PrepareArgs(request.NewArg("body", "not an object", createPaymentRequestSchema))
	var aerr *request.ArgumentError
	if !errors.As(err, &aerr) || aerr.Name != "body" {
		t.Fatalf("expected body argument error, got %v", err)
	}
	if !errors.Is(err, schema.ErrTypeMismatch) {
		t.Fatalf("expected type mismatch, got %v", err)
	}
}

func TestCancelPaymentByIdempotencyKey(t *testing.T) {
	srv, c := newAPIServer(t, 200, `{}`)
	client := newTestClient(t, srv)
	if _, err := client.Payments.CancelPaymentByIdempotencyKey(context.Background(), CancelPaymentByIdempotencyKeyRequest{IdempotencyKey: "k-1"}); err != nil {
		t.Fatalf("CancelPaymentByIdempotencyKey: %v", err)
	}
	if c.method != http.MethodPost || c.uri != "/v2/payments/cancel" {
		t.Fatalf("unexpected request %s %s", c.method, c.uri)
	}
	if string(c.body) != `{"idempotency_key":"k-1"}` {
		t.Fatalf("unexpected body %s", c.body)
	}
}

func TestPaymentByID(t *testing.T) {
	tests := []struct {
		name   string
		call   func(*PaymentsAPI) (*request.Response[PaymentResponse], error)
		method string
		uri    string
	}{
		{"get", func(a *PaymentsAPI) (*request.Response[PaymentResponse], error) {
			return a.GetPayment(context.Background(), "pay/1")
		}, http.MethodGet, "/v2/payments/pay%2F1"},
		{"cancel", func(a *PaymentsAPI) (*request.Response[PaymentResponse], error) {
			return a.CancelPayment(context.Background(), "pay_1")
		}, http.MethodPost, "/v2/payments/pay_1/cancel"},
		{"complete", func(a *PaymentsAPI) (*request.Response[PaymentResponse], error) {
			return a.CompletePayment(context.Background(), "pay_1")
		}, http.MethodPost, "/v2/payments/pay_1/complete"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv, c := newAPIServer(t, 200, paymentReply)
			client := newTestClient(t, srv)
			resp, err := tt.call(client.Payments)
			if err != nil {
				t.Fatalf("call: %v", err)
			}
			if c.method != tt.method || c.uri != tt.uri {
				t.Fatalf("unexpected request %s %s", c.method, c.uri)
			}
			if c.header.Get("Content-Type") != "" || len(c.body) != 0 {
				t.Fatalf("unexpected request body")
			}
			if resp.Result.Payment == nil || *resp.Result.Payment.Status != "APPROVED" {
				t.Fatalf("unexpected result %+v", resp.Result)
			}
		})
	}
}

func TestGetPayment_EscapesID(t *testing.T) {
	var rawPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rawPath = r.URL.EscapedPath()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, paymentReply)
	}))
	defer srv.Close()
	client := newTestClient(t, srv)
	if _, err := client.Payments.GetPayment(context.Background(), "pay/1"); err != nil {
		t.Fatalf("GetPayment: %v", err)
	}
	if rawPath != "/v2/payments/pay%2F1" {
		t.Fatalf("unexpected path %s", rawPath)
	}
}

func TestGetPayment_ResponseViolatesSchema(t *testing.T) {
	srv, _ := newAPIServer(t, 200, `{"payment":{"id":42}}`)
	client := newTestClient(t, srv)
	_, err := client.Payments.GetPayment(context.Background(), "pay_1")
	var derr *request.ResponseDecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *ResponseDecodeError, got %v", err)
	}
	if derr.Err.Path.String() != "payment.id" || derr.Err.Code != schema.TypeMismatch {
		t.Fatalf("unexpected validation error %+v", derr.Err)
	}
}

func TestGetPayment_FractionalAmount(t *testing.T) {
	srv, _ := newAPIServer(t, 200, `{"payment":{"id":"pay_1","amount_money":{"amount":1.5,"currency":"USD"}}}`)
	client := newTestClient(t, srv)
	_, err := client.Payments.GetPayment(context.Background(), "pay_1")
	var derr *request.ResponseDecodeError
	if !errors.As(err, &derr) {
		t.Fatalf("expected *ResponseDecodeError, got %v", err)
	}
	if derr.Err.Path.String() != "payment.amount_money.amount" || derr.Err.Code != schema.TypeMismatch {
		t.Fatalf("unexpected validation error %+v", derr.Err)
	}
}

func TestGetPayment_APIError(t *testing.T) {
	srv, _ := newAPIServer(t, 404, `{"errors":[{"category":"INVALID_REQUEST_ERROR","code":"NOT_FOUND"}]}`)
	client := newTestClient(t, srv)
	_, err := client.Payments.GetPayment(context.Background(), "missing")
	var serr *transport.StatusError
	if !errors.As(err, &serr) || serr.StatusCode() != http.StatusNotFound {
		t.Fatalf("expected 404 status error, got %v", err)
	}
	var body struct {
		Errors []Error `json:"errors"`
	}
	if err := json.Unmarshal(serr.Response.Body, &body); err != nil || body.Errors[0].Code != "NOT_FOUND" {
		t.Fatalf("error body not retained: %s", serr.Response.Body)
	}
}

func TestNewIdempotencyKey(t *testing.T) {
	a, b := NewIdempotencyKey(), NewIdempotencyKey()
	if a == b {
		t.Fatalf("expected distinct keys")
	}
	if _, err := uuid.Parse(a); err != nil {
		t.Fatalf("key is not a uuid: %v", err)
	}
}
