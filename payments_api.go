package payments

import (
	"context"
	"net/http"

	"github.com/ggoodman/payments-go/internal/logctx"
	"github.com/ggoodman/payments-go/request"
	"github.com/ggoodman/payments-go/schema"
	"github.com/google/uuid"
)

var (
	optionalString = schema.Optional(schema.String())
	optionalNumber = schema.Optional(schema.Number())
)

// PaymentsAPI groups the payment endpoints.
type PaymentsAPI struct {
	f *request.Factory
}

// ListPayments retrieves payments taken by the account making the request,
// at most 100 per page. Follow Cursor in the result to page through.
func (api *PaymentsAPI) ListPayments(ctx context.Context, params ListPaymentsParams, opts ...request.Option) (*request.Response[ListPaymentsResponse], error) {
	ctx = logctx.WithOperation(ctx, "ListPayments")
	req := api.f.CreateRequest(http.MethodGet, "/v2/payments")
	mapped, err := req.PrepareArgs(
		request.NewArg("begin_time", params.BeginTime, optionalString),
		request.NewArg("end_time", params.EndTime, optionalString),
		request.NewArg("sort_order", params.SortOrder, optionalString),
		request.NewArg("cursor", params.Cursor, optionalString),
		request.NewArg("location_id", params.LocationID, optionalString),
		request.NewArg("total", params.Total, optionalNumber),
		request.NewArg("last_4", params.Last4, optionalString),
		request.NewArg("card_brand", params.CardBrand, optionalString),
	)
	if err != nil {
		return nil, err
	}
	req.Query("begin_time", mapped["begin_time"]).
		Query("end_time", mapped["end_time"]).
		Query("sort_order", mapped["sort_order"]).
		Query("cursor", mapped["cursor"]).
		Query("location_id", mapped["location_id"]).
		Query("total", mapped["total"]).
		Query("last_4", mapped["last_4"]).
		Query("card_brand", mapped["card_brand"])
	return request.CallAsJSON[ListPaymentsResponse](ctx, req, listPaymentsResponseSchema, opts...)
}

// CreatePayment charges a payment source such as a card nonce or a card on
// file.
func (api *PaymentsAPI) CreatePayment(ctx context.Context, body CreatePaymentRequest, opts ...request.Option) (*request.Response[CreatePaymentResponse], error) {
	ctx = logctx.WithOperation(ctx, "CreatePayment")
	req := api.f.CreateRequest(http.MethodPost, "/v2/payments")
	mapped, err := req.PrepareArgs(request.NewArg("body", body, createPaymentRequestSchema))
	if err != nil {
		return nil, err
	}
	req.JSON(mapped["body"])
	return request.CallAsJSON[CreatePaymentResponse](ctx, req, paymentResponseSchema, opts...)
}

// CancelPaymentByIdempotencyKey voids the payment created with the given
// idempotency key. Use it when the outcome of CreatePayment is unknown. If no
// such payment exists nothing happens and the call still succeeds.
func (api *PaymentsAPI) CancelPaymentByIdempotencyKey(ctx context.Context, body CancelPaymentByIdempotencyKeyRequest, opts ...request.Option) (*request.Response[CancelPaymentByIdempotencyKeyResponse], error) {
	ctx = logctx.WithOperation(ctx, "CancelPaymentByIdempotencyKey")
	req := api.f.CreateRequest(http.MethodPost, "/v2/payments/cancel")
	mapped, err := req.PrepareArgs(request.NewArg("body", body, cancelPaymentByIdempotencyKeyRequestSchema))
	if err != nil {
		return nil, err
	}
	req.JSON(mapped["body"])
	return request.CallAsJSON[CancelPaymentByIdempotencyKeyResponse](ctx, req, cancelPaymentByIdempotencyKeyResponseSchema, opts...)
}

// GetPayment retrieves a single payment.
func (api *PaymentsAPI) GetPayment(ctx context.Context, paymentID string, opts ...request.Option) (*request.Response[GetPaymentResponse], error) {
	return api.paymentCall(logctx.WithOperation(ctx, "GetPayment"), http.MethodGet, paymentID, "", opts)
}

// CancelPayment voids a payment that was created with autocomplete off.
func (api *PaymentsAPI) CancelPayment(ctx context.Context, paymentID string, opts ...request.Option) (*request.Response[CancelPaymentResponse], error) {
	return api.paymentCall(logctx.WithOperation(ctx, "CancelPayment"), http.MethodPost, paymentID, "/cancel", opts)
}

// CompletePayment captures a payment that was created with autocomplete off.
func (api *PaymentsAPI) CompletePayment(ctx context.Context, paymentID string, opts ...request.Option) (*request.Response[CompletePaymentResponse], error) {
	return api.paymentCall(logctx.WithOperation(ctx, "CompletePayment"), http.MethodPost, paymentID, "/complete", opts)
}

// paymentCall addresses /v2/payments/{payment_id}{suffix}.
func (api *PaymentsAPI) paymentCall(ctx context.Context, method, paymentID, suffix string, opts []request.Option) (*request.Response[PaymentResponse], error) {
	req := api.f.CreateRequest(method, "")
	mapped, err := req.PrepareArgs(request.NewArg("payment_id", paymentID, schema.String()))
	if err != nil {
		return nil, err
	}
	req.AppendTemplatePath([]string{"/v2/payments/", suffix}, mapped["payment_id"])
	return request.CallAsJSON[PaymentResponse](ctx, req, paymentResponseSchema, opts...)
}

// NewIdempotencyKey returns a fresh random key for CreatePayment. Reuse the
// same key when retrying a request whose outcome is unknown.
func NewIdempotencyKey() string {
	return uuid.NewString()
}
