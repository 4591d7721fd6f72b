package payments

import "github.com/ggoodman/payments-go/schema"

// Money is an amount in the smallest denomination of its currency, e.g.
// cents for USD.
type Money struct {
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
}

var moneySchema = schema.Object(schema.Fields{
	"amount":   schema.Number(),
	"currency": schema.String(),
})

// Error describes one problem reported by the API. Responses may carry
// errors even when the HTTP status is 2xx.
type Error struct {
	Category string  `json:"category"`
	Code     string  `json:"code"`
	Detail   *string `json:"detail,omitempty"`
	Field    *string `json:"field,omitempty"`
}

var errorSchema = schema.Object(schema.Fields{
	"category": schema.String(),
	"code":     schema.String(),
	"detail":   schema.Optional(schema.String()),
	"field":    schema.Optional(schema.String()),
})

var errorsSchema = schema.Optional(schema.Array(errorSchema))

// Card holds the non-sensitive details of a payment card.
type Card struct {
	ID             *string `json:"id,omitempty"`
	CardBrand      *string `json:"card_brand,omitempty"`
	Last4          *string `json:"last_4,omitempty"`
	ExpMonth       *int64  `json:"exp_month,omitempty"`
	ExpYear        *int64  `json:"exp_year,omitempty"`
	CardholderName *string `json:"cardholder_name,omitempty"`
	Fingerprint    *string `json:"fingerprint,omitempty"`
}

var cardSchema = schema.Object(schema.Fields{
	"id":              schema.Optional(schema.String()),
	"card_brand":      schema.Optional(schema.String()),
	"last_4":          schema.Optional(schema.String()),
	"exp_month":       schema.Optional(schema.Number()),
	"exp_year":        schema.Optional(schema.Number()),
	"cardholder_name": schema.Optional(schema.String()),
	"fingerprint":     schema.Optional(schema.String()),
})

// CardPaymentDetails describes how a card payment was processed.
type CardPaymentDetails struct {
	Status               *string `json:"status,omitempty"`
	Card                 *Card   `json:"card,omitempty"`
	EntryMethod          *string `json:"entry_method,omitempty"`
	CvvStatus            *string `json:"cvv_status,omitempty"`
	AvsStatus            *string `json:"avs_status,omitempty"`
	StatementDescription *string `json:"statement_description,omitempty"`
	AuthResultCode       *string `json:"auth_result_code,omitempty"`
}

var cardPaymentDetailsSchema = schema.Object(schema.Fields{
	"status":                schema.Optional(schema.String()),
	"card":                  schema.Optional(cardSchema),
	"entry_method":          schema.Optional(schema.String()),
	"cvv_status":            schema.Optional(schema.String()),
	"avs_status":            schema.Optional(schema.String()),
	"statement_description": schema.Optional(schema.String()),
	"auth_result_code":      schema.Optional(schema.String()),
})

// Payment is a charge against a payment source.
type Payment struct {
	ID            *string             `json:"id,omitempty"`
	CreatedAt     *string             `json:"created_at,omitempty"`
	UpdatedAt     *string             `json:"updated_at,omitempty"`
	AmountMoney   *Money              `json:"amount_money,omitempty"`
	TipMoney      *Money              `json:"tip_money,omitempty"`
	TotalMoney    *Money              `json:"total_money,omitempty"`
	AppFeeMoney   *Money              `json:"app_fee_money,omitempty"`
	Status        *string             `json:"status,omitempty"`
	DelayDuration *string             `json:"delay_duration,omitempty"`
	SourceType    *string             `json:"source_type,omitempty"`
	CardDetails   *CardPaymentDetails `json:"card_details,omitempty"`
	LocationID    *string             `json:"location_id,omitempty"`
	OrderID       *string             `json:"order_id,omitempty"`
	ReferenceID   *string             `json:"reference_id,omitempty"`
	CustomerID    *string             `json:"customer_id,omitempty"`
	Note          *string             `json:"note,omitempty"`
	ReceiptNumber *string             `json:"receipt_number,omitempty"`
	ReceiptURL    *string             `json:"receipt_url,omitempty"`
}

var paymentSchema = schema.Object(schema.Fields{
	"id":             schema.Optional(schema.String()),
	"created_at":     schema.Optional(schema.String()),
	"updated_at":     schema.Optional(schema.String()),
	"amount_money":   schema.Optional(moneySchema),
	"tip_money":      schema.Optional(moneySchema),
	"total_money":    schema.Optional(moneySchema),
	"app_fee_money":  schema.Optional(moneySchema),
	"status":         schema.Optional(schema.String()),
	"delay_duration": schema.Optional(schema.String()),
	"source_type":    schema.Optional(schema.String()),
	"card_details":   schema.Optional(cardPaymentDetailsSchema),
	"location_id":    schema.Optional(schema.String()),
	"order_id":       schema.Optional(schema.String()),
	"reference_id":   schema.Optional(schema.String()),
	"customer_id":    schema.Optional(schema.String()),
	"note":           schema.Optional(schema.String()),
	"receipt_number": schema.Optional(schema.String()),
	"receipt_url":    schema.Optional(schema.String()),
})

// ListPaymentsParams filters ListPayments. Nil fields are not sent.
type ListPaymentsParams struct {
	// BeginTime is the inclusive start of the reporting period, RFC 3339.
	BeginTime *string
	// EndTime is the end of the reporting period, RFC 3339.
	EndTime *string
	// SortOrder is ASC (oldest first) or DESC (the default).
	SortOrder *string
	// Cursor continues a previous listing.
	Cursor     *string
	LocationID *string
	// Total matches the exact amount of total_money.
	Total     *int64
	Last4     *string
	CardBrand *string
}

type ListPaymentsResponse struct {
	Errors   []Error   `json:"errors,omitempty"`
	Payments []Payment `json:"payments,omitempty"`
	Cursor   *string   `json:"cursor,omitempty"`
}

var listPaymentsResponseSchema = schema.Object(schema.Fields{
	"errors":   errorsSchema,
	"payments": schema.Optional(schema.Array(paymentSchema)),
	"cursor":   schema.Optional(schema.String()),
})

// CreatePaymentRequest charges SourceID for AmountMoney. IdempotencyKey must
// be unique per payment; see NewIdempotencyKey.
type CreatePaymentRequest struct {
	SourceID          string  `json:"source_id"`
	IdempotencyKey    string  `json:"idempotency_key"`
	AmountMoney       Money   `json:"amount_money"`
	TipMoney          *Money  `json:"tip_money,omitempty"`
	AppFeeMoney       *Money  `json:"app_fee_money,omitempty"`
	DelayDuration     *string `json:"delay_duration,omitempty"`
	Autocomplete      *bool   `json:"autocomplete,omitempty"`
	OrderID           *string `json:"order_id,omitempty"`
	CustomerID        *string `json:"customer_id,omitempty"`
	LocationID        *string `json:"location_id,omitempty"`
	ReferenceID       *string `json:"reference_id,omitempty"`
	VerificationToken *string `json:"verification_token,omitempty"`
	Note              *string `json:"note,omitempty"`
}

var createPaymentRequestSchema = schema.Object(schema.Fields{
	"source_id":          schema.String(),
	"idempotency_key":    schema.String(),
	"amount_money":       moneySchema,
	"tip_money":          schema.Optional(moneySchema),
	"app_fee_money":      schema.Optional(moneySchema),
	"delay_duration":     schema.Optional(schema.String()),
	"autocomplete":       schema.Optional(schema.Boolean()),
	"order_id":           schema.Optional(schema.String()),
	"customer_id":        schema.Optional(schema.String()),
	"location_id":        schema.Optional(schema.String()),
	"reference_id":       schema.Optional(schema.String()),
	"verification_token": schema.Optional(schema.String()),
	"note":               schema.Optional(schema.String()),
})

// PaymentResponse is the envelope shared by every endpoint that returns a
// single payment.
type PaymentResponse struct {
	Errors  []Error  `json:"errors,omitempty"`
	Payment *Payment `json:"payment,omitempty"`
}

var paymentResponseSchema = schema.Object(schema.Fields{
	"errors":  errorsSchema,
	"payment": schema.Optional(paymentSchema),
})

type (
	CreatePaymentResponse   = PaymentResponse
	GetPaymentResponse      = PaymentResponse
	CancelPaymentResponse   = PaymentResponse
	CompletePaymentResponse = PaymentResponse
)

// CancelPaymentByIdempotencyKeyRequest names the CreatePayment call to void.
type CancelPaymentByIdempotencyKeyRequest struct {
	IdempotencyKey string `json:"idempotency_key"`
}

var cancelPaymentByIdempotencyKeyRequestSchema = schema.Object(schema.Fields{
	"idempotency_key": schema.String(),
})

type CancelPaymentByIdempotencyKeyResponse struct {
	Errors []Error `json:"errors,omitempty"`
}

var cancelPaymentByIdempotencyKeyResponseSchema = schema.Object(schema.Fields{
	"errors": errorsSchema,
})

// Schemas exposes the validators for the models, keyed by model name. The
// CLI prints them as JSON Schema.
func Schemas() map[string]schema.Validator {
	return map[string]schema.Validator{
		"Money":                                 moneySchema,
		"Error":                                 errorSchema,
		"Payment":                               paymentSchema,
		"ListPaymentsResponse":                  listPaymentsResponseSchema,
		"CreatePaymentRequest":                  createPaymentRequestSchema,
		"PaymentResponse":                       paymentResponseSchema,
		"CancelPaymentByIdempotencyKeyRequest":  cancelPaymentByIdempotencyKeyRequestSchema,
		"CancelPaymentByIdempotencyKeyResponse": cancelPaymentByIdempotencyKeyResponseSchema,
	}
}

// String returns a pointer to s, for optional fields.
func String(s string) *string { return &s }

// Int64 returns a pointer to n, for optional fields.
func Int64(n int64) *int64 { return &n }

// Bool returns a pointer to b, for optional fields.
func Bool(b bool) *bool { return &b }
