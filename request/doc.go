// Package request builds and sends API requests on behalf of endpoint
// methods.
//
// An endpoint method follows a fixed sequence:
//
//	b := f.CreateRequest(http.MethodGet, "")
//	mapped, err := b.PrepareArgs(
//	    request.NewArg("payment_id", paymentID, schema.String()),
//	)
//	if err != nil { return nil, err }
//	b.AppendTemplatePath([]string{"/v2/payments/", ""}, mapped["payment_id"])
//	return request.CallAsJSON[GetPaymentResponse](ctx, b, getPaymentResponseSchema, opts...)
//
// PrepareArgs validates every argument before anything is sent, so bad input
// never reaches the network. Query, AppendTemplatePath and JSON only mutate
// the Builder. CallAsJSON performs the single network exchange through the
// configured transport.Transport, then decodes the body against the response
// schema.
//
// A Builder belongs to one call. It is not safe for concurrent use and can be
// sent only once. The Factory it came from is immutable and may be shared
// freely.
//
// # Errors
//
// Three failure classes stay distinguishable:
//
//	*ArgumentError        the caller's input did not match its schema
//	*ResponseDecodeError  the server replied with something off-contract
//	anything else         from the transport, returned unchanged
package request
