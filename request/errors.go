package request

import (
	"errors"
	"fmt"

	"github.com/ggoodman/payments-go/schema"
	"github.com/ggoodman/payments-go/transport"
)

// ErrRequestConsumed is returned when a Builder is sent a second time.
var ErrRequestConsumed = errors.New("request: builder already sent")

// ArgumentError reports an argument that failed validation. No request was
// sent.
type ArgumentError struct {
	Name string
	Err  *schema.ValidationError
}

func (e *ArgumentError) Error() string {
	if len(e.Err.Path) == 0 {
		return fmt.Sprintf("invalid argument %s: %s", e.Name, e.Err.Message)
	}
	return fmt.Sprintf("invalid argument %s: %s", e.Name, e.Err)
}

func (e *ArgumentError) Unwrap() error { return e.Err }

// ResponseDecodeError reports a response that arrived successfully but did
// not conform to the declared response schema.
type ResponseDecodeError struct {
	Err      *schema.ValidationError
	Response *transport.Response
}

func (e *ResponseDecodeError) Error() string {
	return fmt.Sprintf("response violates schema (status %d): %s", e.Response.StatusCode, e.Err)
}

func (e *ResponseDecodeError) Unwrap() error { return e.Err }
