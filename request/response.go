package request

import "net/http"

// Response pairs a decoded result with the raw response it came from.
type Response[T any] struct {
	Result T

	StatusCode int
	Header     http.Header
	Body       []byte
}
