package logctx

import (
	"context"
	"log/slog"
)

// Handler enriches records with the request and operation data stored in the
// record's context.
type Handler struct {
	slog.Handler
}

func (h Handler) Handle(ctx context.Context, r slog.Record) error {
	if rd, ok := ctx.Value(requestDataKey{}).(*RequestData); ok {
		r.AddAttrs(slog.Group("req",
			slog.String("id", rd.RequestID),
			slog.String("method", rd.Method),
			slog.String("host", rd.Host),
			slog.String("path", rd.Path),
		))
	}

	if od, ok := ctx.Value(operationDataKey{}).(*OperationData); ok {
		r.AddAttrs(slog.Group("op",
			slog.String("name", od.Name),
		))
	}

	return h.Handler.Handle(ctx, r)
}

func (h Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return Handler{Handler: h.Handler.WithAttrs(attrs)}
}

func (h Handler) WithGroup(name string) slog.Handler {
	return Handler{Handler: h.Handler.WithGroup(name)}
}

type requestDataKey struct{}

type RequestData struct {
	RequestID string
	Method    string
	Host      string
	Path      string
}

func WithRequestData(ctx context.Context, data *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, data)
}

type operationDataKey struct{}

// OperationData names the API operation a request belongs to.
type OperationData struct {
	Name string
}

func WithOperation(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationDataKey{}, &OperationData{Name: name})
}

// New returns a logger that writes through h with context enrichment, or a
// logger that discards everything when h is nil.
func New(h slog.Handler) *slog.Logger {
	if h == nil {
		return slog.New(slog.DiscardHandler)
	}
	return slog.New(Handler{Handler: h})
}

// Operation returns the operation name stored by WithOperation, or "".
func Operation(ctx context.Context) string {
	if od, ok := ctx.Value(operationDataKey{}).(*OperationData); ok {
		return od.Name
	}
	return ""
}
