// Package ctxutil carries request-scoped data — trace/request ids and the
// authenticated actor for the internal ops API — through context.Context.
package ctxutil

import "context"

type requestDataKey struct{}

// RequestData is attached by http middleware and read by handlers/services
// that need to know who is calling (ops API) or how to correlate logs.
type RequestData struct {
	TraceID   string
	RequestID string
	OpsActor  string
}

func WithRequestData(ctx context.Context, rd *RequestData) context.Context {
	return context.WithValue(ctx, requestDataKey{}, rd)
}

func GetRequestData(ctx context.Context) *RequestData {
	rd, _ := ctx.Value(requestDataKey{}).(*RequestData)
	return rd
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
