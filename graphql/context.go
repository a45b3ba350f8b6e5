package graphql

import (
	"context"
	"net/http"
)

// Context keys for resolver injection (avoids circular imports).
type contextKey string

const CtxKeySource contextKey = "mutationSource"

// HeaderSource attributes mutations in the event journal.
// Resolved from the Cart-Source header, default "graphql".
const HeaderSource = "Cart-Source"

// SourceFromContext returns the mutation source for the current request.
func SourceFromContext(ctx context.Context) string {
	if v := ctx.Value(CtxKeySource); v != nil {
		if s, ok := v.(string); ok && s != "" {
			return s
		}
	}
	return "graphql"
}

// WithSource attaches the mutation source to context.
func WithSource(ctx context.Context, source string) context.Context {
	return context.WithValue(ctx, CtxKeySource, source)
}

// GetSource extracts the mutation source from a request.
func GetSource(r *http.Request) string {
	if h := r.Header.Get(HeaderSource); h != "" {
		return h
	}
	return "graphql"
}
