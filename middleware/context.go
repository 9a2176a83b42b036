package middleware

import (
	"context"
	"net/http"
)

type ContextKey int

const (
	ContextRequestID ContextKey = iota
)

// RequestID returns the id Logging attached to the request, if any.
func RequestID(r *http.Request) string {
	id, _ := r.Context().Value(ContextRequestID).(string)
	return id
}

func withRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ContextRequestID, id)
}
