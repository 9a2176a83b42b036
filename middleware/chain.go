package middleware

import (
	"net/http"
)

// Middleware wraps a handler, usually to run code before and after it.
type Middleware func(h http.Handler) http.Handler

// Chain wraps h so the first middleware sees the request first and h runs
// last.
func Chain(h http.Handler, middlewares ...Middleware) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// ChainFunc is Chain for a plain handler function.
func ChainFunc(f http.HandlerFunc, middlewares ...Middleware) http.Handler {
	return Chain(f, middlewares...)
}
