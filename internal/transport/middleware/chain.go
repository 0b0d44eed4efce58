// Package middleware holds the HTTP wrappers of the probe and webhook server
// and the per-user limiter applied to chat updates.
package middleware

import "net/http"

// Middleware wraps an http.Handler.
type Middleware func(http.Handler) http.Handler

// Chain composes middleware so that Chain(a, b)(h) == a(b(h)): the first one
// given runs outermost.
func Chain(mws ...Middleware) Middleware {
	return func(final http.Handler) http.Handler {
		for i := len(mws) - 1; i >= 0; i-- {
			final = mws[i](final)
		}
		return final
	}
}
