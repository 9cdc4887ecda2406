// Package requesttime pins one "now" per HTTP request. Every operation inside
// a request observes the same timestamp, so aggregates touched by the same
// workflow carry identical UpdatedAt values.
package requesttime

import (
	"net/http"
	"time"

	"dealdesk/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request and stores
// it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
