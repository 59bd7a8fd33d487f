// Package requestid assigns each request a unique ID for log correlation.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/willian-mayer/listify/pkg/requestcontext"
)

// Header is the response header carrying the request ID.
const Header = "X-Request-Id"

// Middleware generates a request ID, stores it in the context, and echoes it
// on the response. An incoming X-Request-Id is preserved so callers can trace
// requests across hops.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(Header)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		ctx := requestcontext.WithRequestID(r.Context(), requestID)
		w.Header().Set(Header, requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
