// Package requestid assigns each request a correlation ID, honoring one
// supplied by an upstream proxy when present.
package requestid

import (
	"net/http"

	"github.com/google/uuid"

	"herald/pkg/requestcontext"
)

// Header is the inbound/outbound request ID header.
const Header = "X-Request-Id"

// Middleware stores a request ID in the context and echoes it on the
// response so clients can correlate poll responses with logs.
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
