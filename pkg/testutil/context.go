package testutil

import (
	"net/http"
	"time"

	id "herald/pkg/domain"
	"herald/pkg/requestcontext"
)

// WithOwner stamps an owner ID onto the request context, simulating what the
// auth middleware does for authenticated requests. Invalid IDs are ignored
// so tests can exercise the unauthenticated path with a bogus string.
func WithOwner(req *http.Request, ownerID string) *http.Request {
	parsed, err := id.ParseOwnerID(ownerID)
	if err != nil {
		return req
	}
	return req.WithContext(requestcontext.WithOwnerID(req.Context(), parsed))
}

// WithRequestTime pins the request-scoped clock, letting tests assert on
// recorded timestamps deterministically.
func WithRequestTime(req *http.Request, t time.Time) *http.Request {
	return req.WithContext(requestcontext.WithTime(req.Context(), t))
}

// WithRequestID stamps a request ID onto the request context.
func WithRequestID(req *http.Request, requestID string) *http.Request {
	return req.WithContext(requestcontext.WithRequestID(req.Context(), requestID))
}
