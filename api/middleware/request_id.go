package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/careswap-app/careswap-backend/pkg/logger"
)

const (
	requestIDHeader = "X-Request-Id"
	// Inbound IDs longer than this are replaced rather than propagated.
	maxRequestIDLen = 128
)

// RequestID ensures every request carries a correlation ID, echoing it back
// on the response and seeding it into the logging context.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := inboundRequestID(r)
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func inboundRequestID(r *http.Request) string {
	id := r.Header.Get(requestIDHeader)
	if id == "" || len(id) > maxRequestIDLen {
		return uuid.NewString()
	}
	return id
}
