package middleware

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/basket-activity/pkg/logger"
)

const requestIDHeader = "X-Request-Id"

// RequestID propagates a caller supplied UUID request id or mints a new one, echoes
// it on the response and stores it on the logging context.
func RequestID(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := incomingRequestID(r)
			w.Header().Set(requestIDHeader, reqID)

			ctx := r.Context()
			if logg != nil {
				ctx = logg.WithRequestID(ctx, reqID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// incomingRequestID only trusts well-formed UUIDs from clients.
func incomingRequestID(r *http.Request) string {
	if parsed, err := uuid.Parse(r.Header.Get(requestIDHeader)); err == nil {
		return parsed.String()
	}
	return uuid.NewString()
}
