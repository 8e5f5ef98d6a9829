package server

import (
	"net/http"
	"time"

	log "go.uber.org/zap"

	"github.com/yanet-platform/tripso/internal/types/requestid"
)

// requestIDMiddleware adds a request ID to the request context and response
// headers. An ID supplied by the client is kept.
func requestIDMiddleware(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			reqID := requestid.RequestID(r.Header.Get(requestid.HeaderKey))
			if reqID == "" {
				reqID = requestid.Generate()
			}

			r = r.WithContext(requestid.NewContext(r.Context(), reqID))
			w.Header().Set(requestid.HeaderKey, string(reqID))

			start := time.Now()
			next.ServeHTTP(w, r)

			logger.Debug("HTTP request completed",
				log.String("method", r.Method),
				log.String("path", r.URL.Path),
				log.String("remote_addr", r.RemoteAddr),
				requestid.Field(r.Context()),
				log.Duration("duration", time.Since(start)),
			)
		})
	}
}
