package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/danielostrow/planVision/internal/logger"
)

// RequestLogger writes one info entry per request with its status and
// duration. 5xx responses are logged as errors.
func RequestLogger(logger *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			reqID := chimw.GetReqID(r.Context())
			if status >= http.StatusInternalServerError {
				logger.Error("[%s] %s %s -> %d in %s", reqID, r.Method, r.URL.Path, status, time.Since(start))
				return
			}
			logger.Info("[%s] %s %s -> %d (%d bytes) in %s", reqID, r.Method, r.URL.Path, status, ww.BytesWritten(), time.Since(start))
		})
	}
}
