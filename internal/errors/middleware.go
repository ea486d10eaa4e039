package errors

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// RecoveryMiddleware turns handler panics into 500 problem documents. A
// panic after a report body started streaming is only logged, since the
// status line is already gone.
func RecoveryMiddleware(handler *ErrorHandler) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				if ww.Status() != 0 {
					handler.logger.ErrorContext(r.Context(), "panic after response started",
						slog.Any("panic", rec),
						slog.Int("status", ww.Status()),
						slog.Int("bytes", ww.BytesWritten()),
						slog.String("path", r.URL.Path))
					return
				}
				handler.HandlePanic(ww, r, rec)
			}()
			next.ServeHTTP(ww, r)
		})
	}
}
