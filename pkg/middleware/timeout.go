package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// Timeout bounds request handling: the wrapped handler runs with a deadline
// on its context, and the client receives a 504 if nothing has been written
// by then. Search queries execute against a sealed in-memory index, so a
// handler hitting this deadline signals an overloaded process rather than a
// slow backend.
func Timeout(limit time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), limit)
			defer cancel()

			done := make(chan struct{})
			dw := &deadlineWriter{ResponseWriter: w}
			go func() {
				defer close(done)
				next.ServeHTTP(dw, r.WithContext(ctx))
			}()

			select {
			case <-done:
			case <-ctx.Done():
				if dw.wrote() {
					return
				}
				slog.Warn("request deadline exceeded",
					"method", r.Method,
					"path", r.URL.Path,
					"limit", limit,
				)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusGatewayTimeout)
				w.Write([]byte(`{"error":"request timeout"}`))
			}
		})
	}
}

// deadlineWriter records whether the handler produced any output. The flag is
// read from the middleware goroutine while the handler may still be writing.
type deadlineWriter struct {
	http.ResponseWriter
	written atomic.Bool
}

func (dw *deadlineWriter) WriteHeader(code int) {
	dw.written.Store(true)
	dw.ResponseWriter.WriteHeader(code)
}

func (dw *deadlineWriter) Write(b []byte) (int, error) {
	dw.written.Store(true)
	return dw.ResponseWriter.Write(b)
}

func (dw *deadlineWriter) wrote() bool {
	return dw.written.Load()
}
