package http

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/collegeos/internal/authentication"
	"github.com/collegeos/internal/devices"
	"github.com/collegeos/internal/keys"
)

type Middleware func(http.HandlerFunc) http.HandlerFunc

func WithMiddlewares(middlewares ...Middleware) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		for i := len(middlewares) - 1; i > -1; i-- {
			next = middlewares[i](next)
		}
		return next
	}
}

// WithSecurityHeaders stops browsers from sniffing or executing responses.
func WithSecurityHeaders() Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("Content-Security-Policy", "default-src 'none'; frame-ancestors 'none'")
			next(w, r)
		}
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func WithAccessLogs(logger *slog.Logger) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next(recorder, r)
			logger.InfoContext(r.Context(), "request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", recorder.status,
				"duration", time.Since(start))
		}
	}
}

// WithAuthentication resolves the session cookie into a student and rejects
// the request when there is none.
func WithAuthentication(
	logger *slog.Logger,
	key *keys.Key,
	authenticationService *authentication.Service,
) Middleware {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			dvc, ok := devices.FromCookies(r.Cookies(), key)
			if !ok {
				writeError(logger, w, authentication.ErrUnauthenticated)
				return
			}

			ctx, err := authenticationService.AuthenticateContext(r.Context(), dvc.SessionID)
			if errors.Is(err, authentication.ErrUnauthenticated) {
				for _, cookie := range devices.ExpiredCookies(r.TLS != nil) {
					http.SetCookie(w, cookie)
				}
				writeError(logger, w, err)
				return
			} else if err != nil {
				logger.Error("authenticate context", "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				return
			}

			next(w, r.WithContext(ctx))
		}
	}
}
