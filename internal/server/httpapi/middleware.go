package httpapi

import (
	"errors"
	"net/http"
	"runtime/debug"
	"time"

	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/auth"
)

// Protect gates a route on the session cookies. A request that passes
// continues with the user id in its context and, if the access token had to
// be renewed, with fresh cookies already set on the response. Any failure
// ends the request with a 401.
func Protect(a *auth.Authenticator, secureCookies bool) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			access, refresh := tokensFromRequest(r)

			res, err := a.Authenticate(r.Context(), access, refresh)
			if err != nil {
				kind := auth.Unauthorized
				var ae *auth.AuthError
				if errors.As(err, &ae) {
					kind = ae.Kind
				}
				writeMessage(w, http.StatusUnauthorized, kind.Message())
				return
			}

			ctx := WithUserID(r.Context(), res.UserID)
			if res.Rotated != nil {
				setAuthCookies(w, *res.Rotated, secureCookies)
				ctx = WithRotated(ctx, res.Rotated)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func requestLogger(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Info(r.Context(), "http_request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"duration", time.Since(start),
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}

// recoverer turns a handler panic into a JSON 500. chi's Recoverer writes a
// plain-text body, which the frontend cannot parse.
func recoverer(log logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error(r.Context(), "panic in handler",
					"panic", rec,
					"request_id", chimiddleware.GetReqID(r.Context()),
					"stack", string(debug.Stack()),
				)
				writeMessage(w, http.StatusInternalServerError, msgServerError)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
