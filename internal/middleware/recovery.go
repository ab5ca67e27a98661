package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/getsentry/sentry-go"

	"github.com/onnwee/forcegraph/internal/apierr"
	"github.com/onnwee/forcegraph/internal/errorreporting"
	"github.com/onnwee/forcegraph/internal/logger"
)

// RecoverWithSentry recovers from panics, reports them to Sentry and answers
// with a SYSTEM_INTERNAL error.
func RecoverWithSentry(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			err := recover()
			if err == nil {
				return
			}
			if err == http.ErrAbortHandler {
				// the server suppresses this one; keep that behavior
				panic(err)
			}
			stack := debug.Stack()
			logger.ErrorContext(r.Context(), "Panic recovered",
				"error", err,
				"stack", string(stack),
				"method", r.Method,
				"path", r.URL.Path,
			)

			if errorreporting.IsSentryEnabled() {
				hub := sentry.CurrentHub().Clone()
				hub.Scope().SetRequest(r)
				hub.Scope().SetLevel(sentry.LevelError)
				hub.Scope().SetTag("method", r.Method)
				hub.Scope().SetTag("path", r.URL.Path)
				if e, ok := err.(error); ok {
					hub.CaptureException(e)
				} else {
					hub.CaptureMessage(errorreporting.ScrubPII(string(stack)))
				}
			}

			apierr.WriteErrorWithContext(w, r, apierr.SystemInternal(""))
		}()

		next.ServeHTTP(w, r)
	})
}
