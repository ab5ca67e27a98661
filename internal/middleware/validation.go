package middleware

import (
	"mime"
	"net/http"

	"github.com/onnwee/forcegraph/internal/apierr"
)

// MaxRequestBodySize bounds request bodies (1MB); graph mutations are small.
const MaxRequestBodySize = 1 << 20

func hasBody(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return r.ContentLength != 0
	}
	return false
}

// ValidateRequestBody limits request bodies to MaxRequestBodySize and
// rejects bodies that are not JSON.
func ValidateRequestBody(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hasBody(r) {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				apierr.WriteErrorWithContext(w, r,
					apierr.ValidationInvalidValue("Content-Type", "Content-Type must be application/json"))
				return
			}
			r.Body = http.MaxBytesReader(w, r.Body, MaxRequestBodySize)
		}
		next.ServeHTTP(w, r)
	})
}
