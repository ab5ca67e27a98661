package middleware

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"net/http"
	"strings"
)

// etagResponseWriter captures response body to generate ETag.
type etagResponseWriter struct {
	http.ResponseWriter
	buf    *bytes.Buffer
	status int
}

func (w *etagResponseWriter) WriteHeader(status int) {
	w.status = status
}

func (w *etagResponseWriter) Write(b []byte) (int, error) {
	return w.buf.Write(b)
}

// etagMatches reports whether an If-None-Match header names etag, using
// weak comparison.
func etagMatches(header, etag string) bool {
	if strings.TrimSpace(header) == "*" {
		return true
	}
	for _, candidate := range strings.Split(header, ",") {
		if strings.TrimPrefix(strings.TrimSpace(candidate), "W/") == etag {
			return true
		}
	}
	return false
}

// ETag buffers successful GET responses, tags them with a content hash and
// answers 304 when the client already has that body. Clients must
// revalidate every time since layout positions change continuously.
func ETag(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			next.ServeHTTP(w, r)
			return
		}
		etw := &etagResponseWriter{ResponseWriter: w, buf: &bytes.Buffer{}, status: http.StatusOK}
		next.ServeHTTP(etw, r)

		if etw.status != http.StatusOK {
			w.WriteHeader(etw.status)
			w.Write(etw.buf.Bytes())
			return
		}

		hash := sha256.Sum256(etw.buf.Bytes())
		etag := fmt.Sprintf(`"%x"`, hash[:16])
		w.Header().Set("ETag", etag)
		w.Header().Set("Cache-Control", "no-cache")

		if etagMatches(r.Header.Get("If-None-Match"), etag) {
			w.WriteHeader(http.StatusNotModified)
			return
		}
		w.WriteHeader(http.StatusOK)
		w.Write(etw.buf.Bytes())
	})
}
