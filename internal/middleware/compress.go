package middleware

import (
	"compress/gzip"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/andybalholm/brotli"
)

const (
	encodingBrotli = "br"
	encodingGzip   = "gzip"
)

var (
	gzipPool = sync.Pool{New: func() interface{} { return gzip.NewWriter(io.Discard) }}
	brPool   = sync.Pool{New: func() interface{} { return brotli.NewWriterLevel(io.Discard, 5) }}
)

type resetWriter interface {
	io.WriteCloser
	Reset(io.Writer)
}

// compressWriter starts compressing on the first write so handlers that
// never write, or answer with an empty status, get no Content-Encoding.
type compressWriter struct {
	http.ResponseWriter
	encoding    string
	enc         resetWriter
	wroteHeader bool
}

func (w *compressWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	h := w.Header()
	if status != http.StatusNoContent && status != http.StatusNotModified &&
		status >= http.StatusOK && h.Get("Content-Encoding") == "" {
		h.Set("Content-Encoding", w.encoding)
		h.Del("Content-Length")
		switch w.encoding {
		case encodingBrotli:
			bw := brPool.Get().(*brotli.Writer)
			bw.Reset(w.ResponseWriter)
			w.enc = bw
		default:
			gz := gzipPool.Get().(*gzip.Writer)
			gz.Reset(w.ResponseWriter)
			w.enc = gz
		}
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *compressWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	if w.enc == nil {
		return w.ResponseWriter.Write(b)
	}
	return w.enc.Write(b)
}

func (w *compressWriter) close() {
	if w.enc == nil {
		return
	}
	w.enc.Close()
	switch e := w.enc.(type) {
	case *brotli.Writer:
		brPool.Put(e)
	case *gzip.Writer:
		gzipPool.Put(e)
	}
	w.enc = nil
}

// negotiateEncoding picks br over gzip from an Accept-Encoding header,
// honoring q=0 exclusions.
func negotiateEncoding(header string) string {
	var br, gz bool
	for _, part := range strings.Split(header, ",") {
		name, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		if q := strings.TrimSpace(params); strings.HasPrefix(q, "q=0") && strings.Trim(q[2:], "0.") == "" {
			continue
		}
		switch strings.ToLower(strings.TrimSpace(name)) {
		case encodingBrotli:
			br = true
		case encodingGzip:
			gz = true
		}
	}
	switch {
	case br:
		return encodingBrotli
	case gz:
		return encodingGzip
	}
	return ""
}

// Compress encodes responses with brotli or gzip, as negotiated with the
// client, and always sets Vary: Accept-Encoding. Websocket upgrades pass
// through untouched.
func Compress(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.EqualFold(r.Header.Get("Upgrade"), "websocket") {
			next.ServeHTTP(w, r)
			return
		}
		w.Header().Add("Vary", "Accept-Encoding")
		encoding := negotiateEncoding(r.Header.Get("Accept-Encoding"))
		if encoding == "" || r.Method == http.MethodHead {
			next.ServeHTTP(w, r)
			return
		}

		cw := &compressWriter{ResponseWriter: w, encoding: encoding}
		defer cw.close()
		next.ServeHTTP(cw, r)
	})
}
