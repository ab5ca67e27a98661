package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestETag(t *testing.T) {
	body := `{"message":"test response"}`
	handler := ETag(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))

	first := httptest.NewRecorder()
	handler.ServeHTTP(first, httptest.NewRequest(http.MethodGet, "/api/layout/config", nil))
	etag := first.Header().Get("ETag")
	if first.Code != http.StatusOK || etag == "" || first.Body.String() != body {
		t.Fatalf("unexpected first response: %d etag=%q body=%q", first.Code, etag, first.Body.String())
	}
	if first.Header().Get("Cache-Control") != "no-cache" {
		t.Errorf("expected no-cache, got %q", first.Header().Get("Cache-Control"))
	}

	tests := []struct {
		name        string
		ifNoneMatch string
		status      int
	}{
		{"matching", etag, http.StatusNotModified},
		{"weak matching", "W/" + etag, http.StatusNotModified},
		{"in list", `"other", ` + etag, http.StatusNotModified},
		{"star", "*", http.StatusNotModified},
		{"different", `"different-etag"`, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/layout/config", nil)
			req.Header.Set("If-None-Match", tt.ifNoneMatch)
			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.status {
				t.Errorf("expected status %d, got %d", tt.status, rr.Code)
			}
			if tt.status == http.StatusNotModified && rr.Body.Len() != 0 {
				t.Error("304 must not carry a body")
			}
		})
	}
}

func TestETagSkipsErrorsAndWrites(t *testing.T) {
	failing := ETag(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte("missing"))
	}))
	rr := httptest.NewRecorder()
	failing.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusNotFound || rr.Header().Get("ETag") != "" || rr.Body.String() != "missing" {
		t.Errorf("unexpected error passthrough: %d %q", rr.Code, rr.Header().Get("ETag"))
	}

	post := httptest.NewRecorder()
	failing.ServeHTTP(post, httptest.NewRequest(http.MethodPost, "/", nil))
	if post.Header().Get("ETag") != "" {
		t.Error("POST responses must not be tagged")
	}
}
