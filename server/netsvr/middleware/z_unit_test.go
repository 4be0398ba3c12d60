package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

func compressedEcho(body string) http.Handler {
	return Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body))
	}))
}

func TestCompressionGzipRoundTrip(t *testing.T) {
	body := strings.Repeat("uniform draws compress well ", 64)
	q := httptest.NewRequest(http.MethodGet, "/", nil)
	q.Header.Set("Accept-Encoding", "gzip")
	w := httptest.NewRecorder()
	compressedEcho(body).ServeHTTP(w, q)

	if enc := w.Header().Get("Content-Encoding"); enc != "gzip" {
		t.Fatalf("Content-Encoding = %q, want gzip", enc)
	}
	zr, err := gzip.NewReader(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != body {
		t.Fatalf("round trip mismatch: %d bytes", len(got))
	}
}

func TestCompressionPrefersZstd(t *testing.T) {
	body := strings.Repeat("zstd wins when both are offered ", 64)
	q := httptest.NewRequest(http.MethodGet, "/", nil)
	q.Header.Set("Accept-Encoding", "gzip, zstd")
	w := httptest.NewRecorder()
	compressedEcho(body).ServeHTTP(w, q)

	if enc := w.Header().Get("Content-Encoding"); enc != "zstd" {
		t.Fatalf("Content-Encoding = %q, want zstd", enc)
	}
	zr, err := zstd.NewReader(w.Body)
	if err != nil {
		t.Fatal(err)
	}
	defer zr.Close()
	got, err := io.ReadAll(zr)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != body {
		t.Fatalf("round trip mismatch: %d bytes", len(got))
	}
}

func TestCompressionNoBodyStatus(t *testing.T) {
	h := Compression(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	q := httptest.NewRequest(http.MethodGet, "/", nil)
	q.Header.Set("Accept-Encoding", "zstd")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, q)

	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d", w.Code)
	}
	// 204 不得帶壓縮 footer，也不得留壓縮標頭
	if w.Body.Len() != 0 {
		t.Fatalf("204 body must be empty, got %d bytes", w.Body.Len())
	}
	if enc := w.Header().Get("Content-Encoding"); enc != "" {
		t.Fatalf("204 must not advertise Content-Encoding, got %q", enc)
	}
}

func TestCompressionPassthrough(t *testing.T) {
	q := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	compressedEcho("plain").ServeHTTP(w, q)

	if enc := w.Header().Get("Content-Encoding"); enc != "" {
		t.Fatalf("unexpected Content-Encoding %q", enc)
	}
	if w.Body.String() != "plain" {
		t.Fatalf("body = %q", w.Body.String())
	}
}
