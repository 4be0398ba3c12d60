package middleware

import (
	"bufio"
	"errors"
	"io"
	"net"
	"net/http"
	"strings"
	"sync"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// CompressConfig 控制兩種壓縮器的等級。
//
// 回應主體是 JSON 報表，吞吐優先，預設都取最快等級。
type CompressConfig struct {
	GzipLevel int
	ZstdLevel zstd.EncoderLevel
}

var DefaultCompressConfig = CompressConfig{
	GzipLevel: gzip.BestSpeed,
	ZstdLevel: zstd.SpeedFastest,
}

// encoder 統一 gzip.Writer 與 zstd.Encoder 的共通面。
type encoder interface {
	io.Writer
	Reset(w io.Writer)
	Close() error
}

var (
	gzipPool = sync.Pool{New: func() any {
		gw, _ := gzip.NewWriterLevel(io.Discard, DefaultCompressConfig.GzipLevel)
		return gw
	}}
	zstdPool = sync.Pool{New: func() any {
		zw, err := zstd.NewWriter(io.Discard,
			zstd.WithEncoderLevel(DefaultCompressConfig.ZstdLevel),
			zstd.WithEncoderConcurrency(1),
		)
		if err != nil {
			panic(err)
		}
		return zw
	}}
)

// pickEncoding 依 Accept-Encoding 選壓縮方式，zstd 優先；不支援時回空字串。
func pickEncoding(accept string) (name string, pool *sync.Pool) {
	if strings.Contains(accept, "zstd") {
		return "zstd", &zstdPool
	}
	if strings.Contains(accept, "gzip") {
		return "gzip", &gzipPool
	}
	return "", nil
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.Contains(strings.ToLower(r.Header.Get("Connection")), "upgrade") ||
		r.Header.Get("Upgrade") != ""
}

func isNoBodyStatus(code int) bool {
	// 204 No Content, 304 Not Modified, 1xx Informational
	return (code >= 100 && code < 200) || code == http.StatusNoContent || code == http.StatusNotModified
}

// compressResponseWriter 把回應主體導進壓縮器，
// 並在無主體狀態碼出現時動態取消壓縮。
type compressResponseWriter struct {
	http.ResponseWriter
	enc      encoder
	disabled bool
}

func (cw *compressResponseWriter) Write(b []byte) (int, error) {
	if cw.disabled {
		return cw.ResponseWriter.Write(b)
	}

	// 壓縮後長度未知，不能讓隱式 WriteHeader 帶出舊的 Content-Length
	cw.Header().Del("Content-Length")

	if cw.Header().Get("Content-Type") == "" {
		cw.Header().Set("Content-Type", http.DetectContentType(b))
	}
	return cw.enc.Write(b)
}

func (cw *compressResponseWriter) WriteHeader(code int) {
	cw.Header().Del("Content-Length")

	// 204/304/1xx 不得有主體，連壓縮 footer 都不行
	if isNoBodyStatus(code) {
		cw.disabled = true
		cw.Header().Del("Content-Encoding")
		cw.Header().Del("Vary")
	}
	cw.ResponseWriter.WriteHeader(code)
}

func (cw *compressResponseWriter) Flush() {
	if !cw.disabled {
		if f, ok := cw.enc.(interface{ Flush() error }); ok {
			_ = f.Flush()
		}
	}
	if f, ok := cw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (cw *compressResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := cw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("underlying response writer does not support Hijacker")
	}
	return hj.Hijack()
}

func (cw *compressResponseWriter) Push(target string, opts *http.PushOptions) error {
	if p, ok := cw.ResponseWriter.(http.Pusher); ok {
		return p.Push(target, opts)
	}
	return errors.New("underlying response writer does not support Pusher")
}

// Compression 依 Accept-Encoding 對回應做 zstd 或 gzip 壓縮。
//
// WebSocket 升級、HEAD、已壓縮過的回應一律放行不碰。
func Compression(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodHead || isWebSocketUpgrade(r) {
			next.ServeHTTP(w, r)
			return
		}
		if w.Header().Get("Content-Encoding") != "" {
			next.ServeHTTP(w, r)
			return
		}

		name, pool := pickEncoding(r.Header.Get("Accept-Encoding"))
		if name == "" {
			next.ServeHTTP(w, r)
			return
		}

		w.Header().Set("Content-Encoding", name)
		w.Header().Add("Vary", "Accept-Encoding")

		enc := pool.Get().(encoder)
		enc.Reset(w)
		cw := &compressResponseWriter{ResponseWriter: w, enc: enc}
		defer func() {
			// 被取消壓縮時改寫到 io.Discard，Close 的 footer 不會污染回應
			if cw.disabled {
				enc.Reset(io.Discard)
			}
			_ = enc.Close()
			pool.Put(enc)
		}()

		next.ServeHTTP(cw, r)
	})
}
