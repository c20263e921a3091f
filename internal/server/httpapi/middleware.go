package httpapi

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxRequestSize caps HTTP request bodies, wire and decompressed alike
// (spec.md §5: 10 MiB) — decompressed size is capped too so a gzip body
// can't expand past the limit the wire format was meant to enforce.
const maxRequestSize = 10 * 1024 * 1024

type requestIDKey struct{}

// requestIDHeader lets a caller (or an upstream OTLP collector retrying
// a batch) correlate its own ID with this server's logs instead of
// always minting a fresh one.
const requestIDHeader = "X-Request-Id"

// RequestID returns the request ID from context, or "" if not set.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

// chain applies middleware in the order they execute (first to last).
// chain(h, A, B, C) executes A -> B -> C -> h -> C -> B -> A.
func chain(h http.Handler, middlewares ...func(http.Handler) http.Handler) http.Handler {
	for i := len(middlewares) - 1; i >= 0; i-- {
		h = middlewares[i](h)
	}
	return h
}

// requestIDMiddleware adopts an inbound X-Request-Id if the caller sent
// one, otherwise mints a UUID, stores it in context, and always echoes
// it back on the response so a client can find the matching log line.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(r.Context(), requestIDKey{}, id)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// statusRecorder wraps a ResponseWriter to remember the status code
// actually sent, so loggingMiddleware can report it after the handler
// (or recoveryMiddleware) has already written the response.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(b []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(b)
}

// loggingMiddleware emits one structured line per request, tying the
// request ID into method, path, status and latency — the per-request
// counterpart to the "[%s] ..." log lines the ingest handlers already
// write on accept/reject so a single request ID threads through both.
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w}
		start := time.Now()
		next.ServeHTTP(rec, r)
		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		log.Printf("[%s] %s %s %d %s", RequestID(r.Context()), r.Method, r.URL.Path, status, time.Since(start))
	})
}

// recoveryMiddleware catches panics and returns 503 with the same
// {"error": ...} body shape writeError uses everywhere else in this
// package, rather than letting the connection die or returning a bare
// status with no body a client's error handling can key on.
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				reqID := RequestID(r.Context())
				log.Printf("[%s] panic recovered: %v", reqID, err)
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusServiceUnavailable)
				json.NewEncoder(w).Encode(map[string]any{"error": "internal error"})
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// sizeLimitMiddleware enforces maxRequestSize on the request body.
func sizeLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxRequestSize)
		next.ServeHTTP(w, r)
	})
}

// gzipMiddleware decompresses gzip-encoded request bodies, rejecting
// any other Content-Encoding with 415. The decompressed stream is
// itself capped at maxRequestSize via MaxBytesReader so a small,
// highly-compressed OTLP batch can't be used to exhaust memory on the
// other side of the gzip.Reader.
func gzipMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		encoding := r.Header.Get("Content-Encoding")
		if encoding == "" {
			next.ServeHTTP(w, r)
			return
		}

		if !strings.EqualFold(encoding, "gzip") {
			reqID := RequestID(r.Context())
			log.Printf("[%s] unsupported Content-Encoding: %s", reqID, encoding)
			w.WriteHeader(http.StatusUnsupportedMediaType)
			return
		}

		gz, err := gzip.NewReader(r.Body)
		if err != nil {
			reqID := RequestID(r.Context())
			log.Printf("[%s] gzip decompression failed: %v", reqID, err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer gz.Close()

		r.Body = http.MaxBytesReader(w, io.NopCloser(gz), maxRequestSize)
		r.Header.Del("Content-Encoding")
		next.ServeHTTP(w, r)
	})
}
