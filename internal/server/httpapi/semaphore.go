package httpapi

import "net/http"

// Semaphore bounds the number of in-flight requests a handler chain may
// process concurrently, the backpressure mechanism spec.md §5 assumes
// ("no request handler may block the thread" without an admission
// limit). A zero or negative limit disables the bound.
type Semaphore struct {
	tokens chan struct{}
}

// NewSemaphore creates a Semaphore admitting up to limit concurrent
// requests. limit <= 0 means unbounded.
func NewSemaphore(limit int) *Semaphore {
	if limit <= 0 {
		return &Semaphore{}
	}
	return &Semaphore{tokens: make(chan struct{}, limit)}
}

// Middleware rejects requests with 503 once the concurrency limit is
// reached, instead of queuing them behind slow backend I/O.
func (s *Semaphore) Middleware(next http.Handler) http.Handler {
	if s.tokens == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case s.tokens <- struct{}{}:
			defer func() { <-s.tokens }()
			next.ServeHTTP(w, r)
		default:
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	})
}
