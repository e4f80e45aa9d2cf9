package middleware

import (
	"bytes"
	"net/http"
	"sync"
	"time"

	apperrors "roomdesk/pkg/errors"
	httputil "roomdesk/pkg/http"
)

const (
	IdempotencyKeyHeader       = "Idempotency-Key"
	IdempotentReplayedHeader   = "Idempotent-Replayed"
	idempotencyCleanupInterval = 10 * time.Minute
)

// IdempotencyStore remembers responses by key. Reserve marks a key as in
// flight; Complete either records the response or, when nil, frees the key.
type IdempotencyStore interface {
	Lookup(key string) (cached *CachedResponse, inFlight bool)
	Reserve(key string) bool
	Complete(key string, response *CachedResponse)
	Stop()
}

type CachedResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
	CreatedAt  time.Time
}

type InMemoryIdempotencyStore struct {
	mu       sync.Mutex
	done     map[string]*CachedResponse
	pending  map[string]struct{}
	ttl      time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
}

func NewInMemoryIdempotencyStore(ttl time.Duration) *InMemoryIdempotencyStore {
	store := &InMemoryIdempotencyStore{
		done:    make(map[string]*CachedResponse),
		pending: make(map[string]struct{}),
		ttl:     ttl,
		stopCh:  make(chan struct{}),
	}

	go store.cleanup()

	return store
}

func (s *InMemoryIdempotencyStore) Lookup(key string) (*CachedResponse, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.pending[key]; busy {
		return nil, true
	}
	response, ok := s.done[key]
	if !ok {
		return nil, false
	}
	if time.Since(response.CreatedAt) > s.ttl {
		delete(s.done, key)
		return nil, false
	}
	return response, false
}

func (s *InMemoryIdempotencyStore) Reserve(key string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, busy := s.pending[key]; busy {
		return false
	}
	if response, ok := s.done[key]; ok && time.Since(response.CreatedAt) <= s.ttl {
		return false
	}
	s.pending[key] = struct{}{}
	return true
}

func (s *InMemoryIdempotencyStore) Complete(key string, response *CachedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.pending, key)
	if response == nil {
		return
	}
	response.CreatedAt = time.Now()
	s.done[key] = response
}

func (s *InMemoryIdempotencyStore) evictExpired() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for key, response := range s.done {
		if time.Since(response.CreatedAt) > s.ttl {
			delete(s.done, key)
		}
	}
}

func (s *InMemoryIdempotencyStore) cleanup() {
	ticker := time.NewTicker(idempotencyCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.stopCh:
			return
		}
	}
}

func (s *InMemoryIdempotencyStore) Stop() {
	s.stopOnce.Do(func() { close(s.stopCh) })
}

type responseCapture struct {
	http.ResponseWriter
	statusCode int
	body       bytes.Buffer
}

func (rc *responseCapture) WriteHeader(statusCode int) {
	rc.statusCode = statusCode
	rc.ResponseWriter.WriteHeader(statusCode)
}

func (rc *responseCapture) Write(b []byte) (int, error) {
	rc.body.Write(b)
	return rc.ResponseWriter.Write(b)
}

// Idempotency replays the first successful response for a repeated
// Idempotency-Key on POST requests. Keys are scoped to the client IP, method
// and path, so a retried session commit returns the booking it already
// created and two clients never share a response. A retry that arrives while
// the first request is still running gets a 409.
func Idempotency(store IdempotencyStore, headerName string) func(http.Handler) http.Handler {
	if headerName == "" {
		headerName = IdempotencyKeyHeader
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := idempotencyKey(r, headerName)
			if key == "" {
				next.ServeHTTP(w, r)
				return
			}

			if !store.Reserve(key) {
				cached, inFlight := store.Lookup(key)
				switch {
				case cached != nil:
					replay(w, cached)
				case inFlight:
					httputil.WriteError(w, apperrors.Conflict("A request with this idempotency key is still in progress"))
				default:
					next.ServeHTTP(w, r)
				}
				return
			}

			capture := &responseCapture{ResponseWriter: w, statusCode: http.StatusOK}
			finished := false
			defer func() {
				if !finished || capture.statusCode < 200 || capture.statusCode >= 300 {
					store.Complete(key, nil)
					return
				}
				store.Complete(key, &CachedResponse{
					StatusCode: capture.statusCode,
					Headers:    cacheableHeaders(w.Header()),
					Body:       capture.body.Bytes(),
				})
			}()
			next.ServeHTTP(capture, r)
			finished = true
		})
	}
}

func idempotencyKey(r *http.Request, headerName string) string {
	if r.Method != http.MethodPost {
		return ""
	}
	key := r.Header.Get(headerName)
	if key == "" {
		return ""
	}
	return ClientIP(r) + " " + r.Method + " " + r.URL.Path + " " + key
}

func replay(w http.ResponseWriter, cached *CachedResponse) {
	for key, values := range cached.Headers {
		for _, value := range values {
			w.Header().Add(key, value)
		}
	}
	w.Header().Set(IdempotentReplayedHeader, "true")
	w.WriteHeader(cached.StatusCode)
	_, _ = w.Write(cached.Body)
}

// cacheableHeaders drops per-request headers that must not be replayed.
func cacheableHeaders(h http.Header) http.Header {
	out := h.Clone()
	out.Del(RequestIDHeader)
	return out
}
