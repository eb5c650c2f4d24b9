package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryIdempotencyStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemoryIdempotencyStore() *memoryIdempotencyStore {
	return &memoryIdempotencyStore{data: map[string]string{}}
}

func (s *memoryIdempotencyStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	value, ok := s.data[key]
	if !ok {
		return "", fmt.Errorf("key not found")
	}
	return value, nil
}

func (s *memoryIdempotencyStore) Set(_ context.Context, key string, value any, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = fmt.Sprint(value)
	return nil
}

func (s *memoryIdempotencyStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; ok {
		return false, nil
	}
	s.data[key] = fmt.Sprint(value)
	return true, nil
}

func (s *memoryIdempotencyStore) Del(_ context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}

func (s *memoryIdempotencyStore) IdempotencyKey(scope, id string) string {
	return "vl:idempotency:" + scope + ":" + id
}

func newIdempotencyRouter(store IdempotencyStore, handler http.HandlerFunc) *chi.Mux {
	router := chi.NewRouter()
	router.Use(Idempotency(store, nil))
	router.Post("/api/v1/checkout", handler)
	router.Get("/api/v1/products", handler)
	return router
}

func TestIdempotencyReplaysStoredResponse(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	router := newIdempotencyRouter(store, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"data":{"orderId":"abc"}}`))
	})

	body := `{"paymentRef":"pay_1"}`

	first := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	first.Header.Set("Idempotency-Key", "key-1")
	first.Header.Set(CartSessionHeader, "session-1")
	firstRec := httptest.NewRecorder()
	router.ServeHTTP(firstRec, first)

	require.Equal(t, http.StatusCreated, firstRec.Code)
	require.Equal(t, 1, calls)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(body))
	second.Header.Set("Idempotency-Key", "key-1")
	second.Header.Set(CartSessionHeader, "session-1")
	secondRec := httptest.NewRecorder()
	router.ServeHTTP(secondRec, second)

	assert.Equal(t, 1, calls, "replay must not re-run the handler")
	assert.Equal(t, http.StatusCreated, secondRec.Code)
	assert.Equal(t, firstRec.Body.String(), secondRec.Body.String())
	assert.Equal(t, "true", secondRec.Header().Get("X-Idempotency-Replayed"))
	assert.Equal(t, "application/json", secondRec.Header().Get("Content-Type"))
}

func TestIdempotencyRejectsChangedPayload(t *testing.T) {
	store := newMemoryIdempotencyStore()
	router := newIdempotencyRouter(store, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	first := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"paymentRef":"pay_1"}`))
	first.Header.Set("Idempotency-Key", "key-1")
	first.Header.Set(CartSessionHeader, "session-1")
	router.ServeHTTP(httptest.NewRecorder(), first)

	second := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{"paymentRef":"pay_2"}`))
	second.Header.Set("Idempotency-Key", "key-1")
	second.Header.Set(CartSessionHeader, "session-1")
	secondRec := httptest.NewRecorder()
	router.ServeHTTP(secondRec, second)

	assert.Equal(t, http.StatusConflict, secondRec.Code)
	assert.Contains(t, secondRec.Body.String(), "IDEMPOTENCY_KEY_REUSED")
}

func TestIdempotencyRequiresHeaderOnCriticalRoutes(t *testing.T) {
	store := newMemoryIdempotencyStore()
	router := newIdempotencyRouter(store, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Idempotency-Key")
}

func TestIdempotencyScopesKeysBySession(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	router := newIdempotencyRouter(store, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusCreated)
	})

	for _, session := range []string{"session-1", "session-2"} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "shared-key")
		req.Header.Set(CartSessionHeader, session)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusCreated, rec.Code)
	}

	assert.Equal(t, 2, calls, "distinct sessions must not share records")
}

func TestIdempotencyIgnoresUnmatchedRoutes(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	router := newIdempotencyRouter(store, func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/products", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	assert.Equal(t, 2, calls)
}

func TestIdempotencyReleasesKeyOnServerError(t *testing.T) {
	store := newMemoryIdempotencyStore()
	calls := 0
	router := newIdempotencyRouter(store, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
	})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/checkout", strings.NewReader(`{}`))
		req.Header.Set("Idempotency-Key", "key-1")
		req.Header.Set(CartSessionHeader, "session-1")
		router.ServeHTTP(httptest.NewRecorder(), req)
	}

	assert.Equal(t, 2, calls, "server failures must not pin the key")
}
