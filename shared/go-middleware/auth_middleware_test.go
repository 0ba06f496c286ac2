package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/Patator33/Gestion-locative/shared/go-utils"
)

func testKey(t *testing.T) *rsa.PrivateKey {
	t.Helper()
	k, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return k
}

func protected(pub *rsa.PublicKey) (http.Handler, *string) {
	var seen string
	h := AuthMiddleware(pub)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id, ok := UserIDFromContext(r.Context())
		if ok {
			seen = id.String()
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	return h, &seen
}

func TestAuthMiddleware(t *testing.T) {
	utils.SilenceLogger()
	key := testKey(t)
	h, seen := protected(&key.PublicKey)
	user := uuid.New()

	t.Run("missing header", func(t *testing.T) {
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/properties", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
		req.Header.Set("Authorization", "Bearer not-a-jwt")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("token signed by another key", func(t *testing.T) {
		tok, err := IssueToken(testKey(t), user, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("expired token", func(t *testing.T) {
		tok, err := IssueToken(key, user, -time.Minute)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.Contains(t, rr.Body.String(), utils.ErrCodeTokenExpired)
	})

	t.Run("valid token reaches handler with subject", func(t *testing.T) {
		tok, err := IssueToken(key, user, time.Hour)
		require.NoError(t, err)
		req := httptest.NewRequest(http.MethodGet, "/api/properties", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusNoContent, rr.Code)
		assert.Equal(t, user.String(), *seen)
	})
}

func TestRateLimiter(t *testing.T) {
	utils.SilenceLogger()
	rl := NewRateLimiter(60, 2)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "203.0.113.7:5555"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	other := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
	other.RemoteAddr = "203.0.113.8:5555"
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, other)
	assert.Equal(t, http.StatusOK, rr.Code, "limits are per client")

	assert.Equal(t, 0, rl.Cleanup(time.Hour))
	assert.Equal(t, 2, rl.Cleanup(-time.Second))
}

type stubCounter struct {
	hits map[string]int
	err  error
}

func (s *stubCounter) Exceeded(_ context.Context, key string, limit int, _ time.Duration) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	s.hits[key]++
	return s.hits[key] > limit, nil
}

func TestRateLimiterShared(t *testing.T) {
	utils.SilenceLogger()
	counter := &stubCounter{hits: map[string]int{}}
	rl := NewRateLimiter(1, 5).WithShared(counter)
	h := rl.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	send := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "198.51.100.1:4000"
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)
		return rr.Code
	}
	assert.Equal(t, http.StatusOK, send())
	assert.Equal(t, http.StatusTooManyRequests, send(), "shared window of one request")

	counter.err = errors.New("connection refused")
	assert.Equal(t, http.StatusOK, send(), "falls back to the local bucket")
}

func TestRedisCounterKey(t *testing.T) {
	c := NewRedisCounter(nil, "rentals-service")
	assert.Equal(t, "rentals-service:rate_limit:10.0.0.1", c.key("10.0.0.1"))
}
