package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestRedis(t *testing.T) *redis.Client {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client
}

func newIdempotentRouter(client *redis.Client, status *int, calls *int) *gin.Engine {
	r := gin.New()
	r.Use(IdempotencyMiddleware(client))
	r.POST("/v1/wizard/sessions/:id/generate", func(c *gin.Context) {
		*calls++
		c.JSON(*status, gin.H{"call": *calls})
	})
	return r
}

func TestIdempotency_ReplaysSameKey(t *testing.T) {
	client := newTestRedis(t)
	status, calls := http.StatusAccepted, 0
	r := newIdempotentRouter(client, &status, &calls)

	send := func(path string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		req.Header.Set("Idempotency-Key", "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send("/v1/wizard/sessions/a/generate")
	second := send("/v1/wizard/sessions/a/generate")

	assert.Equal(t, 1, calls, "handler should run once")
	assert.Equal(t, http.StatusAccepted, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))

	// Same key on another session is a different request.
	send("/v1/wizard/sessions/b/generate")
	assert.Equal(t, 2, calls)
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	client := newTestRedis(t)
	status, calls := http.StatusAccepted, 0
	r := newIdempotentRouter(client, &status, &calls)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/wizard/sessions/a/generate", nil))
	}
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ConflictNotCached(t *testing.T) {
	client := newTestRedis(t)
	status, calls := http.StatusConflict, 0
	r := newIdempotentRouter(client, &status, &calls)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/v1/wizard/sessions/a/generate", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		r.ServeHTTP(httptest.NewRecorder(), req)
	}
	assert.Equal(t, 2, calls)
}

func TestIdempotency_ValidationRefusalNotCached(t *testing.T) {
	client := newTestRedis(t)
	status, calls := http.StatusUnprocessableEntity, 0
	r := newIdempotentRouter(client, &status, &calls)

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/v1/wizard/sessions/a/generate", nil)
		req.Header.Set("Idempotency-Key", "key-1")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	first := send()
	assert.Equal(t, http.StatusUnprocessableEntity, first.Code)

	// Terms agreed in between: the retry with the same key must run again.
	status = http.StatusAccepted
	second := send()
	assert.Equal(t, 2, calls)
	assert.Equal(t, http.StatusAccepted, second.Code)
	assert.Empty(t, second.Header().Get("Idempotent-Replayed"))

	// The success is what later retries replay.
	third := send()
	assert.Equal(t, 2, calls)
	assert.Equal(t, "true", third.Header().Get("Idempotent-Replayed"))
}

func TestCacheable(t *testing.T) {
	assert.True(t, cacheable(http.StatusOK))
	assert.True(t, cacheable(http.StatusAccepted))
	assert.True(t, cacheable(http.StatusBadRequest))
	assert.False(t, cacheable(http.StatusConflict))
	assert.False(t, cacheable(http.StatusUnprocessableEntity))
	assert.False(t, cacheable(http.StatusServiceUnavailable))
}

func TestCORSMiddleware_AllowsConfiguredOrigin(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware([]string{"http://localhost:5173"}))
	r.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
