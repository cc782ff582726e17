package middleware_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/SscSPs/vault_ledger/internal/platform/ttlstore"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const secret = "test-secret"

func signed(t *testing.T, claims jwt.RegisteredClaims, key string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(key))
	require.NoError(t, err)
	return tok
}

func actorRouter(jwtSecret string) *gin.Engine {
	r := gin.New()
	r.Use(middleware.ActorMiddleware(jwtSecret))
	r.GET("/whoami", func(c *gin.Context) {
		c.String(http.StatusOK, middleware.GetActor(c))
	})
	return r
}

func TestActorMiddleware(t *testing.T) {
	valid := signed(t, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))}, secret)
	expired := signed(t, jwt.RegisteredClaims{Subject: "alice", ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour))}, secret)
	forged := signed(t, jwt.RegisteredClaims{Subject: "mallory"}, "other-secret")
	anonymous := signed(t, jwt.RegisteredClaims{}, secret)

	tests := []struct {
		name       string
		secret     string
		header     string
		wantStatus int
		wantBody   string
	}{
		{"no header runs as system", secret, "", http.StatusOK, domain.SystemActor},
		{"valid token", secret, "Bearer " + valid, http.StatusOK, "alice"},
		{"malformed header", secret, "Token " + valid, http.StatusUnauthorized, "Bearer {token}"},
		{"expired token", secret, "Bearer " + expired, http.StatusUnauthorized, "Token has expired"},
		{"wrong signing key", secret, "Bearer " + forged, http.StatusUnauthorized, "Invalid token"},
		{"token without subject", secret, "Bearer " + anonymous, http.StatusUnauthorized, "Invalid token claims"},
		{"verification disabled", "", "Bearer garbage", http.StatusOK, domain.SystemActor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/whoami", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			actorRouter(tt.secret).ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.wantBody)
		})
	}
}

func TestStructuredLoggingMiddleware_PropagatesRequestID(t *testing.T) {
	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(discardLogger()))
	r.GET("/id", func(c *gin.Context) {
		assert.NotNil(t, middleware.GetLoggerFromContext(c))
		c.String(http.StatusOK, middleware.GetRequestID(c.Request.Context()))
	})

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-42", w.Body.String())
	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	assert.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get("X-Request-ID"))
}

type idempotentAPI struct {
	router *gin.Engine
	calls  atomic.Int32
	status atomic.Int32
}

func newIdempotentAPI(store ttlstore.Store) *idempotentAPI {
	api := &idempotentAPI{router: gin.New()}
	api.status.Store(http.StatusCreated)
	api.router.Use(middleware.Idempotency(store, time.Minute))
	api.router.POST("/sales", func(c *gin.Context) {
		n := api.calls.Add(1)
		c.JSON(int(api.status.Load()), gin.H{"success": true, "data": gin.H{"call": n}})
	})
	return api
}

func (a *idempotentAPI) post(key string) *httptest.ResponseRecorder {
	return a.postBody(key, `{}`)
}

func (a *idempotentAPI) postBody(key, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/sales", strings.NewReader(body))
	if key != "" {
		req.Header.Set(middleware.IdempotencyHeader, key)
	}
	w := httptest.NewRecorder()
	a.router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	api := newIdempotentAPI(ttlstore.NewMemoryStore())

	first := api.post("abc")
	require.Equal(t, http.StatusCreated, first.Code)

	second := api.post("abc")
	assert.Equal(t, http.StatusCreated, second.Code)
	assert.Equal(t, "true", second.Header().Get("Idempotent-Replayed"))
	assert.JSONEq(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int32(1), api.calls.Load())

	other := api.post("def")
	assert.Equal(t, http.StatusCreated, other.Code)
	assert.Empty(t, other.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, int32(2), api.calls.Load())

	api.post("")
	api.post("")
	assert.Equal(t, int32(4), api.calls.Load())
}

func TestIdempotency_ServerErrorReleasesKey(t *testing.T) {
	api := newIdempotentAPI(ttlstore.NewMemoryStore())
	api.status.Store(http.StatusInternalServerError)

	assert.Equal(t, http.StatusInternalServerError, api.post("retry-me").Code)

	api.status.Store(http.StatusCreated)
	w := api.post("retry-me")
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Empty(t, w.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, int32(2), api.calls.Load())
}

func TestIdempotency_KeyReusedWithDifferentBody(t *testing.T) {
	api := newIdempotentAPI(ttlstore.NewMemoryStore())

	first := api.postBody("order-1", `{"quantity":1}`)
	require.Equal(t, http.StatusCreated, first.Code)

	w := api.postBody("order-1", `{"quantity":2}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "idempotency_key_reused")
	assert.Empty(t, w.Header().Get("Idempotent-Replayed"))

	same := api.postBody("order-1", `{"quantity":1}`)
	assert.Equal(t, http.StatusCreated, same.Code)
	assert.Equal(t, "true", same.Header().Get("Idempotent-Replayed"))
	assert.Equal(t, int32(1), api.calls.Load())
}

func TestIdempotency_InFlightKeyConflicts(t *testing.T) {
	store := ttlstore.NewMemoryStore()
	api := newIdempotentAPI(store)

	// a claim left by a request that has not finished yet
	claimed, err := store.SetNX(context.Background(), "POST /sales "+domain.SystemActor+" busy", []byte(`{"pending":true}`), time.Minute)
	require.NoError(t, err)
	require.True(t, claimed)

	w := api.post("busy")
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "concurrency_conflict")
	assert.Zero(t, api.calls.Load())
}

func TestRateLimit(t *testing.T) {
	lim, err := middleware.NewLimiter("2-M", nil)
	require.NoError(t, err)

	r := gin.New()
	r.Use(middleware.RateLimit(lim))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	codes := make([]int, 0, 3)
	for range 3 {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{http.StatusNoContent, http.StatusNoContent, http.StatusTooManyRequests}, codes)

	_, err = middleware.NewLimiter("lots", nil)
	assert.Error(t, err)
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
