package middleware

import (
	"bytes"
	"context"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/SscSPs/vault_ledger/internal/platform/ttlstore"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/blake2b"
)

// IdempotencyHeader names the request header carrying the client key.
const IdempotencyHeader = "Idempotency-Key"

type idempotencyRecord struct {
	Pending     bool   `json:"pending,omitempty"`
	RequestHash string `json:"request_hash,omitempty"`
	Status      int    `json:"status,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

type capturingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *capturingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *capturingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// Idempotency replays the stored response for a repeated Idempotency-Key
// on mutating requests.
// A key whose first request is still running yields 409; a request that
// ended with a server error releases its key so it can be retried. Reusing
// a key with a different request body yields 422.
func Idempotency(store ttlstore.Store, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeader)
		if key == "" || c.Request.Method == http.MethodGet || c.Request.Method == http.MethodHead {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		logger := GetLoggerFromCtx(ctx)
		storeKey := c.Request.Method + " " + c.FullPath() + " " + GetActorFromCtx(ctx) + " " + key

		hash, err := requestHash(c)
		if err != nil {
			abortWithError(c, http.StatusBadRequest, "validation_error", "Failed to read request body")
			return
		}
		pending, _ := json.Marshal(idempotencyRecord{Pending: true, RequestHash: hash})
		claimed, err := store.SetNX(ctx, storeKey, pending, ttl)
		if err != nil {
			logger.Error("Failed to claim idempotency key", slog.String("error", err.Error()))
			abortWithError(c, http.StatusInternalServerError, "internal_error", "Failed to check idempotency key")
			return
		}
		if !claimed {
			replay(c, store, storeKey, hash, logger)
			return
		}

		w := &capturingWriter{ResponseWriter: c.Writer}
		c.Writer = w
		c.Next()

		// the client may already be gone
		saveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if w.Status() >= http.StatusInternalServerError {
			if err := store.Delete(saveCtx, storeKey); err != nil {
				logger.Error("Failed to release idempotency key", slog.String("error", err.Error()))
			}
			return
		}
		rec, _ := json.Marshal(idempotencyRecord{RequestHash: hash, Status: w.Status(), Body: w.body.Bytes()})
		if err := store.Set(saveCtx, storeKey, rec, ttl); err != nil {
			logger.Error("Failed to store idempotent response", slog.String("error", err.Error()))
		}
	}
}

// requestHash fingerprints the request body and leaves it readable for the
// handler.
func requestHash(c *gin.Context) (string, error) {
	if c.Request.Body == nil {
		return "", nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	sum := blake2b.Sum256(body)
	return hex.EncodeToString(sum[:]), nil
}

func replay(c *gin.Context, store ttlstore.Store, key, hash string, logger *slog.Logger) {
	raw, ok, err := store.Get(c.Request.Context(), key)
	if err != nil {
		logger.Error("Failed to read idempotency key", slog.String("error", err.Error()))
		abortWithError(c, http.StatusInternalServerError, "internal_error", "Failed to check idempotency key")
		return
	}
	var rec idempotencyRecord
	if ok {
		if err := json.Unmarshal(raw, &rec); err != nil {
			ok = false
		}
	}
	if ok && rec.RequestHash != "" && rec.RequestHash != hash {
		logger.Warn("Idempotency key reused with a different request")
		abortWithError(c, http.StatusUnprocessableEntity, "idempotency_key_reused", "Idempotency-Key was already used with a different request body")
		return
	}
	if !ok || rec.Pending {
		abortWithError(c, http.StatusConflict, "concurrency_conflict", "A request with this Idempotency-Key is already in progress")
		return
	}
	logger.Info("Replaying idempotent response", slog.Int("status", rec.Status))
	c.Header("Idempotent-Replayed", "true")
	c.Data(rec.Status, "application/json; charset=utf-8", rec.Body)
	c.Abort()
}
