package middleware

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/gin-gonic/gin"
)

// actorKey stores the caller identity recorded on ledger entries.
const actorKey = contextKey("actor")

// WithActor returns a copy of ctx carrying actor.
func WithActor(ctx context.Context, actor string) context.Context {
	return context.WithValue(ctx, actorKey, actor)
}

// GetActorFromCtx returns the caller identity, or domain.SystemActor.
func GetActorFromCtx(ctx context.Context) string {
	if actor, ok := ctx.Value(actorKey).(string); ok && actor != "" {
		return actor
	}
	return domain.SystemActor
}

// GetActor reads the caller identity from the Gin request.
func GetActor(c *gin.Context) string {
	return GetActorFromCtx(c.Request.Context())
}
