package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/vault_ledger/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

// ActorMiddleware attributes requests to the subject of a bearer token signed
// with jwtSecret, such as those minted by "ledgerctl token".
// Requests without a token run as domain.SystemActor; an invalid token is
// rejected. An empty secret disables verification entirely.
func ActorMiddleware(jwtSecret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSecret == "" {
			c.Next()
			return
		}
		logger := GetLoggerFromCtx(c.Request.Context())

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Next()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			logger.Warn("Authorization header format invalid")
			abortWithError(c, http.StatusUnauthorized, "unauthorized", "Authorization header format must be Bearer {token}")
			return
		}

		actor, err := utils.ParseActorToken(parts[1], jwtSecret)
		if err != nil {
			logger.Warn("Invalid token", slog.String("error", err.Error()))
			msg := "Invalid token"
			switch {
			case errors.Is(err, jwt.ErrTokenExpired):
				msg = "Token has expired"
			case errors.Is(err, utils.ErrNoSubject):
				msg = "Invalid token claims"
			}
			abortWithError(c, http.StatusUnauthorized, "unauthorized", msg)
			return
		}

		ctx := WithActor(c.Request.Context(), actor)
		ctx = WithLogger(ctx, logger.With(slog.String("actor", actor)))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// abortWithError writes the failure envelope used by every API response.
func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error":   gin.H{"code": code, "message": message},
	})
}
