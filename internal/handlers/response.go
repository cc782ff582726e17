package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

func respond(c *gin.Context, status int, data any) {
	c.JSON(status, dto.Response{Success: true, Data: data})
}

// statusFor maps an error kind onto its HTTP status.
func statusFor(err error) int {
	switch apperrors.Kind(err) {
	case apperrors.ErrValidation, apperrors.ErrSameAccountTransfer:
		return http.StatusBadRequest
	case apperrors.ErrNotFound:
		return http.StatusNotFound
	case apperrors.ErrDuplicate, apperrors.ErrConcurrencyConflict:
		return http.StatusConflict
	case apperrors.ErrInsufficientStock, apperrors.ErrInsufficientFunds, apperrors.ErrOverpayment:
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes the failure envelope for err. Internal failures are
// logged with detail and reported with a generic message.
func respondError(c *gin.Context, err error, msg string) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	status := statusFor(err)
	body := dto.ErrorBody{Code: apperrors.Code(err), Message: err.Error(), Context: apperrors.ContextOf(err)}
	if status == http.StatusInternalServerError {
		logger.Error(msg, slog.String("error", err.Error()))
		body.Message = msg
		body.Context = nil
	} else {
		logger.Warn(msg, slog.String("error", err.Error()), slog.String("code", body.Code))
	}
	c.AbortWithStatusJSON(status, dto.ErrorResponse{Error: body})
}

// respondBindError reports a request that failed binding or validation.
func respondBindError(c *gin.Context, err error) {
	respondError(c, apperrors.Wrap("bind", apperrors.ErrValidation, err, "invalid request"), "Invalid request")
}
