package handlers

import (
	"context"
	"net/http"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type movementHandler struct {
	movementService portssvc.MovementSvcFacade
}

// RegisterMovementRoutes registers transfer, expense and income routes.
func RegisterMovementRoutes(rg *gin.RouterGroup, movementService portssvc.MovementSvcFacade) {
	h := &movementHandler{movementService: movementService}
	rg.POST("/transfers", h.transfer)
	rg.POST("/expenses", h.recordExpense)
	rg.POST("/incomes", h.recordIncome)
}

// transfer godoc
// @Summary Transfer between accounts
// @Description Writes an outflow on the source and an inflow on the destination as one operation
// @Tags movements
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param transfer body dto.TransferRequest true "Transfer"
// @Success 201 {object} dto.Response{data=domain.Transfer}
// @Failure 400 {object} dto.ErrorResponse "Validation error or same account"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 422 {object} dto.ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /transfers [post]
func (h *movementHandler) transfer(c *gin.Context) {
	var req dto.TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	transfer, err := h.movementService.Transfer(c.Request.Context(), domain.TransferInput{
		SourceAccountID: req.SourceAccountID,
		DestAccountID:   req.DestAccountID,
		Amount:          req.Amount,
		Concept:         req.Concept,
		Actor:           middleware.GetActor(c),
	})
	if err != nil {
		respondError(c, err, "Failed to transfer")
		return
	}
	respond(c, http.StatusCreated, transfer)
}

// recordExpense godoc
// @Summary Record an expense
// @Tags movements
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param expense body dto.MovementRequest true "Expense"
// @Success 201 {object} dto.Response{data=domain.Movement}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse "Insufficient funds"
// @Security BearerAuth
// @Router /expenses [post]
func (h *movementHandler) recordExpense(c *gin.Context) {
	h.record(c, h.movementService.RecordExpense, "Failed to record expense")
}

// recordIncome godoc
// @Summary Record an income
// @Tags movements
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param income body dto.MovementRequest true "Income"
// @Success 201 {object} dto.Response{data=domain.Movement}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /incomes [post]
func (h *movementHandler) recordIncome(c *gin.Context) {
	h.record(c, h.movementService.RecordIncome, "Failed to record income")
}

func (h *movementHandler) record(c *gin.Context, fn func(ctx context.Context, in domain.MovementInput) (*domain.Movement, error), failMsg string) {
	var req dto.MovementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	movement, err := fn(c.Request.Context(), domain.MovementInput{
		AccountID: req.AccountID,
		Amount:    req.Amount,
		Concept:   req.Concept,
		Actor:     middleware.GetActor(c),
	})
	if err != nil {
		respondError(c, err, failMsg)
		return
	}
	respond(c, http.StatusCreated, movement)
}
