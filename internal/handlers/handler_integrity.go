package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type integrityHandler struct {
	integrityService portssvc.IntegritySvcFacade
}

// RegisterIntegrityRoutes registers reconciliation, resync and chain
// verification routes.
func RegisterIntegrityRoutes(rg *gin.RouterGroup, integrityService portssvc.IntegritySvcFacade) {
	h := &integrityHandler{integrityService: integrityService}

	integrity := rg.Group("/integrity")
	{
		integrity.GET("/accounts", h.reconcileAll)
		integrity.GET("/accounts/:id", h.reconcileAccount)
		integrity.POST("/accounts/:id/resync", h.resyncAccount)
		integrity.GET("/accounts/:id/chain", h.verifyChain)
		integrity.GET("/counterparties/:id", h.reconcileCounterparty)
		integrity.POST("/counterparties/:id/resync", h.resyncCounterparty)
	}
}

// reconcileAll godoc
// @Summary Reconcile every account
// @Description Recomputes each balance from the ledger; drift is reported, never corrected
// @Tags integrity
// @Produce json
// @Success 200 {object} dto.Response{data=[]domain.AccountReconciliation}
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /integrity/accounts [get]
func (h *integrityHandler) reconcileAll(c *gin.Context) {
	results, err := h.integrityService.ReconcileAll(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to reconcile accounts")
		return
	}
	respond(c, http.StatusOK, results)
}

// reconcileAccount godoc
// @Summary Reconcile one account
// @Tags integrity
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.Response{data=domain.AccountReconciliation}
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /integrity/accounts/{id} [get]
func (h *integrityHandler) reconcileAccount(c *gin.Context) {
	result, err := h.integrityService.ReconcileAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to reconcile account")
		return
	}
	respond(c, http.StatusOK, result)
}

// resyncAccount godoc
// @Summary Overwrite an account's stored totals with the ledger's
// @Tags integrity
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.Response{data=domain.AccountReconciliation}
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /integrity/accounts/{id}/resync [post]
func (h *integrityHandler) resyncAccount(c *gin.Context) {
	accountID := c.Param("id")
	result, err := h.integrityService.ResyncAccount(c.Request.Context(), accountID, middleware.GetActor(c))
	if err != nil {
		respondError(c, err, "Failed to resync account")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Account resynced",
		slog.String("account_id", accountID), slog.String("balance", result.ComputedBalance.String()))
	respond(c, http.StatusOK, result)
}

// verifyChain godoc
// @Summary Verify an account's checksum chain
// @Tags integrity
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.Response{data=domain.ChainVerification}
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /integrity/accounts/{id}/chain [get]
func (h *integrityHandler) verifyChain(c *gin.Context) {
	result, err := h.integrityService.VerifyLedgerChain(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to verify ledger chain")
		return
	}
	respond(c, http.StatusOK, result)
}

// reconcileCounterparty godoc
// @Summary Recompute a counterparty's debt from its sales or purchase orders
// @Tags integrity
// @Produce json
// @Param id path string true "Counterparty ID"
// @Success 200 {object} dto.Response{data=domain.CounterpartyReconciliation}
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /integrity/counterparties/{id} [get]
func (h *integrityHandler) reconcileCounterparty(c *gin.Context) {
	result, err := h.integrityService.ReconcileCounterpartyDebt(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to reconcile counterparty")
		return
	}
	respond(c, http.StatusOK, result)
}

// resyncCounterparty godoc
// @Summary Overwrite a counterparty's cached totals with the recomputed ones
// @Tags integrity
// @Produce json
// @Param id path string true "Counterparty ID"
// @Success 200 {object} dto.Response{data=domain.CounterpartyReconciliation}
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /integrity/counterparties/{id}/resync [post]
func (h *integrityHandler) resyncCounterparty(c *gin.Context) {
	result, err := h.integrityService.ResyncCounterparty(c.Request.Context(), c.Param("id"), middleware.GetActor(c))
	if err != nil {
		respondError(c, err, "Failed to resync counterparty")
		return
	}
	respond(c, http.StatusOK, result)
}
