package handlers

import (
	"net/http"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type counterpartyHandler struct {
	counterpartyService  portssvc.CounterpartySvcFacade
	purchaseOrderService portssvc.PurchaseOrderSvcFacade
}

// RegisterCounterpartyRoutes registers the client and distributor directory
// and the debt payment route.
func RegisterCounterpartyRoutes(rg *gin.RouterGroup, counterpartyService portssvc.CounterpartySvcFacade, purchaseOrderService portssvc.PurchaseOrderSvcFacade) {
	h := &counterpartyHandler{counterpartyService: counterpartyService, purchaseOrderService: purchaseOrderService}

	counterparties := rg.Group("/counterparties")
	{
		counterparties.GET("", h.listCounterparties)
		counterparties.POST("", h.createCounterparty)
		counterparties.GET("/:id", h.getCounterparty)
		counterparties.POST("/:id/payments", h.payDebt)
	}
}

// listCounterparties godoc
// @Summary List clients and distributors
// @Tags counterparties
// @Produce json
// @Param kind query string false "client or distributor"
// @Success 200 {object} dto.Response{data=[]dto.CounterpartyResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /counterparties [get]
func (h *counterpartyHandler) listCounterparties(c *gin.Context) {
	var params dto.ListCounterpartiesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	list, err := h.counterpartyService.ListCounterparties(c.Request.Context(), params.Kind)
	if err != nil {
		respondError(c, err, "Failed to list counterparties")
		return
	}
	respond(c, http.StatusOK, dto.ToCounterpartyResponses(list))
}

// createCounterparty godoc
// @Summary Register a client or distributor
// @Description Returns the existing record when the name is already registered for that kind
// @Tags counterparties
// @Accept json
// @Produce json
// @Param counterparty body dto.CreateCounterpartyRequest true "Counterparty"
// @Success 201 {object} dto.Response{data=dto.CounterpartyResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /counterparties [post]
func (h *counterpartyHandler) createCounterparty(c *gin.Context) {
	var req dto.CreateCounterpartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	cp, err := h.counterpartyService.CreateCounterparty(c.Request.Context(), req.Kind, req.Name, middleware.GetActor(c))
	if err != nil {
		respondError(c, err, "Failed to create counterparty")
		return
	}
	respond(c, http.StatusCreated, dto.ToCounterpartyResponse(cp))
}

// getCounterparty godoc
// @Summary Get a counterparty by ID
// @Tags counterparties
// @Produce json
// @Param id path string true "Counterparty ID"
// @Success 200 {object} dto.Response{data=dto.CounterpartyResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /counterparties/{id} [get]
func (h *counterpartyHandler) getCounterparty(c *gin.Context) {
	cp, err := h.counterpartyService.GetCounterparty(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve counterparty")
		return
	}
	respond(c, http.StatusOK, dto.ToCounterpartyResponse(cp))
}

// payDebt godoc
// @Summary Pay a distributor
// @Description Writes one outflow on the source account and settles the distributor's purchase orders
// @Tags counterparties
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param id path string true "Distributor ID"
// @Param payment body dto.PayDebtRequest true "Payment"
// @Success 201 {object} dto.Response{data=domain.DebtPayment}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse "Insufficient funds or overpayment"
// @Security BearerAuth
// @Router /counterparties/{id}/payments [post]
func (h *counterpartyHandler) payDebt(c *gin.Context) {
	var req dto.PayDebtRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	payment, err := h.purchaseOrderService.PayCounterpartyDebt(c.Request.Context(), domain.PayDebtInput{
		CounterpartyID:  c.Param("id"),
		SourceAccountID: req.SourceAccountID,
		Amount:          req.Amount,
		PurchaseOrderID: req.PurchaseOrderID,
		Allocation:      req.Allocation,
		Concept:         req.Concept,
		Actor:           middleware.GetActor(c),
	})
	if err != nil {
		respondError(c, err, "Failed to pay distributor")
		return
	}
	respond(c, http.StatusCreated, payment)
}
