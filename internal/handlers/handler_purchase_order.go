package handlers

import (
	"net/http"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type purchaseOrderHandler struct {
	purchaseOrderService portssvc.PurchaseOrderSvcFacade
}

func RegisterPurchaseOrderRoutes(rg *gin.RouterGroup, purchaseOrderService portssvc.PurchaseOrderSvcFacade) {
	h := &purchaseOrderHandler{purchaseOrderService: purchaseOrderService}

	orders := rg.Group("/purchase-orders")
	{
		orders.POST("", h.createPurchaseOrder)
		orders.GET("/:id", h.getPurchaseOrder)
	}
}

// createPurchaseOrder godoc
// @Summary Record a purchase order
// @Description Bills the distributor and restocks the product when one is given
// @Tags purchase-orders
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param order body dto.CreatePurchaseOrderRequest true "Purchase order"
// @Success 201 {object} dto.Response{data=domain.PurchaseOrder}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse "Distributor or product not found"
// @Security BearerAuth
// @Router /purchase-orders [post]
func (h *purchaseOrderHandler) createPurchaseOrder(c *gin.Context) {
	var req dto.CreatePurchaseOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	order, err := h.purchaseOrderService.CreatePurchaseOrder(c.Request.Context(), domain.CreatePurchaseOrderInput{
		DistributorID:   req.DistributorID,
		DistributorName: req.DistributorName,
		ProductID:       req.ProductID,
		Quantity:        req.Quantity,
		UnitCost:        req.UnitCost,
		Actor:           middleware.GetActor(c),
	})
	if err != nil {
		respondError(c, err, "Failed to create purchase order")
		return
	}
	respond(c, http.StatusCreated, order)
}

// getPurchaseOrder godoc
// @Summary Get a purchase order by ID
// @Tags purchase-orders
// @Produce json
// @Param id path string true "Purchase order ID"
// @Success 200 {object} dto.Response{data=domain.PurchaseOrder}
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /purchase-orders/{id} [get]
func (h *purchaseOrderHandler) getPurchaseOrder(c *gin.Context) {
	order, err := h.purchaseOrderService.GetPurchaseOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve purchase order")
		return
	}
	respond(c, http.StatusOK, order)
}
