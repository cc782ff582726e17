package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type saleHandler struct {
	saleService portssvc.SaleSvcFacade
}

// RegisterSaleRoutes registers sale and distribution preview routes.
func RegisterSaleRoutes(rg *gin.RouterGroup, saleService portssvc.SaleSvcFacade) {
	h := &saleHandler{saleService: saleService}

	sales := rg.Group("/sales")
	{
		sales.POST("", h.createSale)
		sales.GET("/:id", h.getSale)
		sales.POST("/:id/payments", h.registerPayment)
		sales.POST("/:id/cancel", h.cancelSale)
	}
	rg.POST("/distributions/preview", h.previewDistribution)
}

// createSale godoc
// @Summary Register a sale
// @Description Reserves stock, distributes the initial payment across the cost, freight and profit accounts and bills the client, all or nothing
// @Tags sales
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param sale body dto.CreateSaleRequest true "Sale details"
// @Success 201 {object} dto.Response{data=domain.SaleReceipt}
// @Failure 400 {object} dto.ErrorResponse "Validation error"
// @Failure 404 {object} dto.ErrorResponse "Client or product not found"
// @Failure 422 {object} dto.ErrorResponse "Insufficient stock or overpayment"
// @Failure 409 {object} dto.ErrorResponse "Concurrency conflict"
// @Security BearerAuth
// @Router /sales [post]
func (h *saleHandler) createSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	receipt, err := h.saleService.CreateSale(c.Request.Context(), domain.CreateSaleInput{
		ClientID:         req.ClientID,
		ClientName:       req.ClientName,
		ProductID:        req.ProductID,
		Quantity:         req.Quantity,
		UnitSalePrice:    req.UnitSalePrice,
		UnitCostPrice:    req.UnitCostPrice,
		UnitFreightPrice: req.UnitFreightPrice,
		InitialPayment:   req.InitialPayment,
		Actor:            middleware.GetActor(c),
	})
	if err != nil {
		respondError(c, err, "Failed to create sale")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Sale created",
		slog.String("sale_id", receipt.Sale.SaleID), slog.String("total", receipt.Sale.Total.String()))
	respond(c, http.StatusCreated, receipt)
}

// getSale godoc
// @Summary Get a sale by ID
// @Tags sales
// @Produce json
// @Param id path string true "Sale ID"
// @Success 200 {object} dto.Response{data=domain.Sale}
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /sales/{id} [get]
func (h *saleHandler) getSale(c *gin.Context) {
	sale, err := h.saleService.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve sale")
		return
	}
	respond(c, http.StatusOK, sale)
}

// registerPayment godoc
// @Summary Register a client payment on a sale
// @Description Distributes only the increment between what was already distributed and the new paid fraction
// @Tags sales
// @Accept json
// @Produce json
// @Param Idempotency-Key header string false "Replays the first response for a repeated key"
// @Param id path string true "Sale ID"
// @Param payment body dto.RegisterPaymentRequest true "Payment"
// @Success 200 {object} dto.Response{data=domain.PaymentReceipt}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 422 {object} dto.ErrorResponse "Overpayment"
// @Security BearerAuth
// @Router /sales/{id}/payments [post]
func (h *saleHandler) registerPayment(c *gin.Context) {
	var req dto.RegisterPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	receipt, err := h.saleService.RegisterPayment(c.Request.Context(), c.Param("id"), req.Amount, middleware.GetActor(c))
	if err != nil {
		respondError(c, err, "Failed to register payment")
		return
	}
	respond(c, http.StatusOK, receipt)
}

// cancelSale godoc
// @Summary Cancel a sale
// @Description Reverses the distributed amounts, returns the stock and removes the debt from the client
// @Tags sales
// @Accept json
// @Produce json
// @Param id path string true "Sale ID"
// @Param cancel body dto.CancelSaleRequest false "Reason"
// @Success 200 {object} dto.Response{data=domain.Sale}
// @Failure 400 {object} dto.ErrorResponse "Sale already cancelled"
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /sales/{id}/cancel [post]
func (h *saleHandler) cancelSale(c *gin.Context) {
	var req dto.CancelSaleRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBindError(c, err)
			return
		}
	}
	sale, err := h.saleService.CancelSale(c.Request.Context(), c.Param("id"), req.Reason, middleware.GetActor(c))
	if err != nil {
		respondError(c, err, "Failed to cancel sale")
		return
	}
	respond(c, http.StatusOK, sale)
}

// previewDistribution godoc
// @Summary Preview a sale distribution
// @Description Computes the split, margins and the part a payment would distribute, without writing anything
// @Tags sales
// @Accept json
// @Produce json
// @Param preview body dto.PreviewDistributionRequest true "Prices"
// @Success 200 {object} dto.Response{data=domain.DistributionPreview}
// @Failure 400 {object} dto.ErrorResponse
// @Router /distributions/preview [post]
func (h *saleHandler) previewDistribution(c *gin.Context) {
	var req dto.PreviewDistributionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	preview, err := h.saleService.PreviewDistribution(c.Request.Context(), req.UnitSalePrice, req.UnitCostPrice, req.UnitFreightPrice, req.Quantity, req.Paid)
	if err != nil {
		respondError(c, err, "Failed to preview distribution")
		return
	}
	respond(c, http.StatusOK, preview)
}
