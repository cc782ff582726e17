package handlers

import (
	"net/http"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type stockHandler struct {
	stockService     portssvc.StockSvcFacade
	integrityService portssvc.IntegritySvcFacade
}

func RegisterStockRoutes(rg *gin.RouterGroup, stockService portssvc.StockSvcFacade, integrityService portssvc.IntegritySvcFacade) {
	h := &stockHandler{stockService: stockService, integrityService: integrityService}

	stock := rg.Group("/stock")
	{
		stock.POST("", h.createStockItem)
		stock.GET("/:id", h.getStockItem)
		stock.GET("/:id/validate", h.validateStock)
	}
}

// createStockItem godoc
// @Summary Create a stock item
// @Tags stock
// @Accept json
// @Produce json
// @Param item body dto.CreateStockItemRequest true "Stock item"
// @Success 201 {object} dto.Response{data=dto.StockItemResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "Product already exists"
// @Security BearerAuth
// @Router /stock [post]
func (h *stockHandler) createStockItem(c *gin.Context) {
	var req dto.CreateStockItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}
	item, err := h.stockService.CreateStockItem(c.Request.Context(), domain.StockItem{
		ProductID:    req.ProductID,
		Name:         req.Name,
		OnHand:       req.OnHand,
		MinThreshold: req.MinThreshold,
	}, middleware.GetActor(c))
	if err != nil {
		respondError(c, err, "Failed to create stock item")
		return
	}
	respond(c, http.StatusCreated, dto.ToStockItemResponse(item))
}

// getStockItem godoc
// @Summary Get a stock item
// @Tags stock
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} dto.Response{data=dto.StockItemResponse}
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stock/{id} [get]
func (h *stockHandler) getStockItem(c *gin.Context) {
	item, err := h.stockService.GetStockItem(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve stock item")
		return
	}
	respond(c, http.StatusOK, dto.ToStockItemResponse(item))
}

// validateStock godoc
// @Summary Check whether a quantity can be sold
// @Tags stock
// @Produce json
// @Param id path string true "Product ID"
// @Param qty query int true "Requested quantity"
// @Success 200 {object} dto.Response{data=domain.StockCheck}
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /stock/{id}/validate [get]
func (h *stockHandler) validateStock(c *gin.Context) {
	var params dto.ValidateStockParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	check, err := h.integrityService.ValidateStock(c.Request.Context(), c.Param("id"), params.Qty)
	if err != nil {
		respondError(c, err, "Failed to validate stock")
		return
	}
	respond(c, http.StatusOK, check)
}
