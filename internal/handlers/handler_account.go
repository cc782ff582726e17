package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/dto"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// accountHandler handles HTTP requests related to accounts.
type accountHandler struct {
	accountService portssvc.AccountSvcFacade
}

func newAccountHandler(as portssvc.AccountSvcFacade) *accountHandler {
	return &accountHandler{accountService: as}
}

// RegisterAccountRoutes registers routes related to accounts.
func RegisterAccountRoutes(rg *gin.RouterGroup, accountService portssvc.AccountSvcFacade) {
	h := newAccountHandler(accountService)

	accounts := rg.Group("/accounts")
	{
		accounts.GET("", h.listAccounts)
		accounts.GET("/:id", h.getAccount)
		accounts.GET("/:id/entries", h.listEntries)
		accounts.GET("/:id/summary", h.getSummary)
	}
}

// listAccounts godoc
// @Summary List accounts
// @Description Lists every vault account with its balance and lifetime totals
// @Tags accounts
// @Produce json
// @Success 200 {object} dto.Response{data=[]dto.AccountResponse}
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /accounts [get]
func (h *accountHandler) listAccounts(c *gin.Context) {
	accounts, err := h.accountService.ListAccounts(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to list accounts")
		return
	}
	respond(c, http.StatusOK, dto.ToAccountResponses(accounts))
}

// getAccount godoc
// @Summary Get an account by ID
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Success 200 {object} dto.Response{data=dto.AccountResponse}
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Failure 500 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /accounts/{id} [get]
func (h *accountHandler) getAccount(c *gin.Context) {
	account, err := h.accountService.GetAccount(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve account")
		return
	}
	respond(c, http.StatusOK, dto.ToAccountResponse(account))
}

// listEntries godoc
// @Summary List ledger entries of an account
// @Description Pages through an account's entries in the order they were written
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Param limit query int false "Page size (default 50, max 500)"
// @Param nextToken query string false "Token from the previous page"
// @Param from query string false "Inclusive lower bound (RFC3339)"
// @Param to query string false "Exclusive upper bound (RFC3339)"
// @Success 200 {object} dto.Response{data=dto.ListEntriesResponse}
// @Failure 400 {object} dto.ErrorResponse "Invalid query or token"
// @Failure 404 {object} dto.ErrorResponse "Account not found"
// @Security BearerAuth
// @Router /accounts/{id}/entries [get]
func (h *accountHandler) listEntries(c *gin.Context) {
	var params dto.ListEntriesParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	accountID := c.Param("id")
	page, err := h.accountService.ListEntries(c.Request.Context(), accountID, params.DateRange(), params.Limit, params.NextToken)
	if err != nil {
		respondError(c, err, "Failed to list ledger entries")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Debug("Listed ledger entries",
		slog.String("account_id", accountID), slog.Int("count", len(page.Entries)))
	respond(c, http.StatusOK, dto.ListEntriesResponse{Entries: page.Entries, NextToken: page.NextToken})
}

// getSummary godoc
// @Summary Summarize an account over a date range
// @Tags accounts
// @Produce json
// @Param id path string true "Account ID"
// @Param from query string false "Inclusive lower bound (RFC3339)"
// @Param to query string false "Exclusive upper bound (RFC3339)"
// @Success 200 {object} dto.Response{data=dto.AccountSummaryResponse}
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Security BearerAuth
// @Router /accounts/{id}/summary [get]
func (h *accountHandler) getSummary(c *gin.Context) {
	var params dto.SummaryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	accountID := c.Param("id")
	sums, err := h.accountService.SummarizeAccount(c.Request.Context(), accountID, params.DateRange())
	if err != nil {
		respondError(c, err, "Failed to summarize account")
		return
	}
	respond(c, http.StatusOK, dto.ToAccountSummaryResponse(accountID, sums, params))
}
