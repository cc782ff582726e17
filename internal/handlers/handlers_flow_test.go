package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/core/services"
	"github.com/SscSPs/vault_ledger/internal/handlers"
	"github.com/SscSPs/vault_ledger/internal/middleware"
	"github.com/SscSPs/vault_ledger/internal/platform/config"
	"github.com/SscSPs/vault_ledger/internal/platform/ttlstore"
	"github.com/SscSPs/vault_ledger/internal/repositories/memory"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

// FlowTestSuite drives the API against the in-memory stack.
type FlowTestSuite struct {
	suite.Suite
	router *gin.Engine
}

func TestFlowTestSuite(t *testing.T) {
	suite.Run(t, new(FlowTestSuite))
}

func (s *FlowTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		IsProduction:         true,
		DefaultCurrency:      "USD",
		RoundingPolicy:       domain.RoundLargestRemainder,
		MarginWarningPercent: decimal.NewFromInt(10),
		DistributionAccounts: domain.DistributionAccounts{
			Cost:    domain.AccountVaultMain,
			Freight: domain.AccountFreight,
			Profit:  domain.AccountProfit,
		},
		LockWait: 5 * time.Second,
		LockTTL:  30 * time.Second,
		NodeID:   1,
	}
	store := memory.NewStore()
	svc, err := services.NewServiceContainer(cfg, memory.NewRepositoryProvider(store))
	s.Require().NoError(err)

	ctx := context.Background()
	_, err = svc.Account.Bootstrap(ctx, domain.DefaultAccountSeeds("USD"))
	s.Require().NoError(err)
	_, err = svc.Stock.CreateStockItem(ctx, domain.StockItem{ProductID: "widget", Name: "Widget", OnHand: 10, MinThreshold: 2}, "test")
	s.Require().NoError(err)

	s.router = gin.New()
	s.Require().NoError(handlers.RegisterRoutes(s.router, cfg, svc, handlers.RouteOptions{
		IdempotencyStore: ttlstore.NewMemoryStore(),
		IdempotencyTTL:   time.Minute,
	}))
}

func (s *FlowTestSuite) call(method, path, body string, headers ...string) (*httptest.ResponseRecorder, envelope) {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w, decodeEnvelope(s.T(), w)
}

func (s *FlowTestSuite) balance(accountID string) decimal.Decimal {
	w, env := s.call(http.MethodGet, "/api/v1/accounts/"+accountID, "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	var acc struct {
		Balance decimal.Decimal `json:"balance"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &acc))
	return acc.Balance
}

func (s *FlowTestSuite) TestSaleLifecycle() {
	w, env := s.call(http.MethodPost, "/api/v1/sales",
		`{"clientName":"Jane Doe","productID":"widget","quantity":2,"unitSalePrice":"30","unitCostPrice":"18","unitFreightPrice":"2","initialPayment":"30"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	var receipt domain.SaleReceipt
	s.Require().NoError(json.Unmarshal(env.Data, &receipt))
	s.True(receipt.Sale.Total.Equal(decimal.NewFromInt(60)))
	s.True(s.balance(domain.AccountVaultMain).Equal(decimal.NewFromInt(18)))
	s.True(s.balance(domain.AccountProfit).Equal(decimal.NewFromInt(10)))

	saleID := receipt.Sale.SaleID
	w, env = s.call(http.MethodPost, "/api/v1/sales/"+saleID+"/payments", `{"amount":"40"}`)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("overpayment", env.Error.Code)

	w, _ = s.call(http.MethodPost, "/api/v1/sales/"+saleID+"/payments", `{"amount":"30"}`)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.True(s.balance(domain.AccountVaultMain).Equal(decimal.NewFromInt(36)))
	s.True(s.balance(domain.AccountFreight).Equal(decimal.NewFromInt(4)))
	s.True(s.balance(domain.AccountProfit).Equal(decimal.NewFromInt(20)))

	w, _ = s.call(http.MethodPost, "/api/v1/sales/"+saleID+"/cancel", "")
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	s.True(s.balance(domain.AccountVaultMain).IsZero())

	w, env = s.call(http.MethodGet, "/api/v1/stock/widget", "")
	s.Require().Equal(http.StatusOK, w.Code)
	s.Contains(string(env.Data), `"available":10`)
}

func (s *FlowTestSuite) TestSale_InsufficientStock() {
	w, env := s.call(http.MethodPost, "/api/v1/sales",
		`{"clientName":"Jane Doe","productID":"widget","quantity":11,"unitSalePrice":"30","unitCostPrice":"18","unitFreightPrice":"2"}`)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("insufficient_stock", env.Error.Code)
}

func (s *FlowTestSuite) TestValidationFailures() {
	cases := []struct {
		name string
		path string
		body string
	}{
		{"zero amount", "/api/v1/incomes", `{"accountID":"bank","amount":"0","concept":"seed"}`},
		{"missing amount", "/api/v1/expenses", `{"accountID":"bank","concept":"rent"}`},
		{"negative cost", "/api/v1/sales", `{"clientName":"A","productID":"widget","quantity":1,"unitSalePrice":"10","unitCostPrice":"-1"}`},
		{"no client", "/api/v1/sales", `{"productID":"widget","quantity":1,"unitSalePrice":"10"}`},
		{"malformed json", "/api/v1/transfers", `{"sourceAccountID":`},
		{"same account", "/api/v1/transfers", `{"sourceAccountID":"bank","destAccountID":"bank","amount":"5"}`},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			w, env := s.call(http.MethodPost, tc.path, tc.body)
			s.Equal(http.StatusBadRequest, w.Code, w.Body.String())
			s.False(env.Success)
		})
	}
}

func (s *FlowTestSuite) TestTransfer_InsufficientFunds() {
	w, env := s.call(http.MethodPost, "/api/v1/transfers",
		`{"sourceAccountID":"petty-cash","destAccountID":"bank","amount":"10"}`)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Equal("insufficient_funds", env.Error.Code)
	s.Equal("petty-cash", env.Error.Context["account_id"])
}

func (s *FlowTestSuite) TestIncomeThenTransfer() {
	w, _ := s.call(http.MethodPost, "/api/v1/incomes", `{"accountID":"bank","amount":"100","concept":"capital"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	w, _ = s.call(http.MethodPost, "/api/v1/transfers",
		`{"sourceAccountID":"bank","destAccountID":"savings","amount":"40","concept":"reserve"}`)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())

	s.True(s.balance(domain.AccountBank).Equal(decimal.NewFromInt(60)))
	s.True(s.balance(domain.AccountSavings).Equal(decimal.NewFromInt(40)))

	w, env := s.call(http.MethodGet, "/api/v1/accounts/bank/entries?limit=1", "")
	s.Require().Equal(http.StatusOK, w.Code)
	var page struct {
		Entries   []domain.LedgerEntry `json:"entries"`
		NextToken *string              `json:"nextToken"`
	}
	s.Require().NoError(json.Unmarshal(env.Data, &page))
	s.Len(page.Entries, 1)
	s.Require().NotNil(page.NextToken)

	w, _ = s.call(http.MethodGet, "/api/v1/accounts/bank/entries?nextToken=not-a-token", "")
	s.Equal(http.StatusBadRequest, w.Code)
}

func (s *FlowTestSuite) TestIdempotentReplay() {
	body := `{"accountID":"bank","amount":"25","concept":"deposit"}`
	first, firstEnv := s.call(http.MethodPost, "/api/v1/incomes", body, middleware.IdempotencyHeader, "key-1")
	s.Require().Equal(http.StatusCreated, first.Code)

	second, secondEnv := s.call(http.MethodPost, "/api/v1/incomes", body, middleware.IdempotencyHeader, "key-1")
	s.Equal(http.StatusCreated, second.Code)
	s.Equal("true", second.Header().Get("Idempotent-Replayed"))
	s.JSONEq(string(firstEnv.Data), string(secondEnv.Data))

	s.True(s.balance(domain.AccountBank).Equal(decimal.NewFromInt(25)))
}

func (s *FlowTestSuite) TestNotFound() {
	w, env := s.call(http.MethodGet, "/api/v1/sales/missing", "")
	s.Equal(http.StatusNotFound, w.Code)
	s.Equal("not_found", env.Error.Code)
}
