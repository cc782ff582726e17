package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/handlers"
	"github.com/SscSPs/vault_ledger/internal/platform/config"
	"github.com/SscSPs/vault_ledger/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccount(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountService) ListEntries(ctx context.Context, accountID string, dateRange domain.DateRange, limit int, nextToken *string) (*domain.EntryPage, error) {
	args := m.Called(ctx, accountID, dateRange, limit, nextToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.EntryPage), args.Error(1)
}

func (m *MockAccountService) SummarizeAccount(ctx context.Context, accountID string, dateRange domain.DateRange) (domain.EntrySums, error) {
	args := m.Called(ctx, accountID, dateRange)
	return args.Get(0).(domain.EntrySums), args.Error(1)
}

func (m *MockAccountService) Bootstrap(ctx context.Context, seeds []domain.AccountSeed) ([]domain.Account, error) {
	args := m.Called(ctx, seeds)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

// Ensure mock implements the interface
var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Context map[string]string `json:"context"`
	} `json:"error"`
}

func decodeEnvelope(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	if err := json.Unmarshal(w.Body.Bytes(), &env); err != nil {
		t.Fatalf("response is not an envelope: %v: %s", err, w.Body.String())
	}
	return env
}

// --- Test Suite ---
type AccountHandlerTestSuite struct {
	suite.Suite
	router             *gin.Engine
	mockAccountService *MockAccountService
	jwtSecret          string
}

func TestAccountHandlerTestSuite(t *testing.T) {
	suite.Run(t, new(AccountHandlerTestSuite))
}

func (suite *AccountHandlerTestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.router = gin.New()
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.mockAccountService = new(MockAccountService)

	cfg := &config.Config{JWTSecret: suite.jwtSecret, IsProduction: true}
	err := handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{Account: suite.mockAccountService}, handlers.RouteOptions{})
	suite.Require().NoError(err)
}

func (suite *AccountHandlerTestSuite) TearDownTest() {
	suite.mockAccountService.AssertExpectations(suite.T())
}

func (suite *AccountHandlerTestSuite) do(req *http.Request) *httptest.ResponseRecorder {
	token, err := utils.GenerateActorToken("auditor", suite.jwtSecret, time.Hour)
	suite.Require().NoError(err)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

func (suite *AccountHandlerTestSuite) TestListAccounts_Success() {
	suite.mockAccountService.On("ListAccounts", mock.Anything).Return([]domain.Account{
		{AccountID: domain.AccountBank, Name: "Bank", CurrencyCode: "USD", Balance: decimal.RequireFromString("1234.5"),
			LifetimeInflows: decimal.RequireFromString("1300"), LifetimeOutflows: decimal.RequireFromString("65.5")},
	}, nil).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil))

	suite.Equal(http.StatusOK, w.Code)
	env := decodeEnvelope(suite.T(), w)
	suite.True(env.Success)
	var accounts []map[string]any
	suite.Require().NoError(json.Unmarshal(env.Data, &accounts))
	suite.Require().Len(accounts, 1)
	suite.Equal("bank", accounts[0]["accountID"])
	suite.Equal("1234.5", accounts[0]["balance"])
	suite.Equal("$1,234.50", accounts[0]["display"])
}

func (suite *AccountHandlerTestSuite) TestGetAccount_NotFound() {
	suite.mockAccountService.On("GetAccount", mock.Anything, "ghost").
		Return(nil, apperrors.New("GetAccount", apperrors.ErrAccountNotFound, "no such account").With("account_id", "ghost")).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/ghost", nil))

	suite.Equal(http.StatusNotFound, w.Code)
	env := decodeEnvelope(suite.T(), w)
	suite.False(env.Success)
	suite.Equal("not_found", env.Error.Code)
	suite.Equal("ghost", env.Error.Context["account_id"])
}

func (suite *AccountHandlerTestSuite) TestListEntries_PassesQuery() {
	token := "c2VxfDQy"
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	suite.mockAccountService.On("ListEntries", mock.Anything, domain.AccountBank,
		mock.MatchedBy(func(r domain.DateRange) bool { return r.From.Equal(from) && r.To.IsZero() }),
		25,
		mock.MatchedBy(func(t *string) bool { return t != nil && *t == token }),
	).Return(&domain.EntryPage{Entries: []domain.LedgerEntry{}}, nil).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/bank/entries?limit=25&nextToken="+token+"&from=2026-01-01T00:00:00Z", nil))

	suite.Equal(http.StatusOK, w.Code, w.Body.String())
	suite.Contains(w.Body.String(), `"entries":[]`)
}

func (suite *AccountHandlerTestSuite) TestListEntries_RejectsBadLimit() {
	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/bank/entries?limit=9999", nil))

	suite.Equal(http.StatusBadRequest, w.Code)
	suite.Equal("validation_error", decodeEnvelope(suite.T(), w).Error.Code)
}

func (suite *AccountHandlerTestSuite) TestSummary_InternalErrorIsGeneric() {
	suite.mockAccountService.On("SummarizeAccount", mock.Anything, domain.AccountBank, domain.DateRange{}).
		Return(domain.EntrySums{}, errors.New("connection refused to 10.0.0.5")).Once()

	w := suite.do(httptest.NewRequest(http.MethodGet, "/api/v1/accounts/bank/summary", nil))

	suite.Equal(http.StatusInternalServerError, w.Code)
	env := decodeEnvelope(suite.T(), w)
	suite.Equal("internal_error", env.Error.Code)
	suite.NotContains(env.Error.Message, "10.0.0.5")
}

func (suite *AccountHandlerTestSuite) TestHealth() {
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	suite.Equal(http.StatusOK, w.Code)
	suite.JSONEq(`{"status":"ok"}`, w.Body.String())
}

func (suite *AccountHandlerTestSuite) TestInvalidToken_Unauthorized() {
	token, err := utils.GenerateActorToken("auditor", "another-secret", time.Hour)
	suite.Require().NoError(err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/accounts", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)

	suite.Equal(http.StatusUnauthorized, w.Code)
	suite.Equal("unauthorized", decodeEnvelope(suite.T(), w).Error.Code)
}
