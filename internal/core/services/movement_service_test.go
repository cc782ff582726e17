package services_test

import (
	"sync"
	"testing"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"
)

type MovementServiceTestSuite struct {
	suite.Suite
	h *harness
}

func (s *MovementServiceTestSuite) SetupTest() {
	s.h = newHarness(s.T(), domain.RoundLargestRemainder)
	s.h.fund(s.T(), domain.AccountBank, "1000")
}

func TestMovementService(t *testing.T) {
	suite.Run(t, new(MovementServiceTestSuite))
}

func (s *MovementServiceTestSuite) totalBalance() decimal.Decimal {
	accounts, err := s.h.svc.Account.ListAccounts(s.h.ctx)
	s.Require().NoError(err)
	sum := decimal.Zero
	for _, a := range accounts {
		sum = sum.Add(a.Balance)
	}
	return sum
}

func (s *MovementServiceTestSuite) TestTransfer_ConservesMoney() {
	h := s.h
	before := s.totalBalance()

	tr, err := h.svc.Movement.Transfer(h.ctx, domain.TransferInput{
		SourceAccountID: domain.AccountBank,
		DestAccountID:   domain.AccountPettyCash,
		Amount:          dec("125.50"),
		Concept:         "float",
		Actor:           "clerk",
	})
	s.Require().NoError(err)

	s.True(before.Equal(s.totalBalance()))
	s.True(tr.Source.Balance.Equal(dec("874.50")))
	s.True(tr.Dest.Balance.Equal(dec("125.50")))
	s.Equal(domain.Outflow, tr.Outflow.Kind)
	s.Equal(domain.Inflow, tr.Inflow.Kind)
	s.True(tr.Outflow.Amount.Equal(tr.Inflow.Amount))
	s.Equal(tr.Outflow.Reference, tr.Inflow.Reference)
	s.Equal(tr.TransferID, tr.Outflow.Reference.ID)
	s.Contains(h.events.Types(), domain.EventTransferCompleted)
	h.requireNoDrift(s.T())
}

func (s *MovementServiceTestSuite) TestTransfer_Rejections() {
	h := s.h
	before := h.balances(s.T())

	tests := []struct {
		name string
		in   domain.TransferInput
		want error
	}{
		{"same account", domain.TransferInput{SourceAccountID: domain.AccountBank, DestAccountID: domain.AccountBank, Amount: dec("1")}, apperrors.ErrSameAccountTransfer},
		{"insufficient funds", domain.TransferInput{SourceAccountID: domain.AccountSavings, DestAccountID: domain.AccountBank, Amount: dec("1")}, apperrors.ErrInsufficientFunds},
		{"zero amount", domain.TransferInput{SourceAccountID: domain.AccountBank, DestAccountID: domain.AccountSavings, Amount: dec("0")}, apperrors.ErrValidation},
		{"too many decimals", domain.TransferInput{SourceAccountID: domain.AccountBank, DestAccountID: domain.AccountSavings, Amount: dec("1.001")}, apperrors.ErrValidation},
		{"unknown account", domain.TransferInput{SourceAccountID: domain.AccountBank, DestAccountID: "nowhere", Amount: dec("1")}, apperrors.ErrNotFound},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := h.svc.Movement.Transfer(h.ctx, tt.in)
			s.ErrorIs(err, tt.want)
		})
	}
	s.Equal(before, h.balances(s.T()))
}

func (s *MovementServiceTestSuite) TestTransfer_InsufficientFundsCarriesContext() {
	_, err := s.h.svc.Movement.Transfer(s.h.ctx, domain.TransferInput{
		SourceAccountID: domain.AccountBank,
		DestAccountID:   domain.AccountSavings,
		Amount:          dec("1000.01"),
	})
	s.Require().ErrorIs(err, apperrors.ErrInsufficientFunds)
	ctx := apperrors.ContextOf(err)
	s.Equal(domain.AccountBank, ctx["account_id"])
	s.Equal("1000", ctx["balance"])
	s.Equal("insufficient_funds", apperrors.Code(err))
}

func (s *MovementServiceTestSuite) TestRecordExpenseAndIncome() {
	h := s.h
	exp, err := h.svc.Movement.RecordExpense(h.ctx, domain.MovementInput{AccountID: domain.AccountBank, Amount: dec("200"), Concept: "rent", Actor: "clerk"})
	s.Require().NoError(err)
	s.Equal(domain.Outflow, exp.Entry.Kind)
	s.Equal(domain.RefExpense, exp.Entry.Reference.Type)
	s.True(exp.Account.Balance.Equal(dec("800")))
	s.True(exp.Account.LifetimeOutflows.Equal(dec("200")))

	_, err = h.svc.Movement.RecordExpense(h.ctx, domain.MovementInput{AccountID: domain.AccountBank, Amount: dec("800.01")})
	s.ErrorIs(err, apperrors.ErrInsufficientFunds)

	inc, err := h.svc.Movement.RecordIncome(h.ctx, domain.MovementInput{AccountID: domain.AccountSavings, Amount: dec("50")})
	s.Require().NoError(err)
	s.Equal("income", inc.Entry.Concept)
	s.Equal(domain.SystemActor, inc.Entry.CreatedBy)

	sums, err := h.svc.Account.SummarizeAccount(h.ctx, domain.AccountBank, domain.DateRange{})
	s.Require().NoError(err)
	s.True(sums.Inflows.Equal(dec("1000")))
	s.True(sums.Outflows.Equal(dec("200")))
	s.Equal(int64(2), sums.Count)
	h.requireNoDrift(s.T())
}

func (s *MovementServiceTestSuite) TestTransfer_RollsBackWhenVerificationFails() {
	h := s.h
	before := h.balances(s.T())
	h.faults.failOn("FindAccountsByIDs", 2, errInjected)

	_, err := h.svc.Movement.Transfer(h.ctx, domain.TransferInput{SourceAccountID: domain.AccountBank, DestAccountID: domain.AccountSavings, Amount: dec("10")})
	s.ErrorIs(err, errInjected)
	s.Equal(before, h.balances(s.T()))

	page, err := h.svc.Account.ListEntries(h.ctx, domain.AccountSavings, domain.DateRange{}, 0, nil)
	s.Require().NoError(err)
	s.Empty(page.Entries)
}

func (s *MovementServiceTestSuite) TestConcurrentWithdrawalsNeverOverdraw() {
	h := s.h
	const workers = 30

	var (
		mu        sync.Mutex
		succeeded int
		failures  []error
		wg        sync.WaitGroup
	)
	for i := range workers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			var err error
			if i%2 == 0 {
				_, err = h.svc.Movement.Transfer(h.ctx, domain.TransferInput{
					SourceAccountID: domain.AccountBank,
					DestAccountID:   domain.AccountSavings,
					Amount:          dec("50"),
				})
			} else {
				_, err = h.svc.Movement.RecordExpense(h.ctx, domain.MovementInput{AccountID: domain.AccountBank, Amount: dec("50")})
			}
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures = append(failures, err)
				return
			}
			succeeded++
		}(i)
	}
	wg.Wait()

	s.Equal(20, succeeded)
	s.Len(failures, workers-20)
	for _, err := range failures {
		s.ErrorIs(err, apperrors.ErrInsufficientFunds)
	}
	s.True(h.balance(s.T(), domain.AccountBank).IsZero())

	sums, err := h.svc.Account.SummarizeAccount(h.ctx, domain.AccountBank, domain.DateRange{})
	s.Require().NoError(err)
	s.True(sums.Outflows.Equal(dec("1000")))
	s.Equal(int64(21), sums.Count)
	h.balances(s.T())
	h.requireNoDrift(s.T())
}
