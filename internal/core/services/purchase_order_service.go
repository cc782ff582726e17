package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/vault_ledger/internal/apperrors"
	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/core/ports"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/utils/accounting"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type purchaseOrderService struct {
	*ledgerCore
}

var _ portssvc.PurchaseOrderSvcFacade = (*purchaseOrderService)(nil)

func (s *purchaseOrderService) GetPurchaseOrder(ctx context.Context, purchaseOrderID string) (*domain.PurchaseOrder, error) {
	order, err := s.repos.PurchaseOrderRepo.FindPurchaseOrderByID(ctx, purchaseOrderID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find purchase order", slog.String("purchase_order_id", purchaseOrderID))
		}
		return nil, err
	}
	return order, nil
}

func (s *purchaseOrderService) CreatePurchaseOrder(ctx context.Context, in domain.CreatePurchaseOrderInput) (*domain.PurchaseOrder, error) {
	const op = "CreatePurchaseOrder"
	actor := actorOr(in.Actor)
	logger := s.GetLogger(ctx).With(slog.String("op", op))

	if in.Quantity <= 0 {
		return nil, apperrors.New(op, apperrors.ErrValidation, "quantity must be greater than zero").With("quantity", in.Quantity)
	}
	if err := s.checkAmount(op, "unit_cost", in.UnitCost); err != nil {
		return nil, err
	}
	if in.ProductID != "" {
		if _, err := s.repos.StockRepo.FindStockItemByID(ctx, in.ProductID); err != nil {
			return nil, err
		}
	}
	sg := newSaga(logger)
	distributor, created, err := resolveCounterparty(ctx, &s.BaseService, s.repos.CounterpartyRepo, domain.Distributor, in.DistributorID, in.DistributorName, actor)
	if err != nil {
		return nil, err
	}
	if created {
		sg.OnFail(forgetCounterparty(s.repos.CounterpartyRepo, distributor.CounterpartyID))
	}

	orderID := uuid.NewString()
	keys := []string{ports.CounterpartyKey(distributor.CounterpartyID), ports.PurchaseOrderKey(orderID)}
	if in.ProductID != "" {
		keys = append(keys, ports.StockKey(in.ProductID))
	}
	unlock, err := s.lock(ctx, op, keys...)
	if err != nil {
		return nil, sg.Fail(ctx, err)
	}
	defer unlock()
	sg.Done(string(domain.StageValidated), nil)

	if in.ProductID != "" {
		if _, err := s.repos.StockRepo.RestockItem(ctx, in.ProductID, in.Quantity); err != nil {
			return nil, sg.Fail(ctx, err)
		}
		sg.Done("stock_restocked", func(ctx context.Context) error {
			return s.unrestock(ctx, in.ProductID, in.Quantity)
		})
	}

	total := in.UnitCost.Mul(decimal.NewFromInt(in.Quantity))
	if _, err := s.repos.CounterpartyRepo.AdjustCounterpartyTotals(ctx, distributor.CounterpartyID, total, decimal.Zero, actor); err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.Done(string(domain.StageCounterpartyUpdated), func(ctx context.Context) error {
		_, err := s.repos.CounterpartyRepo.AdjustCounterpartyTotals(ctx, distributor.CounterpartyID, total.Neg(), decimal.Zero, actor)
		return err
	})

	now := domain.Now()
	order := domain.PurchaseOrder{
		PurchaseOrderID: orderID,
		DistributorID:   distributor.CounterpartyID,
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		UnitCost:        in.UnitCost,
		Total:           total,
		AmountPaid:      decimal.Zero,
		PaymentState:    domain.PaymentPending,
		CurrencyCode:    s.settings.Currency,
		AuditFields:     domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor},
	}
	if err := s.repos.PurchaseOrderRepo.SavePurchaseOrder(ctx, order); err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.Done(string(domain.StageCommitted), nil)

	logger.Info("Purchase order created",
		slog.String("purchase_order_id", orderID),
		slog.String("distributor_id", distributor.CounterpartyID),
		slog.String("total", total.String()))
	s.publish(ctx, domain.EventPurchaseOrderCreated, actor, domain.Reference{Type: domain.RefPurchaseOrder, ID: orderID}, map[string]string{
		"distributor_id": distributor.CounterpartyID,
		"product_id":     in.ProductID,
		"total":          total.String(),
	})
	return &order, nil
}

// unrestock takes back a restock by reserving and committing the quantity.
func (s *purchaseOrderService) unrestock(ctx context.Context, productID string, qty int64) error {
	if _, err := s.repos.StockRepo.ReserveStock(ctx, productID, qty); err != nil {
		return err
	}
	_, err := s.repos.StockRepo.CommitStock(ctx, productID, qty)
	return err
}

func (s *purchaseOrderService) PayCounterpartyDebt(ctx context.Context, in domain.PayDebtInput) (*domain.DebtPayment, error) {
	const op = "PayCounterpartyDebt"
	actor := actorOr(in.Actor)
	logger := s.GetLogger(ctx).With(slog.String("op", op), slog.String("counterparty_id", in.CounterpartyID))

	if in.CounterpartyID == "" || in.SourceAccountID == "" {
		return nil, apperrors.New(op, apperrors.ErrValidation, "counterparty and source account are required")
	}
	if err := s.checkAmount(op, "amount", in.Amount); err != nil {
		return nil, err
	}
	switch in.Allocation {
	case "":
		in.Allocation = domain.AllocateFIFO
	case domain.AllocateFIFO, domain.AllocateProportional:
	default:
		return nil, apperrors.New(op, apperrors.ErrValidation, "unknown allocation").With("allocation", in.Allocation)
	}

	distributor, err := s.repos.CounterpartyRepo.FindCounterpartyByID(ctx, in.CounterpartyID)
	if err != nil {
		return nil, err
	}
	if distributor.Kind != domain.Distributor {
		return nil, apperrors.New(op, apperrors.ErrValidation, "only distributor debt can be paid").With("kind", distributor.Kind)
	}

	candidates, err := s.payableOrders(ctx, op, in)
	if err != nil {
		return nil, err
	}
	keys := append(accountKeys(in.SourceAccountID), ports.CounterpartyKey(in.CounterpartyID))
	for _, o := range candidates {
		keys = append(keys, ports.PurchaseOrderKey(o.PurchaseOrderID))
	}
	unlock, err := s.lock(ctx, op, keys...)
	if err != nil {
		return nil, err
	}
	defer unlock()

	// re-read everything under the lock
	distributor, err = s.repos.CounterpartyRepo.FindCounterpartyByID(ctx, in.CounterpartyID)
	if err != nil {
		return nil, err
	}
	orders := make([]domain.PurchaseOrder, 0, len(candidates))
	outstanding := decimal.Zero
	for _, c := range candidates {
		o, err := s.repos.PurchaseOrderRepo.FindPurchaseOrderByID(ctx, c.PurchaseOrderID)
		if err != nil {
			return nil, err
		}
		if o.Outstanding().IsPositive() {
			orders = append(orders, *o)
			outstanding = outstanding.Add(o.Outstanding())
		}
	}
	owed := distributor.TotalOwed()
	if in.Amount.GreaterThan(owed) || in.Amount.GreaterThan(outstanding) {
		return nil, apperrors.New(op, apperrors.ErrOverpayment, "payment exceeds the amount owed").
			With("amount", in.Amount).
			With("owed", owed).
			With("orders_outstanding", outstanding)
	}
	accounts, err := s.accounts(ctx, op, in.SourceAccountID)
	if err != nil {
		return nil, err
	}
	if err := requireFunds(op, accounts[in.SourceAccountID], in.Amount); err != nil {
		return nil, err
	}
	applied, err := s.allocateDebt(in.Amount, orders, in.Allocation)
	if err != nil {
		return nil, err
	}

	paymentID := uuid.NewString()
	ref := domain.Reference{Type: domain.RefDebtPayment, ID: paymentID}
	if in.PurchaseOrderID != "" {
		ref = domain.Reference{Type: domain.RefPurchaseOrder, ID: in.PurchaseOrderID}
	}

	sg := newSaga(logger)
	sg.Done(string(domain.StageValidated), nil)
	entries, _, err := s.post(ctx, sg, op, []domain.LedgerEntry{
		s.newEntry(in.SourceAccountID, domain.Outflow, in.Amount, conceptOr(in.Concept, "Payment to "+distributor.Name), ref, actor),
	})
	if err != nil {
		return nil, sg.Fail(ctx, err)
	}

	now := domain.Now()
	for _, o := range orders {
		part, ok := applied[o.PurchaseOrderID]
		if !ok || part.IsZero() {
			continue
		}
		prev := o
		o.AmountPaid = o.AmountPaid.Add(part)
		o.PaymentState = o.PaymentState.Advance(domain.PaymentStateFor(o.AmountPaid, o.Total))
		o.LastUpdatedAt = now
		o.LastUpdatedBy = actor
		if err := s.repos.PurchaseOrderRepo.UpdatePurchaseOrder(ctx, o); err != nil {
			return nil, sg.Fail(ctx, err)
		}
		sg.OnFail(func(ctx context.Context) error {
			return s.repos.PurchaseOrderRepo.UpdatePurchaseOrder(ctx, prev)
		})
	}

	updated, err := s.repos.CounterpartyRepo.AdjustCounterpartyTotals(ctx, in.CounterpartyID, decimal.Zero, in.Amount, actor)
	if err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.Done(string(domain.StageCounterpartyUpdated), nil)
	sg.Done(string(domain.StageCommitted), nil)

	logger.Info("Distributor debt paid",
		slog.String("payment_id", paymentID),
		slog.String("source_account_id", in.SourceAccountID),
		slog.String("amount", in.Amount.String()),
		slog.Int("orders", len(applied)))
	attrs := map[string]string{
		"source_account_id": in.SourceAccountID,
		"amount":            in.Amount.String(),
		"payment_id":        paymentID,
	}
	for id, part := range applied {
		attrs["applied."+id] = part.String()
	}
	s.publish(ctx, domain.EventDebtPaid, actor, ref, attrs)

	return &domain.DebtPayment{
		PaymentID:    paymentID,
		Counterparty: *updated,
		Entry:        entries[0],
		Applied:      applied,
	}, nil
}

// payableOrders returns the orders a payment may settle: the requested one,
// or every order of the distributor, oldest first.
func (s *purchaseOrderService) payableOrders(ctx context.Context, op string, in domain.PayDebtInput) ([]domain.PurchaseOrder, error) {
	if in.PurchaseOrderID == "" {
		return s.repos.PurchaseOrderRepo.ListPurchaseOrdersByDistributor(ctx, in.CounterpartyID)
	}
	order, err := s.repos.PurchaseOrderRepo.FindPurchaseOrderByID(ctx, in.PurchaseOrderID)
	if err != nil {
		return nil, err
	}
	if order.DistributorID != in.CounterpartyID {
		return nil, apperrors.New(op, apperrors.ErrValidation, "purchase order belongs to another distributor").
			With("purchase_order_id", in.PurchaseOrderID)
	}
	return []domain.PurchaseOrder{*order}, nil
}

// allocateDebt spreads amount over orders, which are oldest first and all
// have a positive outstanding amount summing to at least amount.
func (s *purchaseOrderService) allocateDebt(amount decimal.Decimal, orders []domain.PurchaseOrder, mode domain.DebtAllocation) (map[string]decimal.Decimal, error) {
	applied := make(map[string]decimal.Decimal, len(orders))
	if mode == domain.AllocateProportional {
		weights := make([]decimal.Decimal, len(orders))
		for i, o := range orders {
			weights[i] = o.Outstanding()
		}
		parts, err := accounting.Allocate(amount, weights, s.places)
		if err != nil {
			return nil, err
		}
		for i, o := range orders {
			if parts[i].IsPositive() {
				applied[o.PurchaseOrderID] = parts[i]
			}
		}
		return applied, nil
	}

	remaining := amount
	for _, o := range orders {
		if !remaining.IsPositive() {
			break
		}
		part := decimal.Min(remaining, o.Outstanding())
		applied[o.PurchaseOrderID] = part
		remaining = remaining.Sub(part)
	}
	return applied, nil
}
