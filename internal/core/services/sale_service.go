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

type saleService struct {
	*ledgerCore
}

var _ portssvc.SaleSvcFacade = (*saleService)(nil)

func (s *saleService) GetSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	sale, err := s.repos.SaleRepo.FindSaleByID(ctx, saleID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find sale", slog.String("sale_id", saleID))
		}
		return nil, err
	}
	return sale, nil
}

func (s *saleService) PreviewDistribution(ctx context.Context, salePrice, costPrice, freightPrice decimal.Decimal, quantity int64, paid decimal.Decimal) (*domain.DistributionPreview, error) {
	const op = "PreviewDistribution"
	if err := s.checkPrices(op, quantity, salePrice, costPrice, freightPrice); err != nil {
		return nil, err
	}
	dist := accounting.ComputeSaleDistribution(salePrice, costPrice, freightPrice, quantity)
	if paid.IsNegative() || paid.GreaterThan(dist.Total) {
		return nil, apperrors.New(op, apperrors.ErrValidation, "paid amount must be between zero and the sale total").
			With("paid", paid).
			With("total", dist.Total)
	}
	scaled, err := accounting.DistributionForPaid(dist.Distribution, paid, s.places, s.settings.Rounding)
	if err != nil {
		return nil, err
	}
	return &domain.DistributionPreview{
		Distribution: dist,
		Paid:         scaled,
		Margin:       accounting.ValidateMargin(salePrice, costPrice, freightPrice, s.settings.MarginWarnPct),
	}, nil
}

func (s *saleService) checkPrices(op string, quantity int64, salePrice, costPrice, freightPrice decimal.Decimal) error {
	if quantity <= 0 {
		return apperrors.New(op, apperrors.ErrValidation, "quantity must be greater than zero").With("quantity", quantity)
	}
	if !salePrice.IsPositive() {
		return apperrors.New(op, apperrors.ErrValidation, "unit sale price must be greater than zero").With("unit_sale_price", salePrice)
	}
	if costPrice.IsNegative() || freightPrice.IsNegative() {
		return apperrors.New(op, apperrors.ErrValidation, "unit prices cannot be negative").
			With("unit_cost_price", costPrice).
			With("unit_freight_price", freightPrice)
	}
	for field, price := range map[string]decimal.Decimal{
		"unit_sale_price":    salePrice,
		"unit_cost_price":    costPrice,
		"unit_freight_price": freightPrice,
	} {
		if err := s.checkPlaces(op, field, price); err != nil {
			return err
		}
	}
	return nil
}

func (s *saleService) CreateSale(ctx context.Context, in domain.CreateSaleInput) (*domain.SaleReceipt, error) {
	const op = "CreateSale"
	actor := actorOr(in.Actor)
	logger := s.GetLogger(ctx).With(slog.String("op", op), slog.String("product_id", in.ProductID))

	if in.ProductID == "" {
		return nil, apperrors.New(op, apperrors.ErrValidation, "product id is required")
	}
	if err := s.checkPrices(op, in.Quantity, in.UnitSalePrice, in.UnitCostPrice, in.UnitFreightPrice); err != nil {
		return nil, err
	}
	margin := accounting.ValidateMargin(in.UnitSalePrice, in.UnitCostPrice, in.UnitFreightPrice, s.settings.MarginWarnPct)
	if !margin.Valid {
		return nil, apperrors.New(op, apperrors.ErrValidation, "sale price does not cover cost and freight").
			With("reason", margin.Reason).
			With("margin_pct", margin.MarginPct)
	}
	dist := accounting.ComputeSaleDistribution(in.UnitSalePrice, in.UnitCostPrice, in.UnitFreightPrice, in.Quantity)
	payment := in.InitialPayment
	if payment.IsNegative() {
		return nil, apperrors.New(op, apperrors.ErrValidation, "initial payment cannot be negative").With("initial_payment", payment)
	}
	if err := s.checkPlaces(op, "initial_payment", payment); err != nil {
		return nil, err
	}
	if payment.GreaterThan(dist.Total) {
		return nil, apperrors.New(op, apperrors.ErrOverpayment, "initial payment exceeds the sale total").
			With("initial_payment", payment).
			With("total", dist.Total)
	}
	paid, err := accounting.DistributionForPaid(dist.Distribution, payment, s.places, s.settings.Rounding)
	if err != nil {
		return nil, err
	}
	if _, err := s.repos.StockRepo.FindStockItemByID(ctx, in.ProductID); err != nil {
		return nil, err
	}

	sg := newSaga(logger)
	client, created, err := resolveCounterparty(ctx, &s.BaseService, s.repos.CounterpartyRepo, domain.Client, in.ClientID, in.ClientName, actor)
	if err != nil {
		return nil, err
	}
	if created {
		sg.OnFail(forgetCounterparty(s.repos.CounterpartyRepo, client.CounterpartyID))
	}

	saleID := uuid.NewString()
	accountIDs := s.settings.Accounts.IDs()
	keys := append(accountKeys(accountIDs[:]...),
		ports.StockKey(in.ProductID),
		ports.CounterpartyKey(client.CounterpartyID),
		ports.SaleKey(saleID))
	unlock, err := s.lock(ctx, op, keys...)
	if err != nil {
		return nil, sg.Fail(ctx, err)
	}
	defer unlock()

	if _, err := s.accounts(ctx, op, accountIDs[:]...); err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.Done(string(domain.StageValidated), nil)

	if _, err := s.repos.StockRepo.ReserveStock(ctx, in.ProductID, in.Quantity); err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.Done(string(domain.StageStockReserved), func(ctx context.Context) error {
		_, err := s.repos.StockRepo.ReleaseStock(ctx, in.ProductID, in.Quantity)
		return err
	})

	ref := domain.Reference{Type: domain.RefSale, ID: saleID}
	entries, _, err := s.post(ctx, sg, op, s.splitEntries(paid.Distribution, domain.Inflow, "Sale "+saleID, ref, actor))
	if err != nil {
		return nil, sg.Fail(ctx, err)
	}

	updatedClient, err := s.repos.CounterpartyRepo.AdjustCounterpartyTotals(ctx, client.CounterpartyID, dist.Total, payment, actor)
	if err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.Done(string(domain.StageCounterpartyUpdated), func(ctx context.Context) error {
		_, err := s.repos.CounterpartyRepo.AdjustCounterpartyTotals(ctx, client.CounterpartyID, dist.Total.Neg(), payment.Neg(), actor)
		return err
	})

	now := domain.Now()
	sale := domain.Sale{
		SaleID:           saleID,
		ClientID:         client.CounterpartyID,
		ProductID:        in.ProductID,
		Quantity:         in.Quantity,
		UnitSalePrice:    in.UnitSalePrice,
		UnitCostPrice:    in.UnitCostPrice,
		UnitFreightPrice: in.UnitFreightPrice,
		Total:            dist.Total,
		AmountPaid:       payment,
		PaymentState:     domain.PaymentStateFor(payment, dist.Total),
		Status:           domain.SaleActive,
		CurrencyCode:     s.settings.Currency,
		Distribution:     dist.Distribution,
		Distributed:      paid.Distribution,
		AuditFields:      domain.AuditFields{CreatedAt: now, CreatedBy: actor, LastUpdatedAt: now, LastUpdatedBy: actor},
	}
	if err := s.repos.SaleRepo.SaveSale(ctx, sale); err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.OnFail(func(ctx context.Context) error {
		return s.repos.SaleRepo.DeleteSale(ctx, saleID)
	})
	if _, err := s.repos.StockRepo.CommitStock(ctx, in.ProductID, in.Quantity); err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.Done(string(domain.StageCommitted), nil)

	logger.Info("Sale created",
		slog.String("sale_id", saleID),
		slog.String("client_id", client.CounterpartyID),
		slog.String("total", dist.Total.String()),
		slog.String("paid", payment.String()),
		slog.Int("entries", len(entries)))
	if margin.Warning != "" {
		logger.Warn("Sale registered with a low margin", slog.String("sale_id", saleID), slog.String("margin_pct", margin.MarginPct.String()))
	}
	s.publish(ctx, domain.EventSaleCreated, actor, ref, map[string]string{
		"client_id":  client.CounterpartyID,
		"product_id": in.ProductID,
		"total":      dist.Total.String(),
		"paid":       payment.String(),
	})

	return &domain.SaleReceipt{
		Sale:    sale,
		Client:  *updatedClient,
		Entries: entries,
		Margin:  margin,
		Drift:   paid.Drift,
	}, nil
}

// lockSale reads the sale to learn which resources it touches, locks them
// together with extraKeys, and re-reads the sale under the lock.
func (s *saleService) lockSale(ctx context.Context, op, saleID string, extraKeys ...string) (*domain.Sale, ports.Unlock, error) {
	sale, err := s.repos.SaleRepo.FindSaleByID(ctx, saleID)
	if err != nil {
		return nil, nil, err
	}
	accountIDs := s.settings.Accounts.IDs()
	keys := append(accountKeys(accountIDs[:]...), ports.SaleKey(saleID), ports.CounterpartyKey(sale.ClientID))
	keys = append(keys, extraKeys...)
	unlock, err := s.lock(ctx, op, keys...)
	if err != nil {
		return nil, nil, err
	}
	sale, err = s.repos.SaleRepo.FindSaleByID(ctx, saleID)
	if err != nil {
		unlock()
		return nil, nil, err
	}
	return sale, unlock, nil
}

func (s *saleService) RegisterPayment(ctx context.Context, saleID string, amount decimal.Decimal, actor string) (*domain.PaymentReceipt, error) {
	const op = "RegisterPayment"
	actor = actorOr(actor)
	logger := s.GetLogger(ctx).With(slog.String("op", op), slog.String("sale_id", saleID))

	if err := s.checkAmount(op, "amount", amount); err != nil {
		return nil, err
	}
	sale, unlock, err := s.lockSale(ctx, op, saleID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if sale.Status == domain.SaleCancelled {
		return nil, apperrors.New(op, apperrors.ErrValidation, "sale is cancelled").With("sale_id", saleID)
	}
	newPaid := sale.AmountPaid.Add(amount)
	if newPaid.GreaterThan(sale.Total) {
		return nil, apperrors.New(op, apperrors.ErrOverpayment, "payment exceeds the outstanding amount").
			With("sale_id", saleID).
			With("amount", amount).
			With("outstanding", sale.Outstanding())
	}
	inc, err := accounting.IncrementalDistribution(sale.Distribution, sale.Distributed, newPaid, s.places, s.settings.Rounding)
	if err != nil {
		return nil, err
	}

	sg := newSaga(logger)
	sg.Done(string(domain.StageValidated), nil)

	ref := domain.Reference{Type: domain.RefSale, ID: saleID}
	entries, _, err := s.post(ctx, sg, op, s.splitEntries(inc.Distribution, domain.Inflow, "Payment for sale "+saleID, ref, actor))
	if err != nil {
		return nil, sg.Fail(ctx, err)
	}

	if _, err := s.repos.CounterpartyRepo.AdjustCounterpartyTotals(ctx, sale.ClientID, decimal.Zero, amount, actor); err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.Done(string(domain.StageCounterpartyUpdated), func(ctx context.Context) error {
		_, err := s.repos.CounterpartyRepo.AdjustCounterpartyTotals(ctx, sale.ClientID, decimal.Zero, amount.Neg(), actor)
		return err
	})

	updated := *sale
	updated.AmountPaid = newPaid
	updated.Distributed = sale.Distributed.Add(inc.Distribution)
	updated.PaymentState = sale.PaymentState.Advance(domain.PaymentStateFor(newPaid, sale.Total))
	updated.LastUpdatedAt = domain.Now()
	updated.LastUpdatedBy = actor
	if err := s.repos.SaleRepo.UpdateSale(ctx, updated); err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.Done(string(domain.StageCommitted), nil)

	logger.Info("Sale payment registered",
		slog.String("amount", amount.String()),
		slog.String("amount_paid", newPaid.String()),
		slog.String("payment_state", string(updated.PaymentState)))
	if !inc.Drift.IsZero() {
		logger.Warn("Payment split has rounding drift", slog.String("drift", inc.Drift.String()))
	}
	s.publish(ctx, domain.EventSalePayment, actor, ref, map[string]string{
		"amount":        amount.String(),
		"amount_paid":   newPaid.String(),
		"payment_state": string(updated.PaymentState),
	})

	return &domain.PaymentReceipt{Sale: updated, Entries: entries, Increment: inc}, nil
}

func (s *saleService) CancelSale(ctx context.Context, saleID string, reason string, actor string) (*domain.Sale, error) {
	const op = "CancelSale"
	actor = actorOr(actor)
	logger := s.GetLogger(ctx).With(slog.String("op", op), slog.String("sale_id", saleID))

	pre, err := s.repos.SaleRepo.FindSaleByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	sale, unlock, err := s.lockSale(ctx, op, saleID, ports.StockKey(pre.ProductID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	if sale.Status == domain.SaleCancelled {
		return nil, apperrors.New(op, apperrors.ErrValidation, "sale is already cancelled").With("sale_id", saleID)
	}

	accountIDs := s.settings.Accounts.IDs()
	accounts, err := s.accounts(ctx, op, accountIDs[:]...)
	if err != nil {
		return nil, err
	}
	for i, amount := range sale.Distributed.Parts() {
		if err := requireFunds(op, accounts[accountIDs[i]], amount); err != nil {
			return nil, err
		}
	}

	sg := newSaga(logger)
	sg.Done(string(domain.StageValidated), nil)

	concept := "Sale " + saleID + " cancelled"
	if reason != "" {
		concept += ": " + reason
	}
	ref := domain.Reference{Type: domain.RefSaleCancellation, ID: saleID}
	entries, _, err := s.post(ctx, sg, op, s.splitEntries(sale.Distributed, domain.Outflow, concept, ref, actor))
	if err != nil {
		return nil, sg.Fail(ctx, err)
	}

	if _, err := s.repos.CounterpartyRepo.AdjustCounterpartyTotals(ctx, sale.ClientID, sale.Total.Neg(), sale.AmountPaid.Neg(), actor); err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.Done(string(domain.StageCounterpartyUpdated), func(ctx context.Context) error {
		_, err := s.repos.CounterpartyRepo.AdjustCounterpartyTotals(ctx, sale.ClientID, sale.Total, sale.AmountPaid, actor)
		return err
	})

	cancelled := *sale
	cancelled.Status = domain.SaleCancelled
	cancelled.LastUpdatedAt = domain.Now()
	cancelled.LastUpdatedBy = actor
	if err := s.repos.SaleRepo.UpdateSale(ctx, cancelled); err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.OnFail(func(ctx context.Context) error {
		return s.repos.SaleRepo.UpdateSale(ctx, *sale)
	})
	if _, err := s.repos.StockRepo.RestockItem(ctx, sale.ProductID, sale.Quantity); err != nil {
		return nil, sg.Fail(ctx, err)
	}
	sg.Done(string(domain.StageCommitted), nil)

	logger.Info("Sale cancelled", slog.String("reason", reason), slog.Int("reversal_entries", len(entries)))
	s.publish(ctx, domain.EventSaleCancelled, actor, domain.Reference{Type: domain.RefSale, ID: saleID}, map[string]string{
		"reason":   reason,
		"reversed": sale.Distributed.Sum().String(),
	})
	return &cancelled, nil
}
