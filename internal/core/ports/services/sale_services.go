package services

import (
	"context"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

type SaleReaderSvc interface {
	GetSale(ctx context.Context, saleID string) (*domain.Sale, error)
	PreviewDistribution(ctx context.Context, salePrice, costPrice, freightPrice decimal.Decimal, quantity int64, paid decimal.Decimal) (*domain.DistributionPreview, error)
}

type SaleWriterSvc interface {
	// CreateSale reserves stock, writes the paid part of the distribution and
	// updates the client as one all-or-nothing operation.
	CreateSale(ctx context.Context, input domain.CreateSaleInput) (*domain.SaleReceipt, error)
	// RegisterPayment distributes only the increment of a new payment.
	RegisterPayment(ctx context.Context, saleID string, amount decimal.Decimal, actor string) (*domain.PaymentReceipt, error)
	// CancelSale reverses the distributed amounts and returns the stock.
	CancelSale(ctx context.Context, saleID string, reason string, actor string) (*domain.Sale, error)
}

type SaleSvcFacade interface {
	SaleReaderSvc
	SaleWriterSvc
}
