package pgsql

import (
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5/pgxpool"
)

func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:       newPgxAccountRepository(dbPool),
		LedgerRepo:        newPgxLedgerRepository(dbPool),
		SaleRepo:          newPgxSaleRepository(dbPool),
		PurchaseOrderRepo: newPgxPurchaseOrderRepository(dbPool),
		CounterpartyRepo:  newPgxCounterpartyRepository(dbPool),
		StockRepo:         newPgxStockRepository(dbPool),
	}
}
