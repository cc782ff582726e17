// Package memory is an in-process implementation of the repository ports,
// used for local runs and tests. All state sits behind one RWMutex; every
// method is atomic.
package memory

import (
	"sync"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
)

type Store struct {
	mu sync.RWMutex

	accounts     map[string]domain.Account
	entries      map[string][]domain.LedgerEntry // by account, insertion order
	entryAccount map[string]string               // entry id -> account id
	seq          int64

	sales map[string]domain.Sale

	orders   map[string]domain.PurchaseOrder
	orderIDs []string // insertion order

	counterparties map[string]domain.Counterparty
	names          map[string]string // kind|normalized name -> id

	stock map[string]domain.StockItem
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{
		accounts:       make(map[string]domain.Account),
		entries:        make(map[string][]domain.LedgerEntry),
		entryAccount:   make(map[string]string),
		sales:          make(map[string]domain.Sale),
		orders:         make(map[string]domain.PurchaseOrder),
		counterparties: make(map[string]domain.Counterparty),
		names:          make(map[string]string),
		stock:          make(map[string]domain.StockItem),
	}
}

var (
	_ portsrepo.AccountRepositoryFacade       = (*Store)(nil)
	_ portsrepo.LedgerRepositoryFacade        = (*Store)(nil)
	_ portsrepo.SaleRepositoryFacade          = (*Store)(nil)
	_ portsrepo.PurchaseOrderRepositoryFacade = (*Store)(nil)
	_ portsrepo.CounterpartyRepositoryFacade  = (*Store)(nil)
	_ portsrepo.StockRepositoryFacade         = (*Store)(nil)
)

// NewRepositoryProvider exposes one store through every repository port.
func NewRepositoryProvider(s *Store) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:       s,
		LedgerRepo:        s,
		SaleRepo:          s,
		PurchaseOrderRepo: s,
		CounterpartyRepo:  s,
		StockRepo:         s,
	}
}
