package services

import (
	"fmt"

	"github.com/SscSPs/vault_ledger/internal/core/ports"
	portsrepo "github.com/SscSPs/vault_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/platform/config"
	"github.com/SscSPs/vault_ledger/internal/platform/events"
	"github.com/SscSPs/vault_ledger/internal/platform/locking"
	"github.com/bwmarrin/snowflake"
)

type containerOptions struct {
	locker ports.Locker
	events ports.EventPublisher
}

// ContainerOption customizes the collaborators the services are built with.
type ContainerOption func(*containerOptions)

// WithLocker replaces the default in-process locker.
func WithLocker(locker ports.Locker) ContainerOption {
	return func(o *containerOptions) { o.locker = locker }
}

// WithEventPublisher replaces the default log event sink.
func WithEventPublisher(publisher ports.EventPublisher) ContainerOption {
	return func(o *containerOptions) { o.events = publisher }
}

// SettingsFromConfig extracts the ledger rules from the application config.
func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		Currency:      cfg.DefaultCurrency,
		Rounding:      cfg.RoundingPolicy,
		MarginWarnPct: cfg.MarginWarningPercent,
		Accounts:      cfg.DistributionAccounts,
	}
}

// NewServiceContainer creates a new service container with properly initialized dependencies
func NewServiceContainer(cfg *config.Config, repos portsrepo.RepositoryProvider, opts ...ContainerOption) (*portssvc.ServiceContainer, error) {
	o := containerOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.locker == nil {
		o.locker = locking.NewKeyedMutex(cfg.LockWait)
	}
	if o.events == nil {
		o.events = events.NewLogPublisher(nil)
	}

	node, err := snowflake.NewNode(cfg.NodeID)
	if err != nil {
		return nil, fmt.Errorf("failed to create ledger id generator: %w", err)
	}
	core, err := newLedgerCore(repos, o.locker, o.events, node, SettingsFromConfig(cfg))
	if err != nil {
		return nil, err
	}

	return &portssvc.ServiceContainer{
		Account:       NewAccountService(repos.AccountRepo, repos.LedgerRepo),
		Sale:          &saleService{ledgerCore: core},
		Movement:      &movementService{ledgerCore: core},
		PurchaseOrder: &purchaseOrderService{ledgerCore: core},
		Counterparty:  NewCounterpartyService(repos.CounterpartyRepo),
		Stock:         NewStockService(repos.StockRepo),
		Integrity:     &integrityService{ledgerCore: core},
	}, nil
}
