package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/SscSPs/vault_ledger/internal/core/domain"
	"github.com/SscSPs/vault_ledger/internal/utils"
	"github.com/SscSPs/vault_ledger/pkg/database"
	"github.com/google/subcommands"
	"github.com/joho/godotenv"
)

// errDrift marks a successful run that found inconsistencies.
var errDrift = errors.New("integrity drift detected")

type migrateCmd struct{}

func (*migrateCmd) Name() string     { return "migrate" }
func (*migrateCmd) Synopsis() string { return "apply pending database migrations" }
func (*migrateCmd) Usage() string {
	return `ledgerctl migrate

  Applies every pending migration from MIGRATIONS_PATH to PGSQL_URL.
`
}
func (*migrateCmd) SetFlags(*flag.FlagSet) {}

func (*migrateCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	status, err := database.Migrate(cfg.DatabaseURL, cfg.MigrationsPath, newCLILogger())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	if status.Applied {
		fmt.Printf("migrated to version %d\n", status.Version)
	} else {
		fmt.Printf("already at version %d\n", status.Version)
	}
	return subcommands.ExitSuccess
}

type accountsCmd struct{}

func (*accountsCmd) Name() string     { return "accounts" }
func (*accountsCmd) Synopsis() string { return "list vault accounts and balances" }
func (*accountsCmd) Usage() string {
	return `ledgerctl accounts
`
}
func (*accountsCmd) SetFlags(*flag.FlagSet) {}

func (*accountsCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withEnv(ctx, func(e *env) error {
		accounts, err := e.svc.Account.ListAccounts(ctx)
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
		fmt.Fprintln(tw, "ACCOUNT\tBALANCE\tINFLOWS\tOUTFLOWS\t")
		for _, a := range accounts {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t\n", a.AccountID,
				utils.FormatMoney(a.Balance, a.CurrencyCode),
				utils.FormatMoney(a.LifetimeInflows, a.CurrencyCode),
				utils.FormatMoney(a.LifetimeOutflows, a.CurrencyCode))
		}
		return tw.Flush()
	})
}

type reconcileCmd struct {
	account string
}

func (*reconcileCmd) Name() string     { return "reconcile" }
func (*reconcileCmd) Synopsis() string { return "compare stored balances with the ledger" }
func (*reconcileCmd) Usage() string {
	return `ledgerctl reconcile [-account <id>]

  Recomputes balances from ledger entries and prints the comparison.
  Exits non-zero when any account drifts.
`
}

func (c *reconcileCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Reconcile a single account instead of all of them.")
}

func (c *reconcileCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	return withEnv(ctx, func(e *env) error {
		var results []domain.AccountReconciliation
		if c.account != "" {
			rec, err := e.svc.Integrity.ReconcileAccount(ctx, c.account)
			if err != nil {
				return err
			}
			results = append(results, *rec)
		} else {
			all, err := e.svc.Integrity.ReconcileAll(ctx)
			if err != nil {
				return err
			}
			results = all
		}
		if err := printJSON(os.Stdout, results); err != nil {
			return err
		}
		for _, r := range results {
			if !r.InvariantHolds || !r.Drift.IsZero() {
				return errDrift
			}
		}
		return nil
	})
}

type resyncCmd struct {
	account string
	actor   string
}

func (*resyncCmd) Name() string     { return "resync" }
func (*resyncCmd) Synopsis() string { return "overwrite an account balance with the ledger total" }
func (*resyncCmd) Usage() string {
	return `ledgerctl resync -account <id> [-actor <name>]
`
}

func (c *resyncCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account to resync (required).")
	f.StringVar(&c.actor, "actor", "ledgerctl", "Actor recorded on the account.")
}

func (c *resyncCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "-account is required")
		return subcommands.ExitUsageError
	}
	return withEnv(ctx, func(e *env) error {
		rec, err := e.svc.Integrity.ResyncAccount(ctx, c.account, c.actor)
		if err != nil {
			return err
		}
		e.logger.Warn("Account resynced", slog.String("account_id", c.account), slog.String("drift", rec.Drift.String()))
		return printJSON(os.Stdout, rec)
	})
}

type verifyChainCmd struct {
	account string
}

func (*verifyChainCmd) Name() string     { return "verify-chain" }
func (*verifyChainCmd) Synopsis() string { return "verify the checksum chain of an account" }
func (*verifyChainCmd) Usage() string {
	return `ledgerctl verify-chain -account <id>
`
}

func (c *verifyChainCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.account, "account", "", "Account whose entries are checked (required).")
}

func (c *verifyChainCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.account == "" {
		fmt.Fprintln(os.Stderr, "-account is required")
		return subcommands.ExitUsageError
	}
	return withEnv(ctx, func(e *env) error {
		v, err := e.svc.Integrity.VerifyLedgerChain(ctx, c.account)
		if err != nil {
			return err
		}
		if err := printJSON(os.Stdout, v); err != nil {
			return err
		}
		if !v.Valid {
			return fmt.Errorf("chain broken at entry %s", v.BrokenEntryID)
		}
		return nil
	})
}

type debtCmd struct {
	counterparty string
	resync       bool
}

func (*debtCmd) Name() string     { return "debt" }
func (*debtCmd) Synopsis() string { return "reconcile what a counterparty owes" }
func (*debtCmd) Usage() string {
	return `ledgerctl debt -counterparty <id> [-resync]
`
}

func (c *debtCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.counterparty, "counterparty", "", "Counterparty to check (required).")
	f.BoolVar(&c.resync, "resync", false, "Overwrite stored totals with the recomputed ones.")
}

func (c *debtCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.counterparty == "" {
		fmt.Fprintln(os.Stderr, "-counterparty is required")
		return subcommands.ExitUsageError
	}
	return withEnv(ctx, func(e *env) error {
		var (
			rec *domain.CounterpartyReconciliation
			err error
		)
		if c.resync {
			rec, err = e.svc.Integrity.ResyncCounterparty(ctx, c.counterparty, "ledgerctl")
		} else {
			rec, err = e.svc.Integrity.ReconcileCounterpartyDebt(ctx, c.counterparty)
		}
		if err != nil {
			return err
		}
		if err := printJSON(os.Stdout, rec); err != nil {
			return err
		}
		if !c.resync && !rec.Drift.IsZero() {
			return errDrift
		}
		return nil
	})
}

type tokenCmd struct {
	actor  string
	expiry time.Duration
}

func (*tokenCmd) Name() string     { return "token" }
func (*tokenCmd) Synopsis() string { return "mint a bearer token attributing requests to an actor" }
func (*tokenCmd) Usage() string {
	return `ledgerctl token -actor <name> [-expiry 24h]

  Signs a token with JWT_SECRET.
`
}

func (c *tokenCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.actor, "actor", "", "Actor name (required).")
	f.DurationVar(&c.expiry, "expiry", 24*time.Hour, "Token lifetime.")
}

func (c *tokenCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.actor == "" {
		fmt.Fprintln(os.Stderr, "-actor is required")
		return subcommands.ExitUsageError
	}
	_ = godotenv.Load()
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		fmt.Fprintln(os.Stderr, "JWT_SECRET is not set")
		return subcommands.ExitFailure
	}
	token, err := utils.GenerateActorToken(c.actor, secret, c.expiry)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	fmt.Println(token)
	return subcommands.ExitSuccess
}
