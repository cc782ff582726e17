// Command ledgerctl runs operator tasks against the vault ledger database:
// migrations, reconciliation, balance resync and chain verification.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path"
	"syscall"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))
	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&migrateCmd{}, "schema")
	commander.Register(&accountsCmd{}, "inspect")
	commander.Register(&debtCmd{}, "inspect")
	commander.Register(&reconcileCmd{}, "integrity")
	commander.Register(&resyncCmd{}, "integrity")
	commander.Register(&verifyChainCmd{}, "integrity")
	commander.Register(&tokenCmd{}, "access")

	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	status := commander.Execute(ctx)
	stop()
	os.Exit(int(status))
}
