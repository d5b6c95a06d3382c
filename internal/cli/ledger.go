package cli

import (
	"strconv"

	"github.com/spf13/cobra"

	"github.com/example/bastion/internal/wire"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Move resources between towns and expeditions",
	Long: `Locations are written city:TOWN-001 or expedition:EXP-001; a bare
TOWN- or EXP- id works too. Resources are named (Vivres, Bois, ...).`,
}

var ledgerDepositCmd = &cobra.Command{
	Use:   "deposit [location] [resource] [amount]",
	Short: "Add resources at a location",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.Atoi(args[2])
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().Deposit(cmd.Context(), args[0], args[1], amount)
	},
}

var ledgerWithdrawCmd = &cobra.Command{
	Use:   "withdraw [location] [resource] [amount]",
	Short: "Remove resources from a location",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.Atoi(args[2])
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().Withdraw(cmd.Context(), args[0], args[1], amount)
	},
}

var ledgerTransferCmd = &cobra.Command{
	Use:   "transfer [from] [to] [resource] [amount]",
	Short: "Move resources between two locations",
	Args:  cobra.ExactArgs(4),
	RunE: func(cmd *cobra.Command, args []string) error {
		amount, err := strconv.Atoi(args[3])
		if err != nil {
			return err
		}
		return wire.LedgerAdapter().Transfer(cmd.Context(), args[0], args[1], args[2], amount)
	},
}

var ledgerStockCmd = &cobra.Command{
	Use:   "stock [location]",
	Short: "Show what a location holds",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.LedgerAdapter().Stock(cmd.Context(), args[0])
	},
}

// LedgerCmd returns the ledger command
func LedgerCmd() *cobra.Command {
	ledgerCmd.AddCommand(ledgerDepositCmd)
	ledgerCmd.AddCommand(ledgerWithdrawCmd)
	ledgerCmd.AddCommand(ledgerTransferCmd)
	ledgerCmd.AddCommand(ledgerStockCmd)
	return ledgerCmd
}

var resourceCmd = &cobra.Command{
	Use:   "resource",
	Short: "Manage resource types",
}

var resourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List resource types",
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.LedgerAdapter().Resources(cmd.Context())
	},
}

var resourceAddCmd = &cobra.Command{
	Use:   "add [name]",
	Short: "Register a resource type",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return wire.LedgerAdapter().AddResource(cmd.Context(), args[0])
	},
}

// ResourceCmd returns the resource command
func ResourceCmd() *cobra.Command {
	resourceCmd.AddCommand(resourceListCmd)
	resourceCmd.AddCommand(resourceAddCmd)
	return resourceCmd
}
