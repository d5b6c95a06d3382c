package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/bastion/internal/cli"
	"github.com/example/bastion/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "bastion",
		Short:   "Bastion - turn-based survival community engine",
		Version: version.String(),
		Long: `Bastion runs a survival community day by day: characters eat, tire and
recover, towns pool their resources, and expeditions leave to explore.
Two daily sequences (midnight and morning) advance the world.`,
	}
	cli.AddActorFlag(rootCmd)

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.TickCmd())
	rootCmd.AddCommand(cli.DaemonCmd())

	// Entity commands
	rootCmd.AddCommand(cli.CharacterCmd())
	rootCmd.AddCommand(cli.ExpeditionCmd())
	rootCmd.AddCommand(cli.LedgerCmd())
	rootCmd.AddCommand(cli.ResourceCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
