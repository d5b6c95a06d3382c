package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/bastion/internal/ports/primary"
	"github.com/example/bastion/internal/wire"
)

var tickCmd = &cobra.Command{
	Use:   "tick",
	Short: "Run a daily sequence once",
	Long: `Run the midnight or morning sequence once, then exit.

Each entity is processed in its own transaction and recorded per game day,
so running the same sequence twice on one day changes nothing the second time.

Examples:
  bastion tick midnight
  bastion tick morning --at "2026-03-11 08:00"`,
}

var tickMidnightCmd = &cobra.Command{
	Use:   "midnight",
	Short: "Run hunger, contagion, regeneration, directions, locking and upkeep",
	RunE: func(cmd *cobra.Command, args []string) error {
		now, err := commandTime(cmd)
		if err != nil {
			return err
		}
		report, err := wire.TickAdapter().Midnight(cmd.Context(), now)
		return tickResult(report, err)
	},
}

var tickMorningCmd = &cobra.Command{
	Use:   "morning",
	Short: "Run emergency returns, scheduled returns and departures",
	RunE: func(cmd *cobra.Command, args []string) error {
		now, err := commandTime(cmd)
		if err != nil {
			return err
		}
		report, err := wire.TickAdapter().Morning(cmd.Context(), now)
		return tickResult(report, err)
	},
}

// tickResult turns entity failures into a non-zero exit.
func tickResult(report *primary.BatchReport, err error) error {
	if err != nil {
		return err
	}
	if n := report.Failed(); n > 0 {
		return fmt.Errorf("%d entit(ies) failed, see log", n)
	}
	return nil
}

// TickCmd returns the tick command
func TickCmd() *cobra.Command {
	addAtFlag(tickMidnightCmd, tickMorningCmd)

	tickCmd.AddCommand(tickMidnightCmd)
	tickCmd.AddCommand(tickMorningCmd)

	return tickCmd
}
