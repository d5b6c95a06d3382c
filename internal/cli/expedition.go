package cli

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	cliadapter "github.com/example/bastion/internal/adapters/cli"
	"github.com/example/bastion/internal/ctxutil"
	"github.com/example/bastion/internal/ports/primary"
	"github.com/example/bastion/internal/wire"
)

var expeditionCmd = &cobra.Command{
	Use:     "expedition",
	Aliases: []string{"exp"},
	Short:   "Manage expeditions",
	Long: `Create, crew and steer expeditions.

Status lifecycle: PLANNING → LOCKED → DEPARTED → RETURNED
Locking, departure and scheduled returns normally happen in the daily
sequences; the lock, depart, return and cancel subcommands force them.`,
}

var expeditionCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create an expedition led by a character",
	Long: `Create a PLANNING expedition. Provisions leave the town stock immediately.

Examples:
  bastion expedition create "Forest run" --town TOWN-001 --leader CHAR-001 --days 2
  bastion expedition create "Quarry" --town TOWN-001 --leader CHAR-003 --days 3 \
    --direction NE --provision Vivres=6 --provision Bois=2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		town, _ := cmd.Flags().GetString("town")
		leader, _ := cmd.Flags().GetString("leader")
		days, _ := cmd.Flags().GetInt("days")
		direction, _ := cmd.Flags().GetString("direction")
		rawProvisions, _ := cmd.Flags().GetStringArray("provision")

		if err := validateIDs(town, "town", leader, "character"); err != nil {
			return err
		}
		provisions, err := cliadapter.ParseProvisions(rawProvisions)
		if err != nil {
			return err
		}
		now, err := commandTime(cmd)
		if err != nil {
			return err
		}

		return wire.ExpeditionAdapter().Create(cmd.Context(), primary.CreateExpeditionRequest{
			TownID:           town,
			CreatorID:        leader,
			Name:             args[0],
			DurationDays:     days,
			InitialDirection: direction,
			Provisions:       provisions,
			Now:              now,
		})
	},
}

var expeditionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List expeditions",
	RunE: func(cmd *cobra.Command, args []string) error {
		town, _ := cmd.Flags().GetString("town")
		status, _ := cmd.Flags().GetString("status")
		if err := validateEntityID(town, "town"); err != nil {
			return err
		}
		return wire.ExpeditionAdapter().List(cmd.Context(), town, status)
	},
}

var expeditionShowCmd = &cobra.Command{
	Use:   "show [expedition-id]",
	Short: "Show expedition details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "expedition"); err != nil {
			return err
		}
		_, err := wire.ExpeditionAdapter().Show(cmd.Context(), args[0])
		return err
	},
}

var expeditionJoinCmd = &cobra.Command{
	Use:   "join [expedition-id] [character-id]",
	Short: "Add a character to a PLANNING expedition",
	Args:  cobra.ExactArgs(2),
	RunE: crewCommand(func(ctx context.Context, a *cliadapter.ExpeditionAdapter, expID, charID string, now time.Time) error {
		return a.Join(ctx, expID, charID, now)
	}),
}

var expeditionLeaveCmd = &cobra.Command{
	Use:   "leave [expedition-id] [character-id]",
	Short: "Remove a character from a PLANNING expedition",
	Args:  cobra.ExactArgs(2),
	RunE: crewCommand(func(ctx context.Context, a *cliadapter.ExpeditionAdapter, expID, charID string, now time.Time) error {
		return a.Leave(ctx, expID, charID, now)
	}),
}

var expeditionDirectionCmd = &cobra.Command{
	Use:   "direction [expedition-id] [character-id] [N|NE|E|SE|S|SW|W|NW]",
	Short: "Choose today's heading for a DEPARTED expedition",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateIDs(args[0], "expedition", args[1], "character"); err != nil {
			return err
		}
		now, err := commandTime(cmd)
		if err != nil {
			return err
		}
		return wire.ExpeditionAdapter().Direction(cmd.Context(), args[0], args[1], args[2], now)
	},
}

var expeditionLockCmd = &cobra.Command{
	Use:   "lock [expedition-id]",
	Short: "Lock a PLANNING expedition now",
	Args:  cobra.ExactArgs(1),
	RunE: expeditionCommand(func(ctx context.Context, a *cliadapter.ExpeditionAdapter, id string, now time.Time) error {
		return a.Lock(ctx, id, now)
	}),
}

var expeditionDepartCmd = &cobra.Command{
	Use:   "depart [expedition-id]",
	Short: "Depart a LOCKED expedition now",
	Args:  cobra.ExactArgs(1),
	RunE: expeditionCommand(func(ctx context.Context, a *cliadapter.ExpeditionAdapter, id string, now time.Time) error {
		return a.Depart(ctx, id, now)
	}),
}

var expeditionReturnCmd = &cobra.Command{
	Use:   "return [expedition-id]",
	Short: "Bring an expedition home with all its stock",
	Args:  cobra.ExactArgs(1),
	RunE: expeditionCommand(func(ctx context.Context, a *cliadapter.ExpeditionAdapter, id string, now time.Time) error {
		return a.Return(ctx, id, now)
	}),
}

var expeditionCancelCmd = &cobra.Command{
	Use:   "cancel [expedition-id]",
	Short: "Cancel a LOCKED expedition (admin)",
	Args:  cobra.ExactArgs(1),
	RunE: expeditionCommand(func(ctx context.Context, a *cliadapter.ExpeditionAdapter, id string, now time.Time) error {
		return a.Cancel(ctx, id, now)
	}),
}

var expeditionVoteCmd = &cobra.Command{
	Use:   "vote [expedition-id]",
	Short: "Toggle your emergency-return vote",
	Long: `Cast or withdraw an emergency-return vote as the --as user.
Once half the crew has voted, the expedition comes home at the next
morning run, losing part of its stock.`,
	Args: cobra.ExactArgs(1),
	RunE: expeditionCommand(func(ctx context.Context, a *cliadapter.ExpeditionAdapter, id string, now time.Time) error {
		return a.Vote(ctx, id, ctxutil.ActorFromContext(ctx), now)
	}),
}

type expeditionAction func(ctx context.Context, a *cliadapter.ExpeditionAdapter, expeditionID string, now time.Time) error

func expeditionCommand(action expeditionAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "expedition"); err != nil {
			return err
		}
		now, err := commandTime(cmd)
		if err != nil {
			return err
		}
		return action(cmd.Context(), wire.ExpeditionAdapter(), args[0], now)
	}
}

type crewAction func(ctx context.Context, a *cliadapter.ExpeditionAdapter, expeditionID, characterID string, now time.Time) error

func crewCommand(action crewAction) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := validateIDs(args[0], "expedition", args[1], "character"); err != nil {
			return err
		}
		now, err := commandTime(cmd)
		if err != nil {
			return err
		}
		return action(cmd.Context(), wire.ExpeditionAdapter(), args[0], args[1], now)
	}
}

// ExpeditionCmd returns the expedition command
func ExpeditionCmd() *cobra.Command {
	expeditionCreateCmd.Flags().String("town", "", "Town ID (required)")
	expeditionCreateCmd.Flags().String("leader", "", "Creator character ID (required)")
	expeditionCreateCmd.Flags().Int("days", 1, "Duration in days")
	expeditionCreateCmd.Flags().String("direction", "", "Initial direction")
	expeditionCreateCmd.Flags().StringArray("provision", nil, "Provision as NAME=QUANTITY (repeatable)")
	expeditionCreateCmd.MarkFlagRequired("town")
	expeditionCreateCmd.MarkFlagRequired("leader")
	expeditionListCmd.Flags().String("town", "", "Filter by town")
	expeditionListCmd.Flags().StringP("status", "s", "", "Filter by status (planning, locked, departed, returned)")
	addAtFlag(
		expeditionCreateCmd, expeditionJoinCmd, expeditionLeaveCmd, expeditionDirectionCmd,
		expeditionLockCmd, expeditionDepartCmd, expeditionReturnCmd, expeditionCancelCmd, expeditionVoteCmd,
	)

	expeditionCmd.AddCommand(expeditionCreateCmd)
	expeditionCmd.AddCommand(expeditionListCmd)
	expeditionCmd.AddCommand(expeditionShowCmd)
	expeditionCmd.AddCommand(expeditionJoinCmd)
	expeditionCmd.AddCommand(expeditionLeaveCmd)
	expeditionCmd.AddCommand(expeditionDirectionCmd)
	expeditionCmd.AddCommand(expeditionLockCmd)
	expeditionCmd.AddCommand(expeditionDepartCmd)
	expeditionCmd.AddCommand(expeditionReturnCmd)
	expeditionCmd.AddCommand(expeditionCancelCmd)
	expeditionCmd.AddCommand(expeditionVoteCmd)

	return expeditionCmd
}
