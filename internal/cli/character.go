package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/bastion/internal/ctxutil"
	"github.com/example/bastion/internal/ports/primary"
	"github.com/example/bastion/internal/wire"
)

var characterCmd = &cobra.Command{
	Use:     "character",
	Aliases: []string{"char"},
	Short:   "Manage characters and their vitals",
}

var characterCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create a character in a town",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		town, _ := cmd.Flags().GetString("town")
		if err := validateEntityID(town, "town"); err != nil {
			return err
		}
		now, err := commandTime(cmd)
		if err != nil {
			return err
		}
		user := ctxutil.ActorFromContext(cmd.Context())
		return wire.CharacterAdapter().Create(cmd.Context(), user, town, args[0], now)
	},
}

var characterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List characters",
	RunE: func(cmd *cobra.Command, args []string) error {
		town, _ := cmd.Flags().GetString("town")
		user, _ := cmd.Flags().GetString("user")
		alive, _ := cmd.Flags().GetBool("alive")
		if err := validateEntityID(town, "town"); err != nil {
			return err
		}
		return wire.CharacterAdapter().List(cmd.Context(), primary.CharacterFilters{
			TownID:    town,
			UserID:    user,
			AliveOnly: alive,
		})
	},
}

var characterShowCmd = &cobra.Command{
	Use:   "show [character-id]",
	Short: "Show character details",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "character"); err != nil {
			return err
		}
		_, err := wire.CharacterAdapter().Show(cmd.Context(), args[0])
		return err
	},
}

var characterVitalsCmd = &cobra.Command{
	Use:   "vitals [character-id]",
	Short: "Set a character's HP and/or hunger",
	Long: `Propose new HP and/or hunger values. The agony rules apply:
hunger 0 forces HP to 1, and HP 1 starts the agony clock.

Examples:
  bastion character vitals CHAR-001 --hunger 4
  bastion character vitals CHAR-002 --hp 3 --hunger 2`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "character"); err != nil {
			return err
		}
		now, err := commandTime(cmd)
		if err != nil {
			return err
		}

		var hp, hunger *int
		if cmd.Flags().Changed("hp") {
			v, _ := cmd.Flags().GetInt("hp")
			hp = &v
		}
		if cmd.Flags().Changed("hunger") {
			v, _ := cmd.Flags().GetInt("hunger")
			hunger = &v
		}
		return wire.CharacterAdapter().SetVitals(cmd.Context(), args[0], hp, hunger, now)
	},
}

var characterDailyCmd = &cobra.Command{
	Use:   "daily [character-id]",
	Short: "Run one character's daily update outside the batch",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := validateEntityID(args[0], "character"); err != nil {
			return err
		}
		now, err := commandTime(cmd)
		if err != nil {
			return err
		}
		return wire.CharacterAdapter().Daily(cmd.Context(), args[0], now)
	},
}

// CharacterCmd returns the character command
func CharacterCmd() *cobra.Command {
	characterCreateCmd.Flags().String("town", "", "Town ID (required)")
	characterCreateCmd.MarkFlagRequired("town")
	characterListCmd.Flags().String("town", "", "Filter by town")
	characterListCmd.Flags().String("user", "", "Filter by user")
	characterListCmd.Flags().Bool("alive", false, "Only living characters")
	characterVitalsCmd.Flags().Int("hp", 0, "New HP")
	characterVitalsCmd.Flags().Int("hunger", 0, "New hunger level")
	addAtFlag(characterCreateCmd, characterVitalsCmd, characterDailyCmd)

	characterCmd.AddCommand(characterCreateCmd)
	characterCmd.AddCommand(characterListCmd)
	characterCmd.AddCommand(characterShowCmd)
	characterCmd.AddCommand(characterVitalsCmd)
	characterCmd.AddCommand(characterDailyCmd)

	return characterCmd
}
