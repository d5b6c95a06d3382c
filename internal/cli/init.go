package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/bastion/internal/db"
	"github.com/example/bastion/internal/wire"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the bastion database",
		Long: `Initialize the bastion database with the required schema.

The database lives at $BASTION_DB_PATH (default ~/.bastion/bastion.db).
With --seed, two towns, the base resources and a few characters are added.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := wire.Config()
			fmt.Printf("Initializing bastion database at %s\n", cfg.DBPath)

			// Opening the database applies the schema
			database := wire.DB()
			fmt.Println("✓ Database initialized successfully")

			seed, _ := cmd.Flags().GetBool("seed")
			if seed {
				if err := db.SeedFixtures(database, time.Now().In(cfg.Location)); err != nil {
					return fmt.Errorf("failed to seed fixtures: %w", err)
				}
				fmt.Println("✓ Fixtures loaded")
			}

			fmt.Println()
			fmt.Println("Next steps:")
			fmt.Println("  bastion character list")
			fmt.Println("  bastion tick midnight")
			return nil
		},
	}

	cmd.Flags().Bool("seed", false, "Load development fixtures")
	return cmd
}
