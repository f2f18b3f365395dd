package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/skiphire/internal/config"
	"github.com/example/skiphire/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config file and catalog database",
		Long: `Write .skiphire/config.json with default settings and create the catalog
database, seeded with the NR32 skip list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			dir, _ := cmd.Flags().GetString(ConfigDirFlag)
			if dir == "" {
				home, err := os.UserHomeDir()
				if err != nil {
					return fmt.Errorf("failed to get home directory: %w", err)
				}
				dir = home
			}

			cfg, err := config.LoadConfig(dir)
			if err != nil {
				return err
			}

			path := config.Path(dir)
			if _, err := os.Stat(path); err == nil && !force {
				fmt.Fprintf(out, "✓ Config already exists at %s (use --force to rewrite)\n", path)
			} else {
				if err := config.SaveConfig(dir, cfg); err != nil {
					return err
				}
				fmt.Fprintf(out, "✓ Config written to %s\n", path)
			}

			database, err := db.Open(cfg.DBPath)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			defer database.Close()

			added, err := db.SeedCatalog(database)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "✓ Database ready at %s (%d skips added)\n", cfg.DBPath, added)
			fmt.Fprintln(out)
			fmt.Fprintln(out, "Next steps:")
			fmt.Fprintln(out, "  skiphire catalog")
			fmt.Fprintln(out, "  skiphire book")

			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "rewrite an existing config file")
	return cmd
}
