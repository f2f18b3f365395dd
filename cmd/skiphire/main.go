package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/example/skiphire/internal/cli"
	"github.com/example/skiphire/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "skiphire",
		Short:   "Book a skip: choose a size, placement and delivery date, then pay",
		Version: version.String(),
		Long: `skiphire runs the skip-hire booking wizard, either interactively in the
terminal (skiphire book) or as a local JSON API (skiphire serve).`,
		SilenceUsage: true,
	}
	cli.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.CatalogCmd())
	rootCmd.AddCommand(cli.QuoteCmd())
	rootCmd.AddCommand(cli.BookCmd())
	rootCmd.AddCommand(cli.ServeCmd())
	rootCmd.AddCommand(cli.LogCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
