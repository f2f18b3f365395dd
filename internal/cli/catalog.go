package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/example/skiphire/internal/wire"
)

// CatalogCmd returns the catalog command
func CatalogCmd() *cobra.Command {
	var postcode string
	var all bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List the skips available in an area",
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := services()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := commandContext(cmd)
			defer cancel()

			return wire.CatalogAdapter(cmd.OutOrStdout()).List(ctx, strings.ToUpper(postcode), all)
		},
	}

	cmd.Flags().StringVarP(&postcode, "postcode", "p", "", "postcode area (default from config)")
	cmd.Flags().BoolVar(&all, "all", false, "include skips that cannot be booked")
	return cmd
}

// QuoteCmd returns the quote command
func QuoteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "quote [skip-id]",
		Short: "Show the price breakdown for a skip",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid skip ID %q", args[0])
			}

			cleanup, err := services()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := commandContext(cmd)
			defer cancel()

			return wire.CatalogAdapter(cmd.OutOrStdout()).Quote(ctx, id)
		},
	}
}
