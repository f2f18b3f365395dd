package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/skiphire/internal/wire"
)

// BookCmd returns the book command
func BookCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "book",
		Short: "Book a skip interactively",
		Long: `Walk through the booking wizard: choose a skip, say where it goes,
pick a delivery date and pay. Type help at the prompt for commands.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := services()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := commandContext(cmd)
			defer cancel()

			return wire.WizardAdapter(cmd.OutOrStdout()).Run(ctx, cmd.InOrStdin())
		},
	}
}
