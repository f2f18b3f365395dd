package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/skiphire/internal/adapters/httpapi"
	"github.com/example/skiphire/internal/wire"
)

// ServeCmd returns the serve command
func ServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the booking wizard as a local JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := services()
			if err != nil {
				return err
			}
			defer cleanup()

			if addr == "" {
				addr = wire.Config().ListenAddr
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			return httpapi.NewServer(addr, wire.HTTPHandler()).Run(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	return cmd
}
