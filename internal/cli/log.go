package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/skiphire/internal/ports/primary"
	"github.com/example/skiphire/internal/wire"
)

// LogCmd returns the log command with all subcommands attached.
func LogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "log",
		Short: "View the booking audit trail",
		Long:  "View and prune the audit trail of booking sessions. Contact details are stored redacted.",
	}
	cmd.AddCommand(logTailCmd(), logPruneCmd())
	return cmd
}

func logTailCmd() *cobra.Command {
	var filters primary.AuditFilters

	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Show recent activity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := services()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := commandContext(cmd)
			defer cancel()

			return wire.LogAdapter(cmd.OutOrStdout()).Tail(ctx, filters)
		},
	}

	cmd.Flags().IntVarP(&filters.Limit, "limit", "n", 50, "Number of entries to show")
	cmd.Flags().StringVar(&filters.SessionID, "session", "", "Filter by session ID")
	cmd.Flags().StringVar(&filters.EntityType, "type", "", "Filter by entity type (session, booking)")
	cmd.Flags().StringVar(&filters.Actor, "actor", "", "Filter by actor (cli, http)")
	return cmd
}

func logPruneCmd() *cobra.Command {
	var days int

	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete old log entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cleanup, err := services()
			if err != nil {
				return err
			}
			defer cleanup()

			ctx, cancel := commandContext(cmd)
			defer cancel()

			return wire.LogAdapter(cmd.OutOrStdout()).Prune(ctx, days)
		},
	}

	cmd.Flags().IntVar(&days, "days", 30, "Delete entries older than N days")
	return cmd
}
