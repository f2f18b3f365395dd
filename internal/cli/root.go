// Package cli contains the skiphire cobra commands.
package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/example/skiphire/internal/ctxutil"
	"github.com/example/skiphire/internal/wire"
)

// ConfigDirFlag names the persistent flag selecting the config directory.
const ConfigDirFlag = "config-dir"

// AddGlobalFlags registers the flags shared by every command.
func AddGlobalFlags(root *cobra.Command) {
	root.PersistentFlags().String(ConfigDirFlag, "", "directory containing .skiphire/config.json (default: home directory)")
	root.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		dir, _ := cmd.Flags().GetString(ConfigDirFlag)
		wire.SetConfigDir(dir)
	}
}

// commandContext is cancelled on interrupt and tagged with the CLI actor.
func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	return ctxutil.WithActorID(ctx, ctxutil.ActorCLI), cancel
}

// services initialises the application and returns a cleanup func.
func services() (func(), error) {
	if err := wire.Init(); err != nil {
		return nil, err
	}
	return wire.Close, nil
}
