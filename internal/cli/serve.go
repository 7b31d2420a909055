package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"agencydesk/internal/app"
)

func newServeCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the board websocket",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := app.New(ctx, e.cfg, e.log)
			if err != nil {
				return err
			}
			return a.Run(ctx)
		},
	}
}

func newMigrateCmd(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the deals table (postgres) or indexes (mongo)",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store, err := app.OpenStore(ctx, e.cfg.Database)
			if err != nil {
				return err
			}
			defer store.Close(ctx)

			if err := store.Migrate(ctx); err != nil {
				return err
			}
			e.log.Info("[migrate] ok")
			return nil
		},
	}
}
