package cli

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"agencydesk/internal/config"
	"agencydesk/internal/logging"
)

// env is filled by the root command before any subcommand runs.
type env struct {
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

// NewRootCmd creates the root cobra command
func NewRootCmd() *cobra.Command {
	e := &env{}
	rootCmd := &cobra.Command{
		Use:           "agencydesk",
		Short:         "Agency back office: sales pipeline board, deals and finance reports",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(e.configPath)
			if err != nil {
				return err
			}
			log, err := logging.New(cfg.Log)
			if err != nil {
				return err
			}
			e.cfg, e.log = cfg, log
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if e.log != nil {
				_ = e.log.Sync()
			}
		},
	}
	rootCmd.PersistentFlags().StringVarP(&e.configPath, "config", "c", config.DefaultPath, "path to the yaml config")

	// Add subcommands
	rootCmd.AddCommand(newServeCmd(e))
	rootCmd.AddCommand(newMigrateCmd(e))
	rootCmd.AddCommand(newBoardCmd(e))
	rootCmd.AddCommand(newTokenCmd(e))

	return rootCmd
}
