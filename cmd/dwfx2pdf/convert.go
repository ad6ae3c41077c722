package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danyanovich/dwfx2pdf/internal/app"
)

var convertCmd = &cobra.Command{
	Use:   "convert",
	Short: "Convert all .dwfx files currently in the input folder",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(
			context.Background(),
			syscall.SIGTERM,
			syscall.SIGINT,
		)
		defer stop()

		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("workers") {
			cfg.Workers, _ = cmd.Flags().GetInt("workers")
		}

		return app.RunConvert(ctx, cfg)
	},
}

func init() {
	addCommonFlags(convertCmd)
	convertCmd.Flags().Int("workers", 4, "number of parallel workers for conversion")
	rootCmd.AddCommand(convertCmd)
}
