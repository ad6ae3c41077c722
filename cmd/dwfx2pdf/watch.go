package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danyanovich/dwfx2pdf/internal/app"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the input folder and auto-convert new .dwfx files",
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

		return app.RunWatch(ctx, cfg)
	},
}

func init() {
	addCommonFlags(watchCmd)
	rootCmd.AddCommand(watchCmd)
}
