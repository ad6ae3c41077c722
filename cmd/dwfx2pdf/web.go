package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/danyanovich/dwfx2pdf/internal/app"
)

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start a web interface for drag-and-drop conversion",
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
		flags := cmd.Flags()
		if flags.Changed("host") {
			cfg.Web.Host, _ = flags.GetString("host")
		}
		if flags.Changed("port") {
			cfg.Web.Port, _ = flags.GetInt("port")
		}

		return app.New(ctx, cfg).Run(ctx)
	},
}

func init() {
	webCmd.Flags().String("host", "0.0.0.0", "host to bind")
	webCmd.Flags().Int("port", 8080, "port to run the web server on")
	rootCmd.AddCommand(webCmd)
}
