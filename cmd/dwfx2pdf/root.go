package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/danyanovich/dwfx2pdf/internal/infra/config"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "dwfx2pdf",
	Short: "Convert DWFX files to PDFs using libgxps",
	Long: `dwfx2pdf converts zip-based DWFX page-description files into PDFs by
delegating the rendering to the external xpstopdf tool (libgxps).

Three modes are available:
  convert  convert all .dwfx files currently in the input folder
  watch    watch the input folder and auto-convert new .dwfx files
  web      start a web interface for drag-and-drop conversion`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "path to yaml config file")
}

// loadConfig merges the optional config file with the flags common to
// convert and watch. Flags win when explicitly set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("dwfx-dir") {
		cfg.InputDir, _ = flags.GetString("dwfx-dir")
	}
	if flags.Changed("pdf-dir") {
		cfg.OutputDir, _ = flags.GetString("pdf-dir")
	}
	if flags.Changed("overwrite") {
		cfg.Overwrite, _ = flags.GetBool("overwrite")
	}
	return cfg, nil
}

// addCommonFlags registers the path and overwrite flags shared by the
// convert and watch subcommands.
func addCommonFlags(cmd *cobra.Command) {
	cmd.Flags().String("dwfx-dir", "dwfx", "input folder containing .dwfx files")
	cmd.Flags().String("pdf-dir", "pdf", "output folder for PDFs")
	cmd.Flags().Bool("overwrite", false, "overwrite existing PDFs")
}
