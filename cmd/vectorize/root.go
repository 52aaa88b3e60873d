package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/askiada/go-vectorize/internal/config"
	"github.com/askiada/go-vectorize/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

type rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// app is shared by every subcommand once the root pre-run loaded the configuration.
type app struct {
	flags rootFlags
	cfg   *config.Config
}

func newRootCmd() *cobra.Command {
	a := &app{}

	cmd := &cobra.Command{
		Use:   "vectorize",
		Short: "Convert raster images into SVG",
		Long: "vectorize traces PNG, JPEG, GIF, BMP, TIFF and WebP images into SVG documents.\n" +
			"Local tracing tries each converter profile in turn and falls back to the remote\n" +
			"conversion service when every profile fails.",
		SilenceUsage: true,
		CompletionOptions: cobra.CompletionOptions{
			HiddenDefaultCmd: true,
		},
		Version: version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}

	f := cmd.PersistentFlags()
	f.StringVar(&a.flags.configPath, "config", "", "Path to the TOML config (default ./"+config.BaseConfigFile+" when present)")
	f.StringVar(&a.flags.logLevel, "log-level", "", "Log level: debug, info, warn or error")
	f.StringVar(&a.flags.logFormat, "log-format", "", "Log format: text or json")

	cmd.AddCommand(newConvertCmd(a))
	cmd.AddCommand(newProfilesCmd(a))
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.flags.configPath)
	if err != nil {
		return errors.Wrap(err, "load config")
	}

	overlay := &config.Config{Log: config.LogConfig{Level: a.flags.logLevel, Format: a.flags.logFormat}}
	cfg.Log.Merge(&overlay.Log)

	level, err := logging.ParseLevel(cfg.Log.Level)
	if err != nil {
		return err
	}
	logging.Init(level, cfg.Log.Format, cmd.ErrOrStderr())

	a.cfg = cfg

	return nil
}
