package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"rightimage/config"
	"rightimage/logger"
	"rightimage/variant"
)

// globals holds the state shared by every subcommand
type globals struct {
	configPath string
	logLevel   string
	logFormat  string
	colorMode  string

	cfg     *config.Config
	printer *printer
}

func Execute() {
	cmd := newRootCmd()
	if err := cmd.Execute(); err != nil {
		var cfgErr *variant.ConfigurationError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "configuration error: %s\n", cfgErr.Message)
		} else {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	g := &globals{}

	cmd := &cobra.Command{
		Use:           "rightimage",
		Short:         "Point image sources at the size and density variant a device should load",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return g.init(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&g.configPath, "config", "c", "", "YAML config file (optional)")
	cmd.PersistentFlags().StringVar(&g.logLevel, "log-level", "", "log level: debug, info, warn, error (overrides config)")
	cmd.PersistentFlags().StringVar(&g.logFormat, "log-format", "", "log format: text or json (overrides config)")
	cmd.PersistentFlags().StringVar(&g.colorMode, "color", "auto", "color output: auto, always, never")

	cmd.AddCommand(
		decideCmd(g),
		rewriteCmd(g),
		buildCmd(g),
		watchCmd(g),
	)
	return cmd
}

func (g *globals) init(cmd *cobra.Command) error {
	mode, err := ParseColorMode(g.colorMode)
	if err != nil {
		return err
	}
	g.printer = newPrinter(cmd.OutOrStdout(), mode)

	if g.configPath != "" {
		cfg, err := config.Load(g.configPath)
		if err != nil {
			return err
		}
		g.cfg = cfg
	} else {
		g.cfg = config.Default()
	}

	level := g.cfg.Logging.Level
	if g.logLevel != "" {
		level = g.logLevel
	}
	format := g.cfg.Logging.Format
	if g.logFormat != "" {
		format = g.logFormat
	}
	_, err = logger.Setup(logger.Config{Level: level, Format: format, Output: cmd.ErrOrStderr()})
	return err
}
