// Package cmd implements the qrtool subcommands.
package cmd

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ericlevine/qrkit/internal/config"
)

// app is the state shared by the subcommands of one invocation.
type app struct {
	loader  *config.Loader
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
}

// NewRootCommand builds the qrtool command tree.
func NewRootCommand() *cobra.Command {
	a := &app{loader: config.NewLoader()}

	root := &cobra.Command{
		Use:   "qrtool",
		Short: "Encode and decode QR codes",
		Long: `qrtool writes text as QR code images and reads QR codes back out of
image files.

Settings come from flags, QRTOOL_* environment variables and a qrtool.yaml
file found in ., $XDG_CONFIG_HOME/qrtool (or ~/.config/qrtool) or
/etc/qrtool.

Examples:
  qrtool encode -o hello.png "HELLO WORLD"
  qrtool encode --output terminal https://example.com
  qrtool decode --try-harder photo.jpg scan.png`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd.ErrOrStderr())
		},
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default searches ., ~/.config/qrtool, /etc/qrtool)")
	flags.String("log-level", "info", "log level (debug, info, warn, error)")
	flags.String("log-format", "text", "log format (text, json)")
	a.bind("log_level", root.PersistentFlags(), "log-level")
	a.bind("log_format", root.PersistentFlags(), "log-format")

	root.AddCommand(newEncodeCommand(a), newDecodeCommand(a), newConfigCommand(a))
	return root
}

// bind lets flag name of fs override the configuration key.
func (a *app) bind(key string, fs *pflag.FlagSet, name string) {
	if err := a.loader.BindFlag(key, fs.Lookup(name)); err != nil {
		panic(err)
	}
}

func (a *app) init(stderr io.Writer) error {
	cfg, err := a.loader.Load(a.cfgFile)
	if err != nil {
		return err
	}
	a.cfg = cfg

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return fmt.Errorf("log level: %w", err)
	}
	opts := &slog.HandlerOptions{Level: level}
	var h slog.Handler = slog.NewTextHandler(stderr, opts)
	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(stderr, opts)
	}
	a.log = slog.New(h)
	a.log.Debug("configuration loaded", "file", a.loader.FileUsed())
	return nil
}
