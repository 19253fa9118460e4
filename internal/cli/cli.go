// Package cli implements the infection command-line interface.
//
// # Commands
//
//   - run: load a graph file, run one propagation session and write the results
//   - demo: run the built-in 30-node hub scenario
//   - serve: serve a graph over HTTP
//   - config: print the effective configuration
//   - completion: generate shell completion scripts
//
// # Configuration
//
// Every command reads the TOML configuration file named by --config, or
// the default location from [config.DefaultPath]. Flags that are set
// explicitly override file values.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging. The logger is
// attached to the command context and handed to the engine, stores and server.
package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/infection/pkg/buildinfo"
	"github.com/matzehuels/infection/pkg/config"
)

// appName is the application name used for display.
const appName = "infection"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// Config returns the configuration loaded for the current command.
func (c *CLI) Config() *config.Config {
	return c.cfg
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Infection propagates versions through mentor/pupil graphs",
		Long:         `Infection rolls a new version out across a graph of mentor/pupil relationships, either to a whole connected group at once or bounded by a count limit that can keep whole classrooms together.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(c.configPath)
			if err != nil {
				return err
			}
			c.cfg = cfg
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/infection/config.toml)")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.demoCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}
