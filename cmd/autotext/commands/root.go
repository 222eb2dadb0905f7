// Package commands implements the autotext command line.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-autotext/internal/config"
	"github.com/goliatone/go-autotext/internal/logging"
	"github.com/goliatone/go-autotext/pkg/collector"
)

// state carries what the root command resolved to its subcommands.
type state struct {
	configFile  string
	definitions string
	verbosity   int
	cfg         *config.Config

	// newCollector picks how field values are obtained; nil means
	// collector.Auto, or collector.Defaults when defaultsOnly is set.
	newCollector func(defaultsOnly bool) collector.Collector
}

// NewRootCmd builds the autotext command tree.
func NewRootCmd() *cobra.Command {
	return newRootCmd(&state{})
}

func newRootCmd(st *state) *cobra.Command {
	root := &cobra.Command{
		Use:   "autotext",
		Short: "Expand text snippets with fill-in forms",
		Long: `autotext expands typed triggers into text snippets.

Snippets live in a YAML definition file. A snippet form can declare
variables ($name:default$), ask for values ([[name=default]] or
[[name=a,b,c]]) and use the special values {CLIPBOARD}, {DATE}, {USER}
and {NOW} as defaults.

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (AUTOTEXT_* prefix, e.g. AUTOTEXT_LOG_LEVEL)
3. Config file (--config, or autotext.yaml in the user config directory)
4. Default values

Examples:
  autotext init                  # Write a starter definition file
  autotext check                 # Validate the definition file
  autotext list                  # Show every trigger
  autotext expand ";sig"         # Expand one trigger to stdout
  hotkeyd | autotext run         # Serve triggers read from stdin`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load()
		},
	}

	root.PersistentFlags().StringVar(&st.configFile, "config", "", "config file (default: autotext.yaml in the user config directory)")
	root.PersistentFlags().StringVarP(&st.definitions, "definitions", "d", "", "snippet definition file (overrides definitions.path)")
	root.PersistentFlags().CountVarP(&st.verbosity, "verbose", "v", "increase log verbosity")

	root.AddCommand(
		newRunCmd(st),
		newExpandCmd(st),
		newListCmd(st),
		newCheckCmd(st),
		newInitCmd(st),
	)
	return root
}

func (st *state) load() error {
	cfg, err := config.Load(st.configFile)
	if err != nil {
		return err
	}
	if st.definitions != "" {
		cfg.Definitions.Path = st.definitions
	}
	st.cfg = cfg

	if err := logging.Initialize(logging.Config{
		Level: logging.VerbosityLevel(cfg.Log.Level, st.verbosity),
		JSON:  cfg.Log.JSON,
	}); err != nil {
		return fmt.Errorf("initialize logger: %w", err)
	}
	logging.Component("cli").Debugw("configuration loaded",
		"config_file", cfg.File,
		logging.FieldPath, cfg.Definitions.Path,
	)
	return nil
}

func (st *state) collectorFor(defaultsOnly bool) collector.Collector {
	if st.newCollector != nil {
		return st.newCollector(defaultsOnly)
	}
	if defaultsOnly {
		return collector.Defaults()
	}
	return collector.Auto(collector.WithLogger(logging.Component("collector")))
}
