package commands

import (
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-autotext/internal/logging"
	"github.com/goliatone/go-autotext/pkg/expander"
	"github.com/goliatone/go-autotext/pkg/notify"
	"github.com/goliatone/go-autotext/pkg/orchestrator"
	"github.com/goliatone/go-autotext/pkg/typer"
	"github.com/goliatone/go-autotext/pkg/variables"
)

type appMode int

const (
	// modeOneShot expands once and prints the result.
	modeOneShot appMode = iota
	// modeServe types expansions, watches the file and notifies on reload.
	modeServe
)

// buildApp assembles the orchestrator from the loaded configuration.
func (st *state) buildApp(cmd *cobra.Command, mode appMode, defaultsOnly bool) (*orchestrator.Orchestrator, error) {
	cfg := st.cfg
	log := logging.Component("app")

	varOpts := []variables.Option{}
	if cfg.Clipboard.Command != "" {
		cb, err := variables.NewCommandClipboard(cfg.Clipboard.Command, cfg.Clipboard.Timeout)
		if err != nil {
			return nil, err
		}
		varOpts = append(varOpts, variables.WithClipboard(cb))
	}

	values := st.collectorFor(defaultsOnly)

	expOpts := []expander.Option{
		expander.WithVariables(varOpts...),
		expander.WithCollector(values),
		expander.WithNewline(cfg.Output.Newline),
	}
	options := []orchestrator.Option{
		orchestrator.WithDefinitions(cfg.Definitions.Path),
		orchestrator.WithLogger(log),
	}

	if mode == modeServe {
		var out typer.Typer = typer.NewWriter(cmd.OutOrStdout())
		if cfg.Typer.Command != "" {
			ct, err := typer.NewCommand(cfg.Typer.Command, cfg.Typer.EraseCommand)
			if err != nil {
				return nil, err
			}
			out = ct
		}
		expOpts = append(expOpts, expander.WithTyper(out))

		sink, err := notificationSink(cfg.Notify.Command)
		if err != nil {
			return nil, err
		}
		templates, err := notify.NewTemplates(cfg.Notify.ReloadTitle, cfg.Notify.ReloadMessage)
		if err != nil {
			return nil, err
		}
		notifier := notify.New(sink,
			notify.WithQueueSize(cfg.Notify.QueueSize),
			notify.WithLogger(logging.Component("notify")),
		)
		options = append(options,
			orchestrator.WithNotifier(notifier),
			orchestrator.WithReloadTemplates(templates),
			orchestrator.WithAlerter(notify.Alerters(
				notify.Console(cmd.ErrOrStderr()),
				notify.SinkAlerter(sink),
			)),
			orchestrator.WithWatch(cfg.Watch.Enabled, cfg.Watch.Debounce),
		)
	}

	options = append(options, orchestrator.WithExpanderOptions(expOpts...))
	return orchestrator.New(options...), nil
}

// notificationSink falls back to logging when no command is configured.
func notificationSink(command string) (notify.Sink, error) {
	sink, err := notify.NewCommand(command)
	if errors.Is(err, notify.ErrEmptyCommand) {
		return notify.Log(logging.Component("notify")), nil
	}
	if err != nil {
		return nil, err
	}
	return sink, nil
}
