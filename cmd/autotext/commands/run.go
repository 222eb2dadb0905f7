package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-autotext/internal/logging"
)

func newRunCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Serve triggers read from stdin",
		Long: `Load the definition file and expand every trigger read from stdin, one per
line. Expansions go to stdout, or to typer.command when configured.

The definition file is reloaded when it changes (watch.enabled) and when the
process receives SIGHUP. A manual reload shows a notification.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.buildApp(cmd, modeServe, false)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			reload := make(chan struct{}, 1)
			go forwardHangups(ctx, reload)

			logging.Component("cli").Infow("serving triggers", logging.FieldPath, app.Path())
			return app.Run(ctx, cmd.InOrStdin(), reload)
		},
	}
}

// forwardHangups turns SIGHUP into reload requests. Requests arriving while
// one is pending are merged.
func forwardHangups(ctx context.Context, reload chan<- struct{}) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			select {
			case reload <- struct{}{}:
			default:
			}
		}
	}
}
