package commands

import (
	"fmt"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-autotext/pkg/collector"
)

func newExpandCmd(st *state) *cobra.Command {
	var defaults bool

	cmd := &cobra.Command{
		Use:   "expand <trigger>",
		Short: "Expand one trigger and print the result",
		Long: `Expand a single trigger and print the text to stdout. Fields are prompted
for when stdin is a terminal; --defaults accepts every default instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.buildApp(cmd, modeOneShot, defaults)
			if err != nil {
				return err
			}
			if err := app.Reload(cmd.Context(), false); err != nil {
				return err
			}
			text, err := app.Expand(cmd.Context(), args[0])
			if errors.Is(err, collector.ErrCanceled) {
				return nil
			}
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), text)
			return err
		},
	}
	cmd.Flags().BoolVar(&defaults, "defaults", false, "accept every default without prompting")
	return cmd
}
