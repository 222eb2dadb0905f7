package commands

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-autotext/pkg/snippet"
)

func newListCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List snippets and their triggers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.buildApp(cmd, modeOneShot, true)
			if err != nil {
				return err
			}
			snap, err := app.Check()
			if err != nil {
				return err
			}
			out, err := pterm.DefaultTable.WithHasHeader().WithData(listTable(snap)).Srender()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
			return err
		},
	}
}

func listTable(snap *snippet.Snapshot) pterm.TableData {
	data := pterm.TableData{{"Triggers", "Fields", "Preview"}}
	for _, sn := range snap.Snippets() {
		triggers := sn.AllTriggers()
		if len(triggers) == 0 {
			continue
		}
		tpl := sn.Parse()
		names := make([]string, 0, len(tpl.Fields))
		for _, f := range tpl.Fields {
			names = append(names, f.Name)
		}
		data = append(data, []string{
			strings.Join(triggers, " "),
			strings.Join(names, ", "),
			preview(tpl.Lines),
		})
	}
	return data
}

func preview(lines []string) string {
	const width = 40
	first := ""
	for _, line := range lines {
		if strings.TrimSpace(line) != "" {
			first = strings.TrimSpace(line)
			break
		}
	}
	if r := []rune(first); len(r) > width {
		first = string(r[:width-1]) + "…"
	}
	if len(lines) > 1 {
		first += fmt.Sprintf(" (+%d lines)", len(lines)-1)
	}
	return first
}
