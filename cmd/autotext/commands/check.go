package commands

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/goliatone/go-autotext/pkg/form"
	"github.com/goliatone/go-autotext/pkg/snippet"
)

func newCheckCmd(st *state) *cobra.Command {
	var strict bool

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Validate the definition file",
		Long: `Load the definition file and report each snippet with its fields.
Warnings cover snippets without triggers, triggers shadowed by an earlier
snippet and form_fields entries that name no field. With --strict any
warning fails the check.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := st.buildApp(cmd, modeOneShot, true)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			snap, err := app.Check()
			if err != nil {
				msg := err.Error()
				for _, hint := range errors.GetAllHints(err) {
					msg += "\n" + hint
				}
				fmt.Fprint(out, pterm.Error.Sprintln(msg))
				return err
			}

			printSnippets(out, snap)
			warnings := lint(snap)
			for _, w := range warnings {
				fmt.Fprint(out, pterm.Warning.Sprintln(w))
			}
			if strict && len(warnings) > 0 {
				return fmt.Errorf("%d warning(s) in %s", len(warnings), snap.Source())
			}
			fmt.Fprint(out, pterm.Success.Sprintf("%d snippet(s), %d trigger(s) in %s\n",
				snap.Len(), len(snap.Triggers()), snap.Source()))
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	return cmd
}

func printSnippets(w io.Writer, snap *snippet.Snapshot) {
	for i, sn := range snap.Snippets() {
		triggers := sn.AllTriggers()
		label := strings.Join(triggers, " ")
		if label == "" {
			label = "(no trigger)"
		}
		fmt.Fprintf(w, "#%d %s\n", i+1, label)
		for _, f := range sn.Parse().Fields {
			fmt.Fprintf(w, "    %s\n", describeField(f))
		}
	}
}

func describeField(f form.Field) string {
	switch f.Kind() {
	case form.KindChoice:
		return fmt.Sprintf("%s: choice [%s]", f.Name, strings.Join(f.Choices, " | "))
	case form.KindMultiline:
		return fmt.Sprintf("%s: multiline (default %q)", f.Name, f.Default)
	default:
		return fmt.Sprintf("%s: text (default %q)", f.Name, f.Default)
	}
}

// lint reports definition problems that do not prevent loading.
func lint(snap *snippet.Snapshot) []string {
	var warnings []string
	owner := make(map[string]int)

	for i, sn := range snap.Snippets() {
		triggers := sn.AllTriggers()
		if len(triggers) == 0 {
			warnings = append(warnings, fmt.Sprintf("snippet #%d has no trigger and can never expand", i+1))
		}
		for _, trig := range triggers {
			if first, ok := owner[trig]; ok {
				warnings = append(warnings, fmt.Sprintf("snippet #%d: trigger %q is already used by snippet #%d", i+1, trig, first+1))
				continue
			}
			owner[trig] = i
		}

		if len(sn.FieldOptions) == 0 {
			continue
		}
		tpl := sn.Parse()
		names := make([]string, 0, len(sn.FieldOptions))
		for name := range sn.FieldOptions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			if _, ok := tpl.Field(name); !ok {
				warnings = append(warnings, fmt.Sprintf("snippet #%d: form_fields.%s names no field", i+1, name))
			}
		}
	}
	return warnings
}
