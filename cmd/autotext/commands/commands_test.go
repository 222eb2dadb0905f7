package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/pterm/pterm"

	"github.com/goliatone/go-autotext/pkg/collector"
	"github.com/goliatone/go-autotext/pkg/form"
	"github.com/goliatone/go-autotext/pkg/snippet"
	"github.com/goliatone/go-autotext/pkg/testsupport"
)

func TestMain(m *testing.M) {
	pterm.DisableStyling()
	os.Exit(m.Run())
}

const definitions = `
- trigger: ";hi"
  form: "Hello [[who=world]] from $me:ann$"
- triggers: [";c", ";hi"]
  form: "[[color=red,green]]"
  form_fields:
    colour:
      multiline: true
- form: orphan
`

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	return executeWith(t, func(bool) collector.Collector { return collector.Defaults() }, stdin, args...)
}

// executeWith runs the command tree with values coming from newCollector so
// no test ever prompts on the developer's terminal.
func executeWith(t *testing.T, newCollector func(bool) collector.Collector, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	root := newRootCmd(&state{newCollector: newCollector})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestExpand_Defaults(t *testing.T) {
	path := testsupport.WriteDefinitions(t, t.TempDir(), definitions)

	out, err := execute(t, "", "expand", "--defaults", "-d", path, ";hi")
	if err != nil {
		t.Fatalf("expand: %v\n%s", err, out)
	}
	if out != "Hello world from ann\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestExpand_UnknownTrigger(t *testing.T) {
	path := testsupport.WriteDefinitions(t, t.TempDir(), definitions)
	if _, err := execute(t, "", "expand", "--defaults", "-d", path, ";zzz"); err == nil {
		t.Fatalf("expected error for unknown trigger")
	}
}

func TestExpand_CanceledFormPrintsNothing(t *testing.T) {
	path := testsupport.WriteDefinitions(t, t.TempDir(), definitions)
	canceling := func(bool) collector.Collector {
		return collector.Func(func(context.Context, *form.Template) (form.Values, error) {
			return nil, collector.ErrCanceled
		})
	}

	out, err := executeWith(t, canceling, "", "expand", "-d", path, ";hi")
	if err != nil {
		t.Fatalf("canceled expand should succeed: %v", err)
	}
	if out != "" {
		t.Fatalf("canceled expand printed %q", out)
	}
}

func TestExpand_CollectorFailureIsReported(t *testing.T) {
	path := testsupport.WriteDefinitions(t, t.TempDir(), definitions)
	failing := func(bool) collector.Collector {
		return collector.Func(func(context.Context, *form.Template) (form.Values, error) {
			return nil, errors.New("tty gone")
		})
	}

	if _, err := executeWith(t, failing, "", "expand", "-d", path, ";hi"); err == nil {
		t.Fatalf("expected collector failure to surface")
	}
}

func TestRun_ExpandsStdinToStdout(t *testing.T) {
	path := testsupport.WriteDefinitions(t, t.TempDir(), definitions)
	t.Setenv("AUTOTEXT_WATCH_ENABLED", "false")

	out, err := execute(t, ";hi\nnope\n;c\n", "run", "-d", path)
	if err != nil {
		t.Fatalf("run: %v\n%s", err, out)
	}
	if out != "Hello world from ann\nred\n" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestList(t *testing.T) {
	path := testsupport.WriteDefinitions(t, t.TempDir(), definitions)

	out, err := execute(t, "", "list", "-d", path)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"Triggers", ";hi", ";c ;hi", "color", "Hello [[who=world]]"} {
		if !strings.Contains(out, want) {
			t.Fatalf("list output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "orphan") {
		t.Fatalf("snippets without triggers should not be listed:\n%s", out)
	}
}

func TestCheck_ReportsWarnings(t *testing.T) {
	path := testsupport.WriteDefinitions(t, t.TempDir(), definitions)

	out, err := execute(t, "", "check", "-d", path)
	if err != nil {
		t.Fatalf("check: %v\n%s", err, out)
	}
	for _, want := range []string{
		"who: text (default \"world\")",
		"color: choice [red | green]",
		"3 snippet(s), 2 trigger(s)",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("check output missing %q:\n%s", want, out)
		}
	}

	if _, err := execute(t, "", "check", "--strict", "-d", path); err == nil {
		t.Fatalf("strict check should fail on warnings")
	}
}

func TestCheck_BrokenFile(t *testing.T) {
	path := testsupport.WriteDefinitions(t, t.TempDir(), "- trigger: x\n  bogus: 1\n")

	out, err := execute(t, "", "check", "-d", path)
	if err == nil {
		t.Fatalf("expected check to fail")
	}
	if !strings.Contains(out, path) {
		t.Fatalf("error output should name the file:\n%s", out)
	}
}

func TestInit_WritesStarterOnce(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "snippets.yaml")

	if _, err := execute(t, "", "init", "-d", path); err != nil {
		t.Fatalf("init: %v", err)
	}
	if _, err := snippet.NewLoader(path).Load(); err != nil {
		t.Fatalf("starter file should load: %v", err)
	}
	if _, err := execute(t, "", "init", "-d", path); err == nil {
		t.Fatalf("second init without --force should fail")
	}
	if _, err := execute(t, "", "init", "--force", "-d", path); err != nil {
		t.Fatalf("init --force: %v", err)
	}
}

func TestLint(t *testing.T) {
	snippets, err := snippet.Decode([]byte(definitions))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	got := lint(snippet.NewSnapshot("s", snippets))
	want := []string{
		`snippet #2: trigger ";hi" is already used by snippet #1`,
		"snippet #2: form_fields.colour names no field",
		"snippet #3 has no trigger and can never expand",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("lint mismatch (-want +got):\n%s", diff)
	}
}

func TestPreview(t *testing.T) {
	cases := []struct {
		lines []string
		want  string
	}{
		{[]string{"one"}, "one"},
		{[]string{"", "  two  ", "three"}, "two (+2 lines)"},
		{[]string{strings.Repeat("x", 50)}, strings.Repeat("x", 39) + "…"},
	}
	for _, tc := range cases {
		if got := preview(tc.lines); got != tc.want {
			t.Fatalf("preview(%q) = %q, want %q", tc.lines, got, tc.want)
		}
	}
}
