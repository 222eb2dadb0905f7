// Package typer injects expansion results into the active application.
package typer

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"sync"

	"github.com/kballard/go-shellquote"
)

// CountPlaceholder is replaced by the number of characters to erase in an
// erase command, e.g. `xdotool key --repeat {count} BackSpace`.
const CountPlaceholder = "{count}"

// Typer erases the typed trigger and types the expansion.
type Typer interface {
	Erase(ctx context.Context, n int) error
	Type(ctx context.Context, text string) error
}

// Writer types into an io.Writer and ignores erase requests. It backs the
// stdin/stdout mode of `autotext run`.
type Writer struct {
	mu sync.Mutex
	w  io.Writer
}

// NewWriter wraps w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

// Erase implements Typer.
func (t *Writer) Erase(context.Context, int) error {
	return nil
}

// Type implements Typer.
func (t *Writer) Type(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if _, err := io.WriteString(t.w, text); err != nil {
		return err
	}
	if !strings.HasSuffix(text, "\n") {
		_, err := io.WriteString(t.w, "\n")
		return err
	}
	return nil
}

// Command types through external tools such as xdotool or wtype.
type Command struct {
	typeArgs  []string
	eraseArgs []string
	run       func(ctx context.Context, name string, args ...string) error
}

// NewCommand parses the type and erase command lines. The text to type is
// appended as the last argument of the type command. An empty erase command
// disables erasing.
func NewCommand(typeCommand, eraseCommand string) (*Command, error) {
	typeArgs, err := shellquote.Split(strings.TrimSpace(typeCommand))
	if err != nil {
		return nil, fmt.Errorf("typer: parse type command: %w", err)
	}
	if len(typeArgs) == 0 {
		return nil, fmt.Errorf("typer: type command is empty")
	}
	eraseArgs, err := shellquote.Split(strings.TrimSpace(eraseCommand))
	if err != nil {
		return nil, fmt.Errorf("typer: parse erase command: %w", err)
	}
	return &Command{typeArgs: typeArgs, eraseArgs: eraseArgs, run: runCommand}, nil
}

// Erase implements Typer.
func (c *Command) Erase(ctx context.Context, n int) error {
	if n <= 0 || len(c.eraseArgs) == 0 {
		return nil
	}
	args := make([]string, len(c.eraseArgs))
	for i, arg := range c.eraseArgs {
		args[i] = strings.ReplaceAll(arg, CountPlaceholder, strconv.Itoa(n))
	}
	return c.run(ctx, args[0], args[1:]...)
}

// Type implements Typer.
func (c *Command) Type(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	args := append(append([]string(nil), c.typeArgs[1:]...), text)
	return c.run(ctx, c.typeArgs[0], args...)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("typer: %s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}
