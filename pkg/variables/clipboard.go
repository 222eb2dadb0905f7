package variables

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
)

// DefaultClipboardTimeout bounds a single clipboard read.
const DefaultClipboardTimeout = 2 * time.Second

// ErrNoClipboardCommand is returned when a CommandClipboard has nothing to run.
var ErrNoClipboardCommand = errors.New("variables: clipboard command is empty")

// CommandClipboard reads clipboard text from the stdout of an external
// command such as `xclip -selection clipboard -o` or `pbpaste`.
type CommandClipboard struct {
	args    []string
	timeout time.Duration
}

// NewCommandClipboard parses a shell-style command line.
func NewCommandClipboard(command string, timeout time.Duration) (*CommandClipboard, error) {
	args, err := shellquote.Split(strings.TrimSpace(command))
	if err != nil {
		return nil, fmt.Errorf("variables: parse clipboard command: %w", err)
	}
	if len(args) == 0 {
		return nil, ErrNoClipboardCommand
	}
	if timeout <= 0 {
		timeout = DefaultClipboardTimeout
	}
	return &CommandClipboard{args: args, timeout: timeout}, nil
}

// ReadText implements Clipboard. Non-text or empty clipboards produce an
// empty string with the command's error, if any.
func (c *CommandClipboard) ReadText(ctx context.Context) (string, error) {
	if c == nil || len(c.args) == 0 {
		return "", ErrNoClipboardCommand
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, c.args[0], c.args[1:]...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("variables: run %s: %w", c.args[0], err)
	}
	return stdout.String(), nil
}

// StaticClipboard returns fixed text. Useful for tests and for the
// `expand --clipboard` flag.
type StaticClipboard string

// ReadText implements Clipboard.
func (s StaticClipboard) ReadText(context.Context) (string, error) {
	return string(s), nil
}
