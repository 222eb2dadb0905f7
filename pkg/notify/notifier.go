// Package notify delivers best-effort desktop notifications through a single
// goroutine and blocking alerts for errors the user must see.
package notify

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/kballard/go-shellquote"
	"github.com/microcosm-cc/bluemonday"
	"go.uber.org/zap"
)

// DefaultQueueSize bounds pending notifications; extra ones are dropped.
const DefaultQueueSize = 8

// Message is one notification.
type Message struct {
	Title string
	Body  string
}

// Sink displays a message.
type Sink interface {
	Show(ctx context.Context, msg Message) error
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(ctx context.Context, msg Message) error

// Show implements Sink.
func (fn SinkFunc) Show(ctx context.Context, msg Message) error {
	return fn(ctx, msg)
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithQueueSize sets the pending message capacity.
func WithQueueSize(size int) Option {
	return func(n *Notifier) {
		if size > 0 {
			n.size = size
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(n *Notifier) {
		if logger != nil {
			n.logger = logger
		}
	}
}

// WithTimeout bounds a single delivery.
func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

// Notifier is a fire-and-forget front for a Sink. Notify never blocks;
// delivery happens on the goroutine running Run.
type Notifier struct {
	sink    Sink
	queue   chan Message
	size    int
	timeout time.Duration
	logger  *zap.SugaredLogger
}

// New constructs a Notifier.
func New(sink Sink, options ...Option) *Notifier {
	n := &Notifier{
		sink:    sink,
		size:    DefaultQueueSize,
		timeout: 5 * time.Second,
		logger:  zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(n)
		}
	}
	n.queue = make(chan Message, n.size)
	return n
}

// Notify queues msg and reports whether it was accepted.
func (n *Notifier) Notify(msg Message) bool {
	if n == nil || n.sink == nil {
		return false
	}
	select {
	case n.queue <- msg:
		return true
	default:
		n.logger.Debugw("notification dropped, queue full", "title", msg.Title)
		return false
	}
}

// Run delivers queued messages until ctx is done. Delivery errors are logged
// and otherwise ignored.
func (n *Notifier) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg := <-n.queue:
			n.deliver(ctx, msg)
		}
	}
}

func (n *Notifier) deliver(ctx context.Context, msg Message) {
	defer func() {
		if r := recover(); r != nil {
			n.logger.Warnw("notification sink panicked", "panic", r)
		}
	}()
	ctx, cancel := context.WithTimeout(ctx, n.timeout)
	defer cancel()
	if err := n.sink.Show(ctx, msg); err != nil {
		n.logger.Warnw("notification failed", "title", msg.Title, "error", err)
	}
}

// Command shows messages by running an external tool with the title and
// body appended, e.g. `notify-send -t 3000`.
type Command struct {
	args   []string
	policy *bluemonday.Policy
	run    func(ctx context.Context, name string, args ...string) error
}

// ErrEmptyCommand is returned by NewCommand for a blank command line.
var ErrEmptyCommand = errors.New("notify: command is empty")

// NewCommand parses command.
func NewCommand(command string) (*Command, error) {
	args, err := shellquote.Split(strings.TrimSpace(command))
	if err != nil {
		return nil, fmt.Errorf("notify: parse command: %w", err)
	}
	if len(args) == 0 {
		return nil, ErrEmptyCommand
	}
	return &Command{args: args, policy: bluemonday.StrictPolicy(), run: runCommand}, nil
}

// Show implements Sink. Title and body are stripped of markup since
// notification daemons may interpret it.
func (c *Command) Show(ctx context.Context, msg Message) error {
	args := append(append([]string(nil), c.args[1:]...),
		c.policy.Sanitize(msg.Title),
		c.policy.Sanitize(msg.Body),
	)
	return c.run(ctx, c.args[0], args...)
}

func runCommand(ctx context.Context, name string, args ...string) error {
	out, err := exec.CommandContext(ctx, name, args...).CombinedOutput()
	if err != nil {
		return fmt.Errorf("notify: %s: %w: %s", name, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Log writes messages to a logger. It is the fallback sink when no command
// is configured.
func Log(logger *zap.SugaredLogger) Sink {
	return SinkFunc(func(_ context.Context, msg Message) error {
		logger.Infow(msg.Title, "message", msg.Body)
		return nil
	})
}
