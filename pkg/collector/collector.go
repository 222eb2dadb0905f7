// Package collector obtains field values for a parsed template, either by
// prompting the user or by falling back to the template defaults.
package collector

import (
	"context"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/goliatone/go-autotext/pkg/form"
)

// Collector returns one value per template field.
type Collector interface {
	Collect(ctx context.Context, t *form.Template) (form.Values, error)
}

// Func adapts a function to Collector.
type Func func(ctx context.Context, t *form.Template) (form.Values, error)

// Collect implements Collector.
func (fn Func) Collect(ctx context.Context, t *form.Template) (form.Values, error) {
	return fn(ctx, t)
}

// Defaults returns a non-interactive collector that accepts every default.
func Defaults() Collector {
	return Func(func(ctx context.Context, t *form.Template) (form.Values, error) {
		if t == nil {
			return nil, ErrNilTemplate
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return t.Defaults(), nil
	})
}

// Interactive prompts for each field through a PromptDriver.
type Interactive struct {
	driver     PromptDriver
	showLayout bool
	logger     *zap.SugaredLogger
}

// New constructs an interactive collector (survey driver by default).
func New(options ...Option) *Interactive {
	c := &Interactive{
		driver:     NewSurveyDriver(),
		showLayout: true,
		logger:     zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(c)
	}
	return c
}

// TTYOpener opens the controlling terminal for reading and writing.
type TTYOpener func() (*os.File, error)

// OpenTTY opens /dev/tty.
func OpenTTY() (*os.File, error) {
	return os.OpenFile("/dev/tty", os.O_RDWR, 0)
}

// Auto picks the interactive collector when a terminal is reachable. When
// stdin is a terminal it prompts there; when stdin is a pipe (triggers fed by
// a hot key daemon) it prompts on the controlling terminal instead. Only when
// no terminal can be opened does it fall back to the defaults collector.
func Auto(options ...Option) Collector {
	return autoSelect(term.IsTerminal(int(os.Stdin.Fd())), OpenTTY, options...)
}

func autoSelect(stdinIsTerminal bool, open TTYOpener, options ...Option) Collector {
	if stdinIsTerminal {
		return New(options...)
	}
	if open == nil {
		return Defaults()
	}
	tty, err := open()
	if err != nil || tty == nil {
		return Defaults()
	}
	opts := append([]Option{WithPromptDriver(NewSurveyDriverOn(tty))}, options...)
	return New(opts...)
}

// Collect prompts once per unique field in order of first appearance. A
// blank answer yields the field default. Templates without fields are
// returned without prompting.
func (c *Interactive) Collect(ctx context.Context, t *form.Template) (form.Values, error) {
	if t == nil {
		return nil, ErrNilTemplate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	values := make(form.Values, len(t.Fields))
	if !t.HasFields() {
		return values, nil
	}

	if c.showLayout {
		if err := c.driver.Info(ctx, Layout(t)); err != nil {
			c.logger.Debugw("layout preview failed", "error", err)
		}
	}

	for _, field := range t.Fields {
		answer, err := c.prompt(ctx, t, field)
		if err != nil {
			return nil, err
		}
		if strings.TrimSpace(answer) == "" {
			answer = field.Default
		}
		values[field.Name] = answer
	}
	return values, nil
}

func (c *Interactive) prompt(ctx context.Context, t *form.Template, field form.Field) (string, error) {
	help := contextLine(t, field.Name)
	switch field.Kind() {
	case form.KindChoice:
		return c.driver.Choice(ctx, ChoiceConfig{
			Message: field.Name,
			Help:    help,
			Options: field.Choices,
			Initial: field.Default,
		})
	case form.KindMultiline:
		return c.driver.TextArea(ctx, TextAreaConfig{
			Message:     field.Name,
			Help:        help,
			Placeholder: field.Placeholder,
		})
	default:
		return c.driver.Input(ctx, InputConfig{
			Message:     field.Name,
			Help:        help,
			Placeholder: field.Placeholder,
		})
	}
}

// Layout renders the template as the user sees it before answering: literal
// text kept, placeholders shown as [name], blank lines preserved.
func Layout(t *form.Template) string {
	lines := make([]string, 0, len(t.Parsed))
	for _, line := range t.Parsed {
		if line.Blank {
			lines = append(lines, "")
			continue
		}
		lines = append(lines, renderSegments(line.Segments))
	}
	return strings.Join(lines, "\n")
}

func contextLine(t *form.Template, name string) string {
	for _, line := range t.Parsed {
		for _, seg := range line.Segments {
			if seg.Placeholder && seg.Field == name {
				return strings.TrimSpace(renderSegments(line.Segments))
			}
		}
	}
	return ""
}

func renderSegments(segments []form.Segment) string {
	var b strings.Builder
	for _, seg := range segments {
		if seg.Placeholder {
			b.WriteString("[" + seg.Field + "]")
			continue
		}
		b.WriteString(seg.Text)
	}
	return b.String()
}
