// Package expander turns a typed trigger into expanded text: it looks the
// trigger up in the current snippet snapshot, collects field values and
// hands the rendered result to a typer.
package expander

import (
	"context"
	"errors"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/goliatone/go-autotext/internal/logging"
	"github.com/goliatone/go-autotext/pkg/collector"
	"github.com/goliatone/go-autotext/pkg/form"
	"github.com/goliatone/go-autotext/pkg/snippet"
	"github.com/goliatone/go-autotext/pkg/typer"
	"github.com/goliatone/go-autotext/pkg/variables"
)

// Source provides snippet lookups. *snippet.Store satisfies it.
type Source interface {
	Lookup(trigger string) (snippet.Snippet, bool)
}

// Option configures an Expander.
type Option func(*Expander)

// WithCollector sets how field values are obtained.
func WithCollector(c collector.Collector) Option {
	return func(e *Expander) {
		if c != nil {
			e.collector = c
		}
	}
}

// WithTyper sets where expansions are typed.
func WithTyper(t typer.Typer) Option {
	return func(e *Expander) {
		if t != nil {
			e.typer = t
		}
	}
}

// WithVariables sets the options used to build the special token resolver
// for each expansion.
func WithVariables(options ...variables.Option) Option {
	return func(e *Expander) {
		e.variables = append([]variables.Option(nil), options...)
	}
}

// WithResolver replaces the special token resolver entirely.
func WithResolver(r variables.Resolver) Option {
	return func(e *Expander) {
		e.resolver = r
	}
}

// WithNewline sets the line separator of rendered output.
func WithNewline(newline string) Option {
	return func(e *Expander) {
		if newline != "" {
			e.newline = newline
		}
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(e *Expander) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// Expander runs the expansion pipeline.
type Expander struct {
	source    Source
	collector collector.Collector
	typer     typer.Typer
	variables []variables.Option
	resolver  variables.Resolver
	newline   string
	logger    *zap.SugaredLogger
}

// New constructs an Expander reading snippets from source. It defaults to
// the non-interactive collector and a typer that discards output.
func New(source Source, options ...Option) *Expander {
	e := &Expander{
		source:    source,
		collector: collector.Defaults(),
		typer:     discard{},
		newline:   form.DefaultNewline,
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		if opt != nil {
			opt(e)
		}
	}
	return e
}

// OnTrigger handles a typed trigger. The snippet is looked up at call time,
// so a trigger removed by a reload is silently ignored. Cancelling the form
// is not an error.
func (e *Expander) OnTrigger(ctx context.Context, trigger string) error {
	log := e.logger.With(logging.FieldTrigger, trigger)

	sn, ok := e.source.Lookup(trigger)
	if !ok {
		log.Debugw("trigger has no snippet")
		return nil
	}

	if err := e.typer.Erase(ctx, utf8.RuneCountInString(trigger)); err != nil {
		log.Warnw("erase trigger failed", logging.FieldError, err)
	}

	text, err := e.Expand(ctx, sn)
	if err != nil {
		if errors.Is(err, collector.ErrCanceled) {
			log.Debugw("expansion canceled")
			return nil
		}
		return err
	}
	if text == "" {
		return nil
	}
	return e.typer.Type(ctx, text)
}

// Expand parses the snippet form, collects values and renders the result.
func (e *Expander) Expand(ctx context.Context, sn snippet.Snippet) (string, error) {
	started := time.Now()
	log := e.logger.With(logging.FieldExpansionID, uuid.NewString())

	tpl := sn.Parse(form.WithResolver(e.resolverFor(ctx)))
	values, err := e.collector.Collect(ctx, tpl)
	if err != nil {
		log.Debugw("collect failed", logging.FieldError, err)
		return "", err
	}
	text := form.Render(tpl, values, form.WithNewline(e.newline))
	log.Debugw("expanded",
		"fields", len(tpl.Fields),
		logging.FieldDurationMS, time.Since(started).Milliseconds(),
	)
	return text, nil
}

func (e *Expander) resolverFor(ctx context.Context) variables.Resolver {
	if e.resolver != nil {
		return e.resolver
	}
	opts := append(append([]variables.Option(nil), e.variables...),
		variables.WithContext(ctx),
		variables.WithLogger(e.logger),
	)
	return variables.New(opts...)
}

type discard struct{}

func (discard) Erase(context.Context, int) error { return nil }

func (discard) Type(context.Context, string) error { return nil }
