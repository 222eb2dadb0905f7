package orchestrator

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/goliatone/go-autotext/internal/logging"
	"github.com/goliatone/go-autotext/pkg/expander"
	"github.com/goliatone/go-autotext/pkg/notify"
	"github.com/goliatone/go-autotext/pkg/snippet"
	"github.com/goliatone/go-autotext/pkg/watcher"
)

// ErrUnknownTrigger is returned by Expand when no snippet owns the trigger.
var ErrUnknownTrigger = errors.New("orchestrator: unknown trigger")

// loadFailedTitle heads the alert raised when the definition file is broken.
const loadFailedTitle = "Snippet definitions could not be loaded"

// Loader produces snapshots from the definition file. *snippet.Loader
// satisfies it.
type Loader interface {
	Path() string
	Load() (*snippet.Snapshot, error)
}

// Runner is an engine that also reads triggers from a stream.
type Runner interface {
	expander.Engine
	Run(ctx context.Context, r io.Reader, dispatch expander.DispatchFunc) error
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithDefinitions loads snippets from path.
func WithDefinitions(path string) Option {
	return func(o *Orchestrator) {
		o.loader = snippet.NewLoader(path)
	}
}

// WithLoader injects a custom loader.
func WithLoader(loader Loader) Option {
	return func(o *Orchestrator) {
		if loader != nil {
			o.loader = loader
		}
	}
}

// WithStore injects the snippet store.
func WithStore(store *snippet.Store) Option {
	return func(o *Orchestrator) {
		if store != nil {
			o.store = store
		}
	}
}

// WithEngine registers triggers with engine instead of the default line
// engine. Run reads input only when engine is also a Runner.
func WithEngine(engine expander.Engine) Option {
	return func(o *Orchestrator) {
		if engine != nil {
			o.engine = engine
		}
	}
}

// WithExpanderOptions configures the expander (collector, typer, variables,
// newline).
func WithExpanderOptions(options ...expander.Option) Option {
	return func(o *Orchestrator) {
		o.expanderOpts = append(o.expanderOpts, options...)
	}
}

// WithNotifier sends reload notifications through n. Run drives its
// delivery loop.
func WithNotifier(n *notify.Notifier) Option {
	return func(o *Orchestrator) {
		o.notifier = n
	}
}

// WithAlerter reports definition load failures.
func WithAlerter(a notify.Alerter) Option {
	return func(o *Orchestrator) {
		o.alerter = a
	}
}

// WithReloadTemplates sets the templates used for reload notifications.
func WithReloadTemplates(t *notify.Templates) Option {
	return func(o *Orchestrator) {
		if t != nil {
			o.templates = t
		}
	}
}

// WithWatch enables reloading when the definition file changes. A zero
// debounce keeps the watcher default.
func WithWatch(enabled bool, debounce time.Duration) Option {
	return func(o *Orchestrator) {
		o.watch = enabled
		o.debounce = debounce
	}
}

// WithLogger attaches a logger.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator owns the snippet store and everything that reads or replaces
// it.
type Orchestrator struct {
	loader       Loader
	store        *snippet.Store
	engine       expander.Engine
	registry     *expander.Registry
	expander     *expander.Expander
	expanderOpts []expander.Option
	notifier     *notify.Notifier
	alerter      notify.Alerter
	templates    *notify.Templates
	watch        bool
	debounce     time.Duration
	logger       *zap.SugaredLogger
}

// New constructs an Orchestrator applying any provided options. Missing
// dependencies get the built-in implementations: an empty store, a line
// engine and the default notification templates.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{
		logger: zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

func (o *Orchestrator) applyDefaults() {
	if o.loader == nil {
		o.loader = snippet.NewLoader("")
	}
	if o.store == nil {
		o.store = snippet.NewStore()
	}
	if o.engine == nil {
		o.engine = expander.NewLineEngine(o.logger.Named("engine"))
	}
	if o.templates == nil {
		// The defaults always compile.
		o.templates, _ = notify.NewTemplates("", "")
	}
	o.registry = expander.NewRegistry(o.engine)
	opts := append([]expander.Option{expander.WithLogger(o.logger.Named("expander"))}, o.expanderOpts...)
	o.expander = expander.New(o.store, opts...)
}

// Store exposes the snippet store.
func (o *Orchestrator) Store() *snippet.Store {
	return o.store
}

// Registry exposes the trigger registry.
func (o *Orchestrator) Registry() *expander.Registry {
	return o.registry
}

// Path returns the definition file path.
func (o *Orchestrator) Path() string {
	return o.loader.Path()
}

// Check loads the definition file without touching the store.
func (o *Orchestrator) Check() (*snippet.Snapshot, error) {
	return o.loader.Load()
}

// Reload rebuilds the store from the definition file. On success the new
// snapshot replaces the old one, new triggers are registered, and a forced
// reload announces the result. On failure the store is cleared so no stale
// snippet can expand, and the user is alerted.
func (o *Orchestrator) Reload(ctx context.Context, force bool) error {
	started := time.Now()
	log := o.logger.With(logging.FieldPath, o.loader.Path())

	snap, err := o.loader.Load()
	if err != nil {
		o.store.Invalidate()
		log.Errorw("definition load failed", logging.FieldError, err)
		o.alert(ctx, err)
		return err
	}

	version := o.store.Replace(snap)
	added, err := o.registry.Sync(snap)
	if err != nil {
		log.Warnw("trigger registration failed", logging.FieldError, err)
	}
	log.Infow("definitions loaded",
		logging.FieldCount, snap.Len(),
		logging.FieldVersion, version,
		"new_triggers", added,
		logging.FieldDurationMS, time.Since(started).Milliseconds(),
	)

	if force {
		o.announce(snap)
	}
	return nil
}

func (o *Orchestrator) alert(ctx context.Context, cause error) {
	if o.alerter == nil {
		return
	}
	body := cause.Error()
	if hints := errors.GetAllHints(cause); len(hints) > 0 {
		body += "\n" + strings.Join(hints, "\n")
	}
	if err := o.alerter.Alert(ctx, loadFailedTitle, body); err != nil {
		o.logger.Warnw("alert failed", logging.FieldError, err)
	}
}

func (o *Orchestrator) announce(snap *snippet.Snapshot) {
	if o.notifier == nil {
		return
	}
	msg, err := o.templates.Render(map[string]any{
		"count":    snap.Len(),
		"path":     snap.Source(),
		"version":  snap.Version(),
		"triggers": snap.Triggers(),
	})
	if err != nil {
		o.logger.Warnw("render reload notification", logging.FieldError, err)
		return
	}
	o.notifier.Notify(msg)
}

// OnTrigger expands a typed trigger through the configured typer.
func (o *Orchestrator) OnTrigger(ctx context.Context, trigger string) error {
	return o.expander.OnTrigger(ctx, trigger)
}

// Expand returns the expansion for trigger without typing it.
func (o *Orchestrator) Expand(ctx context.Context, trigger string) (string, error) {
	sn, ok := o.store.Lookup(trigger)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownTrigger, trigger)
	}
	return o.expander.Expand(ctx, sn)
}

// Run loads the definitions and serves triggers read from input until input
// is exhausted or ctx is canceled. Each value received on reload forces a
// reload. With watching enabled a change to the definition file reloads and
// announces like a manual reload. A broken definition file does not stop Run;
// the store stays empty until a later reload succeeds.
func (o *Orchestrator) Run(ctx context.Context, input io.Reader, reload <-chan struct{}) error {
	if err := o.Reload(ctx, false); err != nil && !errors.Is(err, snippet.ErrDefinitionLoad) {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gctx := errgroup.WithContext(ctx)

	if o.notifier != nil {
		g.Go(func() error {
			return o.notifier.Run(gctx)
		})
	}

	if o.watch {
		w := watcher.New(o.loader.Path(), func(ctx context.Context) {
			_ = o.Reload(ctx, true)
		}, watcher.WithDebounce(o.debounce), watcher.WithLogger(o.logger.Named("watcher")))
		g.Go(func() error {
			return w.Run(gctx)
		})
	}

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case _, ok := <-reload:
				if !ok {
					reload = nil
					continue
				}
				_ = o.Reload(gctx, true)
			}
		}
	})

	if runner, ok := o.engine.(Runner); ok && input != nil {
		g.Go(func() error {
			defer cancel()
			return runner.Run(gctx, input, o.OnTrigger)
		})
	}

	return g.Wait()
}
