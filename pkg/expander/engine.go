package expander

import (
	"bufio"
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/goliatone/go-autotext/internal/logging"
	"github.com/goliatone/go-autotext/pkg/snippet"
)

// Engine is the host automation boundary. Once a trigger is registered the
// host calls back into the expander whenever the trigger is typed.
type Engine interface {
	Register(trigger string) error
}

// EngineFunc adapts a function to Engine.
type EngineFunc func(trigger string) error

// Register implements Engine.
func (fn EngineFunc) Register(trigger string) error {
	return fn(trigger)
}

// Registry remembers which triggers have been handed to an engine. Triggers
// are never unregistered; a trigger that disappears from the definitions
// simply stops matching at lookup time.
type Registry struct {
	mu     sync.Mutex
	engine Engine
	known  map[string]struct{}
}

// NewRegistry wraps engine.
func NewRegistry(engine Engine) *Registry {
	return &Registry{engine: engine, known: make(map[string]struct{})}
}

// Sync registers every trigger of snap not registered before and returns the
// number of new registrations. Registration failures are collected; the
// failing triggers are retried on the next Sync.
func (r *Registry) Sync(snap *snippet.Snapshot) (int, error) {
	if snap == nil {
		return 0, nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		added int
		errs  []error
	)
	for _, trig := range snap.Triggers() {
		if _, ok := r.known[trig]; ok {
			continue
		}
		if err := r.engine.Register(trig); err != nil {
			errs = append(errs, err)
			continue
		}
		r.known[trig] = struct{}{}
		added++
	}
	return added, errors.Join(errs...)
}

// Registered lists every trigger registered so far, sorted.
func (r *Registry) Registered() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.known))
	for trig := range r.known {
		out = append(out, trig)
	}
	sort.Strings(out)
	return out
}

// DispatchFunc handles one typed trigger.
type DispatchFunc func(ctx context.Context, trigger string) error

// LineEngine is an Engine fed by newline separated trigger strings, as
// produced by an external hot key daemon writing to our stdin.
type LineEngine struct {
	mu       sync.RWMutex
	triggers map[string]struct{}
	logger   *zap.SugaredLogger
}

// NewLineEngine constructs an empty engine.
func NewLineEngine(logger *zap.SugaredLogger) *LineEngine {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &LineEngine{triggers: make(map[string]struct{}), logger: logger}
}

// Register implements Engine.
func (e *LineEngine) Register(trigger string) error {
	if strings.TrimSpace(trigger) == "" {
		return errors.New("expander: empty trigger")
	}
	e.mu.Lock()
	e.triggers[trigger] = struct{}{}
	e.mu.Unlock()
	return nil
}

// Registered reports whether trigger was registered.
func (e *LineEngine) Registered(trigger string) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.triggers[trigger]
	return ok
}

// Run reads r line by line and dispatches registered triggers until r is
// exhausted or ctx is canceled. Lines are dispatched one at a time and the
// next line is not read until dispatch returns, so a prompt shown during
// dispatch can own the terminal. Dispatch errors are logged.
func (e *LineEngine) Run(ctx context.Context, r io.Reader, dispatch DispatchFunc) error {
	lines := make(chan string)
	next := make(chan struct{})
	readErr := make(chan error, 1)

	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(r)
		for {
			select {
			case <-next:
			case <-ctx.Done():
				return
			}
			if !scanner.Scan() {
				readErr <- scanner.Err()
				return
			}
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case next <- struct{}{}:
		}

		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			return nil
		case line, ok = <-lines:
		}
		if !ok {
			select {
			case err := <-readErr:
				return err
			default:
				return nil
			}
		}

		trigger := strings.TrimSpace(line)
		if trigger == "" {
			continue
		}
		if !e.Registered(trigger) {
			e.logger.Debugw("ignoring unregistered input", logging.FieldTrigger, trigger)
			continue
		}
		if err := dispatch(ctx, trigger); err != nil {
			e.logger.Warnw("trigger dispatch failed", logging.FieldTrigger, trigger, logging.FieldError, err)
		}
	}
}
