// Package variables resolves the reserved runtime tokens that snippet
// templates may use as default values. Only whole-token matches are
// resolved; a token embedded in larger text is returned unchanged.
package variables

import (
	"context"
	"os"
	"os/user"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Reserved tokens.
const (
	TokenClipboard = "{CLIPBOARD}"
	TokenDate      = "{DATE}"
	TokenUser      = "{USER}"
	TokenNow       = "{NOW}"
)

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02 15:04:05"
)

// Resolver maps a single value onto its live replacement.
type Resolver interface {
	Resolve(value string) string
}

// ResolverFunc adapts a plain function to Resolver.
type ResolverFunc func(string) string

// Resolve implements Resolver.
func (fn ResolverFunc) Resolve(value string) string {
	return fn(value)
}

// Identity returns every value unchanged.
var Identity Resolver = ResolverFunc(func(v string) string { return v })

// Clipboard reads the current clipboard text.
type Clipboard interface {
	ReadText(ctx context.Context) (string, error)
}

// Option configures a Special resolver.
type Option func(*Special)

// WithClipboard sets the clipboard source.
func WithClipboard(cb Clipboard) Option {
	return func(s *Special) {
		if cb != nil {
			s.clipboard = cb
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Special) {
		if now != nil {
			s.now = now
		}
	}
}

// WithUser overrides how the operator name is looked up.
func WithUser(fn func() string) Option {
	return func(s *Special) {
		if fn != nil {
			s.user = fn
		}
	}
}

// WithLogger attaches a logger for recovered failures.
func WithLogger(logger *zap.SugaredLogger) Option {
	return func(s *Special) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithContext sets the context used for clipboard reads.
func WithContext(ctx context.Context) Option {
	return func(s *Special) {
		if ctx != nil {
			s.ctx = ctx
		}
	}
}

// Special resolves the four reserved tokens. Values are computed on every
// call; nothing is cached between expansions.
type Special struct {
	ctx       context.Context
	clipboard Clipboard
	now       func() time.Time
	user      func() string
	logger    *zap.SugaredLogger
}

// New constructs a Special resolver. Without a clipboard option the
// clipboard token resolves to an empty string.
func New(options ...Option) *Special {
	s := &Special{
		ctx:       context.Background(),
		clipboard: noClipboard{},
		now:       time.Now,
		user:      CurrentUser,
		logger:    zap.NewNop().Sugar(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}
	return s
}

// Resolve implements Resolver.
func (s *Special) Resolve(value string) string {
	switch value {
	case TokenClipboard:
		return s.clipboardText()
	case TokenDate:
		return s.now().Format(dateLayout)
	case TokenUser:
		return s.user()
	case TokenNow:
		return s.now().Format(dateTimeLayout)
	default:
		return value
	}
}

func (s *Special) clipboardText() (text string) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Debugw("clipboard read panicked", "panic", r)
			text = ""
		}
	}()
	raw, err := s.clipboard.ReadText(s.ctx)
	if err != nil {
		s.logger.Debugw("clipboard read failed", "error", err)
		return ""
	}
	return strings.TrimSpace(raw)
}

// CurrentUser returns the operator's login name, or an empty string when it
// cannot be determined.
func CurrentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		name := u.Username
		// Windows reports DOMAIN\name.
		if idx := strings.LastIndex(name, `\`); idx >= 0 {
			name = name[idx+1:]
		}
		return name
	}
	for _, key := range []string{"USER", "USERNAME", "LOGNAME"} {
		if v := strings.TrimSpace(os.Getenv(key)); v != "" {
			return v
		}
	}
	return ""
}

type noClipboard struct{}

func (noClipboard) ReadText(context.Context) (string, error) {
	return "", nil
}
