// Package snippet holds snippet records, decodes the YAML definition file and
// keeps the current set of snippets in an immutable, swappable snapshot.
package snippet

import (
	"strings"
	"time"

	"github.com/goliatone/go-autotext/pkg/form"
)

// Snippet is one trigger-able template.
type Snippet struct {
	Trigger      string                       `yaml:"trigger,omitempty" json:"trigger,omitempty"`
	Triggers     []string                     `yaml:"triggers,omitempty" json:"triggers,omitempty"`
	Form         string                       `yaml:"form" json:"form"`
	FieldOptions map[string]form.FieldOptions `yaml:"form_fields,omitempty" json:"form_fields,omitempty"`
}

// AllTriggers merges Trigger and Triggers into one ordered set. Triggers are
// trimmed of surrounding whitespace and empty entries are dropped.
func (s Snippet) AllTriggers() []string {
	out := make([]string, 0, len(s.Triggers)+1)
	seen := make(map[string]struct{}, len(s.Triggers)+1)
	add := func(t string) {
		t = strings.TrimSpace(t)
		if t == "" {
			return
		}
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	add(s.Trigger)
	for _, t := range s.Triggers {
		add(t)
	}
	return out
}

// Parse builds the template for this snippet.
func (s Snippet) Parse(options ...form.Option) *form.Template {
	opts := append([]form.Option{form.WithFieldOptions(s.FieldOptions)}, options...)
	return form.Parse(s.Form, opts...)
}

// Snapshot is an immutable view of one successful load.
type Snapshot struct {
	snippets []Snippet
	index    map[string]int
	order    []string
	source   string
	version  uint64
	loadedAt time.Time
}

// NewSnapshot indexes snippets by trigger. When two snippets claim the same
// trigger the first one wins.
func NewSnapshot(source string, snippets []Snippet) *Snapshot {
	s := &Snapshot{
		snippets: append([]Snippet(nil), snippets...),
		index:    make(map[string]int),
		source:   source,
		loadedAt: time.Now(),
	}
	for i, sn := range s.snippets {
		for _, trig := range sn.AllTriggers() {
			if _, exists := s.index[trig]; exists {
				continue
			}
			s.index[trig] = i
			s.order = append(s.order, trig)
		}
	}
	return s
}

// Lookup returns the snippet owning trigger.
func (s *Snapshot) Lookup(trigger string) (Snippet, bool) {
	if s == nil {
		return Snippet{}, false
	}
	idx, ok := s.index[trigger]
	if !ok {
		return Snippet{}, false
	}
	return s.snippets[idx], true
}

// Snippets returns a copy of the loaded snippets.
func (s *Snapshot) Snippets() []Snippet {
	if s == nil {
		return nil
	}
	return append([]Snippet(nil), s.snippets...)
}

// Triggers returns every registered trigger in definition order.
func (s *Snapshot) Triggers() []string {
	if s == nil {
		return nil
	}
	return append([]string(nil), s.order...)
}

// Len returns the number of snippets, including those without triggers.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.snippets)
}

// Source is the path the snapshot was loaded from.
func (s *Snapshot) Source() string {
	if s == nil {
		return ""
	}
	return s.source
}

// Version is assigned by the Store on Replace.
func (s *Snapshot) Version() uint64 {
	if s == nil {
		return 0
	}
	return s.version
}

// LoadedAt reports when the snapshot was built.
func (s *Snapshot) LoadedAt() time.Time {
	if s == nil {
		return time.Time{}
	}
	return s.loadedAt
}
