// Package form parses snippet templates into declarations, layout lines and
// field placeholders, and renders them back into final text once field
// values are known.
//
// Two token kinds are recognised:
//
//	$name:default$     declares name with a default value
//	$name$             substitutes a declared value
//	[[name]]           prompts for name, default is the resolved name
//	[[name=default]]   prompts for name with a default
//	[[name=a,b,c]]     prompts for name with a choice list (first is default)
//
// Choice lists split on the first delimiter present, in priority order
// `,` `;` `/` `|`.
package form

// FieldOptions are per-field rendering hints taken from the definition file.
type FieldOptions struct {
	Multiline bool `yaml:"multiline" json:"multiline"`
}

// Kind selects the widget a collector should present for a field.
type Kind string

const (
	// KindText is a single-line entry whose ghost text is the placeholder.
	KindText Kind = "text"
	// KindMultiline is a multi-line entry with the same defaulting rule.
	KindMultiline Kind = "multiline"
	// KindChoice is an editable single-select seeded with Choices.
	KindChoice Kind = "choice"
)

// Field is a parsed [[...]] placeholder.
type Field struct {
	Name string
	// Placeholder is the resolved, unsplit default.
	Placeholder string
	// Default is used when the user leaves the field blank: the first choice
	// for choice lists, otherwise Placeholder.
	Default   string
	Choices   []string
	Multiline bool
}

// Kind reports which widget the field needs.
func (f Field) Kind() Kind {
	if len(f.Choices) > 1 {
		return KindChoice
	}
	if f.Multiline {
		return KindMultiline
	}
	return KindText
}

// Segment is either literal text or a reference to a field on a line. For
// placeholders Text holds the raw [[...]] token.
type Segment struct {
	Text        string
	Field       string
	Placeholder bool
}

// Line is one parsed template line.
type Line struct {
	Raw      string
	Blank    bool
	Segments []Segment
}

// Declaration is a $name:value$ binding.
type Declaration struct {
	Name  string
	Value string
}

// Declarations keeps bindings in order of first appearance. Setting an
// existing name overwrites its value in place.
type Declarations struct {
	names  []string
	values map[string]string
}

// Set binds name to value.
func (d *Declarations) Set(name, value string) {
	if d.values == nil {
		d.values = make(map[string]string)
	}
	if _, ok := d.values[name]; !ok {
		d.names = append(d.names, name)
	}
	d.values[name] = value
}

// Get returns the value bound to name.
func (d Declarations) Get(name string) (string, bool) {
	v, ok := d.values[name]
	return v, ok
}

// Len returns the number of distinct names.
func (d Declarations) Len() int {
	return len(d.names)
}

// List returns the bindings in order.
func (d Declarations) List() []Declaration {
	out := make([]Declaration, 0, len(d.names))
	for _, name := range d.names {
		out = append(out, Declaration{Name: name, Value: d.values[name]})
	}
	return out
}

func (d Declarations) clone() Declarations {
	out := Declarations{
		names:  append([]string(nil), d.names...),
		values: make(map[string]string, len(d.values)),
	}
	for k, v := range d.values {
		out.values[k] = v
	}
	return out
}

// Values maps names to final strings for one expansion.
type Values map[string]string

// Template is the parse result of a snippet form.
type Template struct {
	Lines        []string
	Parsed       []Line
	Declarations Declarations
	Fields       []Field

	index map[string]int
}

// Field returns the field definition for name.
func (t *Template) Field(name string) (Field, bool) {
	if t == nil {
		return Field{}, false
	}
	idx, ok := t.index[name]
	if !ok {
		return Field{}, false
	}
	return t.Fields[idx], true
}

// HasFields reports whether the template needs any user input.
func (t *Template) HasFields() bool {
	return t != nil && len(t.Fields) > 0
}

// Defaults returns each field's fallback value.
func (t *Template) Defaults() Values {
	out := make(Values, len(t.Fields))
	for _, f := range t.Fields {
		out[f.Name] = f.Default
	}
	return out
}
