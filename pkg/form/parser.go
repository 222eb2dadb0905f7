package form

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-autotext/pkg/variables"
)

// wordClass matches the identifier characters accepted in declaration names.
const wordClass = `[\p{L}\p{Mn}\p{Nd}\p{Pc}]`

var (
	declarationPattern = regexp.MustCompile(`\$(` + wordClass + `+):([^$]+)\$`)
	fieldPattern       = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	lineBreak          = regexp.MustCompile(`\r\n|\r|\n`)
)

// choiceDelimiters are tried in order; only the first one present is used.
var choiceDelimiters = []string{",", ";", "/", "|"}

// Option configures Parse.
type Option func(*parser)

// WithResolver resolves special variables in defaults and choices.
func WithResolver(r variables.Resolver) Option {
	return func(p *parser) {
		if r != nil {
			p.resolver = r
		}
	}
}

// WithFieldOptions supplies per-field rendering hints.
func WithFieldOptions(opts map[string]FieldOptions) Option {
	return func(p *parser) {
		p.fieldOptions = opts
	}
}

type parser struct {
	resolver     variables.Resolver
	fieldOptions map[string]FieldOptions
}

// SplitLines splits text on any newline convention.
func SplitLines(text string) []string {
	return lineBreak.Split(text, -1)
}

// Parse scans text in two passes: declarations across every line first,
// then field placeholders line by line. Parse never fails; text without
// tokens yields literal-only lines.
func Parse(text string, options ...Option) *Template {
	p := &parser{resolver: variables.Identity}
	for _, opt := range options {
		if opt != nil {
			opt(p)
		}
	}

	lines := SplitLines(text)
	t := &Template{
		Lines:  lines,
		Parsed: make([]Line, 0, len(lines)),
		index:  make(map[string]int),
	}

	for _, line := range lines {
		for _, m := range declarationPattern.FindAllStringSubmatch(line, -1) {
			t.Declarations.Set(m[1], p.resolver.Resolve(m[2]))
		}
	}

	for _, line := range lines {
		t.Parsed = append(t.Parsed, p.parseLine(t, line))
	}

	return t
}

func (p *parser) parseLine(t *Template, line string) Line {
	if strings.TrimSpace(line) == "" {
		return Line{Raw: line, Blank: true}
	}

	parsed := Line{Raw: line}
	last := 0
	for _, loc := range fieldPattern.FindAllStringSubmatchIndex(line, -1) {
		if loc[0] > last {
			parsed.Segments = append(parsed.Segments, Segment{Text: line[last:loc[0]]})
		}
		field := p.parseField(line[loc[2]:loc[3]])
		t.addField(field)
		parsed.Segments = append(parsed.Segments, Segment{
			Text:        line[loc[0]:loc[1]],
			Field:       field.Name,
			Placeholder: true,
		})
		last = loc[1]
	}
	if last < len(line) {
		parsed.Segments = append(parsed.Segments, Segment{Text: line[last:]})
	}
	return parsed
}

func (p *parser) parseField(spec string) Field {
	spec = strings.TrimSpace(spec)

	var name, def string
	if idx := strings.Index(spec, "="); idx >= 0 {
		name = strings.TrimSpace(spec[:idx])
		def = p.resolver.Resolve(strings.TrimSpace(spec[idx+1:]))
	} else {
		name = spec
		def = p.resolver.Resolve(name)
	}

	field := Field{
		Name:        name,
		Placeholder: def,
		Default:     def,
		Multiline:   p.fieldOptions[name].Multiline,
	}

	if choices := splitChoices(def); choices != nil {
		for i, item := range choices {
			choices[i] = p.resolver.Resolve(item)
		}
		field.Choices = choices
		field.Default = choices[0]
	}
	return field
}

// splitChoices splits on the highest-priority delimiter present in value, or
// returns nil when none is present.
func splitChoices(value string) []string {
	for _, delim := range choiceDelimiters {
		if strings.Contains(value, delim) {
			return strings.Split(value, delim)
		}
	}
	return nil
}

// addField records f, letting a later definition of the same name replace the
// earlier one while keeping its original position.
func (t *Template) addField(f Field) {
	if idx, ok := t.index[f.Name]; ok {
		t.Fields[idx] = f
		return
	}
	t.index[f.Name] = len(t.Fields)
	t.Fields = append(t.Fields, f)
}
