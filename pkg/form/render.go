package form

import (
	"regexp"
	"strings"
)

// DefaultNewline joins rendered lines.
const DefaultNewline = "\n"

// RenderOption configures Render.
type RenderOption func(*renderConfig)

type renderConfig struct {
	newline string
}

// WithNewline overrides the separator used between output lines, e.g. "\r\n"
// for targets that expect CRLF.
func WithNewline(sep string) RenderOption {
	return func(cfg *renderConfig) {
		cfg.newline = sep
	}
}

type rule struct {
	pattern *regexp.Regexp
	value   string
}

// Render rewrites every original line of t with the resolved values. Values
// missing from fieldValues fall back to the field defaults. A declaration
// sharing its name with a field takes the field's value so `$name$` usages
// follow what the user entered.
func Render(t *Template, fieldValues Values, options ...RenderOption) string {
	cfg := renderConfig{newline: DefaultNewline}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	if t == nil {
		return ""
	}

	fields := t.Defaults()
	for name, value := range fieldValues {
		if _, ok := t.index[name]; ok {
			fields[name] = value
		}
	}

	decls := t.Declarations.clone()
	for _, name := range decls.names {
		if v, ok := fields[name]; ok {
			decls.values[name] = v
		}
	}

	full := make([]rule, 0, decls.Len())
	short := make([]rule, 0, decls.Len())
	for _, d := range decls.List() {
		quoted := regexp.QuoteMeta(d.Name)
		full = append(full, rule{regexp.MustCompile(`\$` + quoted + `:[^$]+\$`), d.Value})
		short = append(short, rule{regexp.MustCompile(`\$` + quoted + `\$`), d.Value})
	}
	placeholders := make([]rule, 0, len(t.Fields))
	for _, f := range t.Fields {
		quoted := regexp.QuoteMeta(f.Name)
		placeholders = append(placeholders, rule{
			regexp.MustCompile(`\[\[\s*` + quoted + `\s*(?:=[^\]]*)?\]\]`),
			fields[f.Name],
		})
	}

	out := make([]string, 0, len(t.Lines))
	for _, line := range t.Lines {
		line = apply(line, full)
		line = apply(line, short)
		line = apply(line, placeholders)
		out = append(out, line)
	}
	return strings.Join(out, cfg.newline)
}

func apply(line string, rules []rule) string {
	for _, r := range rules {
		line = r.pattern.ReplaceAllLiteralString(line, r.value)
	}
	return line
}
