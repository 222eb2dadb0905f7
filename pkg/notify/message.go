package notify

import (
	"fmt"
	"strings"

	"github.com/flosch/pongo2/v6"
)

// Default reload notification templates.
const (
	DefaultReloadTitle   = "Snippets reloaded"
	DefaultReloadMessage = "{{ count }} snippet{{ count|pluralize }} loaded from {{ path }}"
)

// Templates renders notification text from pongo2 templates.
type Templates struct {
	title *pongo2.Template
	body  *pongo2.Template
}

// NewTemplates compiles the title and body templates. Empty strings fall
// back to the defaults.
func NewTemplates(title, body string) (*Templates, error) {
	if strings.TrimSpace(title) == "" {
		title = DefaultReloadTitle
	}
	if strings.TrimSpace(body) == "" {
		body = DefaultReloadMessage
	}
	titleTpl, err := pongo2.FromString(title)
	if err != nil {
		return nil, fmt.Errorf("notify: compile title template: %w", err)
	}
	bodyTpl, err := pongo2.FromString(body)
	if err != nil {
		return nil, fmt.Errorf("notify: compile message template: %w", err)
	}
	return &Templates{title: titleTpl, body: bodyTpl}, nil
}

// Render builds a message from data.
func (t *Templates) Render(data map[string]any) (Message, error) {
	ctx := pongo2.Context{}
	for k, v := range data {
		ctx[k] = v
	}
	title, err := t.title.Execute(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("notify: render title: %w", err)
	}
	body, err := t.body.Execute(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("notify: render message: %w", err)
	}
	return Message{Title: strings.TrimSpace(title), Body: strings.TrimSpace(body)}, nil
}
