package collector

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
)

// InputConfig configures a single-line text prompt.
type InputConfig struct {
	Message string
	Help    string
	// Placeholder is shown as ghost text; an empty answer is reported as
	// empty, the caller decides what blank means.
	Placeholder string
}

// ChoiceConfig configures an editable single-select: the user may pick one of
// Options or type anything else.
type ChoiceConfig struct {
	Message string
	Help    string
	Options []string
	Initial string
}

// TextAreaConfig configures a multi-line text prompt.
type TextAreaConfig struct {
	Message     string
	Help        string
	Placeholder string
}

// PromptDriver abstracts the terminal so collection logic can be tested
// without one and callers can swap in another UI.
type PromptDriver interface {
	Input(ctx context.Context, cfg InputConfig) (string, error)
	Choice(ctx context.Context, cfg ChoiceConfig) (string, error)
	TextArea(ctx context.Context, cfg TextAreaConfig) (string, error)
	Info(ctx context.Context, msg string) error
}

type surveyDriver struct {
	stdio terminal.Stdio
	out   io.Writer
}

// NewSurveyDriver returns the default terminal driver.
func NewSurveyDriver() PromptDriver {
	return &surveyDriver{
		stdio: terminal.Stdio{In: os.Stdin, Out: os.Stderr, Err: os.Stderr},
		out:   os.Stderr,
	}
}

// NewSurveyDriverOn returns a terminal driver that prompts on tty instead of
// the process stdio.
func NewSurveyDriverOn(tty *os.File) PromptDriver {
	return &surveyDriver{
		stdio: terminal.Stdio{In: tty, Out: tty, Err: tty},
		out:   tty,
	}
}

func (d *surveyDriver) askOpts() []survey.AskOpt {
	return []survey.AskOpt{survey.WithStdio(d.stdio.In, d.stdio.Out, d.stdio.Err)}
}

func (d *surveyDriver) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Input{
		Message: withGhost(cfg.Message, cfg.Placeholder),
		Help:    cfg.Help,
	}
	if err := survey.AskOne(prompt, &out, d.askOpts()...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (d *surveyDriver) Choice(ctx context.Context, cfg ChoiceConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	options := append([]string(nil), cfg.Options...)
	prompt := &survey.Input{
		Message: cfg.Message,
		Default: cfg.Initial,
		Help:    choiceHelp(cfg.Help, options),
		Suggest: func(toComplete string) []string {
			return suggest(options, toComplete)
		},
	}
	if err := survey.AskOne(prompt, &out, d.askOpts()...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (d *surveyDriver) TextArea(ctx context.Context, cfg TextAreaConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var out string
	prompt := &survey.Multiline{
		Message: withGhost(cfg.Message, cfg.Placeholder),
		Help:    cfg.Help,
	}
	if err := survey.AskOne(prompt, &out, d.askOpts()...); err != nil {
		return "", translateSurveyErr(err)
	}
	return out, nil
}

func (d *surveyDriver) Info(ctx context.Context, msg string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := fmt.Fprintln(d.out, msg)
	return err
}

func translateSurveyErr(err error) error {
	if errors.Is(err, terminal.InterruptErr) || errors.Is(err, io.EOF) {
		return ErrCanceled
	}
	return err
}

// withGhost appends the placeholder the way survey shows defaults, without
// pre-filling the answer.
func withGhost(message, placeholder string) string {
	if strings.TrimSpace(placeholder) == "" {
		return message
	}
	return fmt.Sprintf("%s [%s]", message, placeholder)
}

func choiceHelp(help string, options []string) string {
	list := "choices: " + strings.Join(options, " | ") + " (tab to complete, any text allowed)"
	if help == "" {
		return list
	}
	return help + "\n" + list
}

func suggest(options []string, prefix string) []string {
	if prefix == "" {
		return append([]string(nil), options...)
	}
	lower := strings.ToLower(prefix)
	var out []string
	for _, option := range options {
		if strings.HasPrefix(strings.ToLower(option), lower) {
			out = append(out, option)
		}
	}
	return out
}
