package notify

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// Alerter shows an error the user must acknowledge. Alert blocks until the
// message has been shown.
type Alerter interface {
	Alert(ctx context.Context, title, body string) error
}

// AlerterFunc adapts a function to Alerter.
type AlerterFunc func(ctx context.Context, title, body string) error

// Alert implements Alerter.
func (fn AlerterFunc) Alert(ctx context.Context, title, body string) error {
	return fn(ctx, title, body)
}

// SinkAlerter shows alerts synchronously through a sink.
func SinkAlerter(sink Sink) Alerter {
	return AlerterFunc(func(ctx context.Context, title, body string) error {
		if sink == nil {
			return nil
		}
		return sink.Show(ctx, Message{Title: title, Body: body})
	})
}

// Console prints alerts with a pterm error prefix.
func Console(w io.Writer) Alerter {
	return AlerterFunc(func(_ context.Context, title, body string) error {
		_, err := fmt.Fprint(w, pterm.Error.Sprintln(title+"\n"+body))
		return err
	})
}

// Alerters fans one alert out to several alerters, collecting every error.
func Alerters(alerters ...Alerter) Alerter {
	return AlerterFunc(func(ctx context.Context, title, body string) error {
		var errs []error
		for _, a := range alerters {
			if a == nil {
				continue
			}
			if err := a.Alert(ctx, title, body); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
