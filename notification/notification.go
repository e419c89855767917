package notification

import (
	"github.com/bitrise-io/go-utils/v2/log"
)

// Variant selects how an event is presented to the user.
type Variant string

const (
	// VariantDefault is used for successful and informational events.
	VariantDefault Variant = "default"
	// VariantDestructive is used for errors and rejections.
	VariantDestructive Variant = "destructive"
)

// Event is a structured user-facing notification.
type Event struct {
	Title       string
	Description string
	Variant     Variant
}

// Sink receives events for user display. Implementations are provided by the
// embedding application (toast system, TUI, plain logger).
type Sink interface {
	Notify(event Event)
}

type logSink struct {
	logger log.Logger
}

// NewLogSink returns a Sink that renders events through the provided logger.
// This is the default sink for CLI usage.
func NewLogSink(logger log.Logger) Sink {
	return logSink{logger: logger}
}

func (s logSink) Notify(event Event) {
	var loggerFn func(format string, v ...interface{})
	switch event.Variant {
	case VariantDestructive:
		loggerFn = s.logger.Errorf
	default:
		loggerFn = s.logger.Donef
	}

	if event.Description == "" {
		loggerFn(event.Title)
		return
	}
	loggerFn("%s: %s", event.Title, event.Description)
}
