package json

import (
	"github.com/rs/zerolog"
	"github.com/viant/structload/encoding/json/unmarshal"
	"github.com/viant/structload/result"
)

type (
	// Collector collects reported outcomes other than plain success
	Collector struct {
		Diagnostics []Diagnostic
	}

	logReporter struct {
		logger zerolog.Logger
	}

	reporters []unmarshal.Reporter
)

func (c *Collector) Report(message string, code result.Code, path string) result.Code {
	if code.Outcome != result.Success || code.Processing != result.Completed {
		c.Diagnostics = append(c.Diagnostics, Diagnostic{Path: path, Message: message, Code: code})
	}
	return code
}

// NewLogReporter creates reporter logging completed outcomes at debug, altered at warn and halted at error level
func NewLogReporter(logger zerolog.Logger) unmarshal.Reporter {
	return &logReporter{logger: logger}
}

func (r *logReporter) Report(message string, code result.Code, path string) result.Code {
	var event *zerolog.Event
	switch code.Processing {
	case result.Halted:
		event = r.logger.Error()
	case result.Altered:
		event = r.logger.Warn()
	default:
		event = r.logger.Debug()
	}
	event.Str("path", path).
		Str("task", code.Task.String()).
		Str("outcome", code.Outcome.String()).
		Msg(message)
	return code
}

func (r reporters) Report(message string, code result.Code, path string) result.Code {
	for _, reporter := range r {
		code = reporter.Report(message, code, path)
	}
	return code
}
