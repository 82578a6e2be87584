// Package logging defines the logger used throughout syncauth.
//
// Components accept a Logger through a `WithLogger` option and default to a
// no-op logger, so the library is silent unless the application opts in:
//
//	cache := persona.NewCache(persona.WithLogger(logging.NewDevLogger()))
package logging

import (
	"reflect"

	"github.com/dpup/syncauth/errors"
)

const stackSize = 5

// Logger provides an abstract logging interface designed around uber-go/zap's
// sugared logger, but is intended to provide interop with other libraries.
type Logger interface {
	Debug(args ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
	Debugf(msg string, args ...interface{})
	Info(args ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Infof(msg string, args ...interface{})
	Warn(args ...interface{})
	Warnw(msg string, keysAndValues ...interface{})
	Warnf(msg string, args ...interface{})
	Error(args ...interface{})
	Errorw(msg string, keysAndValues ...interface{})
	Errorf(msg string, args ...interface{})

	// Named creates a child logger with the given name.
	Named(name string) Logger

	// With creates a child logger and attaches structured context to it.
	With(field string, value interface{}) Logger
}

// ErrorFields returns structured key/value pairs describing err, suitable for
// passing to the `w` logging methods:
//
//	logger.Warnw("persona: registration failed", logging.ErrorFields(err)...)
func ErrorFields(err error) []interface{} {
	if err == nil {
		return nil
	}
	fields := []interface{}{
		"error", err.Error(),
		"error.type", reflect.TypeOf(err).String(),
		"error.code", errors.Code(err).String(),
	}

	// Add a minimalist stack trace to the log.
	var e *errors.Error
	if errors.As(err, &e) {
		fields = append(fields,
			"error.stack_trace", e.MinimalStack(0, stackSize),
			"error.original_type", e.TypeName(),
		)
	}
	return fields
}
