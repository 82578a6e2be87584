// Package errors is a trimmed fork of `github.com/go-errors/errors` that
// attaches gRPC status codes and stack traces to errors returned by syncauth.
//
// Packages declare sentinel errors with NewC and mark them at the point of
// failure, so that callers can match with Is while still getting a stack trace
// that points at the failing call:
//
//	var ErrMalformedAssertion = errors.NewC("malformed assertion", codes.InvalidArgument)
//
//	func parse(raw string) error {
//	    return errors.Mark(ErrMalformedAssertion, 0).Append("missing '~' separator")
//	}
//
// Callers can then do:
//
//	if errors.Is(err, persona.ErrMalformedAssertion) {
//	    fmt.Println(err.(*errors.Error).ErrorStack())
//	}
package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"reflect"
	"runtime"
	"strings"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// The maximum number of stackframes on any error.
var MaxStackDepth = 50

// Error is an error with an attached stacktrace. It can be used
// wherever the builtin error interface is expected.
type Error struct {
	Err    error
	stack  []uintptr
	frames []StackFrame
	prefix string
	suffix string

	// gRPC status code associated with the error.
	code codes.Code
}

// New makes an Error from the given value. If that value is already an
// error then it will be used directly, if not, it will be passed to
// fmt.Errorf("%v"). The stacktrace will point to the line of code that
// called New.
func New(e interface{}) *Error {
	stack := make([]uintptr, MaxStackDepth)
	length := runtime.Callers(2, stack[:])
	return &Error{
		Err:   asError(e),
		stack: stack[:length],
		code:  codes.Unknown,
	}
}

// NewC makes an Error with a status code defined.
func NewC(e interface{}, code codes.Code) *Error {
	stack := make([]uintptr, MaxStackDepth)
	length := runtime.Callers(2, stack[:])
	return &Error{
		Err:   asError(e),
		stack: stack[:length],
		code:  code,
	}
}

func asError(e interface{}) error {
	if err, ok := e.(error); ok {
		return err
	}
	return fmt.Errorf("%v", e)
}

// Wrap makes an Error from the given value. If that value is already an
// *Error it is returned unchanged. The skip parameter indicates how far up
// the stack to start the stacktrace. 0 is from the current call, 1 from its
// caller, etc.
func Wrap(e interface{}, skip int) *Error {
	if e == nil {
		return nil
	}

	var err error

	switch e := e.(type) {
	case *Error:
		return e
	case error:
		err = e
	default:
		err = fmt.Errorf("%v", e)
	}

	stack := make([]uintptr, MaxStackDepth)
	length := runtime.Callers(2+skip, stack[:])
	return &Error{
		Err:   err,
		stack: stack[:length],
		code:  codes.Unknown,
	}
}

// WrapPrefix makes an Error from the given value and adds a prefix to the
// message returned by Error().
func WrapPrefix(e interface{}, prefix string, skip int) *Error {
	if e == nil {
		return nil
	}

	err := Wrap(e, 1+skip)

	if err.prefix != "" {
		prefix = fmt.Sprintf("%s: %s", prefix, err.prefix)
	}

	return &Error{
		Err:    err.Err,
		stack:  err.stack,
		code:   err.code,
		prefix: prefix,
		suffix: err.suffix,
	}
}

// Mark takes an error and sets the stack trace from the point it was called,
// overriding any previous stack trace that may have been set. Use it to
// return sentinel errors with a useful trace.
func Mark(e interface{}, skip int) *Error {
	if e == nil {
		return nil
	}
	if err, ok := e.(*Error); ok {
		stack := make([]uintptr, MaxStackDepth)
		length := runtime.Callers(2+skip, stack[:])
		return &Error{
			Err:    err.Err,
			stack:  stack[:length],
			code:   err.code,
			prefix: err.prefix,
			suffix: err.suffix,
		}
	}
	return Wrap(e, 1+skip)
}

// WithCode takes an error and adds a gRPC status code to it. If the error is
// not already an `Error`, it will be wrapped in one.
func WithCode(err error, code codes.Code) *Error {
	if err == nil {
		return nil
	}
	return Wrap(err, 1).WithCode(code)
}

// Errorf creates a new error with the given message. You can use it
// as a drop-in replacement for fmt.Errorf() to provide descriptive
// errors in return values.
func Errorf(format string, a ...interface{}) *Error {
	return Wrap(fmt.Errorf(format, a...), 1)
}

// Error returns the underlying error's message, along with any prefix or
// appended detail.
func (err *Error) Error() string {
	msg := err.Err.Error()
	if err.prefix != "" {
		msg = fmt.Sprintf("%s: %s", err.prefix, msg)
	}
	if err.suffix != "" {
		msg = fmt.Sprintf("%s: %s", msg, err.suffix)
	}
	return msg
}

// Append adds detail to the end of the error message. The error continues to
// match the original with Is.
func (err *Error) Append(detail string) *Error {
	if err.suffix != "" {
		detail = err.suffix + ": " + detail
	}
	err.suffix = detail
	return err
}

// Stack returns the callstack formatted the same way that go does
// in runtime/debug.Stack()
func (err *Error) Stack() []byte {
	buf := bytes.Buffer{}

	for _, frame := range err.StackFrames() {
		buf.WriteString(frame.String())
	}

	return buf.Bytes()
}

// Callers returns the raw program counters of the stack.
func (err *Error) Callers() []uintptr {
	return err.stack
}

// ErrorStack returns a string that contains both the
// error message and the callstack.
func (err *Error) ErrorStack() string {
	return err.TypeName() + " " + err.Error() + "\n" + string(err.Stack())
}

// StackFrames returns an array of frames containing information about the
// stack.
func (err *Error) StackFrames() []StackFrame {
	if err.frames == nil {
		// CallersFrames expands inlined calls, which FuncForPC would hide.
		err.frames = make([]StackFrame, 0, len(err.stack))
		frames := runtime.CallersFrames(err.stack)
		for {
			frame, more := frames.Next()
			if frame.PC != 0 {
				err.frames = append(err.frames, newStackFrameFromRuntime(frame))
			}
			if !more {
				break
			}
		}
	}

	return err.frames
}

// TypeName returns the type this error. e.g. *errors.stringError.
func (err *Error) TypeName() string {
	return reflect.TypeOf(err.Err).String()
}

// Unwrap the error (implements api for As function).
func (err *Error) Unwrap() error {
	return err.Err
}

// Is reports whether target is an *Error wrapping the same underlying error.
// This lets marked sentinels match with the standard library's errors.Is.
func (err *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return stderrors.Is(err.Err, t.Err)
}

// Code returns the gRPC status code associated with the error.
func (err *Error) Code() codes.Code {
	return err.code
}

// WithCode sets the gRPC status code associated with the error.
func (err *Error) WithCode(code codes.Code) *Error {
	err.code = code
	return err
}

// GRPCStatus returns a gRPC status object for the error.
func (err *Error) GRPCStatus() *status.Status {
	return status.New(err.Code(), err.Error())
}

// Is detects whether the error is equal to a given error. Errors
// are considered equal by this function if they are matched by errors.Is
// or if their contained errors are matched through errors.Is.
func Is(e error, original error) bool {
	if stderrors.Is(e, original) {
		return true
	}

	if e, ok := e.(*Error); ok {
		return Is(e.Err, original)
	}

	if original, ok := original.(*Error); ok {
		return Is(e, original.Err)
	}

	return false
}

// As finds the first error in err's tree that matches target. See the
// standard library's errors.As.
func As(err error, target any) bool {
	return stderrors.As(err, target)
}

// Unwrap returns the result of calling the Unwrap method on err, if any.
func Unwrap(err error) error {
	return stderrors.Unwrap(err)
}

// Code returns a gRPC status code for an error. If the error is nil, it returns
// codes.OK. If any error in the chain exposes a `Code()` method, it is
// returned. Otherwise codes.Unknown is returned.
func Code(err error) codes.Code {
	if err == nil {
		return codes.OK
	}
	var ce codedError
	if stderrors.As(err, &ce) {
		return ce.Code()
	}
	return codes.Unknown
}

type codedError interface {
	Code() codes.Code
}

// MinimalStack returns a compact, single-line trace of at most length frames
// starting skip frames in. Useful for structured logs.
func (err *Error) MinimalStack(skip, length int) string {
	frames := err.StackFrames()
	if skip >= len(frames) {
		return ""
	}
	frames = frames[skip:]
	if len(frames) > length {
		frames = frames[:length]
	}
	parts := make([]string, 0, len(frames))
	for _, f := range frames {
		parts = append(parts, fmt.Sprintf("%s:%d", f.Name, f.LineNumber))
	}
	return strings.Join(parts, " < ")
}
