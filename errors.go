package gocas

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds. Every error returned by the engine wraps exactly one of these,
// so callers can classify failures with errors.Is.
var (
	// ErrDivisionByZero is returned when a value is divided by exact zero.
	ErrDivisionByZero = errors.New("division by zero")

	// ErrParse is the parent of every malformed-input error.
	ErrParse = errors.New("parse error")

	// ErrUnexpectedToken marks a token that cannot appear where it was found.
	ErrUnexpectedToken = fmt.Errorf("%w: unexpected token", ErrParse)

	// ErrParity marks an unmatched bracket.
	ErrParity = fmt.Errorf("%w: unmatched bracket", ErrParse)

	// ErrOperator marks an operator symbol missing from the operator table.
	ErrOperator = fmt.Errorf("%w: unknown operator", ErrParse)

	// ErrUndefined is returned for indeterminate forms such as 0^0.
	ErrUndefined = errors.New("undefined")

	// ErrOutOfFunctionDomain is returned when a function is applied outside
	// its real domain, e.g. log(0).
	ErrOutOfFunctionDomain = errors.New("argument outside function domain")

	// ErrMaximumIterations is returned when a numeric method does not
	// converge within Settings.MaxIterations.
	ErrMaximumIterations = errors.New("maximum iterations reached")

	// ErrTimeout is returned when a call exceeds Settings.Timeout.
	ErrTimeout = errors.New("timeout")

	// ErrInvalidVariableName is returned for identifiers that fail validation.
	ErrInvalidVariableName = errors.New("invalid variable name")

	// ErrDimension is returned when a call receives the wrong number of
	// arguments.
	ErrDimension = errors.New("dimension mismatch")

	// ErrOutOfRange is returned for arguments outside a supported range.
	ErrOutOfRange = errors.New("out of range")
)

// Error carries the context of a failed engine operation.
type Error struct {
	Op    string // operation that failed, e.g. "tokenize" or "integrate"
	Token string // offending token, if any
	Pos   int    // byte offset of Token in the source text
	Msg   string
	Err   error // one of the Err* kinds
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Token != "" {
		fmt.Fprintf(&b, " (token %q at position %d)", e.Token, e.Pos)
	}
	return b.String()
}

// Unwrap returns the error kind so errors.Is works on *Error values.
func (e *Error) Unwrap() error { return e.Err }

// bailout carries an engine error up the stack to the nearest public entry
// point. Only recoverTo may catch it.
type bailout struct{ err error }

func throw(err error) { panic(bailout{err: err}) }

func throwf(op string, kind error, format string, args ...any) {
	throw(&Error{Op: op, Msg: fmt.Sprintf(format, args...), Err: kind})
}

func throwAt(op string, kind error, tok string, pos int, msg string) {
	throw(&Error{Op: op, Token: tok, Pos: pos, Msg: msg, Err: kind})
}

// recoverTo must be deferred directly. It turns a bailout into *errp and
// re-panics anything else.
func recoverTo(errp *error) {
	if r := recover(); r != nil {
		b, ok := r.(bailout)
		if !ok {
			panic(r)
		}
		*errp = b.err
	}
}

// attempt runs fn and reports a thrown engine error instead of unwinding.
// Timeouts are rethrown: they always reach the outermost caller.
func attempt(fn func()) (err error) {
	defer func() {
		if err != nil && errors.Is(err, ErrTimeout) {
			throw(err)
		}
	}()
	defer recoverTo(&err)
	fn()
	return nil
}
