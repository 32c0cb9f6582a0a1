package errcode

// Code is a stable error identifier shared by the engine, the shell and the
// settings loader. It is a string newtype, comparable, allocation-free, and
// implements error.
type Code string

func (c Code) Error() string { return string(c) }

// Canonical codes (short, stable).
const (
	OK             Code = "ok"
	Unsupported    Code = "unsupported"
	InvalidParams  Code = "invalid_params"
	InvalidChannel Code = "invalid_channel"
	Conflict       Code = "conflict"

	BadValue   Code = "bad_value"   // settings outside allowed bounds
	NotFound   Code = "not_found"   // settings source missing
	OutputInit Code = "output_init" // PWM output failed to configure
	QueueFull  Code = "queue_full"
	NotStalled Code = "not_stalled"

	UnknownCommand Code = "unknown_command"

	Error Code = "error" // generic fallback
)

// E keeps context and a cause alongside a Code.
type E struct {
	C   Code
	Op  string
	Msg string
	Err error
}

func (e *E) Error() string {
	s := string(e.C)
	if e.Op != "" {
		s = e.Op + ": " + s
	}
	if e.Msg != "" {
		s += ": " + e.Msg
	}
	if e.Err != nil {
		s += ": " + e.Err.Error()
	}
	return s
}
func (e *E) Unwrap() error { return e.Err }
func (e *E) Code() Code    { return e.C }

// Wrap builds an *E, returning nil when err is nil.
func Wrap(c Code, op string, err error) error {
	if err == nil {
		return nil
	}
	return &E{C: c, Op: op, Err: err}
}

// Of extracts a Code from an error, defaulting to Error.
func Of(err error) Code {
	if err == nil {
		return OK
	}
	if c, ok := err.(Code); ok {
		return c
	}
	type coder interface{ Code() Code }
	if x, ok := err.(coder); ok {
		return x.Code()
	}
	type wrapper interface{ Unwrap() error }
	if w, ok := err.(wrapper); ok {
		if inner := w.Unwrap(); inner != nil {
			return Of(inner)
		}
	}
	return Error
}

// Is reports whether err carries code c.
func Is(err error, c Code) bool { return Of(err) == c }
