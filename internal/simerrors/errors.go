// Package simerrors defines the simulator's error taxonomy. Each error kind
// is a distinct type so callers can branch on it with errors.As.
package simerrors

import "github.com/pkg/errors"

// ConfigError indicates a configuration parameter fails validation at
// startup. It is always fatal.
type ConfigError struct {
	msg string
}

func (e *ConfigError) Error() string { return e.msg }

// NewConfigError constructs a ConfigError with a formatted message.
func NewConfigError(format string, args ...interface{}) error {
	return errors.WithStack(&ConfigError{msg: errors.Errorf(format, args...).Error()})
}

// TransportError wraps a failed read on the byte stream. The CMP read loop
// does not continue past it: Run returns it to its caller.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *TransportError) Unwrap() error { return e.Err }

// NewTransportError wraps err with the operation that failed.
func NewTransportError(op string, err error) error {
	return errors.WithStack(&TransportError{Op: op, Err: err})
}

// ProtocolError indicates an unknown command ID or a handler failure. It
// carries the command name for structured logging.
type ProtocolError struct {
	Command string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Err == nil {
		return "command " + e.Command + ": unsupported or malformed"
	}
	return "command " + e.Command + ": " + e.Err.Error()
}
func (e *ProtocolError) Unwrap() error { return e.Err }

// NewProtocolError reports a failure processing the named command. err may
// be nil when the command itself (not an underlying operation) is the
// problem, e.g. an unrecognized or unsupported command ID.
func NewProtocolError(command string, err error) error {
	return errors.WithStack(&ProtocolError{Command: command, Err: err})
}

// InvariantViolation indicates a caller attempted to push the system into a
// state the domain model forbids (e.g. a nonzero target current).
type InvariantViolation struct {
	msg string
}

func (e *InvariantViolation) Error() string { return e.msg }

// NewInvariantViolation constructs an InvariantViolation with a formatted message.
func NewInvariantViolation(format string, args ...interface{}) error {
	return errors.WithStack(&InvariantViolation{msg: errors.Errorf(format, args...).Error()})
}

// HeartbeatExpired names the watchdog-expiry condition in the taxonomy. The
// heartbeat watchdog does not construct it: on expiry it logs and calls
// os.Exit(1) directly, so this error is never returned to a caller.
type HeartbeatExpired struct{}

func (e *HeartbeatExpired) Error() string { return "heartbeat not received within timeout" }
