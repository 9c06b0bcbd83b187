package contract

import (
	"errors"
	"fmt"
)

// Error is a contract violation: a Contract assertion inside a hook evaluated
// to false. It is never produced by the delegate or by wrapping.
type Error struct {
	// Message is the violated predicate's description, verbatim.
	Message string

	// Capability is the interface type name, e.g. "kvstore.Storage".
	Capability string

	// Operation is the method whose hook failed.
	Operation string

	// Mode tells whether a precondition or a postcondition failed.
	Mode Mode
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Operation == "" {
		return "contract violated: " + e.Message
	}
	return fmt.Sprintf("%s violated: %s.%s: %s", e.Mode.condition(), e.Capability, e.Operation, e.Message)
}

// ConfigErrorCode categorizes configuration errors.
type ConfigErrorCode string

const (
	// ErrCodeHolderNotFound indicates no holder is registered for the capability and mode.
	ErrCodeHolderNotFound ConfigErrorCode = "HOLDER_NOT_FOUND"

	// ErrCodeInvalidHolder indicates the holder type does not embed Base[T].
	ErrCodeInvalidHolder ConfigErrorCode = "INVALID_HOLDER"

	// ErrCodeHookSignature indicates a hook whose name matches an operation
	// but whose parameters do not.
	ErrCodeHookSignature ConfigErrorCode = "HOOK_SIGNATURE"

	// ErrCodeHookCollision indicates a holder method that is named after an
	// operation and shadows a Base helper.
	ErrCodeHookCollision ConfigErrorCode = "HOOK_COLLISION"

	// ErrCodeUnmatchedHook indicates an exported holder method that matches
	// no operation (strict wraps only).
	ErrCodeUnmatchedHook ConfigErrorCode = "UNMATCHED_HOOK"

	// ErrCodeNoForwarder indicates no forwarder is registered for the capability.
	ErrCodeNoForwarder ConfigErrorCode = "NO_FORWARDER"

	// ErrCodeNotInterface indicates the capability type is not an interface.
	ErrCodeNotInterface ConfigErrorCode = "NOT_INTERFACE"

	// ErrCodeNilDelegate indicates a nil delegate was passed to a wrap.
	ErrCodeNilDelegate ConfigErrorCode = "NIL_DELEGATE"

	// ErrCodeDuplicate indicates a second registration for the same key.
	ErrCodeDuplicate ConfigErrorCode = "DUPLICATE"
)

// ConfigError is returned when a wrap or a registration cannot be set up.
// It is never returned from an operation call.
type ConfigError struct {
	Code ConfigErrorCode

	// Capability is the interface type name.
	Capability string

	// Holder is the holder identifier involved, if any.
	Holder string

	// Operation is set for hook-level errors.
	Operation string

	Message string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	switch {
	case e.Operation != "":
		return fmt.Sprintf("%s: %s (capability=%s, operation=%s)", e.Code, e.Message, e.Capability, e.Operation)
	case e.Capability != "":
		return fmt.Sprintf("%s: %s (capability=%s)", e.Code, e.Message, e.Capability)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// IsContractError returns true if err is or wraps a contract violation.
func IsContractError(err error) bool {
	var ce *Error
	return errors.As(err, &ce)
}

// IsConfigError returns true if err is or wraps a configuration error.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}

// HasConfigCode reports whether err is a ConfigError with the given code.
func HasConfigCode(err error, code ConfigErrorCode) bool {
	var ce *ConfigError
	if errors.As(err, &ce) {
		return ce.Code == code
	}
	return false
}

// Catch runs fn and returns the contract violation it panicked with, if any.
//
// Operations without a trailing error result report violations by panicking
// with *Error. Catch turns that panic back into an error. Any other panic is
// re-raised unchanged.
func Catch(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			ce, ok := r.(*Error)
			if !ok {
				panic(r)
			}
			err = ce
		}
	}()
	fn()
	return nil
}
