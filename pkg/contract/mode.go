package contract

import (
	"fmt"
	"reflect"
)

// Mode selects which side of a call a holder guards.
type Mode int

const (
	// ForClient hooks check preconditions before the delegate runs.
	ForClient Mode = iota + 1

	// ForImplement hooks check postconditions after the delegate returns.
	ForImplement
)

// String returns the holder suffix used for the mode.
func (m Mode) String() string {
	switch m {
	case ForClient:
		return "ForClient"
	case ForImplement:
		return "ForImplement"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

func (m Mode) valid() bool {
	return m == ForClient || m == ForImplement
}

func (m Mode) condition() string {
	switch m {
	case ForClient:
		return "precondition"
	case ForImplement:
		return "postcondition"
	}
	return "contract"
}

// Void is the leading hook parameter of ForImplement hooks whose operation
// returns no value, or only an error.
type Void struct{}

var (
	voidType  = reflect.TypeFor[Void]()
	errorType = reflect.TypeFor[error]()
)
