package contract

import (
	"fmt"
	"log/slog"
	"reflect"
)

// Dispatcher is the call-time side of a wrap. Forwarders implement the
// capability by packing arguments and calling Invoke.
type Dispatcher interface {
	// Invoke runs operation op with args and returns its results, one element
	// per result of the operation. Variadic arguments are passed as one slice.
	Invoke(op string, args ...any) []any

	// ID identifies the wrap in logs.
	ID() string
}

// entry is one row of the dispatch table.
type entry struct {
	sig  signature
	call reflect.Value // delegate method
	hook reflect.Value // zero when the operation has no hook
}

// dispatcher is built once per wrap and never mutated afterwards.
type dispatcher struct {
	id         string
	capability string
	mode       Mode
	entries    map[string]*entry
	logger     *slog.Logger
}

func (d *dispatcher) ID() string {
	return d.id
}

// Invoke implements Dispatcher.
func (d *dispatcher) Invoke(op string, args ...any) []any {
	e, ok := d.entries[op]
	if !ok {
		panic(fmt.Sprintf("contract: %s has no operation %q", d.capability, op))
	}
	in := e.arguments(args, d.capability)

	switch d.mode {
	case ForClient:
		if e.hook.IsValid() {
			if err := d.check(e, in); err != nil {
				return e.fail(err)
			}
		}
		return export(e.invoke(e.call, in))

	case ForImplement:
		out := e.invoke(e.call, in)
		if !e.hook.IsValid() || e.delegateFailed(out) {
			return export(out)
		}
		if err := d.check(e, append(e.resultValues(out), in...)); err != nil {
			return e.fail(err)
		}
		return export(out)
	}

	panic(fmt.Sprintf("contract: invalid mode %v", d.mode))
}

// check runs the hook. A panic carrying *Error becomes the returned error;
// any other panic is re-raised unchanged. An error returned by the hook is
// passed on as is.
//
// Only violations that are not yet labelled get this wrap's operation. A
// violation raised by a nested wrap the hook called into keeps its own.
func (d *dispatcher) check(e *entry, in []reflect.Value) (err error) {
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		ce, ok := r.(*Error)
		if !ok {
			panic(r)
		}
		if ce.Operation != "" {
			err = ce
			return
		}
		ce = d.label(ce, e.sig.name)
		d.logger.Debug("contract violated",
			"capability", d.capability,
			"operation", e.sig.name,
			"mode", d.mode.String(),
			"message", ce.Message,
			"wrap_id", d.id,
		)
		err = ce
	}()

	out := e.invoke(e.hook, in)
	if len(out) == 1 && !out[0].IsNil() {
		herr := out[0].Interface().(error)
		if ce, ok := herr.(*Error); ok && ce.Operation == "" {
			return d.label(ce, e.sig.name)
		}
		return herr
	}
	return nil
}

// label returns a copy of ce attributed to op. Hooks may return shared
// *Error values, so ce itself is never modified.
func (d *dispatcher) label(ce *Error, op string) *Error {
	c := *ce
	c.Capability = d.capability
	c.Operation = op
	c.Mode = d.mode
	return &c
}

func (e *entry) invoke(fn reflect.Value, in []reflect.Value) []reflect.Value {
	if e.sig.variadic {
		return fn.CallSlice(in)
	}
	return fn.Call(in)
}

// arguments converts forwarder arguments to reflect values. Untyped nil
// becomes the zero value of the parameter type.
func (e *entry) arguments(args []any, capability string) []reflect.Value {
	if len(args) != len(e.sig.params) {
		panic(fmt.Sprintf("contract: %s.%s called with %d arguments, want %d",
			capability, e.sig.name, len(args), len(e.sig.params)))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		if a == nil {
			in[i] = reflect.Zero(e.sig.params[i])
			continue
		}
		in[i] = reflect.ValueOf(a)
	}
	return in
}

func (e *entry) delegateFailed(out []reflect.Value) bool {
	return e.sig.errIndex >= 0 && !out[e.sig.errIndex].IsNil()
}

// resultValues is the leading part of a ForImplement hook call.
func (e *entry) resultValues(out []reflect.Value) []reflect.Value {
	if len(e.sig.results) == 0 {
		return []reflect.Value{reflect.ValueOf(Void{})}
	}
	vals := make([]reflect.Value, len(e.sig.results))
	copy(vals, out[:len(e.sig.results)])
	return vals
}

// fail reports err through the operation's error result, or panics with it
// when the operation has none.
func (e *entry) fail(err error) []any {
	if e.sig.errIndex < 0 {
		panic(err)
	}
	out := make([]any, e.sig.numOut)
	out[e.sig.errIndex] = err
	return out
}

func export(out []reflect.Value) []any {
	res := make([]any, len(out))
	for i, v := range out {
		res[i] = v.Interface()
	}
	return res
}

// Out returns result i of an Invoke call as T. Forwarders use it to unpack
// results; a nil element yields the zero value of T.
func Out[T any](out []any, i int) T {
	v, _ := out[i].(T)
	return v
}
