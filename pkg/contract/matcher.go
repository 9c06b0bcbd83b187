package contract

import (
	"fmt"
	"reflect"
)

// signature describes one capability operation.
type signature struct {
	name     string
	params   []reflect.Type
	results  []reflect.Type // result values, trailing error excluded
	numOut   int
	errIndex int // index of the trailing error result, -1 if none
	variadic bool
}

func newSignature(op reflect.Method) signature {
	ft := op.Type
	s := signature{
		name:     op.Name,
		numOut:   ft.NumOut(),
		errIndex: -1,
		variadic: ft.IsVariadic(),
	}
	for i := 0; i < ft.NumIn(); i++ {
		s.params = append(s.params, ft.In(i))
	}
	n := ft.NumOut()
	if n > 0 && ft.Out(n-1) == errorType {
		s.errIndex = n - 1
		n--
	}
	for i := 0; i < n; i++ {
		s.results = append(s.results, ft.Out(i))
	}
	return s
}

// hookParams returns the parameter list a hook for this operation must have.
//
// ForClient: the operation's parameters.
// ForImplement: the result values (or Void) followed by the parameters.
func (s signature) hookParams(mode Mode) []reflect.Type {
	if mode == ForClient {
		return s.params
	}
	lead := s.results
	if len(lead) == 0 {
		lead = []reflect.Type{voidType}
	}
	params := make([]reflect.Type, 0, len(lead)+len(s.params))
	params = append(params, lead...)
	return append(params, s.params...)
}

// matchHook finds the hook for sig on the bound instance.
//
// A missing method means no hook. Methods promoted from Base are never hooks.
// A method with the operation's name but another signature is a configuration
// error: it cannot be skipped silently. So is a holder method that shadows a
// Base helper, since the operation could then never be hooked.
func matchHook(inst reflect.Value, sig signature, mode Mode, base reflect.Type) (reflect.Value, error) {
	m, ok := inst.Type().MethodByName(sig.name)
	if !ok {
		return reflect.Value{}, nil
	}
	hook := inst.Method(m.Index)

	if bm, ok := base.MethodByName(sig.name); ok {
		helper := reflect.New(base.Elem()).Method(bm.Index).Type()
		if hook.Type() == helper {
			return reflect.Value{}, nil
		}
		return reflect.Value{}, &ConfigError{
			Code:      ErrCodeHookCollision,
			Holder:    inst.Type().Elem().String(),
			Operation: sig.name,
			Message: fmt.Sprintf("%s hook %s shadows Base.%s %s; rename the operation or drop the hook",
				mode, sig.name, sig.name, helper),
		}
	}

	want := sig.hookParams(mode)
	if !hookFits(hook.Type(), want, sig.variadic) {
		return reflect.Value{}, &ConfigError{
			Code:      ErrCodeHookSignature,
			Holder:    inst.Type().Elem().String(),
			Operation: sig.name,
			Message: fmt.Sprintf("%s hook %s must be %s or return error, have %s",
				mode, sig.name, reflect.FuncOf(want, nil, sig.variadic), hook.Type()),
		}
	}
	return hook, nil
}

func hookFits(ht reflect.Type, want []reflect.Type, variadic bool) bool {
	if ht.NumIn() != len(want) || ht.IsVariadic() != variadic {
		return false
	}
	for i, w := range want {
		if ht.In(i) != w {
			return false
		}
	}
	switch ht.NumOut() {
	case 0:
		return true
	case 1:
		return ht.Out(0) == errorType
	}
	return false
}

// unmatchedMethods lists exported holder methods that are neither operations
// nor promoted from Base.
func unmatchedMethods(inst reflect.Value, ops map[string]signature, base reflect.Type) []string {
	var names []string
	t := inst.Type()
	for i := 0; i < t.NumMethod(); i++ {
		name := t.Method(i).Name
		if _, ok := ops[name]; ok {
			continue
		}
		if _, ok := base.MethodByName(name); ok {
			continue
		}
		names = append(names, name)
	}
	return names
}
