package contract

import (
	"fmt"
	"reflect"
)

// resolveHolder finds the holder type registered for T in mode and verifies
// that it embeds Base[T]. Resolution happens on every wrap.
func resolveHolder[T any](r *Registry, mode Mode) (reflect.Type, error) {
	capability := reflect.TypeFor[T]()
	name := holderName(capability, mode)

	holder, ok := r.Holder(capability, mode)
	if !ok {
		return nil, &ConfigError{
			Code:       ErrCodeHolderNotFound,
			Capability: capability.String(),
			Holder:     name,
			Message:    fmt.Sprintf("holder %s is not defined for %s", name, capability),
		}
	}
	if err := checkHolder[T](holder, mode); err != nil {
		return nil, err
	}
	return holder, nil
}

// newInstance creates the contract instance for one wrap and binds delegate.
func newInstance[T any](holder reflect.Type, delegate T) reflect.Value {
	inst := reflect.New(holder)
	inst.Interface().(binder[T]).bind(delegate)
	return inst
}

// adoptInstance validates a caller supplied holder value and binds delegate.
func adoptInstance[T any](h any, mode Mode, delegate T) (reflect.Value, error) {
	capability := reflect.TypeFor[T]()
	inst := reflect.ValueOf(h)
	if !inst.IsValid() || inst.Kind() != reflect.Pointer || inst.IsNil() {
		return reflect.Value{}, &ConfigError{
			Code:       ErrCodeInvalidHolder,
			Capability: capability.String(),
			Holder:     fmt.Sprintf("%T", h),
			Message:    "holder must be a non-nil pointer to a struct embedding contract.Base",
		}
	}
	if err := checkHolder[T](inst.Type().Elem(), mode); err != nil {
		return reflect.Value{}, err
	}
	inst.Interface().(binder[T]).bind(delegate)
	return inst, nil
}

// checkHolder verifies that holder is a struct embedding Base[T] by value.
func checkHolder[T any](holder reflect.Type, mode Mode) error {
	capability := reflect.TypeFor[T]()
	base := reflect.TypeFor[Base[T]]()

	if holder.Kind() == reflect.Struct {
		f, ok := holder.FieldByName("Base")
		if ok && f.Anonymous && f.Type == base &&
			reflect.PointerTo(holder).Implements(reflect.TypeFor[binder[T]]()) {
			return nil
		}
	}
	return &ConfigError{
		Code:       ErrCodeInvalidHolder,
		Capability: capability.String(),
		Holder:     holder.String(),
		Message: fmt.Sprintf("%s holder %s (declared for %s) does not embed %s",
			mode, holder, capability, base),
	}
}
