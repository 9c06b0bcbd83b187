package contract

import (
	"fmt"
	"reflect"
	"sort"
	"sync"
)

// Registry associates capability types with their contract holders and
// forwarders. It is safe for concurrent use.
type Registry struct {
	mu         sync.RWMutex
	holders    map[holderKey]reflect.Type
	forwarders map[reflect.Type]reflect.Value
}

type holderKey struct {
	capability reflect.Type
	mode       Mode
}

var (
	defaultRegistry = NewRegistry()
	dispatcherType  = reflect.TypeFor[Dispatcher]()
)

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		holders:    make(map[holderKey]reflect.Type),
		forwarders: make(map[reflect.Type]reflect.Value),
	}
}

// Default returns the registry used by wraps without WithRegistry.
// Generated code registers into it from init functions.
func Default() *Registry {
	return defaultRegistry
}

// RegisterHolder associates holder with capability for mode.
// A pointer holder type is normalized to its element type. The holder's shape
// is verified when a wrap resolves it.
func (r *Registry) RegisterHolder(capability, holder reflect.Type, mode Mode) error {
	if err := checkCapability(capability); err != nil {
		return err
	}
	if !mode.valid() {
		return &ConfigError{Code: ErrCodeInvalidHolder, Capability: capability.String(),
			Message: fmt.Sprintf("unknown mode %v", mode)}
	}
	if holder == nil {
		return &ConfigError{Code: ErrCodeInvalidHolder, Capability: capability.String(),
			Holder: holderName(capability, mode), Message: "holder type is nil"}
	}
	if holder.Kind() == reflect.Pointer {
		holder = holder.Elem()
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := holderKey{capability: capability, mode: mode}
	if existing, ok := r.holders[key]; ok {
		return &ConfigError{
			Code:       ErrCodeDuplicate,
			Capability: capability.String(),
			Holder:     holder.String(),
			Message:    fmt.Sprintf("%s holder already registered: %s", mode, existing),
		}
	}
	r.holders[key] = holder
	return nil
}

// RegisterForwarder registers the forwarder constructor for capability.
// fn must have the type func(Dispatcher) T where T is the capability.
func (r *Registry) RegisterForwarder(capability reflect.Type, fn any) error {
	if err := checkCapability(capability); err != nil {
		return err
	}
	fv := reflect.ValueOf(fn)
	if !isForwarderFunc(fv, capability) {
		return &ConfigError{
			Code:       ErrCodeNoForwarder,
			Capability: capability.String(),
			Message:    fmt.Sprintf("forwarder must be func(contract.Dispatcher) %s, got %T", capability, fn),
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.forwarders[capability]; ok {
		return &ConfigError{
			Code:       ErrCodeDuplicate,
			Capability: capability.String(),
			Message:    "forwarder already registered",
		}
	}
	r.forwarders[capability] = fv
	return nil
}

// Holder returns the holder type registered for capability and mode.
func (r *Registry) Holder(capability reflect.Type, mode Mode) (reflect.Type, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.holders[holderKey{capability: capability, mode: mode}]
	return h, ok
}

// Capabilities returns every capability with a forwarder or a holder,
// sorted by type name.
func (r *Registry) Capabilities() []reflect.Type {
	r.mu.RLock()
	seen := make(map[reflect.Type]bool)
	for k := range r.holders {
		seen[k.capability] = true
	}
	for c := range r.forwarders {
		seen[c] = true
	}
	r.mu.RUnlock()

	caps := make([]reflect.Type, 0, len(seen))
	for c := range seen {
		caps = append(caps, c)
	}
	sort.Slice(caps, func(i, j int) bool { return caps[i].String() < caps[j].String() })
	return caps
}

func (r *Registry) forwarder(capability reflect.Type) (reflect.Value, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	fv, ok := r.forwarders[capability]
	return fv, ok
}

// --- default registry accessors ---

// Register associates holder type H with capability T in the default registry.
// It panics on error and is meant for init functions.
func Register[T, H any](mode Mode) {
	if err := RegisterIn[T, H](defaultRegistry, mode); err != nil {
		panic(err)
	}
}

// RegisterIn associates holder type H with capability T in r.
func RegisterIn[T, H any](r *Registry, mode Mode) error {
	return r.RegisterHolder(reflect.TypeFor[T](), reflect.TypeFor[H](), mode)
}

// RegisterForwarder registers the forwarder constructor for T in the default
// registry. It panics on error and is meant for init functions.
func RegisterForwarder[T any](fn func(Dispatcher) T) {
	if err := RegisterForwarderIn(defaultRegistry, fn); err != nil {
		panic(err)
	}
}

// RegisterForwarderIn registers the forwarder constructor for T in r.
func RegisterForwarderIn[T any](r *Registry, fn func(Dispatcher) T) error {
	return r.RegisterForwarder(reflect.TypeFor[T](), fn)
}

func checkCapability(capability reflect.Type) error {
	if capability == nil {
		return &ConfigError{Code: ErrCodeNotInterface, Message: "capability type is nil"}
	}
	if capability.Kind() != reflect.Interface {
		return &ConfigError{
			Code:       ErrCodeNotInterface,
			Capability: capability.String(),
			Message:    "capability must be an interface type",
		}
	}
	return nil
}

func isForwarderFunc(fv reflect.Value, capability reflect.Type) bool {
	if !fv.IsValid() || fv.Kind() != reflect.Func || fv.IsNil() {
		return false
	}
	ft := fv.Type()
	return ft.NumIn() == 1 && ft.In(0) == dispatcherType &&
		ft.NumOut() == 1 && ft.Out(0) == capability
}

// holderName is the conventional holder identifier, e.g. StorageContractForClient.
func holderName(capability reflect.Type, mode Mode) string {
	return capability.Name() + "Contract" + mode.String()
}
