package contract

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"strings"

	"github.com/google/uuid"
)

// Option configures a single wrap.
type Option func(*wrapConfig)

type wrapConfig struct {
	registry *Registry
	holder   any
	logger   *slog.Logger
	strict   bool
}

// WithRegistry resolves holders and forwarders in r instead of Default().
func WithRegistry(r *Registry) Option {
	return func(c *wrapConfig) { c.registry = r }
}

// WithHolder supplies the contract instance directly instead of resolving
// the registered holder type. h must be a non-nil pointer to a struct
// embedding Base[T]; it is bound to the wrapped delegate and must not be
// shared with another wrap.
func WithHolder(h any) Option {
	return func(c *wrapConfig) { c.holder = h }
}

// WithLogger sets the logger for wrap and violation events.
func WithLogger(l *slog.Logger) Option {
	return func(c *wrapConfig) { c.logger = l }
}

// Strict rejects exported holder methods that match no operation.
func Strict() Option {
	return func(c *wrapConfig) { c.strict = true }
}

// WrapForClient returns a value of capability T that checks the ForClient
// holder's preconditions before each call reaches delegate.
func WrapForClient[T any](delegate T, opts ...Option) (T, error) {
	return wrap(delegate, ForClient, opts)
}

// WrapForImplementation returns a value of capability T that checks the
// ForImplement holder's postconditions after each successful delegate call.
func WrapForImplementation[T any](delegate T, opts ...Option) (T, error) {
	return wrap(delegate, ForImplement, opts)
}

// MustWrapForClient is like WrapForClient but panics on configuration errors.
func MustWrapForClient[T any](delegate T, opts ...Option) T {
	w, err := WrapForClient(delegate, opts...)
	if err != nil {
		panic(err)
	}
	return w
}

// MustWrapForImplementation is like WrapForImplementation but panics on
// configuration errors.
func MustWrapForImplementation[T any](delegate T, opts ...Option) T {
	w, err := WrapForImplementation(delegate, opts...)
	if err != nil {
		panic(err)
	}
	return w
}

func wrap[T any](delegate T, mode Mode, opts []Option) (T, error) {
	var zero T

	cfg := wrapConfig{registry: defaultRegistry, logger: slog.Default()}
	for _, o := range opts {
		o(&cfg)
	}
	if cfg.registry == nil {
		cfg.registry = defaultRegistry
	}
	if cfg.logger == nil {
		cfg.logger = slog.Default()
	}

	capability := reflect.TypeFor[T]()
	if err := checkCapability(capability); err != nil {
		return zero, err
	}
	if any(delegate) == nil {
		return zero, &ConfigError{
			Code:       ErrCodeNilDelegate,
			Capability: capability.String(),
			Message:    "delegate is nil",
		}
	}

	var inst reflect.Value
	if cfg.holder != nil {
		var err error
		if inst, err = adoptInstance(cfg.holder, mode, delegate); err != nil {
			return zero, err
		}
	} else {
		holder, err := resolveHolder[T](cfg.registry, mode)
		if err != nil {
			return zero, err
		}
		inst = newInstance(holder, delegate)
	}

	d, err := buildDispatcher(capability, delegate, inst, mode, cfg.strict)
	if err != nil {
		return zero, err
	}
	d.logger = cfg.logger

	fv, ok := cfg.registry.forwarder(capability)
	if !ok {
		return zero, &ConfigError{
			Code:       ErrCodeNoForwarder,
			Capability: capability.String(),
			Message:    fmt.Sprintf("no forwarder registered for %s; run contractgen", capability),
		}
	}
	wrapped := fv.Call([]reflect.Value{reflect.ValueOf(Dispatcher(d))})[0].Interface().(T)

	d.logger.Debug("contract wrapped",
		"capability", d.capability,
		"mode", mode.String(),
		"holder", inst.Type().Elem().String(),
		"hooks", hookNames(d),
		"wrap_id", d.id,
	)
	return wrapped, nil
}

// buildDispatcher builds the dispatch table: one entry per operation with the
// bound delegate method and the matched hook, if any.
func buildDispatcher[T any](capability reflect.Type, delegate T, inst reflect.Value, mode Mode, strict bool) (*dispatcher, error) {
	base := reflect.PointerTo(reflect.TypeFor[Base[T]]())
	dv := reflect.ValueOf(&delegate).Elem()

	d := &dispatcher{
		id:         uuid.Must(uuid.NewV7()).String(),
		capability: capability.String(),
		mode:       mode,
		entries:    make(map[string]*entry, capability.NumMethod()),
	}
	sigs := make(map[string]signature, capability.NumMethod())

	for i := 0; i < capability.NumMethod(); i++ {
		sig := newSignature(capability.Method(i))
		sigs[sig.name] = sig

		hook, err := matchHook(inst, sig, mode, base)
		if err != nil {
			if ce, ok := err.(*ConfigError); ok {
				ce.Capability = d.capability
			}
			return nil, err
		}
		d.entries[sig.name] = &entry{sig: sig, call: dv.Method(i), hook: hook}
	}

	if strict {
		if extra := unmatchedMethods(inst, sigs, base); len(extra) > 0 {
			return nil, &ConfigError{
				Code:       ErrCodeUnmatchedHook,
				Capability: d.capability,
				Holder:     inst.Type().Elem().String(),
				Message:    fmt.Sprintf("methods match no operation: %s", strings.Join(extra, ", ")),
			}
		}
	}
	return d, nil
}

func hookNames(d *dispatcher) []string {
	var names []string
	for name, e := range d.entries {
		if e.hook.IsValid() {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
