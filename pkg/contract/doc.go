// Package contract wraps a Go interface value with design-by-contract checks.
//
// A capability is an interface type. A contract holder is a struct that embeds
// Base[T] and declares hooks: methods named after the capability's operations.
// Two independent modes exist:
//
//   - ForClient hooks are preconditions. They receive the operation's arguments
//     and run before the delegate is called. A violation stops the call.
//   - ForImplement hooks are postconditions. They receive the operation's result
//     values (or Void when there are none) followed by the arguments, and run
//     after the delegate returned without error.
//
// # Declaring contracts
//
//	type Storage interface {
//	    Size(ctx context.Context) (int, error)
//	    Put(ctx context.Context, name string, value []byte) error
//	}
//
//	type StorageContractForClient struct {
//	    contract.Base[Storage]
//	}
//
//	func (c *StorageContractForClient) Put(ctx context.Context, name string, value []byte) {
//	    c.Contract("value must not be null", value != nil)
//	}
//
//	type StorageContractForImplement struct {
//	    contract.Base[Storage]
//	}
//
//	func (c *StorageContractForImplement) Size(result int, ctx context.Context) {
//	    c.Contract("must return a value >= 0", result >= 0)
//	}
//
// # Wrapping
//
// Go cannot build a method set at run time, so every capability needs a
// forwarder: a struct implementing the interface by calling Dispatcher.Invoke.
// The contractgen command generates forwarders and registers them, together
// with the holders found next to the interface, from an init function.
//
//	checked, err := contract.WrapForClient[Storage](store)
//	if err != nil {
//	    return err // *ConfigError: missing holder, bad hook signature, ...
//	}
//	err = checked.Put(ctx, "hoge", nil) // *Error: precondition violated
//
// # Errors
//
// Three kinds of failure never mix:
//
//   - *ConfigError is returned only by wrapping and registration.
//   - *Error is produced only by a failed Contract assertion inside a hook. It is
//     returned through the operation's trailing error result, or raised as a
//     panic when the operation has no error result (see Catch).
//   - Errors and panics of the delegate pass through untouched.
package contract
