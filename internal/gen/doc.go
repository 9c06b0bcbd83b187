// Package gen implements contractgen: it reads the interfaces of one Go
// package and writes the forwarder types that let pkg/contract wrap them.
//
// A forwarder implements a capability by packing each call into
// Dispatcher.Invoke. Go cannot build such a type at run time, so it is
// generated next to the capability, together with an init function that
// registers the forwarder and any contract holders found by name:
//
//	type Storage interface { ... }
//	type StorageContractForClient struct{ contract.Base[Storage] }
//	type StorageContractForImplement struct{ contract.Base[Storage] }
package gen
