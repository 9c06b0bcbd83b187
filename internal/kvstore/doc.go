// Package kvstore is a small key/value capability used to exercise the
// contract layer end to end.
//
// Storage carries both contract holders next to its declaration:
//
//   - StorageContractForClient checks arguments before they reach a store.
//   - StorageContractForImplement checks what a store reports after a call.
//
// Two delegates implement Storage: Memory (map guarded by a mutex) and
// SQLite (go-sqlite3, WAL mode). Faulty and Counting decorate any Storage
// to inject misbehavior and record calls.
//
// contract_gen.go is produced by contractgen from the repository's
// contractgen.yaml.
//
//go:generate go run github.com/roach88/dbc/cmd/contractgen generate ../../contractgen.yaml
package kvstore
