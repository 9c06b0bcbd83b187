package kvstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
)

// Fault is a misbehavior Faulty can inject.
type Fault string

const (
	// FaultNegativeSize makes Size report -1.
	FaultNegativeSize Fault = "negative_size"

	// FaultDropPuts makes Put succeed without storing anything.
	FaultDropPuts Fault = "drop_puts"

	// FaultCorruptReads makes Get return a value different from the stored one.
	FaultCorruptReads Fault = "corrupt_reads"

	// FaultKeepDeleted makes Delete succeed without removing anything.
	FaultKeepDeleted Fault = "keep_deleted"

	// FaultPutError makes Put fail with ErrInjected.
	FaultPutError Fault = "put_error"
)

// ErrInjected is the delegate error produced by FaultPutError.
var ErrInjected = errors.New("kvstore: injected failure")

var knownFaults = map[Fault]bool{
	FaultNegativeSize: true,
	FaultDropPuts:     true,
	FaultCorruptReads: true,
	FaultKeepDeleted:  true,
	FaultPutError:     true,
}

// Faults lists every fault name, sorted.
func Faults() []string {
	names := make([]string, 0, len(knownFaults))
	for f := range knownFaults {
		names = append(names, string(f))
	}
	sort.Strings(names)
	return names
}

// Faulty decorates a Storage with injected faults. Operations without an
// active fault go straight to the wrapped store.
type Faulty struct {
	Storage
	faults map[Fault]bool
}

// NewFaulty wraps s with the given faults.
func NewFaulty(s Storage, faults ...Fault) (*Faulty, error) {
	f := &Faulty{Storage: s, faults: make(map[Fault]bool, len(faults))}
	for _, fault := range faults {
		if !knownFaults[fault] {
			return nil, fmt.Errorf("unknown fault %q", fault)
		}
		f.faults[fault] = true
	}
	return f, nil
}

func (f *Faulty) Size(ctx context.Context) (int, error) {
	if f.faults[FaultNegativeSize] {
		return -1, nil
	}
	return f.Storage.Size(ctx)
}

func (f *Faulty) Put(ctx context.Context, name string, value []byte) error {
	switch {
	case f.faults[FaultPutError]:
		return ErrInjected
	case f.faults[FaultDropPuts]:
		return nil
	}
	return f.Storage.Put(ctx, name, value)
}

func (f *Faulty) Get(ctx context.Context, name string) ([]byte, error) {
	v, err := f.Storage.Get(ctx, name)
	if err != nil || !f.faults[FaultCorruptReads] {
		return v, err
	}
	return append(v, '~'), nil
}

func (f *Faulty) Delete(ctx context.Context, name string) error {
	if f.faults[FaultKeepDeleted] {
		return nil
	}
	return f.Storage.Delete(ctx, name)
}
