package kvstore

import (
	"bytes"
	"context"
	"errors"

	"github.com/roach88/dbc/pkg/contract"
)

// ErrNotFound is returned by Get for a name that is not stored.
var ErrNotFound = errors.New("kvstore: not found")

// Storage maps names to values.
//
// A nil value is "no value" and is never stored; an empty non-nil value is.
type Storage interface {
	Size(ctx context.Context) (int, error)
	Put(ctx context.Context, name string, value []byte) error
	Contains(ctx context.Context, name string) (bool, error)
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
	DoNothing(ctx context.Context)
}

// StorageContractForClient holds the preconditions callers must meet.
type StorageContractForClient struct {
	contract.Base[Storage]
}

func (c *StorageContractForClient) Put(ctx context.Context, name string, value []byte) {
	c.Contract("name must not be empty", name != "")
	c.Contract("value must not be null", value != nil)
}

func (c *StorageContractForClient) Get(ctx context.Context, name string) error {
	c.Contract("name must not be empty", name != "")
	ok, err := c.Target().Contains(ctx, name)
	if err != nil {
		return err
	}
	c.Contract("contains must be true", ok)
	return nil
}

func (c *StorageContractForClient) Delete(ctx context.Context, name string) {
	c.Contract("name must not be empty", name != "")
}

// StorageContractForImplement holds the postconditions a store must meet.
type StorageContractForImplement struct {
	contract.Base[Storage]
}

func (c *StorageContractForImplement) Size(result int, ctx context.Context) {
	c.Contract("must return a value >= 0", result >= 0)
}

func (c *StorageContractForImplement) Put(_ contract.Void, ctx context.Context, name string, value []byte) error {
	ok, err := c.Target().Contains(ctx, name)
	if err != nil {
		return err
	}
	c.Contract("put key must satisfy contains", ok)

	got, err := c.Target().Get(ctx, name)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return err
	}
	c.Contract("put value must be returned by get", err == nil && bytes.Equal(got, value))
	return nil
}

func (c *StorageContractForImplement) Get(result []byte, ctx context.Context, name string) {
	c.Contract("get must not return a null value", result != nil)
}

func (c *StorageContractForImplement) Delete(_ contract.Void, ctx context.Context, name string) error {
	ok, err := c.Target().Contains(ctx, name)
	if err != nil {
		return err
	}
	c.Contract("deleted key must not satisfy contains", !ok)
	return nil
}
