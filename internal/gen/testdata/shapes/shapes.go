package shapes

import (
	"context"
	"io"

	"github.com/roach88/dbc/pkg/contract"
	yamlv3 "gopkg.in/yaml.v3"
)

type Named interface {
	Name() string
}

// Store covers the parameter and result shapes forwarders must handle.
type Store interface {
	Named
	Load(ctx context.Context, key string) (value []byte, ok bool, err error)
	Append(key string, values ...int) int
	Copy(f, out io.Writer, _ int)
	Encode(node *yamlv3.Node) error
	Ping()
}

type StoreContractForClient struct {
	contract.Base[Store]
}

func (c *StoreContractForClient) Append(key string, values ...int) {
	c.Contract("key must not be empty", key != "")
}

type StoreContractForImplement struct {
	contract.Base[Store]
}

func (c *StoreContractForImplement) Name(result string) {
	c.Contract("name must not be empty", result != "")
}

type Plain interface {
	Do()
}

type Number interface {
	~int | ~float64
}

type Box[T any] interface {
	Get() T
}
