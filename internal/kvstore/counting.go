package kvstore

import (
	"context"

	"github.com/roach88/dbc/internal/testutil"
)

// Counting records every call in a CallLog before passing it on.
type Counting struct {
	next Storage
	log  *testutil.CallLog
}

// NewCounting wraps next. Calls are recorded in log.
func NewCounting(next Storage, log *testutil.CallLog) *Counting {
	return &Counting{next: next, log: log}
}

func (c *Counting) Size(ctx context.Context) (int, error) {
	c.log.Record("Size")
	return c.next.Size(ctx)
}

func (c *Counting) Put(ctx context.Context, name string, value []byte) error {
	c.log.Record("Put")
	return c.next.Put(ctx, name, value)
}

func (c *Counting) Contains(ctx context.Context, name string) (bool, error) {
	c.log.Record("Contains")
	return c.next.Contains(ctx, name)
}

func (c *Counting) Get(ctx context.Context, name string) ([]byte, error) {
	c.log.Record("Get")
	return c.next.Get(ctx, name)
}

func (c *Counting) Delete(ctx context.Context, name string) error {
	c.log.Record("Delete")
	return c.next.Delete(ctx, name)
}

func (c *Counting) DoNothing(ctx context.Context) {
	c.log.Record("DoNothing")
	c.next.DoNothing(ctx)
}
