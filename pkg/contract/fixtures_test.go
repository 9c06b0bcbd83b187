package contract

import (
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

// Counter is the capability used across the package tests.
type Counter interface {
	Add(n int) (int, error)
	Total() int
	Reset()
	Label(prefix string) string
	Sum(xs ...int) int
	Close() error
}

// counterForwarder has the shape contractgen emits.
type counterForwarder struct {
	d Dispatcher
}

func newCounterForwarder(d Dispatcher) Counter {
	return counterForwarder{d: d}
}

func (f counterForwarder) Add(n int) (int, error) {
	out := f.d.Invoke("Add", n)
	return Out[int](out, 0), Out[error](out, 1)
}

func (f counterForwarder) Total() int {
	out := f.d.Invoke("Total")
	return Out[int](out, 0)
}

func (f counterForwarder) Reset() {
	f.d.Invoke("Reset")
}

func (f counterForwarder) Label(prefix string) string {
	out := f.d.Invoke("Label", prefix)
	return Out[string](out, 0)
}

func (f counterForwarder) Sum(xs ...int) int {
	out := f.d.Invoke("Sum", xs)
	return Out[int](out, 0)
}

func (f counterForwarder) Close() error {
	out := f.d.Invoke("Close")
	return Out[error](out, 0)
}

var errAddRejected = errors.New("add rejected")

// counter is a delegate that records how often each operation ran.
type counter struct {
	total  int
	calls  map[string]int
	addErr error
	broken bool // Add and Reset misbehave
}

func newCounter() *counter {
	return &counter{calls: make(map[string]int)}
}

func (c *counter) Add(n int) (int, error) {
	c.calls["Add"]++
	if c.addErr != nil {
		return 0, c.addErr
	}
	c.total += n
	if c.broken {
		return c.total + 1, nil
	}
	return c.total, nil
}

func (c *counter) Total() int {
	c.calls["Total"]++
	return c.total
}

func (c *counter) Reset() {
	c.calls["Reset"]++
	if !c.broken {
		c.total = 0
	}
}

func (c *counter) Label(prefix string) string {
	c.calls["Label"]++
	return prefix + strconv.Itoa(c.total)
}

func (c *counter) Sum(xs ...int) int {
	c.calls["Sum"]++
	s := 0
	for _, x := range xs {
		s += x
	}
	return s
}

func (c *counter) Close() error {
	c.calls["Close"]++
	return nil
}

type counterClient struct {
	Base[Counter]
}

func (c *counterClient) Add(n int) {
	c.Contract("n must be positive", n > 0)
}

func (c *counterClient) Sum(xs ...int) {
	c.Contract("at least one term is required", len(xs) > 0)
}

func (c *counterClient) Reset() {
	c.Contract("total must be non-zero before reset", c.Target().Total() != 0)
}

type counterImpl struct {
	Base[Counter]
}

func (c *counterImpl) Add(result int, n int) {
	total := c.Target().Total()
	c.Contractf(result == total, "add must return the new total %d, got %d", total, result)
}

func (c *counterImpl) Total(result int) {
	c.Contract("total must be >= 0", result >= 0)
}

func (c *counterImpl) Reset(_ Void) {
	c.Contract("total must be zero after reset", c.Target().Total() == 0)
}

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry()
	require.NoError(t, RegisterForwarderIn(r, newCounterForwarder))
	require.NoError(t, RegisterIn[Counter, counterClient](r, ForClient))
	require.NoError(t, RegisterIn[Counter, counterImpl](r, ForImplement))
	return r
}
