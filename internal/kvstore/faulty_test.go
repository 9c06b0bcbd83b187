package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbc/internal/testutil"
	"github.com/roach88/dbc/pkg/contract"
)

func TestNewFaulty_UnknownFault(t *testing.T) {
	_, err := NewFaulty(NewMemory(), Fault("melt"))
	assert.EqualError(t, err, `unknown fault "melt"`)
}

func TestFaults(t *testing.T) {
	assert.Equal(t, []string{"corrupt_reads", "drop_puts", "keep_deleted", "negative_size", "put_error"}, Faults())
}

func TestFaultyUnderImplementationContract(t *testing.T) {
	testCases := []struct {
		fault Fault
		call  func(ctx context.Context, s Storage) error
		want  string
	}{
		{
			FaultNegativeSize,
			func(ctx context.Context, s Storage) error { _, err := s.Size(ctx); return err },
			"must return a value >= 0",
		},
		{
			FaultDropPuts,
			func(ctx context.Context, s Storage) error { return s.Put(ctx, hoge, []byte(fuga)) },
			"put key must satisfy contains",
		},
		{
			FaultCorruptReads,
			func(ctx context.Context, s Storage) error { return s.Put(ctx, hoge, []byte(fuga)) },
			"put value must be returned by get",
		},
		{
			FaultKeepDeleted,
			func(ctx context.Context, s Storage) error { return s.Delete(ctx, "seed") },
			"deleted key must not satisfy contains",
		},
	}

	for _, tc := range testCases {
		t.Run(string(tc.fault), func(t *testing.T) {
			ctx := context.Background()
			mem := NewMemory()
			require.NoError(t, mem.Put(ctx, "seed", []byte("x")))

			faulty, err := NewFaulty(mem, tc.fault)
			require.NoError(t, err)
			s, err := contract.WrapForImplementation[Storage](faulty)
			require.NoError(t, err)

			err = tc.call(ctx, s)
			require.Error(t, err)
			assert.True(t, contract.IsContractError(err))
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestFaulty_PutErrorIsDelegateError(t *testing.T) {
	faulty, err := NewFaulty(NewMemory(), FaultPutError)
	require.NoError(t, err)
	s, err := contract.WrapForImplementation[Storage](faulty)
	require.NoError(t, err)

	err = s.Put(context.Background(), hoge, []byte(fuga))
	assert.Same(t, ErrInjected, err)
}

func TestCounting(t *testing.T) {
	ctx := context.Background()
	log := testutil.NewCallLog()
	c := NewCounting(NewMemory(), log)

	s, err := contract.WrapForClient[Storage](c)
	require.NoError(t, err)

	require.Error(t, s.Put(ctx, hoge, nil))
	assert.Zero(t, log.Count("Put"), "precondition failure must not reach the delegate")

	require.NoError(t, s.Put(ctx, hoge, []byte(fuga)))
	_, err = s.Get(ctx, hoge)
	require.NoError(t, err)
	s.DoNothing(ctx)

	assert.Equal(t, []string{"Put", "Contains", "Get", "DoNothing"}, log.Calls())
}
