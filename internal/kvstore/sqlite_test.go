package kvstore

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dbc/pkg/contract"
)

func openTestSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "kv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite(t *testing.T) {
	storageBehaviour(t, openTestSQLite(t))
}

func TestSQLite_InMemory(t *testing.T) {
	s, err := OpenSQLite(":memory:")
	require.NoError(t, err)
	defer s.Close()

	storageBehaviour(t, s)
}

func TestSQLite_Pragmas(t *testing.T) {
	s := openTestSQLite(t)

	testCases := []struct {
		pragma string
		want   string
	}{
		{"journal_mode", "wal"},
		{"synchronous", "1"},
		{"busy_timeout", "5000"},
		{"foreign_keys", "1"},
		{"user_version", "1"},
	}
	for _, tc := range testCases {
		t.Run(tc.pragma, func(t *testing.T) {
			got, err := s.pragma(tc.pragma)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestSQLite_ReopenKeepsData(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "kv.db")

	s1, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, s1.Put(ctx, hoge, []byte(fuga)))
	require.NoError(t, s1.Close())

	for i := 0; i < 2; i++ {
		s2, err := OpenSQLite(path)
		require.NoError(t, err)

		snap, err := s2.Snapshot(ctx)
		require.NoError(t, err)
		assert.Equal(t, map[string]string{hoge: fuga}, snap)
		require.NoError(t, s2.Close())
	}
}

func TestSQLite_CloseTwice(t *testing.T) {
	s := &SQLite{}
	assert.NoError(t, s.Close())
}

func TestSQLite_UnderBothContracts(t *testing.T) {
	ctx := context.Background()
	db := openTestSQLite(t)

	impl, err := contract.WrapForImplementation[Storage](db)
	require.NoError(t, err)
	s, err := contract.WrapForClient(impl)
	require.NoError(t, err)

	require.NoError(t, s.Put(ctx, hoge, []byte(fuga)))
	v, err := s.Get(ctx, hoge)
	require.NoError(t, err)
	assert.Equal(t, []byte(fuga), v)

	_, err = s.Get(ctx, "missing")
	assert.ErrorContains(t, err, "contains must be true")

	require.NoError(t, s.Delete(ctx, hoge))
	n, err := s.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}
