package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// storageBehaviour checks the plain Storage semantics every delegate shares.
func storageBehaviour(t *testing.T, s Storage) {
	t.Helper()
	ctx := context.Background()

	n, err := s.Size(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	ok, err := s.Contains(ctx, hoge)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = s.Get(ctx, hoge)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Put(ctx, hoge, []byte(fuga)))
	require.NoError(t, s.Put(ctx, "empty", []byte{}))
	require.NoError(t, s.Put(ctx, "ignored", nil))

	n, err = s.Size(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	v, err := s.Get(ctx, hoge)
	require.NoError(t, err)
	assert.Equal(t, []byte(fuga), v)

	v, err = s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.Empty(t, v)

	require.NoError(t, s.Put(ctx, hoge, []byte("piyo")))
	v, err = s.Get(ctx, hoge)
	require.NoError(t, err)
	assert.Equal(t, []byte("piyo"), v)

	require.NoError(t, s.Delete(ctx, hoge))
	require.NoError(t, s.Delete(ctx, "never-stored"))
	ok, err = s.Contains(ctx, hoge)
	require.NoError(t, err)
	assert.False(t, ok)

	s.DoNothing(ctx)
}

func TestMemory(t *testing.T) {
	storageBehaviour(t, NewMemory())
}

func TestMemory_CopiesValues(t *testing.T) {
	ctx := context.Background()
	m := NewMemory()

	in := []byte(fuga)
	require.NoError(t, m.Put(ctx, hoge, in))
	in[0] = 'X'

	out, err := m.Get(ctx, hoge)
	require.NoError(t, err)
	assert.Equal(t, []byte(fuga), out)

	out[0] = 'Y'
	assert.Equal(t, map[string]string{hoge: fuga}, m.Snapshot())
}
