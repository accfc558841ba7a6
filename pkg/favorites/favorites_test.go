package favorites

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const weth = "0xC02aaA39b223FE8D0A0e5C4F27eAD9083C756Cc2"

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func stores(t *testing.T) map[string]Store {
	sqlite, err := OpenSQLite(filepath.Join(t.TempDir(), "favorites.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestToggleIsSelfInverse(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			before, err := s.IsFavorited(weth)
			require.NoError(t, err)
			assert.False(t, before)

			fav, err := s.Toggle(weth)
			require.NoError(t, err)
			assert.True(t, fav)

			fav, err = s.Toggle(weth)
			require.NoError(t, err)
			assert.False(t, fav)

			after, err := s.IsFavorited(weth)
			require.NoError(t, err)
			assert.Equal(t, before, after)
		})
	}
}

func TestAddressCaseInsensitive(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Toggle(weth)
			require.NoError(t, err)

			ok, err := s.IsFavorited("0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2")
			require.NoError(t, err)
			assert.True(t, ok)

			ids, err := s.List()
			require.NoError(t, err)
			assert.Equal(t, []string{"0xc02aaa39b223fe8d0a0e5c4f27ead9083c756cc2"}, ids)
		})
	}
}

func TestClosedStore(t *testing.T) {
	for name, s := range stores(t) {
		t.Run(name, func(t *testing.T) {
			require.NoError(t, s.Close())
			_, err := s.Toggle(weth)
			assert.ErrorIs(t, err, ErrClosed)
			_, err = s.IsFavorited(weth)
			assert.ErrorIs(t, err, ErrClosed)
		})
	}
}

func TestSQLitePersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "favorites.db")
	s, err := OpenSQLite(path)
	require.NoError(t, err)
	_, err = s.Toggle(weth)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = OpenSQLite(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	ok, err := s.IsFavorited(weth)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAdapter(t *testing.T) {
	store := NewMemoryStore()
	a := NewAdapter(store, quietLogger())

	assert.False(t, a.IsFavorited(weth))
	require.NoError(t, a.Toggle(weth))
	assert.True(t, a.IsFavorited(weth))
	require.NoError(t, a.Toggle(weth))
	assert.False(t, a.IsFavorited(weth))

	_ = store.Close()
	assert.False(t, a.IsFavorited(weth))
	assert.ErrorIs(t, a.Toggle(weth), ErrClosed)
}
