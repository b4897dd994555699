package params

import (
	"math/big"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := OpenStore(filepath.Join(t.TempDir(), "groups.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStoreRoundTrip(t *testing.T) {
	store := openTestStore(t)

	group := Group{P: big.NewInt(23), G: big.NewInt(5)}
	require.NoError(t, store.Save(group))

	got, err := store.Load(group.P.BitLen())
	require.NoError(t, err)
	assert.Zero(t, got.P.Cmp(group.P))
	assert.Zero(t, got.G.Cmp(group.G))
}

func TestStoreMiss(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Load(DefaultBits)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestStoreReplacesSameSize(t *testing.T) {
	store := openTestStore(t)

	first := Group{P: big.NewInt(23), G: big.NewInt(5)}
	second := Group{P: big.NewInt(23), G: big.NewInt(7)}
	require.NoError(t, store.Save(first))
	require.NoError(t, store.Save(second))

	got, err := store.Load(first.P.BitLen())
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.G.Int64())
}

func TestStoreRejectsInvalidGroup(t *testing.T) {
	store := openTestStore(t)
	err := store.Save(Group{P: big.NewInt(24), G: big.NewInt(2)})
	require.Error(t, err)
}

func TestStorePersistsAcrossOpens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "groups.db")

	store, err := OpenStore(path)
	require.NoError(t, err)
	group := DefaultGroup()
	require.NoError(t, store.Save(group))
	require.NoError(t, store.Close())

	reopened, err := OpenStore(path)
	require.NoError(t, err)
	defer reopened.Close()

	got, err := reopened.Load(DefaultBits)
	require.NoError(t, err)
	assert.Zero(t, got.P.Cmp(group.P))
}
