package jmt_test

import (
	"crypto/sha256"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eclipse-labs/ibc-program/jmt"
)

// kh hashes a raw path string the same way path.KeyHash does, without
// importing the path package, to keep this file focused on tree
// mechanics rather than the path policy table.
func kh(raw string) jmt.KeyHash {
	return jmt.KeyHash(sha256.Sum256([]byte(raw)))
}

func commit(t *testing.T, store *jmt.MemStore, version jmt.Version, changes map[jmt.KeyHash][]byte, preimages map[jmt.KeyHash][]byte) [32]byte {
	t.Helper()
	tree := jmt.NewTree(store)
	batch, root, err := tree.PutValueSet(version, changes, preimages)
	require.NoError(t, err)
	require.NoError(t, store.WriteNodeBatch(batch))
	return root
}

func TestPutValueSetIsDeterministic(t *testing.T) {
	khA := kh("clients/07-tendermint-0/clientState")

	store1 := jmt.NewMemStore()
	root1 := commit(t, store1, 1, map[jmt.KeyHash][]byte{khA: []byte("hello")}, map[jmt.KeyHash][]byte{khA: []byte("clients/07-tendermint-0/clientState")})

	store2 := jmt.NewMemStore()
	root2 := commit(t, store2, 1, map[jmt.KeyHash][]byte{khA: []byte("hello")}, map[jmt.KeyHash][]byte{khA: []byte("clients/07-tendermint-0/clientState")})

	require.Equal(t, root1, root2)
}

func TestPutValueSetFinalRootIndependentOfInsertionOrder(t *testing.T) {
	khA, khB, khC := kh("a"), kh("b"), kh("c")

	allAtOnce := jmt.NewMemStore()
	rootAllAtOnce := commit(t, allAtOnce, 1,
		map[jmt.KeyHash][]byte{khA: []byte("1"), khB: []byte("2"), khC: []byte("3")},
		map[jmt.KeyHash][]byte{khA: []byte("a"), khB: []byte("b"), khC: []byte("c")},
	)

	oneAtATime := jmt.NewMemStore()
	commit(t, oneAtATime, 1, map[jmt.KeyHash][]byte{khC: []byte("3")}, map[jmt.KeyHash][]byte{khC: []byte("c")})
	commit(t, oneAtATime, 2, map[jmt.KeyHash][]byte{khA: []byte("1")}, map[jmt.KeyHash][]byte{khA: []byte("a")})
	commit(t, oneAtATime, 3, map[jmt.KeyHash][]byte{khB: []byte("2")}, map[jmt.KeyHash][]byte{khB: []byte("b")})
	rootOneAtATime, err := jmt.RootHash(oneAtATime, 3)
	require.NoError(t, err)

	require.Equal(t, rootAllAtOnce, rootOneAtATime)
}

func TestWriteNodeBatchRejectsNonMonotonicVersion(t *testing.T) {
	store := jmt.NewMemStore()
	khX := kh("x")
	commit(t, store, 5, map[jmt.KeyHash][]byte{khX: []byte("v")}, map[jmt.KeyHash][]byte{khX: []byte("x")})

	tree := jmt.NewTree(store)

	sameVersion, _, err := tree.PutValueSet(5, map[jmt.KeyHash][]byte{khX: []byte("v2")}, map[jmt.KeyHash][]byte{khX: []byte("x")})
	require.NoError(t, err)
	require.Error(t, store.WriteNodeBatch(sameVersion))

	earlierVersion, _, err := tree.PutValueSet(4, map[jmt.KeyHash][]byte{khX: []byte("v2")}, map[jmt.KeyHash][]byte{khX: []byte("x")})
	require.NoError(t, err)
	require.Error(t, store.WriteNodeBatch(earlierVersion))
}

func TestDeleteKeyRemovesLeafButKeepsHistory(t *testing.T) {
	store := jmt.NewMemStore()
	khDel := kh("deleteme")
	commit(t, store, 1, map[jmt.KeyHash][]byte{khDel: []byte("v")}, map[jmt.KeyHash][]byte{khDel: []byte("deleteme")})

	v, ok, err := store.GetValueOption(1, khDel)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)

	commit(t, store, 2, map[jmt.KeyHash][]byte{khDel: nil}, map[jmt.KeyHash][]byte{khDel: []byte("deleteme")})

	_, ok, err = store.GetValueOption(2, khDel)
	require.NoError(t, err)
	require.False(t, ok)

	v, ok, err = store.GetValueOption(1, khDel)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), v)
}

func TestDeleteLastKeyCollapsesRootToNull(t *testing.T) {
	store := jmt.NewMemStore()
	khOnly := kh("only")
	commit(t, store, 1, map[jmt.KeyHash][]byte{khOnly: []byte("v")}, map[jmt.KeyHash][]byte{khOnly: []byte("only")})
	root1, err := jmt.RootHash(store, 1)
	require.NoError(t, err)
	require.NotEqual(t, [32]byte{}, root1)

	commit(t, store, 2, map[jmt.KeyHash][]byte{khOnly: nil}, map[jmt.KeyHash][]byte{khOnly: []byte("only")})
	root2, err := jmt.RootHash(store, 2)
	require.NoError(t, err)
	require.Equal(t, [32]byte{}, root2)
}

func TestManyKeysShareInternalNodesAcrossVersions(t *testing.T) {
	store := jmt.NewMemStore()
	changes := make(map[jmt.KeyHash][]byte)
	preimages := make(map[jmt.KeyHash][]byte)
	for i := 0; i < 50; i++ {
		p := []byte{byte('k'), byte(i)}
		changes[kh(string(p))] = []byte{byte(i)}
		preimages[kh(string(p))] = p
	}
	commit(t, store, 1, changes, preimages)

	extra := kh("one-more")
	commit(t, store, 2, map[jmt.KeyHash][]byte{extra: []byte("x")}, map[jmt.KeyHash][]byte{extra: []byte("one-more")})

	root1, err := jmt.RootHash(store, 1)
	require.NoError(t, err)
	root2, err := jmt.RootHash(store, 2)
	require.NoError(t, err)
	require.NotEqual(t, root1, root2)

	for i := 0; i < 50; i++ {
		p := []byte{byte('k'), byte(i)}
		v, ok, err := store.GetValueOption(2, kh(string(p)))
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, []byte{byte(i)}, v)
	}
}
