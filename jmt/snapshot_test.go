package jmt_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eclipse-labs/ibc-program/jmt"
)

func TestSnapshotRoundTripPreservesRootAndReads(t *testing.T) {
	store := jmt.NewMemStore()
	khA := kh("clients/07-tendermint-0/clientState")
	khB := kh("connections/connection-0")
	commit(t, store, 1, map[jmt.KeyHash][]byte{
		khA: []byte("state-a"),
		khB: []byte("conn-b"),
	}, map[jmt.KeyHash][]byte{
		khA: []byte("clients/07-tendermint-0/clientState"),
		khB: []byte("connections/connection-0"),
	})
	commit(t, store, 2, map[jmt.KeyHash][]byte{khA: []byte("state-a-v2")}, map[jmt.KeyHash][]byte{khA: []byte("clients/07-tendermint-0/clientState")})

	wantRoot, err := jmt.RootHash(store, 2)
	require.NoError(t, err)

	restored := jmt.RestoreMemStore(store.Snapshot())

	gotRoot, err := jmt.RootHash(restored, 2)
	require.NoError(t, err)
	require.Equal(t, wantRoot, gotRoot)

	v, ok, err := restored.GetValueOption(2, khA)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("state-a-v2"), v)

	vOld, ok, err := restored.GetValueOption(1, khA)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("state-a"), vOld)

	latest, ok := restored.LatestVersion()
	require.True(t, ok)
	require.Equal(t, jmt.Version(2), latest)

	existence, writeVersion, err := jmt.ExistenceProof(restored, 2, khB)
	require.NoError(t, err)
	require.Equal(t, jmt.Version(1), writeVersion)
	require.Equal(t, []byte("connections/connection-0"), existence.Key)
}
