package proof_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eclipse-labs/ibc-program/jmt"
	"github.com/eclipse-labs/ibc-program/path"
	"github.com/eclipse-labs/ibc-program/proof"
)

func TestVerifyMembershipRoundTrip(t *testing.T) {
	store := jmt.NewMemStore()
	p := path.ConnectionPath{ConnectionID: "connection-0"}
	kh := path.KeyHash(p)
	value := []byte("connection-bytes")

	tree := jmt.NewTree(store)
	batch, _, err := tree.PutValueSet(1, map[jmt.KeyHash][]byte{kh: value}, map[jmt.KeyHash][]byte{kh: []byte(p.String())})
	require.NoError(t, err)
	require.NoError(t, store.WriteNodeBatch(batch))

	root, err := jmt.RootHash(store, 1)
	require.NoError(t, err)

	existence, _, err := jmt.ExistenceProof(store, 1, kh)
	require.NoError(t, err)

	mp := proof.ToMerkleProof(existence)
	require.True(t, proof.VerifyMembership(path.CommitmentPrefix, mp, root[:], p.String(), value))
	require.False(t, proof.VerifyMembership(path.CommitmentPrefix, mp, root[:], p.String(), []byte("wrong-value")))
}

func TestVerifyNonMembershipRoundTrip(t *testing.T) {
	store := jmt.NewMemStore()
	present := path.ConnectionPath{ConnectionID: "connection-0"}
	presentKH := path.KeyHash(present)

	tree := jmt.NewTree(store)
	batch, _, err := tree.PutValueSet(1, map[jmt.KeyHash][]byte{presentKH: []byte("v")}, map[jmt.KeyHash][]byte{presentKH: []byte(present.String())})
	require.NoError(t, err)
	require.NoError(t, store.WriteNodeBatch(batch))

	root, err := jmt.RootHash(store, 1)
	require.NoError(t, err)

	missing := path.ConnectionPath{ConnectionID: "connection-999"}
	missingKH := path.KeyHash(missing)

	nonExistence, err := jmt.NonExistenceProof(store, 1, missingKH, []byte(missing.String()))
	require.NoError(t, err)

	mp := proof.ToNonMembershipMerkleProof(nonExistence)
	require.True(t, proof.VerifyNonMembership(path.CommitmentPrefix, mp, root[:], missing.String()))
	require.False(t, proof.VerifyNonMembership(path.CommitmentPrefix, mp, root[:], present.String()))
}
