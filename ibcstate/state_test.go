package ibcstate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eclipse-labs/ibc-program/ibcstate"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/jmt"
	"github.com/eclipse-labs/ibc-program/path"
)

func TestSetThenGetBeforeCommitSeesPendingWrite(t *testing.T) {
	store := jmt.NewMemStore()
	s := ibcstate.New(store, 0, nil)

	p := path.ConnectionPath{ConnectionID: "connection-0"}
	err := ibcstate.Set(s, p, ibctypes.ConnectionEnd{ClientID: "07-tendermint-0"})
	require.NoError(t, err)

	got, ok, err := ibcstate.Get[ibctypes.ConnectionEnd](s, p)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "07-tendermint-0", got.ClientID)
}

func TestUncommittedWritesAreInvisibleToANewOverlay(t *testing.T) {
	store := jmt.NewMemStore()
	s1 := ibcstate.New(store, 0, nil)

	p := path.ConnectionPath{ConnectionID: "connection-0"}
	require.NoError(t, ibcstate.Set(s1, p, ibctypes.ConnectionEnd{ClientID: "07-tendermint-0"}))

	// A second overlay opened on the same store, before s1 commits, must
	// not see s1's buffered write.
	s2 := ibcstate.New(store, 0, nil)
	_, ok, err := ibcstate.Get[ibctypes.ConnectionEnd](s2, p)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestCommitPersistsWritesForLaterOverlays(t *testing.T) {
	store := jmt.NewMemStore()
	s1 := ibcstate.New(store, 0, nil)

	p := path.ConnectionPath{ConnectionID: "connection-0"}
	require.NoError(t, ibcstate.Set(s1, p, ibctypes.ConnectionEnd{ClientID: "07-tendermint-0"}))
	root1, err := s1.Commit()
	require.NoError(t, err)
	require.NotEqual(t, [32]byte{}, root1)

	s2 := ibcstate.New(store, 1, nil)
	got, ok, err := ibcstate.Get[ibctypes.ConnectionEnd](s2, p)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "07-tendermint-0", got.ClientID)
}

func TestCommitAtHostSlotZeroYieldsVersionZero(t *testing.T) {
	store := jmt.NewMemStore()
	s := ibcstate.New(store, 0, nil)
	require.NoError(t, ibcstate.Set(s, path.StateInitializedPath{}, struct{}{}))
	_, err := s.Commit()
	require.NoError(t, err)

	latest, ok := store.LatestVersion()
	require.True(t, ok)
	require.Equal(t, jmt.Version(0), latest)
}

func TestCommitWithNoPendingWritesDoesNotAdvanceVersion(t *testing.T) {
	store := jmt.NewMemStore()
	s := ibcstate.New(store, 1, nil)
	require.NoError(t, ibcstate.Set(s, path.ConnectionPath{ConnectionID: "connection-0"}, ibctypes.ConnectionEnd{ClientID: "07-tendermint-0"}))
	_, err := s.Commit()
	require.NoError(t, err)
	require.Equal(t, jmt.Version(1), s.Version())

	root, err := s.Commit()
	require.NoError(t, err)
	require.Equal(t, jmt.Version(1), s.Version())

	again, err := s.Commit()
	require.NoError(t, err)
	require.Equal(t, root, again)
}

func TestTwoCommitsAtTheSameSlotAreForbidden(t *testing.T) {
	store := jmt.NewMemStore()
	s1 := ibcstate.New(store, 5, nil)
	require.NoError(t, ibcstate.Set(s1, path.ConnectionPath{ConnectionID: "connection-0"}, ibctypes.ConnectionEnd{ClientID: "07-tendermint-0"}))
	_, err := s1.Commit()
	require.NoError(t, err)

	s2 := ibcstate.New(store, 5, nil)
	require.NoError(t, ibcstate.Set(s2, path.ConnectionPath{ConnectionID: "connection-1"}, ibctypes.ConnectionEnd{ClientID: "07-tendermint-1"}))
	_, err = s2.Commit()
	require.Error(t, err)
}

func TestRemoveTombstonesAfterCommit(t *testing.T) {
	store := jmt.NewMemStore()
	p := path.ConnectionPath{ConnectionID: "connection-0"}

	s := ibcstate.New(store, 1, nil)
	require.NoError(t, ibcstate.Set(s, p, ibctypes.ConnectionEnd{ClientID: "07-tendermint-0"}))
	_, err := s.Commit()
	require.NoError(t, err)

	s2 := ibcstate.New(store, 2, nil)
	require.NoError(t, s2.Remove(p))
	_, err = s2.Commit()
	require.NoError(t, err)

	s3 := ibcstate.New(store, 3, nil)
	_, ok, err := ibcstate.Get[ibctypes.ConnectionEnd](s3, p)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestUpdateAppliesDefaultWhenAbsent(t *testing.T) {
	store := jmt.NewMemStore()
	s := ibcstate.New(store, 0, nil)

	p := path.AllModulesPath{}
	err := ibcstate.Update(s, p, []ibctypes.ModuleID{}, func(mods []ibctypes.ModuleID) ([]ibctypes.ModuleID, error) {
		return append(mods, ibctypes.ModuleID("transfer")), nil
	})
	require.NoError(t, err)

	got, ok, err := ibcstate.Get[[]ibctypes.ModuleID](s, p)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 1)
	require.Equal(t, ibctypes.ModuleID("transfer"), got[0])
}

func TestUpdateAccumulatesAcrossCalls(t *testing.T) {
	store := jmt.NewMemStore()
	s := ibcstate.New(store, 0, nil)
	p := path.AllModulesPath{}

	add := func(moduleID ibctypes.ModuleID) error {
		return ibcstate.Update(s, p, []ibctypes.ModuleID{}, func(mods []ibctypes.ModuleID) ([]ibctypes.ModuleID, error) {
			return append(mods, moduleID), nil
		})
	}
	require.NoError(t, add("transfer"))
	require.NoError(t, add("icahost"))

	got, ok, err := ibcstate.Get[[]ibctypes.ModuleID](s, p)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got, 2)
	require.Equal(t, ibctypes.ModuleID("transfer"), got[0])
	require.Equal(t, ibctypes.ModuleID("icahost"), got[1])
}

func TestGetProofAndGetNonMembershipOnlySeeCommittedState(t *testing.T) {
	store := jmt.NewMemStore()
	s := ibcstate.New(store, 1, nil)

	present := path.ConnectionPath{ConnectionID: "connection-0"}
	require.NoError(t, ibcstate.Set(s, present, ibctypes.ConnectionEnd{ClientID: "07-tendermint-0"}))
	root, err := s.Commit()
	require.NoError(t, err)

	existence, writeVersion, err := s.GetProof(present)
	require.NoError(t, err)
	require.Equal(t, jmt.Version(1), writeVersion)
	require.Equal(t, present.String(), string(existence.Key))

	missing := path.ConnectionPath{ConnectionID: "connection-999"}
	nonExistence, err := s.GetNonMembership(missing)
	require.NoError(t, err)
	require.Equal(t, missing.String(), string(nonExistence.Key))

	direct, err := s.Root()
	require.NoError(t, err)
	require.Equal(t, root, direct)
}

func TestRootOfFreshStoreIsNullHash(t *testing.T) {
	store := jmt.NewMemStore()
	s := ibcstate.New(store, 0, nil)
	root, err := s.Root()
	require.NoError(t, err)
	require.Equal(t, [32]byte{}, root)
}

func TestRootReadsAtLatestCommittedVersionAtOrBeforeSlot(t *testing.T) {
	store := jmt.NewMemStore()
	s1 := ibcstate.New(store, 10, nil)
	require.NoError(t, ibcstate.Set(s1, path.ConnectionPath{ConnectionID: "connection-0"}, ibctypes.ConnectionEnd{ClientID: "07-tendermint-0"}))
	root10, err := s1.Commit()
	require.NoError(t, err)

	// A later instruction at slot 20, with no writes of its own, still
	// reads the root committed at slot 10.
	s2 := ibcstate.New(store, 20, nil)
	root20, err := s2.Root()
	require.NoError(t, err)
	require.Equal(t, root10, root20)
}
