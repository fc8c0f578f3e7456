package ibctypes_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eclipse-labs/ibc-program/ibctypes"
)

func TestHeightOrdering(t *testing.T) {
	low := ibctypes.Height{RevisionNumber: 0, RevisionHeight: 1}
	high := ibctypes.Height{RevisionNumber: 0, RevisionHeight: 2}
	higherRevision := ibctypes.Height{RevisionNumber: 1, RevisionHeight: 0}

	require.True(t, low.LT(high))
	require.False(t, high.LT(low))
	require.True(t, high.LT(higherRevision))
	require.True(t, low.LTE(low))
	require.True(t, high.GT(low))
	require.True(t, high.GTE(high))
}

func TestHeightIsZero(t *testing.T) {
	require.True(t, ibctypes.ZeroHeight.IsZero())
	require.False(t, ibctypes.Height{RevisionHeight: 1}.IsZero())
}

func TestHeightString(t *testing.T) {
	h := ibctypes.Height{RevisionNumber: 1, RevisionHeight: 100}
	require.Equal(t, "1-100", h.String())
}

func TestCompareHeights(t *testing.T) {
	a := ibctypes.Height{RevisionNumber: 0, RevisionHeight: 1}
	b := ibctypes.Height{RevisionNumber: 0, RevisionHeight: 2}
	require.Equal(t, -1, ibctypes.CompareHeights(a, b))
	require.Equal(t, 1, ibctypes.CompareHeights(b, a))
	require.Equal(t, 0, ibctypes.CompareHeights(a, a))
}
