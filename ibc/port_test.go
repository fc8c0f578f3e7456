package ibc_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/eclipse-labs/ibc-program/ibctypes"
)

func TestBindPortThenReleasePort(t *testing.T) {
	h, store := newHandler(t, 0, 1000)

	require.NoError(t, h.BindPort("transfer", ibctypes.ModuleID("transfer-module")))
	_, err := h.Commit()
	require.NoError(t, err)

	h2 := reopenHandler(t, store, 1, 2000)
	owner, ok, err := h2.LookupModuleByPort("transfer")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ibctypes.ModuleID("transfer-module"), owner)

	require.NoError(t, h2.ReleasePort("transfer", "transfer-module"))
	_, err = h2.Commit()
	require.NoError(t, err)

	h3 := reopenHandler(t, store, 2, 3000)
	_, ok, err = h3.LookupModuleByPort("transfer")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestBindPortRejectsAlreadyBound(t *testing.T) {
	h, _ := newHandler(t, 0, 1000)
	require.NoError(t, h.BindPort("transfer", ibctypes.ModuleID("transfer-module")))

	err := h.BindPort("transfer", ibctypes.ModuleID("another-module"))
	require.Error(t, err)
}

func TestReleasePortRejectsNonOwner(t *testing.T) {
	h, store := newHandler(t, 0, 1000)
	require.NoError(t, h.BindPort("transfer", ibctypes.ModuleID("transfer-module")))
	_, err := h.Commit()
	require.NoError(t, err)

	h2 := reopenHandler(t, store, 1, 2000)
	err = h2.ReleasePort("transfer", ibctypes.ModuleID("someone-else"))
	require.Error(t, err)
}

func TestReleasePortRejectsUnbound(t *testing.T) {
	h, _ := newHandler(t, 0, 1000)
	err := h.ReleasePort("transfer", ibctypes.ModuleID("transfer-module"))
	require.Error(t, err)
}
