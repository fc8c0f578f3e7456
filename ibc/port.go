package ibc

import (
	"fmt"

	"github.com/eclipse-labs/ibc-program/ibcerrors"
	"github.com/eclipse-labs/ibc-program/ibcstate"
	"github.com/eclipse-labs/ibc-program/ibctypes"
	"github.com/eclipse-labs/ibc-program/path"
)

// BindPort binds portID to callerID, failing if the port is already
// bound (§4.E BindPort). Grounded on original_source/ibc_handler.rs
// bind_port: the port-bound check is a direct state read, not a cache.
func (h *Handler) BindPort(portID string, callerID ibctypes.ModuleID) error {
	if _, bound, err := h.lookupModuleByPort(portID); err != nil {
		return err
	} else if bound {
		return fmt.Errorf("%w: %q", ibcerrors.ErrPortAlreadyBound, portID)
	}
	if err := ibcstate.Set(h.State, path.PortPath{PortID: portID}, callerID); err != nil {
		return err
	}
	return h.addAllModule(callerID)
}

// ReleasePort releases portID, failing if it is not bound to callerID
// (§4.E ReleasePort).
func (h *Handler) ReleasePort(portID string, callerID ibctypes.ModuleID) error {
	bound, ok, err := h.lookupModuleByPort(portID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ibcerrors.ErrPortNotBound, portID)
	}
	if bound != callerID {
		return fmt.Errorf("%w: %q is bound to a different module", ibcerrors.ErrNotPortOwner, portID)
	}
	if err := h.State.Remove(path.PortPath{PortID: portID}); err != nil {
		return err
	}
	return h.removeAllModule(callerID)
}

// addAllModule records moduleID in the AllModules set (§3 invariant 4,
// as resolved by §8 testable property 3: "m ∈ AllModules ⇔ ∃ port p:
// Port(p) = m" — AllModules holds module identifiers, not port ids;
// grounded on original_source/extra-types/src/all_module_ids.rs
// (HashSet<ModuleId>) and ibc_handler.rs bind_port).
func (h *Handler) addAllModule(moduleID ibctypes.ModuleID) error {
	return ibcstate.Update(h.State, path.AllModulesPath{}, []ibctypes.ModuleID{}, func(mods []ibctypes.ModuleID) ([]ibctypes.ModuleID, error) {
		for _, m := range mods {
			if m == moduleID {
				return mods, nil
			}
		}
		return append(mods, moduleID), nil
	})
}

// removeAllModule drops moduleID from the AllModules set unconditionally,
// matching original_source/ibc_handler.rs release_port (it removes the
// module id without checking whether another port still references it —
// a carried-over quirk, not one this port introduces; see DESIGN.md).
func (h *Handler) removeAllModule(moduleID ibctypes.ModuleID) error {
	return ibcstate.Update(h.State, path.AllModulesPath{}, []ibctypes.ModuleID{}, func(mods []ibctypes.ModuleID) ([]ibctypes.ModuleID, error) {
		out := mods[:0]
		for _, m := range mods {
			if m != moduleID {
				out = append(out, m)
			}
		}
		return out, nil
	})
}

// lookupModuleByPort reads the Port map directly (§4.E "module
// routing"); grounded on original_source/ibc_handler.rs
// lookup_module_by_port, which is a plain state.get with no cache.
func (h *Handler) lookupModuleByPort(portID string) (ibctypes.ModuleID, bool, error) {
	return ibcstate.Get[ibctypes.ModuleID](h.State, path.PortPath{PortID: portID})
}

// LookupModuleByPort is the read-only view onto the Port map used by
// the ICS-26 router (§4.E "validation view").
func (h *Handler) LookupModuleByPort(portID string) (ibctypes.ModuleID, bool, error) {
	return h.lookupModuleByPort(portID)
}

func portNotBoundError(portID string) error {
	return fmt.Errorf("%w: no module routable for port %q", ibcerrors.ErrPortNotBound, portID)
}
