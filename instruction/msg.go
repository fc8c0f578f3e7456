package instruction

import (
	"errors"
	"fmt"
)

// Msg is the decoded form of an Any: one of RouterMsg, PortMsg, or
// AdminMsg. The concrete operation within each bucket is still named
// by TypeURL — program.Dispatch switches on it once more to pick the
// Borsh shape of Value and the ibc.Handler method to call.
type Msg interface {
	isMsg()
	Kind() string
}

// RouterMsg carries every ICS-02/03/04 handler operation (§9 "the
// router path").
type RouterMsg struct {
	TypeURL string
	Value   []byte
}

func (RouterMsg) isMsg()        {}
func (RouterMsg) Kind() string  { return "router" }

// PortMsg carries BindPort/ReleasePort.
type PortMsg struct {
	TypeURL string
	Value   []byte
}

func (PortMsg) isMsg()       {}
func (PortMsg) Kind() string { return "port" }

// AdminMsg carries program-lifecycle operations (InitStorageAccount,
// WriteTxBuffer).
type AdminMsg struct {
	TypeURL string
	Value   []byte
}

func (AdminMsg) isMsg()       {}
func (AdminMsg) Kind() string { return "admin" }

var (
	ErrNotRouterMsg = errors.New("instruction: not a router message")
	ErrNotPortMsg   = errors.New("instruction: not a port message")
	ErrNotAdminMsg  = errors.New("instruction: not an admin message")
)

// DecodeRouterMsg succeeds only if any.TypeURL is one of the router
// type URLs.
func DecodeRouterMsg(any Any) (Msg, error) {
	if !routerTypeURLs[any.TypeURL] {
		return nil, fmt.Errorf("%w: %q", ErrNotRouterMsg, any.TypeURL)
	}
	return RouterMsg{TypeURL: any.TypeURL, Value: any.Value}, nil
}

// DecodePortMsg succeeds only if any.TypeURL is one of the port type
// URLs.
func DecodePortMsg(any Any) (Msg, error) {
	if !portTypeURLs[any.TypeURL] {
		return nil, fmt.Errorf("%w: %q", ErrNotPortMsg, any.TypeURL)
	}
	return PortMsg{TypeURL: any.TypeURL, Value: any.Value}, nil
}

// DecodeAdminMsg succeeds only if any.TypeURL is one of the admin type
// URLs.
func DecodeAdminMsg(any Any) (Msg, error) {
	if !adminTypeURLs[any.TypeURL] {
		return nil, fmt.Errorf("%w: %q", ErrNotAdminMsg, any.TypeURL)
	}
	return AdminMsg{TypeURL: any.TypeURL, Value: any.Value}, nil
}

// Decode tries DecodeRouterMsg, DecodePortMsg, and DecodeAdminMsg in
// order, joining all three errors when none match so a caller can see
// which discriminator it failed against (§9 "sum-typed instruction
// envelopes").
func Decode(any Any) (Msg, error) {
	if m, err := DecodeRouterMsg(any); err == nil {
		return m, nil
	} else if m, err2 := DecodePortMsg(any); err2 == nil {
		return m, nil
	} else if m, err3 := DecodeAdminMsg(any); err3 == nil {
		return m, nil
	} else {
		return nil, errors.Join(err, err2, err3)
	}
}
