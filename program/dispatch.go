package program

import (
	"fmt"

	bin "github.com/gagliardetto/binary"
	"go.uber.org/zap"

	"github.com/eclipse-labs/ibc-program/ibc"
	"github.com/eclipse-labs/ibc-program/ibcerrors"
	"github.com/eclipse-labs/ibc-program/ibcstate"
	"github.com/eclipse-labs/ibc-program/instruction"
	"github.com/eclipse-labs/ibc-program/path"
)

// Dispatch decodes raw as a chunked instruction.Envelope, reassembles
// the complete payload from ctx.ExtraAccounts (§4.G "this supports
// messages larger than the host's single-instruction size cap"),
// decodes the result as an instruction.Any, routes it through
// instruction.Decode, and executes it against the handler built over
// ctx's storage account. On success the account's new snapshot is
// written back into *ctx.StorageData; on error the account is left
// untouched, matching §5 "an uncaught error anywhere in handler
// dispatch drops the overlay... the store is untouched". A
// WriteTxBuffer admin message never reaches the storage account at
// all — it only ever touches ctx.BufferData (§4.G "no IBC state is
// touched").
func Dispatch(ctx ProgramContext, raw []byte) error {
	env, err := instruction.DecodeEnvelope(raw)
	if err != nil {
		return fmt.Errorf("program: dispatch: decode envelope: %w", err)
	}
	if int(env.ExtraAccountCount) > len(ctx.ExtraAccounts) {
		return fmt.Errorf("program: dispatch: envelope names %d extra accounts, only %d supplied", env.ExtraAccountCount, len(ctx.ExtraAccounts))
	}
	payload := instruction.Reassemble(ctx.ExtraAccounts[:env.ExtraAccountCount], env.LastPart)

	any, err := instruction.DecodeAny(payload)
	if err != nil {
		return fmt.Errorf("program: dispatch: decode any: %w", err)
	}
	msg, err := instruction.Decode(any)
	if err != nil {
		return fmt.Errorf("program: dispatch: %w", err)
	}

	if m, ok := msg.(instruction.AdminMsg); ok && m.TypeURL == instruction.TypeURLWriteTxBuffer {
		return dispatchWriteTxBuffer(ctx, m)
	}

	store, err := Load(*ctx.StorageData)
	if err != nil {
		return fmt.Errorf("program: dispatch: %w", err)
	}
	state := ibcstate.New(store, ctx.Slot, ctx.Logger)

	switch m := msg.(type) {
	case instruction.AdminMsg:
		if err := dispatchAdmin(state, m); err != nil {
			return err
		}
	case instruction.PortMsg:
		h, err := ibc.New(state, ctx.Slot, ctx.UnixNano, ctx.Signer.String(), ctx.Logger)
		if err != nil {
			return err
		}
		if err := dispatchPort(h, m); err != nil {
			return err
		}
		if _, err := h.Commit(); err != nil {
			return err
		}
	case instruction.RouterMsg:
		h, err := ibc.New(state, ctx.Slot, ctx.UnixNano, ctx.Signer.String(), ctx.Logger)
		if err != nil {
			return err
		}
		if err := dispatchRouter(h, m); err != nil {
			return err
		}
		if _, err := h.Commit(); err != nil {
			return err
		}
	default:
		return fmt.Errorf("program: dispatch: unrecognized message kind %T", msg)
	}

	out, err := Persist(store)
	if err != nil {
		return err
	}
	*ctx.StorageData = out
	return nil
}

// DispatchCode runs Dispatch and converts any returned error into the
// single byte the host runtime reports back to the caller (§7 "the
// top-level dispatcher converts the error class to one of three
// numeric codes"). A nil error yields a nil code. Classification is
// logged before it is returned, so the account-level abort reason is
// never silent even though the account write itself was rolled back.
func DispatchCode(ctx ProgramContext, raw []byte) (*byte, error) {
	err := Dispatch(ctx, raw)
	if err == nil {
		return nil, nil
	}
	kind, ok := ibcerrors.Classify(err)
	if !ok {
		if ctx.Logger != nil {
			ctx.Logger.Error("dispatch failed with an unclassified error", zap.Error(err))
		}
		return nil, err
	}
	if ctx.Logger != nil {
		ctx.Logger.Error("dispatch failed",
			zap.Error(err),
			zap.String("class", kind.String()),
			zap.Uint8("code", kind.Code()),
		)
	}
	code := kind.Code()
	return &code, err
}

// dispatchAdmin executes InitStorageAccount: writes the empty state's
// StateInitialized marker at the current version and commits, making
// version 0 discoverable (spec.md "applies InitStorageAccount at slot
// 0; after commit, latest_version = 0").
func dispatchAdmin(state *ibcstate.IbcState, m instruction.AdminMsg) error {
	switch m.TypeURL {
	case instruction.TypeURLInitStorageAccount:
		if err := ibcstate.Set(state, path.StateInitializedPath{}, struct{}{}); err != nil {
			return err
		}
		_, err := state.Commit()
		return err
	default:
		return fmt.Errorf("program: dispatch: unrecognized admin message %q", m.TypeURL)
	}
}

const (
	writeTxBufferCreate uint8 = 0
	writeTxBufferReuse  uint8 = 1
)

// writeTxBufferPayload is WriteTxBuffer's Value: Create{buffer_size} |
// Reuse{offset}, plus the chunk data itself (§4.G, §6).
type writeTxBufferPayload struct {
	Kind       uint8
	BufferSize uint64
	Offset     uint64
	Data       []byte
}

// dispatchWriteTxBuffer allocates or reuses the scratch chunk-buffer
// account and writes data at the chosen offset; it never touches the
// IBC storage account (§4.G "no IBC state is touched").
func dispatchWriteTxBuffer(ctx ProgramContext, m instruction.AdminMsg) error {
	var p writeTxBufferPayload
	if err := decode(m.Value, &p); err != nil {
		return err
	}
	if ctx.BufferData == nil {
		return fmt.Errorf("program: write_tx_buffer: no buffer account supplied")
	}

	switch p.Kind {
	case writeTxBufferCreate:
		buf := make([]byte, p.BufferSize)
		if len(p.Data) > len(buf) {
			return fmt.Errorf("program: write_tx_buffer: data (%d bytes) exceeds declared buffer size %d", len(p.Data), p.BufferSize)
		}
		copy(buf, p.Data)
		*ctx.BufferData = buf
		return nil
	case writeTxBufferReuse:
		buf := *ctx.BufferData
		end := int(p.Offset) + len(p.Data)
		if end > len(buf) {
			return fmt.Errorf("program: write_tx_buffer: write of %d bytes at offset %d exceeds buffer size %d", len(p.Data), p.Offset, len(buf))
		}
		copy(buf[p.Offset:end], p.Data)
		return nil
	default:
		return fmt.Errorf("program: write_tx_buffer: unrecognized kind %d", p.Kind)
	}
}

func dispatchPort(h *ibc.Handler, m instruction.PortMsg) error {
	switch m.TypeURL {
	case instruction.TypeURLBindPort:
		var p bindPortPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.BindPort(p.PortID, p.CallerID)
	case instruction.TypeURLReleasePort:
		var p releasePortPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.ReleasePort(p.PortID, p.CallerID)
	default:
		return fmt.Errorf("program: dispatch: unrecognized port message %q", m.TypeURL)
	}
}

func dispatchRouter(h *ibc.Handler, m instruction.RouterMsg) error {
	switch m.TypeURL {
	case instruction.TypeURLCreateClient:
		var p createClientPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		_, err := h.CreateClient(p.ClientState, p.ConsensusState)
		return err

	case instruction.TypeURLUpdateClient:
		var p updateClientPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.UpdateClient(p.ClientID, p.Header)

	case instruction.TypeURLUpgradeClient:
		var p upgradeClientPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.UpgradeClient(p.ClientID, p.NewClientState, p.NewConsensusState, p.ProofClientState, p.ProofConsensusState, p.ClientStatePath, p.ConsensusStatePath)

	case instruction.TypeURLSubmitMisbehaviour:
		var p submitMisbehaviourPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.SubmitMisbehaviour(p.ClientID, p.Header)

	case instruction.TypeURLConnectionOpenInit:
		var p connectionOpenInitPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		_, err := h.ConnectionOpenInit(p.ClientID, p.Counterparty, p.Version, p.DelayPeriod)
		return err

	case instruction.TypeURLConnectionOpenTry:
		var p connectionOpenTryPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		_, err := h.ConnectionOpenTry(p.ClientID, p.Counterparty, p.Version, p.DelayPeriod, p.ProofInit, p.ProofClient, p.ProofHeight, p.ExpectedConnectionPath, p.ExpectedConnectionBytes)
		return err

	case instruction.TypeURLConnectionOpenAck:
		var p connectionOpenAckPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.ConnectionOpenAck(p.ConnectionID, p.CounterpartyConnectionID, p.ProofTry, p.ProofHeight, p.ExpectedConnectionPath, p.ExpectedConnectionBytes)

	case instruction.TypeURLConnectionOpenConfirm:
		var p connectionOpenConfirmPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.ConnectionOpenConfirm(p.ConnectionID, p.ProofAck, p.ProofHeight, p.ExpectedConnectionPath, p.ExpectedConnectionBytes)

	case instruction.TypeURLChannelOpenInit:
		var p channelOpenInitPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		_, err := h.ChannelOpenInit(p.PortID, p.Ordering, p.Hops, p.Counterparty, p.Version)
		return err

	case instruction.TypeURLChannelOpenTry:
		var p channelOpenTryPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		_, err := h.ChannelOpenTry(p.PortID, p.Ordering, p.Hops, p.Counterparty, p.Version, p.ProofInit, p.ProofHeight, p.ExpectedChannelPath, p.ExpectedChannelBytes)
		return err

	case instruction.TypeURLChannelOpenAck:
		var p channelOpenAckPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.ChannelOpenAck(p.PortID, p.ChannelID, p.CounterpartyChannelID, p.ProofTry, p.ProofHeight, p.ExpectedChannelPath, p.ExpectedChannelBytes)

	case instruction.TypeURLChannelOpenConfirm:
		var p channelOpenConfirmPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.ChannelOpenConfirm(p.PortID, p.ChannelID, p.ProofAck, p.ProofHeight, p.ExpectedChannelPath, p.ExpectedChannelBytes)

	case instruction.TypeURLChannelCloseInit:
		var p channelCloseInitPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.ChannelCloseInit(p.PortID, p.ChannelID)

	case instruction.TypeURLChannelCloseConfirm:
		var p channelCloseConfirmPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.ChannelCloseConfirm(p.PortID, p.ChannelID, p.ProofClosed, p.ProofHeight, p.ExpectedChannelPath, p.ExpectedChannelBytes)

	case instruction.TypeURLSendPacket:
		var p sendPacketPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.SendPacket(p.PortID, p.ChannelID, p.Packet)

	case instruction.TypeURLRecvPacket:
		var p recvPacketPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.RecvPacket(p.PortID, p.ChannelID, p.Packet, p.Ack, p.ProofCommitment, p.ProofHeight, p.ExpectedCommitmentPath, p.ExpectedCommitmentBytes)

	case instruction.TypeURLAcknowledgePacket:
		var p acknowledgePacketPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.AcknowledgePacket(p.PortID, p.ChannelID, p.Sequence, p.ProofAck, p.ProofHeight, p.ExpectedAckPath, p.ExpectedAckBytes)

	case instruction.TypeURLTimeoutPacket:
		var p timeoutPacketPayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.TimeoutPacket(p.PortID, p.ChannelID, p.Packet, p.ProofUnreceived, p.ProofHeight, p.ExpectedReceiptPath)

	case instruction.TypeURLTimeoutOnClose:
		var p timeoutOnClosePayload
		if err := decode(m.Value, &p); err != nil {
			return err
		}
		return h.TimeoutOnClose(p.PortID, p.ChannelID, p.Packet, p.ProofClosed, p.ProofHeight, p.ExpectedChannelPath, p.ExpectedChannelBytes)

	default:
		return fmt.Errorf("program: dispatch: unrecognized router message %q", m.TypeURL)
	}
}

// decode Borsh-decodes data into out, the same convention every
// generated instruction argument struct in the teacher's go-anchor
// packages uses.
func decode(data []byte, out any) error {
	dec := bin.NewBorshDecoder(data)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("program: decode payload: %w", err)
	}
	return nil
}
