// Package key defines the canonical keys inserted into and checked against
// reconciliation filters.
package key

import (
	"encoding/binary"
	"fmt"

	"github.com/timotree3/holochain/common/types"
)

// Kind discriminates the variants of Key. The values are part of the
// filter wire format and must never change.
type Kind byte

const (
	// KindAgent is an agent info identified by the agent and signature time.
	KindAgent Kind = 0x00
	// KindOp is an operation identified by its hash.
	KindOp Kind = 0x01
)

func (k Kind) String() string {
	switch k {
	case KindAgent:
		return "agent"
	case KindOp:
		return "op"
	}
	return fmt.Sprintf("kind(%d)", byte(k))
}

// Key is the canonical identity of an item under reconciliation.
// Two keys are equal iff their HashInput is equal.
type Key struct {
	kind       Kind
	id         [32]byte
	signedAtMs types.Timestamp
}

// Agent returns the key of a specific version of an agent info.
func Agent(id types.AgentID, signedAtMs types.Timestamp) Key {
	return Key{kind: KindAgent, id: id, signedAtMs: signedAtMs}
}

// FromAgent returns the key of the agent info.
func FromAgent(info *types.AgentInfo) Key {
	return Agent(info.Agent, info.SignedAtMs)
}

// FromAgentKey returns the key for an AgentKey.
func FromAgentKey(k types.AgentKey) Key {
	return Agent(k.Agent, k.SignedAtMs)
}

// Op returns the key of an operation.
func Op(h types.OpHash) Key {
	return Key{kind: KindOp, id: h}
}

// FromOp is an alias for Op.
func FromOp(h types.OpHash) Key {
	return Op(h)
}

// Kind returns the discriminator of the key.
func (k Key) Kind() Kind { return k.kind }

// HashInput returns the bytes inserted into filters: the discriminator
// followed by the payload. The agent payload is the identity followed by
// the big-endian signature time.
func (k Key) HashInput() []byte {
	return k.AppendHashInput(nil)
}

// AppendHashInput appends the hash input of the key to buf.
func (k Key) AppendHashInput(buf []byte) []byte {
	buf = append(buf, byte(k.kind))
	buf = append(buf, k.id[:]...)
	if k.kind == KindAgent {
		buf = binary.BigEndian.AppendUint64(buf, uint64(k.signedAtMs))
	}
	return buf
}

func (k Key) String() string {
	switch k.kind {
	case KindAgent:
		return fmt.Sprintf("agent(%s@%d)", types.AgentID(k.id).ShortString(), k.signedAtMs)
	case KindOp:
		return fmt.Sprintf("op(%s)", types.OpHash(k.id).ShortString())
	}
	return fmt.Sprintf("unknown(%d)", byte(k.kind))
}
