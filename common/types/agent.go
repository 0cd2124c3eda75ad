package types

import (
	"encoding/hex"

	"github.com/spacemeshos/go-scale"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/timotree3/holochain/dht/arc"
)

// AgentIDSize in bytes.
const AgentIDSize = Hash32Length

// AgentID is the public key identifying an agent.
type AgentID Hash32

// BytesToAgentID is a helper to copy a buffer into an AgentID.
func BytesToAgentID(buf []byte) (id AgentID) {
	copy(id[:], buf)
	return id
}

// RandomAgentID returns a random AgentID. It is used for testing.
func RandomAgentID() AgentID {
	return AgentID(RandomHash())
}

// Bytes returns the byte representation of the agent id.
func (id AgentID) Bytes() []byte { return id[:] }

// String returns a string representation of the AgentID, for logging purposes.
func (id AgentID) String() string { return hex.EncodeToString(id[:]) }

// ShortString returns the first 10 characters of the id, for logging purposes.
func (id AgentID) ShortString() string { return id.String()[:10] }

// Loc returns the location of the agent in the circular space.
func (id AgentID) Loc() arc.Loc { return arc.LocOf(id[:]) }

// Field returns a log field for the agent id.
func (id AgentID) Field() zap.Field { return zap.Stringer("agent", id) }

// EncodeScale implements scale codec interface.
func (id *AgentID) EncodeScale(e *scale.Encoder) (int, error) {
	return scale.EncodeByteArray(e, id[:])
}

// DecodeScale implements scale codec interface.
func (id *AgentID) DecodeScale(d *scale.Decoder) (int, error) {
	return scale.DecodeByteArray(d, id[:])
}

// AgentInfo is a signed advertisement of an agent, describing the arc of the
// location space the agent stores. An AgentInfo is never modified: a newer one
// with a later SignedAtMs supersedes it.
type AgentInfo struct {
	Agent       AgentID
	SignedAtMs  Timestamp
	ExpiresAtMs Timestamp
	Arc         arc.Arc
}

// Supersedes returns true if the info replaces other, that is, it belongs to
// the same agent and is signed later.
func (ai *AgentInfo) Supersedes(other *AgentInfo) bool {
	return ai.Agent == other.Agent && ai.SignedAtMs > other.SignedAtMs
}

// MarshalLogObject implements zapcore.ObjectMarshaler.
func (ai *AgentInfo) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddString("agent", ai.Agent.ShortString())
	enc.AddUint64("signed_at_ms", uint64(ai.SignedAtMs))
	enc.AddUint64("expires_at_ms", uint64(ai.ExpiresAtMs))
	return enc.AddObject("arc", ai.Arc)
}

// EncodeScale implements scale codec interface.
func (ai *AgentInfo) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeByteArray(enc, ai.Agent[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, uint64(ai.SignedAtMs))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, uint64(ai.ExpiresAtMs))
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := ai.Arc.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (ai *AgentInfo) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		n, err := scale.DecodeByteArray(dec, ai.Agent[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := DecodeTimestamp(dec)
		if err != nil {
			return total, err
		}
		total += n
		ai.SignedAtMs = field
	}
	{
		field, n, err := DecodeTimestamp(dec)
		if err != nil {
			return total, err
		}
		total += n
		ai.ExpiresAtMs = field
	}
	{
		n, err := ai.Arc.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// AgentKey identifies one version of an agent's info.
type AgentKey struct {
	Agent      AgentID
	SignedAtMs Timestamp
}

// Key returns the AgentKey of the info.
func (ai *AgentInfo) Key() AgentKey {
	return AgentKey{Agent: ai.Agent, SignedAtMs: ai.SignedAtMs}
}

// EncodeScale implements scale codec interface.
func (k *AgentKey) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeByteArray(enc, k.Agent[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, uint64(k.SignedAtMs))
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// DecodeScale implements scale codec interface.
func (k *AgentKey) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		n, err := scale.DecodeByteArray(dec, k.Agent[:])
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := DecodeTimestamp(dec)
		if err != nil {
			return total, err
		}
		total += n
		k.SignedAtMs = field
	}
	return total, nil
}
