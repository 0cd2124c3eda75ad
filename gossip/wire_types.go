package gossip

import (
	"fmt"

	"github.com/timotree3/holochain/bloom"
	"github.com/timotree3/holochain/codec"
	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/dht/arc"
	"github.com/timotree3/holochain/envelope"
)

const (
	maxArcs = 64
	maxKeys = 1 << 18
)

// MessageType tags every gossip message on the wire. A response carries the
// type of the request it answers.
type MessageType byte

const (
	MessageArcs MessageType = iota + 1
	MessageAgents
	MessageOps
)

func (t MessageType) String() string {
	switch t {
	case MessageArcs:
		return "arcs"
	case MessageAgents:
		return "agents"
	case MessageOps:
		return "ops"
	}
	return fmt.Sprintf("unknown(%d)", byte(t))
}

// Message is a gossip request or response.
type Message interface {
	codec.Encodable
	codec.Decodable
	Type() MessageType
}

// ArcSet is the storage arcs of a peer, together with the authoring time of
// the oldest operation it stores, if any.
type ArcSet struct {
	Arcs   []arc.Arc
	Oldest *types.Timestamp
}

// ArcsRequest opens a round.
type ArcsRequest struct {
	ArcSet
}

func (*ArcsRequest) Type() MessageType { return MessageArcs }

// ArcsResponse answers ArcsRequest with the responder's arcs.
type ArcsResponse struct {
	ArcSet
}

func (*ArcsResponse) Type() MessageType { return MessageArcs }

// AgentsRequest carries the filter of the requester's agents within the
// overlap. An empty filter means the requester holds no such agents.
type AgentsRequest struct {
	Overlap []arc.Arc
	Filter  bloom.Encoded
}

func (*AgentsRequest) Type() MessageType { return MessageAgents }

// AgentsResponse lists the agents the requester should fetch and carries
// the filter of the responder's agents within the overlap. NoOverlap is set
// if the responder no longer stores any part of the requested overlap.
type AgentsResponse struct {
	NoOverlap bool
	Missing   []types.AgentKey
	Filter    bloom.Encoded
}

func (*AgentsResponse) Type() MessageType { return MessageAgents }

// OpsRequest carries the requester's outcome for one window.
type OpsRequest struct {
	Overlap []arc.Arc
	Outcome TimedOutcome
}

func (*OpsRequest) Type() MessageType { return MessageOps }

// OpsResponse lists the operations the requester should fetch and carries
// the responder's outcome for the same window.
type OpsResponse struct {
	Missing []types.OpHash
	Outcome TimedOutcome
}

func (*OpsResponse) Type() MessageType { return MessageOps }

func encodeMessage(msg Message) ([]byte, error) {
	body, err := codec.Encode(msg)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", msg.Type(), err)
	}
	buf := make([]byte, 0, len(body)+1)
	buf = append(buf, byte(msg.Type()))
	buf = append(buf, body...)
	return envelope.Wrap(buf)
}

func unwrapMessage(data []byte) (MessageType, []byte, error) {
	buf, err := envelope.Unwrap(data)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %w", ErrDecode, err)
	}
	if len(buf) == 0 {
		return 0, nil, fmt.Errorf("%w: empty message", ErrDecode)
	}
	return MessageType(buf[0]), buf[1:], nil
}

func decodeRequest(data []byte) (Message, error) {
	typ, body, err := unwrapMessage(data)
	if err != nil {
		return nil, err
	}
	var req Message
	switch typ {
	case MessageArcs:
		req = &ArcsRequest{}
	case MessageAgents:
		req = &AgentsRequest{}
	case MessageOps:
		req = &OpsRequest{}
	default:
		return nil, fmt.Errorf("%w: request type %s", ErrDecode, typ)
	}
	if err := codec.Decode(body, req); err != nil {
		return nil, fmt.Errorf("%w: %s request: %w", ErrDecode, typ, err)
	}
	return req, nil
}

func decodeResponse(data []byte, resp Message) error {
	typ, body, err := unwrapMessage(data)
	if err != nil {
		return err
	}
	if typ != resp.Type() {
		return fmt.Errorf("%w: %s response to %s request", ErrDecode, typ, resp.Type())
	}
	if err := codec.Decode(body, resp); err != nil {
		return fmt.Errorf("%w: %s response: %w", ErrDecode, typ, err)
	}
	return nil
}
