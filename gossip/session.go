package gossip

import (
	"fmt"
	"slices"
	"sync"

	"github.com/timotree3/holochain/common/types"
	"github.com/timotree3/holochain/p2p"
)

// State of a session with one peer.
type State uint8

const (
	StateIdle State = iota
	StateArcsExchanged
	StateWindowSelected
	StateFilterExchanged
	StateOutcomeResolved
	StatePushPull
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateArcsExchanged:
		return "arcs_exchanged"
	case StateWindowSelected:
		return "window_selected"
	case StateFilterExchanged:
		return "filter_exchanged"
	case StateOutcomeResolved:
		return "outcome_resolved"
	case StatePushPull:
		return "push_pull"
	}
	return fmt.Sprintf("state(%d)", uint8(s))
}

// transitions lists the legal successors of every state, apart from Idle
// which every state may return to.
var transitions = map[State][]State{
	StateIdle:            {StateArcsExchanged},
	StateArcsExchanged:   {StateWindowSelected},
	StateWindowSelected:  {StateFilterExchanged},
	StateFilterExchanged: {StateOutcomeResolved},
	StateOutcomeResolved: {StatePushPull},
	StatePushPull:        {StateWindowSelected},
}

// session serializes the rounds with a single peer.
type session struct {
	peer p2p.Peer

	mu    sync.Mutex
	state State

	// cursor is the end of the next older window to compare. It is only
	// meaningful while rotating is set.
	cursor   types.Timestamp
	rotating bool
}

func newSession(peer p2p.Peer) *session {
	return &session{peer: peer}
}

// transition moves the session to the next state. Must be called with mu held.
func (s *session) transition(to State) {
	if to != StateIdle && !slices.Contains(transitions[s.state], to) {
		panic(fmt.Sprintf("BUG: illegal session transition %s -> %s", s.state, to))
	}
	s.state = to
}

func (s *session) current() State {
	return s.state
}

// resume returns where the previous round stopped in the older history.
func (s *session) resume() (types.Timestamp, bool) {
	return s.cursor, s.rotating
}

// advance records that the window was compared. Once the oldest record
// is reached the rotation starts over below the newest window.
func (s *session) advance(w TimeWindow, oldest types.Timestamp) {
	if w.Start <= oldest {
		s.rotating = false
		return
	}
	s.cursor, s.rotating = w.Start-1, true
}
