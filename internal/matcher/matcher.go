// Package matcher implements the feed-time state machine that walks a
// compiled trie.Table against a live stream of key symbols (spec.md
// §4.5). Each matcher.State is single-threaded and scoped to one
// session; many sessions may feed concurrently against the same
// immutable Table (spec.md §5).
package matcher

import (
	"github.com/oarkflow/composeseq/internal/trie"
	"github.com/oarkflow/composeseq/keysym"
)

// Status is the matcher's current position in the NOTHING -> COMPOSING
// -> COMPOSED|CANCELLED -> NOTHING cycle.
type Status int

const (
	Nothing Status = iota
	Composing
	Composed
	Cancelled
)

func (s Status) String() string {
	switch s {
	case Composing:
		return "COMPOSING"
	case Composed:
		return "COMPOSED"
	case Cancelled:
		return "CANCELLED"
	default:
		return "NOTHING"
	}
}

// FeedResult reports whether Feed consumed the key as part of the
// compose protocol (ACCEPTED) or left it for the caller to handle
// itself (IGNORED — modifier keys, and the no-symbol sentinel).
type FeedResult int

const (
	Accepted FeedResult = iota
	Ignored
)

// State is one feed-time session over a shared, immutable Table.
type State struct {
	table  *trie.Table
	status Status
	cursor uint32
}

// New creates a session in the initial NOTHING status, cursor at root.
func New(t *trie.Table) *State {
	return &State{table: t, status: Nothing, cursor: trie.Root}
}

// Reset returns the session to NOTHING with the cursor back at root,
// the caller's way of cancelling a sequence in progress.
func (s *State) Reset() {
	s.status = Nothing
	s.cursor = trie.Root
}

// Status returns the session's current status.
func (s *State) Status() Status { return s.status }

// Feed advances the state machine by one key symbol, per the
// transition table in spec.md §4.5.
func (s *State) Feed(k keysym.Keysym) FeedResult {
	if k == keysym.NoSymbol || keysym.IsModifier(k) {
		return Ignored
	}

	switch s.status {
	case Composing:
		// cursor is guaranteed internal while COMPOSING: the previous
		// Feed only set this status when the reached node wasn't a
		// leaf.
		if child, ok := s.table.FindChild(s.table.Successor(s.cursor), k); ok {
			s.advanceTo(child)
		} else {
			s.status = Cancelled
			s.cursor = trie.Root
		}
	default: // Nothing, Composed, Cancelled all restart from the root
		if child, ok := s.table.FindChild(s.table.FirstChild(trie.Root), k); ok {
			s.advanceTo(child)
		} else {
			s.status = Nothing
			s.cursor = trie.Root
		}
	}
	return Accepted
}

func (s *State) advanceTo(node uint32) {
	s.cursor = node
	if s.table.IsLeaf(node) {
		s.status = Composed
	} else {
		s.status = Composing
	}
}

// UTF8 writes the committed result's UTF-8 bytes into buf (truncating
// if it doesn't fit) and returns the number of bytes the full result
// needs, the same "tell the caller how big a buffer you actually
// wanted" contract snprintf uses — Go has no implicit NUL terminator,
// so the returned count is exactly len(result), not len+1.
//
// Outside COMPOSED, it writes nothing and returns 0.
func (s *State) UTF8(buf []byte) int {
	if s.status != Composed {
		return 0
	}
	str := s.table.ResultString(s.cursor)
	if str == "" {
		if sym := s.table.ResultKeysym(s.cursor); sym != keysym.NoSymbol {
			if r, ok := keysym.Unicode(sym); ok {
				str = string(r)
			}
		}
	}
	copy(buf, str)
	return len(str)
}

// OneSym returns the committed result's key symbol, or NoSymbol outside
// COMPOSED or when the production had none.
func (s *State) OneSym() keysym.Keysym {
	if s.status != Composed {
		return keysym.NoSymbol
	}
	return s.table.ResultKeysym(s.cursor)
}
