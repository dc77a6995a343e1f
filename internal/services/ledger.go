package services

import "fmt"

// VoteState is where a (user, post) pair sits in the vote ledger.
type VoteState int

const (
	VoteNone VoteState = iota
	VoteUp
	VoteDown
)

func (s VoteState) String() string {
	switch s {
	case VoteUp:
		return "up"
	case VoteDown:
		return "down"
	default:
		return "none"
	}
}

// Direction is the action a user requests.
type Direction int

const (
	Upvote Direction = iota + 1
	Downvote
)

func (d Direction) String() string {
	if d == Downvote {
		return "down"
	}
	return "up"
}

// ParseDirection accepts the form values "up"/"upvote" and "down"/"downvote".
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up", "upvote":
		return Upvote, nil
	case "down", "downvote":
		return Downvote, nil
	}
	return 0, invalid("direction", "unknown vote direction %q", s)
}

// Delta is the counter change produced by a transition.
type Delta struct {
	Upvotes   int
	Downvotes int
}

func (d Delta) IsZero() bool {
	return d.Upvotes == 0 && d.Downvotes == 0
}

// Transition is the vote state machine. Repeating the current direction is a
// no-op; switching direction retracts the old vote and applies the new one.
func Transition(current VoteState, dir Direction) (VoteState, Delta) {
	switch dir {
	case Upvote:
		switch current {
		case VoteNone:
			return VoteUp, Delta{Upvotes: 1}
		case VoteDown:
			return VoteUp, Delta{Upvotes: 1, Downvotes: -1}
		}
		return VoteUp, Delta{}
	case Downvote:
		switch current {
		case VoteNone:
			return VoteDown, Delta{Downvotes: 1}
		case VoteUp:
			return VoteDown, Delta{Upvotes: -1, Downvotes: 1}
		}
		return VoteDown, Delta{}
	}
	panic(fmt.Sprintf("vote: unknown direction %d", dir))
}
