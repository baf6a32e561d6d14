package ranking

import "github.com/okian/jokerank/internal/domain/model"

// Action is a state transition applied by Reduce.
type Action interface {
	isAction()
}

// Loaded replaces the board with a successful acquisition result.
type Loaded struct {
	Jokes []model.Joke
}

// Voted applies one vote.
type Voted struct {
	ID    string
	Delta model.Delta
}

// Cleared empties the board before a new acquisition cycle.
type Cleared struct{}

func (Loaded) isAction()  {}
func (Voted) isAction()   {}
func (Cleared) isAction() {}

// State is the board held by the service.
type State struct {
	Jokes List
	// LastVoteMatched is set by Voted; false for unknown ids.
	LastVoteMatched bool
}

// Reduce returns the state that follows s after a. It never mutates s.
// Unknown actions return s unchanged.
func Reduce(s State, a Action) State {
	switch act := a.(type) {
	case Loaded:
		return State{Jokes: Load(act.Jokes)}
	case Voted:
		if !act.Delta.Valid() {
			return s
		}
		jokes, matched := applyVote(s.Jokes, act.ID, act.Delta)
		return State{Jokes: jokes, LastVoteMatched: matched}
	case Cleared:
		return State{Jokes: Reset()}
	default:
		return s
	}
}
