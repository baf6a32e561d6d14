// Package model contains domain models passed between layers.
package model

// Joke is one remote joke plus its local vote tally.
type Joke struct {
	ID    string `json:"id"`    // assigned by the remote source
	Text  string `json:"text"`  // joke body
	Votes int    `json:"votes"` // starts at 0, changed only by votes
}

// Delta is the direction of a single vote.
type Delta int

// Vote directions.
const (
	Down Delta = -1
	Up   Delta = 1
)

// Valid reports whether d is Up or Down.
func (d Delta) Valid() bool {
	return d == Up || d == Down
}

func (d Delta) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	default:
		return "invalid"
	}
}

// ParseDelta maps "up"/"down" to a Delta.
func ParseDelta(s string) (Delta, bool) {
	switch s {
	case "up":
		return Up, true
	case "down":
		return Down, true
	}
	return 0, false
}
