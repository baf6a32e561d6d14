// Package ranking holds the pure state transitions of the joke board.
//
// Ordering: votes DESC. Ties keep their relative order from the previous
// list (stable sort), so a freshly loaded list stays in acquisition order
// until votes separate it.
package ranking

import (
	"cmp"
	"slices"

	"github.com/okian/jokerank/internal/domain/model"
)

// List is an ordered board of jokes.
type List []model.Joke

// Reset returns an empty list.
func Reset() List {
	return List{}
}

// ApplyVote returns a new list where the joke with id has its votes changed
// by delta, re-sorted by votes. The input is never modified. An unknown id
// yields an equal list.
func ApplyVote(list List, id string, delta model.Delta) List {
	out, _ := applyVote(list, id, delta)
	return out
}

func applyVote(list List, id string, delta model.Delta) (List, bool) {
	out := slices.Clone(list)
	if out == nil {
		out = List{}
	}
	matched := false
	for i := range out {
		if out[i].ID == id {
			out[i].Votes += int(delta)
			matched = true
			break
		}
	}
	sortByVotes(out)
	return out, matched
}

// Load returns a board built from freshly acquired jokes: votes zeroed,
// duplicate ids dropped (first wins), acquisition order kept.
func Load(jokes []model.Joke) List {
	out := make(List, 0, len(jokes))
	seen := make(map[string]struct{}, len(jokes))
	for _, j := range jokes {
		if _, dup := seen[j.ID]; dup {
			continue
		}
		seen[j.ID] = struct{}{}
		j.Votes = 0
		out = append(out, j)
	}
	return out
}

// Sorted reports whether no joke has fewer votes than the one after it.
func Sorted(list List) bool {
	return slices.IsSortedFunc(list, byVotesDesc)
}

// Find returns the joke with id and its position, or -1.
func Find(list List, id string) (model.Joke, int) {
	i := slices.IndexFunc(list, func(j model.Joke) bool { return j.ID == id })
	if i < 0 {
		return model.Joke{}, -1
	}
	return list[i], i
}

func sortByVotes(list List) {
	slices.SortStableFunc(list, byVotesDesc)
}

func byVotesDesc(a, b model.Joke) int {
	return cmp.Compare(b.Votes, a.Votes)
}
