package smoke

import (
	"fmt"
	"slices"
)

// checkDistinct fails if an id appears twice.
func checkDistinct(jokes []Joke) error {
	seen := make(map[string]int, len(jokes))
	for i, j := range jokes {
		if prev, ok := seen[j.ID]; ok {
			return fmt.Errorf("joke %q appears at positions %d and %d", j.ID, prev, i)
		}
		seen[j.ID] = i
	}
	return nil
}

// checkSorted fails if votes ever increase down the board.
func checkSorted(jokes []Joke) error {
	for i := 1; i < len(jokes); i++ {
		if jokes[i].Votes > jokes[i-1].Votes {
			return fmt.Errorf("board not sorted: %q (%d) after %q (%d)",
				jokes[i].ID, jokes[i].Votes, jokes[i-1].ID, jokes[i-1].Votes)
		}
	}
	return nil
}

// checkSameIDs fails if the two boards do not hold the same set of ids.
func checkSameIDs(before, after []Joke) error {
	a, b := idsOf(before), idsOf(after)
	slices.Sort(a)
	slices.Sort(b)
	if !slices.Equal(a, b) {
		return fmt.Errorf("id set changed: %v -> %v", a, b)
	}
	return nil
}

// checkTallies fails if any joke's votes differ from want.
func checkTallies(jokes []Joke, want map[string]int) error {
	for _, j := range jokes {
		if j.Votes != want[j.ID] {
			return fmt.Errorf("joke %q has %d votes, expected %d", j.ID, j.Votes, want[j.ID])
		}
	}
	return nil
}

// checkIdentical fails unless both boards have the same jokes, votes and order.
func checkIdentical(want, got []Joke) error {
	if !slices.Equal(want, got) {
		return fmt.Errorf("board changed: %v -> %v", idsOf(want), idsOf(got))
	}
	return nil
}

// checkFresh fails unless every joke starts at zero votes.
func checkFresh(jokes []Joke) error {
	for _, j := range jokes {
		if j.Votes != 0 {
			return fmt.Errorf("fresh joke %q has %d votes", j.ID, j.Votes)
		}
	}
	return nil
}

// checkRoundTrip verifies an up vote followed by a down vote on id: votes are
// back to their old values, the other jokes kept their order, and id kept its
// position relative to every joke with a different vote count.
func checkRoundTrip(before, after []Joke, id string) error {
	if err := checkTallies(after, talliesOf(before)); err != nil {
		return err
	}
	if !slices.Equal(idsWithout(before, id), idsWithout(after, id)) {
		return fmt.Errorf("order of other jokes changed: %v -> %v", idsOf(before), idsOf(after))
	}

	posBefore, posAfter := positions(before), positions(after)
	target := before[posBefore[id]].Votes
	for _, j := range before {
		if j.ID == id || j.Votes == target {
			continue
		}
		if (posBefore[j.ID] < posBefore[id]) != (posAfter[j.ID] < posAfter[id]) {
			return fmt.Errorf("joke %q moved across %q", id, j.ID)
		}
	}
	return nil
}

func talliesOf(jokes []Joke) map[string]int {
	out := make(map[string]int, len(jokes))
	for _, j := range jokes {
		out[j.ID] = j.Votes
	}
	return out
}

func positions(jokes []Joke) map[string]int {
	out := make(map[string]int, len(jokes))
	for i, j := range jokes {
		out[j.ID] = i
	}
	return out
}

func idsWithout(jokes []Joke, id string) []string {
	out := make([]string, 0, len(jokes))
	for _, j := range jokes {
		if j.ID != id {
			out = append(out, j.ID)
		}
	}
	return out
}

func idsOf(jokes []Joke) []string {
	out := make([]string, len(jokes))
	for i, j := range jokes {
		out[i] = j.ID
	}
	return out
}

// verifyBoard runs the structural checks that must hold after every step.
func verifyBoard(jokes []Joke) error {
	if err := checkDistinct(jokes); err != nil {
		return err
	}
	return checkSorted(jokes)
}
