package ranking_test

import (
	"fmt"
	"math/rand"
	"slices"
	"testing"

	"github.com/okian/jokerank/internal/domain/model"
	"github.com/okian/jokerank/internal/domain/ranking"
	. "github.com/smartystreets/goconvey/convey"
)

func jokes(spec ...any) ranking.List {
	out := make(ranking.List, 0, len(spec)/2)
	for i := 0; i < len(spec); i += 2 {
		id := spec[i].(string)
		out = append(out, model.Joke{ID: id, Text: "joke " + id, Votes: spec[i+1].(int)})
	}
	return out
}

func ids(list ranking.List) []string {
	out := make([]string, len(list))
	for i, j := range list {
		out[i] = j.ID
	}
	return out
}

func TestApplyVote(t *testing.T) {
	Convey("Given a board", t, func() {
		Convey("When a lower joke overtakes a higher one", func() {
			list := jokes("a", 2, "b", 5)
			out := ranking.ApplyVote(list, "a", model.Delta(4))

			Convey("Then it should be re-sorted", func() {
				So(out, ShouldResemble, ranking.List{
					{ID: "a", Text: "joke a", Votes: 6},
					{ID: "b", Text: "joke b", Votes: 5},
				})
			})
		})

		Convey("When single votes accumulate", func() {
			list := jokes("b", 5, "a", 2)
			for i := 0; i < 4; i++ {
				list = ranking.ApplyVote(list, "a", model.Up)
			}

			Convey("Then the overtaking happens on the fourth vote", func() {
				So(ids(list), ShouldResemble, []string{"a", "b"})
				So(list[0].Votes, ShouldEqual, 6)
			})
		})

		Convey("When voting on an unsorted input", func() {
			list := jokes("a", 2, "b", 5)
			out := ranking.ApplyVote(list, "a", model.Up)

			Convey("Then the result is sorted and the input is untouched", func() {
				So(ids(out), ShouldResemble, []string{"b", "a"})
				So(out[1].Votes, ShouldEqual, 3)
				So(list[0].Votes, ShouldEqual, 2)
				So(ids(list), ShouldResemble, []string{"a", "b"})
			})
		})

		Convey("When voting on an unknown id", func() {
			list := jokes("a", 3, "b", 1, "c", 1)
			out := ranking.ApplyVote(list, "missing", model.Down)

			Convey("Then the board should be unchanged", func() {
				So(out, ShouldResemble, list)
			})
		})

		Convey("When applying +1 then -1", func() {
			list := jokes("a", 4, "b", 2, "c", 0)
			out := ranking.ApplyVote(ranking.ApplyVote(list, "b", model.Up), "b", model.Down)

			Convey("Then votes and order should be restored", func() {
				So(out, ShouldResemble, list)
			})
		})

		Convey("When a +1/-1 pair crosses a tie", func() {
			list := jokes("a", 1, "b", 0, "c", 0)
			out := ranking.ApplyVote(ranking.ApplyVote(list, "c", model.Up), "c", model.Down)

			Convey("Then votes are restored and only the tied peer may swap", func() {
				So(out, ShouldResemble, jokes("a", 1, "c", 0, "b", 0))
				So(out[0].ID, ShouldEqual, "a")
			})
		})

		Convey("When jokes tie", func() {
			list := jokes("a", 1, "b", 0, "c", 0, "d", 0)
			out := ranking.ApplyVote(list, "a", model.Down)

			Convey("Then the previous relative order is kept", func() {
				So(ids(out), ShouldResemble, []string{"a", "b", "c", "d"})
			})

			Convey("And a joke dropping below its peers moves after them", func() {
				out = ranking.ApplyVote(out, "c", model.Down)
				So(ids(out), ShouldResemble, []string{"a", "b", "d", "c"})
			})
		})

		Convey("When the board is empty", func() {
			out := ranking.ApplyVote(nil, "a", model.Up)

			Convey("Then an empty, non-nil list comes back", func() {
				So(out, ShouldNotBeNil)
				So(out, ShouldBeEmpty)
			})
		})
	})
}

func TestReset(t *testing.T) {
	Convey("Reset should return an empty board", t, func() {
		So(ranking.Reset(), ShouldBeEmpty)
		So(ranking.Reset(), ShouldNotBeNil)
	})
}

func TestLoad(t *testing.T) {
	Convey("Given an acquisition result", t, func() {
		in := []model.Joke{
			{ID: "a", Text: "A", Votes: 3},
			{ID: "b", Text: "B"},
			{ID: "a", Text: "A again"},
			{ID: "c", Text: "C"},
		}
		out := ranking.Load(in)

		Convey("Then votes are zeroed, duplicates dropped and order kept", func() {
			So(out, ShouldResemble, ranking.List{
				{ID: "a", Text: "A"},
				{ID: "b", Text: "B"},
				{ID: "c", Text: "C"},
			})
			So(in[0].Votes, ShouldEqual, 3)
		})
	})
}

func TestFindAndSorted(t *testing.T) {
	list := jokes("a", 3, "b", 1)

	if j, i := ranking.Find(list, "b"); i != 1 || j.Votes != 1 {
		t.Fatalf("Find(b) = %+v, %d", j, i)
	}
	if _, i := ranking.Find(list, "x"); i != -1 {
		t.Fatalf("Find(x) index = %d, want -1", i)
	}
	if !ranking.Sorted(list) {
		t.Fatal("expected sorted")
	}
	if ranking.Sorted(jokes("a", 1, "b", 2)) {
		t.Fatal("expected unsorted")
	}
}

// Random vote sequences must always leave a sorted board with the same ids.
func TestApplyVote_RandomSequences(t *testing.T) {
	r := rand.New(rand.NewSource(7))
	for round := 0; round < 200; round++ {
		size := 1 + r.Intn(10)
		list := make(ranking.List, size)
		for i := range list {
			list[i] = model.Joke{ID: fmt.Sprintf("j%d", i), Text: "t"}
		}
		want := ids(list)
		slices.Sort(want)

		for step := 0; step < 30; step++ {
			id := fmt.Sprintf("j%d", r.Intn(size+2)) // sometimes unknown
			delta := model.Up
			if r.Intn(2) == 0 {
				delta = model.Down
			}
			list = ranking.ApplyVote(list, id, delta)

			if !ranking.Sorted(list) {
				t.Fatalf("round %d step %d: board not sorted: %+v", round, step, list)
			}
		}

		got := ids(list)
		slices.Sort(got)
		if !slices.Equal(got, want) {
			t.Fatalf("round %d: ids changed: got %v want %v", round, got, want)
		}
	}
}

func TestReduce(t *testing.T) {
	Convey("Given the board reducer", t, func() {
		s := ranking.State{}

		Convey("When loading, voting and clearing", func() {
			s = ranking.Reduce(s, ranking.Loaded{Jokes: []model.Joke{{ID: "a"}, {ID: "b"}, {ID: "c"}}})
			So(ids(s.Jokes), ShouldResemble, []string{"a", "b", "c"})

			s = ranking.Reduce(s, ranking.Voted{ID: "c", Delta: model.Up})
			So(ids(s.Jokes), ShouldResemble, []string{"c", "a", "b"})
			So(s.LastVoteMatched, ShouldBeTrue)

			s = ranking.Reduce(s, ranking.Voted{ID: "nope", Delta: model.Up})
			So(s.LastVoteMatched, ShouldBeFalse)
			So(ids(s.Jokes), ShouldResemble, []string{"c", "a", "b"})

			s = ranking.Reduce(s, ranking.Cleared{})
			So(s.Jokes, ShouldBeEmpty)
		})

		Convey("When a vote carries an invalid delta", func() {
			s = ranking.Reduce(s, ranking.Loaded{Jokes: []model.Joke{{ID: "a"}}})
			next := ranking.Reduce(s, ranking.Voted{ID: "a", Delta: model.Delta(3)})

			Convey("Then the state should be returned unchanged", func() {
				So(next, ShouldResemble, s)
			})
		})

		Convey("When reducing does not mutate the previous state", func() {
			prev := ranking.Reduce(s, ranking.Loaded{Jokes: []model.Joke{{ID: "a"}, {ID: "b"}}})
			_ = ranking.Reduce(prev, ranking.Voted{ID: "b", Delta: model.Up})

			So(prev.Jokes[1].Votes, ShouldEqual, 0)
			So(ids(prev.Jokes), ShouldResemble, []string{"a", "b"})
		})
	})
}
