package service_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/okian/jokerank/internal/adapters/source"
	service "github.com/okian/jokerank/internal/app"
	"github.com/okian/jokerank/internal/app/acquire"
	"github.com/okian/jokerank/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

// remote serves the ids in order, cycling, in the icanhazdadjoke format.
func remote(ids []string, failAt int) (*httptest.Server, *atomic.Int64) {
	var n atomic.Int64
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		i := int(n.Add(1)) - 1
		if failAt >= 0 && i == failAt {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		id := ids[i%len(ids)]
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		_, _ = fmt.Fprintf(w, `{"id":%q,"joke":"joke %s","status":200}`, id, id)
	}))
	return srv, &n
}

func newBoard(url string, count int) *service.Service {
	src := source.NewHTTPSource(url, source.WithTimeout(2*time.Second))
	return service.New(
		service.WithFetcher(acquire.New(src)),
		service.WithJokeCount(count),
	)
}

func TestServiceIntegration(t *testing.T) {
	Convey("Given a board backed by an HTTP joke source", t, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When the remote repeats ids", func() {
			srv, hits := remote([]string{"a", "b", "a", "c"}, -1)
			defer srv.Close()
			svc := newBoard(srv.URL, 3)

			err := svc.Refresh(ctx)

			Convey("Then three distinct jokes are held with zero votes", func() {
				So(err, ShouldBeNil)
				So(svc.Jokes(ctx), ShouldResemble, []model.Joke{
					{ID: "a", Text: "joke a"},
					{ID: "b", Text: "joke b"},
					{ID: "c", Text: "joke c"},
				})
				So(hits.Load(), ShouldEqual, int64(4))
			})

			Convey("And voting reorders the board", func() {
				_, _ = svc.Vote(ctx, "c", model.Up)
				_, _ = svc.Vote(ctx, "c", model.Up)
				out, _ := svc.Vote(ctx, "b", model.Up)
				So(ids(out), ShouldResemble, []string{"c", "b", "a"})
				So(out[0].Votes, ShouldEqual, 2)
			})
		})

		Convey("When the remote fails midway", func() {
			srv, _ := remote([]string{"a", "b", "c", "d", "e"}, 2)
			defer srv.Close()
			svc := newBoard(srv.URL, 5)

			err := svc.Refresh(ctx)

			Convey("Then no jokes are exposed and the status offers a retry", func() {
				So(errors.Is(err, acquire.ErrNetwork), ShouldBeTrue)
				var aerr *acquire.AcquisitionError
				So(errors.As(err, &aerr), ShouldBeTrue)
				So(aerr.Collected, ShouldEqual, 2)

				So(svc.Jokes(ctx), ShouldBeEmpty)
				So(svc.Status(ctx).State, ShouldEqual, service.StateFailed)
			})

			Convey("And a retry succeeds", func() {
				So(svc.Refresh(ctx), ShouldBeNil)
				So(len(svc.Jokes(ctx)), ShouldEqual, 5)
				So(svc.Status(ctx).Generation, ShouldEqual, uint64(2))
			})
		})

		Convey("When the remote only knows two jokes", func() {
			srv, hits := remote([]string{"a", "b"}, -1)
			defer srv.Close()
			svc := newBoard(srv.URL, 3)

			err := svc.Refresh(ctx)

			Convey("Then the attempt cap ends the cycle", func() {
				So(errors.Is(err, acquire.ErrExhausted), ShouldBeTrue)
				So(hits.Load(), ShouldEqual, int64(30))
				So(svc.Jokes(ctx), ShouldBeEmpty)
			})
		})
	})
}
