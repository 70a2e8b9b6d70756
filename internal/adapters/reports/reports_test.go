package reports_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/okian/snipe/internal/adapters/reports"
	"github.com/okian/snipe/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	if err := logger.Init(); err != nil {
		panic(err)
	}
}

var now = time.Date(2016, 8, 10, 12, 0, 0, 0, time.UTC)

func until(d time.Duration) string {
	return now.Add(d).Format(time.RFC3339)
}

func TestFilter(t *testing.T) {
	Convey("Given reports expiring at different times", t, func() {
		all := []reports.Report{
			{Name: "Dratini", Coords: "1,1", Until: until(30 * time.Second)},
			{Name: "Snorlax", Coords: "2,2", Until: until(300 * time.Second)},
		}

		Convey("When filtered with the 60 second horizon", func() {
			kept := reports.Filter(all, now, time.Minute)

			Convey("Then only the report with 300 seconds left survives", func() {
				So(kept, ShouldHaveLength, 1)
				So(kept[0].Coords, ShouldEqual, "2,2")
			})
		})

		Convey("When a report expires exactly at the horizon", func() {
			kept := reports.Filter([]reports.Report{{Coords: "3,3", Until: until(time.Minute)}}, now, time.Minute)
			So(kept, ShouldBeEmpty)
		})

		Convey("When expiry strings use other ISO-8601 shapes", func() {
			kept := reports.Filter([]reports.Report{
				{Coords: "4,4", Until: "2016-08-10T12:10:00.000Z"},
				{Coords: "5,5", Until: "2016-08-10T14:10:00+02:00"},
				{Coords: "6,6", Until: "2016-08-10T12:10:00"},
				{Coords: "7,7", Until: "soon"},
			}, now, time.Minute)

			Convey("Then parsable ones are kept and garbage is dropped", func() {
				So(kept, ShouldHaveLength, 3)
				So(kept[2].Coords, ShouldEqual, "6,6")
			})
		})
	})
}

func TestFetcher(t *testing.T) {
	Convey("Given a report service", t, func() {
		ctx := context.Background()

		Convey("When it answers with reports", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				fmt.Fprintf(w, `{"results":[{"id":1,"name":"Dratini","coords":"1,1","until":%q},{"id":2,"name":"Snorlax","coords":"2,2","until":%q}]}`,
					until(30*time.Second), until(5*time.Minute))
			}))
			defer srv.Close()

			f, err := reports.NewFetcher(srv.URL, reports.WithTimeout(2*time.Second))
			So(err, ShouldBeNil)
			So(f.URL(), ShouldEqual, srv.URL)

			all, err := f.Fetch(ctx)
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 2)

			active := f.Active(ctx, now)
			So(active, ShouldHaveLength, 1)
			So(active[0].Name, ShouldEqual, "Snorlax")
		})

		Convey("When it answers with something that is not JSON", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte("<html>maintenance</html>"))
			}))
			defer srv.Close()

			f, err := reports.NewFetcher(srv.URL)
			So(err, ShouldBeNil)

			_, err = f.Fetch(ctx)
			So(errors.Is(err, reports.ErrUnavailable), ShouldBeTrue)
			So(f.Active(ctx, now), ShouldBeEmpty)
		})

		Convey("When it fails with a server error", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
			}))
			defer srv.Close()

			f, err := reports.NewFetcher(srv.URL)
			So(err, ShouldBeNil)

			_, err = f.Fetch(ctx)
			So(errors.Is(err, reports.ErrUnavailable), ShouldBeTrue)
		})

		Convey("When it is unreachable", func() {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
			url := srv.URL
			srv.Close()

			f, err := reports.NewFetcher(url, reports.WithTimeout(time.Second))
			So(err, ShouldBeNil)
			So(f.Active(ctx, now), ShouldBeEmpty)
		})
	})
}
