package geo_test

import (
	"errors"
	"testing"

	"github.com/okian/snipe/internal/domain/geo"
	. "github.com/smartystreets/goconvey/convey"
)

func TestParseCoordinate(t *testing.T) {
	Convey("Given coordinate strings", t, func() {
		Convey("When the string is well formed", func() {
			c, err := geo.ParseCoordinate("40.7681, -73.9819")

			Convey("Then both parts are parsed", func() {
				So(err, ShouldBeNil)
				So(c.Lat, ShouldAlmostEqual, 40.7681)
				So(c.Lng, ShouldAlmostEqual, -73.9819)
			})
		})

		Convey("When the string has surrounding and inner whitespace", func() {
			c, err := geo.ParseCoordinate("  -33.8 ,151  ")

			Convey("Then spaces are ignored", func() {
				So(err, ShouldBeNil)
				So(c, ShouldResemble, geo.Coordinate{Lat: -33.8, Lng: 151})
			})
		})

		Convey("When the string is malformed", func() {
			for _, raw := range []string{"", "abc", "1.5", "1.5;2.5", "1.,2", "+1,2", "1,2,3", "1e3,2"} {
				_, err := geo.ParseCoordinate(raw)
				So(errors.Is(err, geo.ErrInvalidCoordinate), ShouldBeTrue)
			}
		})
	})
}

func TestNormalizeAndString(t *testing.T) {
	Convey("Given a raw coordinate with spaces", t, func() {
		So(geo.Normalize(" 1.5 , 2.5 "), ShouldEqual, "1.5,2.5")

		c, err := geo.ParseCoordinate("1.5, -2")
		So(err, ShouldBeNil)
		So(c.String(), ShouldEqual, "1.5,-2")
	})
}

func TestDistance(t *testing.T) {
	Convey("Given two points", t, func() {
		Convey("When they are identical", func() {
			So(geo.Distance(10, 20, 10, 20), ShouldEqual, 0)
		})

		Convey("When they are one degree of latitude apart", func() {
			d := geo.Distance(0, 0, 1, 0)

			Convey("Then the distance is about 111 km", func() {
				So(d, ShouldAlmostEqual, 111195, 50)
			})
		})

		Convey("When ordering by distance", func() {
			origin := geo.Coordinate{Lat: 0, Lng: 0}
			near := geo.Coordinate{Lat: 0.001, Lng: 0}
			far := geo.Coordinate{Lat: 0.01, Lng: 0}

			So(origin.DistanceTo(near), ShouldBeLessThan, origin.DistanceTo(far))
		})
	})
}
