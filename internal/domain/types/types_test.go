package types_test

import (
	"encoding/json"
	"testing"
	"time"

	types "github.com/okian/pulse/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestTimestamp(t *testing.T) {
	Convey("Given a time in a non-UTC zone", t, func() {
		loc := time.FixedZone("UTC+2", 2*60*60)
		ts := time.Date(2024, 5, 1, 14, 30, 45, 123456789, loc)

		Convey("When formatting it", func() {
			s := types.Timestamp(ts)

			Convey("Then it should be UTC with microseconds and no zone", func() {
				So(s, ShouldEqual, "2024-05-01T12:30:45.123456")
			})

			Convey("And it should parse back to the same instant at microsecond precision", func() {
				parsed, err := types.ParseTimestamp(s)
				So(err, ShouldBeNil)
				So(parsed.Equal(ts.Truncate(time.Microsecond)), ShouldBeTrue)
			})
		})

		Convey("When formatting a whole second", func() {
			s := types.Timestamp(time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC))

			Convey("Then the fraction should still be present", func() {
				So(s, ShouldEqual, "2024-01-02T03:04:05.000000")
			})
		})
	})
}

func TestEnvelopes(t *testing.T) {
	Convey("Given response envelopes", t, func() {
		Convey("When an echo response carries null", func() {
			b, err := json.Marshal(types.EchoResponse{Echo: nil, Timestamp: "t"})

			Convey("Then the echo key should still be present", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"echo":null,"timestamp":"t"}`)
			})
		})

		Convey("When an error response has no message", func() {
			b, err := json.Marshal(types.ErrorResponse{Error: "Invalid JSON data"})

			Convey("Then only the error key should be emitted", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"error":"Invalid JSON data"}`)
			})
		})

		Convey("When an info response is encoded", func() {
			b, err := json.Marshal(types.InfoResponse{
				AppName:        "a",
				Version:        "v",
				RuntimeVersion: "go",
				Hostname:       "h",
				Environment:    "e",
			})

			Convey("Then it should use snake_case keys", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, `{"app_name":"a","version":"v","runtime_version":"go","hostname":"h","environment":"e"}`)
			})
		})
	})
}
