package smoke

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	service "github.com/okian/pulse/internal/app"
	"github.com/okian/pulse/internal/config"
	"github.com/okian/pulse/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

func init() {
	var discard bytes.Buffer
	if err := logger.Init(logger.WithWriter(&discard)); err != nil {
		panic(err)
	}
}

func newService(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.New()
	cfg.DocsEnabled = false
	svc := service.New(service.WithConfig(cfg), service.WithHostnameFunc(func() (string, error) { return "smoke-host", nil }))
	srv := httptest.NewServer(svc.Handler(context.Background()))
	t.Cleanup(srv.Close)
	return srv
}

func TestRun(t *testing.T) {
	Convey("Given a running service", t, func() {
		srv := newService(t)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		Convey("When running the smoke tool against it", func() {
			stats, err := Run(ctx, &Config{
				BaseURL:  srv.URL,
				Requests: 200,
				Workers:  8,
				Timeout:  5 * time.Second,
			})

			Convey("Then every check and echo should pass", func() {
				So(err, ShouldBeNil)
				So(stats.ChecksPassed, ShouldEqual, len(contractChecks()))
				So(stats.ChecksFailed, ShouldEqual, 0)
				So(stats.EchoesSent, ShouldEqual, 200)
				So(stats.EchoesMatched, ShouldEqual, 200)
				So(stats.OK(), ShouldBeTrue)
			})
		})
	})

	Convey("Given a service that answers everything with an empty object", t, func() {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{}`))
		}))
		defer srv.Close()

		Convey("When running the smoke tool against it", func() {
			stats, err := Run(context.Background(), &Config{
				BaseURL:  srv.URL,
				Requests: 5,
				Workers:  2,
				Timeout:  time.Second,
			})

			Convey("Then the run should fail with samples", func() {
				So(errors.Is(err, ErrSmokeFailed), ShouldBeTrue)
				So(stats.ChecksFailed, ShouldBeGreaterThan, 0)
				So(stats.EchoesFailed, ShouldEqual, 5)
				So(stats.FailureSamples, ShouldNotBeEmpty)
			})
		})
	})
}

func TestVerifyEcho(t *testing.T) {
	Convey("Given a posted document", t, func() {
		sent := []byte(`{"id":"a","value":12345678901234567890,"list":[1,2]}`)

		Convey("When the reply carries the same document", func() {
			body := []byte(`{"echo":{"list":[1,2],"value":12345678901234567890,"id":"a"},"timestamp":"2024-05-01T12:30:45.123456"}`)

			Convey("Then it should match regardless of key order", func() {
				So(verifyEcho(sent, http.StatusOK, body), ShouldBeNil)
			})
		})

		Convey("When a large number lost precision", func() {
			body := []byte(`{"echo":{"id":"a","value":12345678901234567000,"list":[1,2]},"timestamp":"2024-05-01T12:30:45.123456"}`)

			Convey("Then it should be a mismatch", func() {
				So(errors.Is(verifyEcho(sent, http.StatusOK, body), ErrEchoMismatch), ShouldBeTrue)
			})
		})

		Convey("When the timestamp has the wrong shape", func() {
			body := []byte(`{"echo":{"id":"a"},"timestamp":"2024-05-01T12:30:45Z"}`)

			Convey("Then the body should be rejected", func() {
				So(errors.Is(verifyEcho(sent, http.StatusOK, body), ErrUnexpectedBody), ShouldBeTrue)
			})
		})

		Convey("When the status is not 200", func() {
			Convey("Then the status should be rejected", func() {
				So(errors.Is(verifyEcho(sent, http.StatusBadRequest, nil), ErrUnexpectedStatus), ShouldBeTrue)
			})
		})
	})
}

func TestGeneratePayloads(t *testing.T) {
	Convey("Given generated payloads", t, func() {
		payloads := generatePayloads(50)

		Convey("Then each should carry a distinct ID", func() {
			So(payloads, ShouldHaveLength, 50)
			seen := make(map[string]bool, len(payloads))
			for _, p := range payloads {
				So(seen[p.ID], ShouldBeFalse)
				seen[p.ID] = true
			}
		})
	})
}
