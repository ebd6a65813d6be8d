package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	. "github.com/smartystreets/goconvey/convey"
)

func TestMetricsManagerCreation(t *testing.T) {
	Convey("Given metrics manager creation", t, func() {
		Convey("When creating with default options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(WithPrometheusRegistry(registry))

			Convey("Then it should be created with defaults", func() {
				So(manager, ShouldNotBeNil)
				So(manager.namespace, ShouldEqual, "pulse")
				So(manager.RefreshInterval(), ShouldEqual, 10*time.Second)
			})
		})

		Convey("When creating with custom options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace("test_namespace"),
				WithSubsystem("test_subsystem"),
				WithHistogramBuckets([]float64{0.1, 0.5, 1.0}),
				WithMetricsEnabled(true),
				WithRefreshInterval(5*time.Second),
				WithCustomLabels(map[string]string{"env": "test"}),
				WithPrometheusRegistry(registry),
			)

			Convey("Then the options should be applied", func() {
				So(manager.namespace, ShouldEqual, "test_namespace")
				So(manager.subsystem, ShouldEqual, "test_subsystem")
				So(manager.histogramBuckets, ShouldResemble, []float64{0.1, 0.5, 1.0})
				So(manager.RefreshInterval(), ShouldEqual, 5*time.Second)
			})

			Convey("And metric names should carry namespace and subsystem", func() {
				manager.RecordHTTPRequest("health", "GET", "200")
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)

				names := make([]string, 0, len(families))
				for _, f := range families {
					names = append(names, f.GetName())
				}
				So(names, ShouldContain, "test_namespace_test_subsystem_http_requests_total")
			})
		})

		Convey("When empty values are passed to options", func() {
			registry := prometheus.NewRegistry()
			manager := NewManager(
				WithNamespace(""),
				WithRefreshInterval(0),
				WithHistogramBuckets(nil),
				WithPrometheusRegistry(registry),
			)

			Convey("Then defaults should be kept", func() {
				So(manager.namespace, ShouldEqual, "pulse")
				So(manager.RefreshInterval(), ShouldEqual, 10*time.Second)
				So(len(manager.histogramBuckets), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsRecording(t *testing.T) {
	Convey("Given a manager on a private registry", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording HTTP requests", func() {
			manager.RecordHTTPRequest("home", "GET", "200")
			manager.RecordHTTPRequest("home", "GET", "200")
			manager.RecordHTTPRequestDuration("home", "GET", "200", 3)

			Convey("Then the counter should reflect each call", func() {
				So(testutil.ToFloat64(manager.httpRequests.WithLabelValues("home", "GET", "200")), ShouldEqual, 2)
			})
		})

		Convey("When recording echo outcomes and recovered faults", func() {
			manager.RecordEchoRequest("echoed")
			manager.RecordEchoRequest("invalid_json")
			manager.RecordEchoRequest("invalid_json")
			manager.RecordPanicRecovered("info")
			manager.RecordErrorByType("server_error", "high")

			Convey("Then each label set should be counted separately", func() {
				So(testutil.ToFloat64(manager.echoRequests.WithLabelValues("echoed")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.echoRequests.WithLabelValues("invalid_json")), ShouldEqual, 2)
				So(testutil.ToFloat64(manager.panicsRecovered.WithLabelValues("info")), ShouldEqual, 1)
				So(testutil.ToFloat64(manager.errorRateByType.WithLabelValues("server_error", "high")), ShouldEqual, 1)
			})
		})

		Convey("When updating system gauges", func() {
			manager.UpdateSystemMemoryUsage(2048)
			manager.UpdateSystemGoroutineCount(7)
			manager.RecordSystemGCPauseTime(0.2)
			manager.SetBuildInfo("1.0.0", "go1.24.6 linux/amd64")

			Convey("Then the gauges should hold the latest values", func() {
				So(testutil.ToFloat64(manager.systemMemoryUsage), ShouldEqual, 2048)
				So(testutil.ToFloat64(manager.systemGoroutineCount), ShouldEqual, 7)
				So(testutil.ToFloat64(manager.buildInfo.WithLabelValues("1.0.0", "go1.24.6 linux/amd64")), ShouldEqual, 1)
			})
		})
	})

	Convey("Given a disabled manager", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(WithPrometheusRegistry(registry), WithMetricsEnabled(false))

		Convey("When recording", func() {
			manager.RecordHTTPRequest("home", "GET", "200")
			manager.RecordEchoRequest("echoed")

			Convey("Then nothing should be counted", func() {
				So(testutil.ToFloat64(manager.httpRequests.WithLabelValues("home", "GET", "200")), ShouldEqual, 0)
				So(testutil.ToFloat64(manager.echoRequests.WithLabelValues("echoed")), ShouldEqual, 0)
			})
		})
	})
}

func TestPackageLevelHelpers(t *testing.T) {
	Convey("Given the global manager", t, func() {
		So(Global(), ShouldNotBeNil)
		So(GetRegistry(), ShouldNotBeNil)

		Convey("When using the package-level helpers", func() {
			So(func() {
				RecordHTTPRequest("not_found", "DELETE", "404")
				RecordHTTPRequestDuration("not_found", "DELETE", "404", 1.5)
				RecordEchoRequest("echoed")
				RecordPanicRecovered("home")
				RecordErrorByType("not_found", "medium")
				SetBuildInfo("1.0.0", "go")
				UpdateSystemMemoryUsage(1024)
				UpdateSystemGoroutineCount(3)
				RecordSystemGCPauseTime(0.1)
			}, ShouldNotPanic)

			Convey("Then the global registry should expose them", func() {
				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				So(len(families), ShouldBeGreaterThan, 0)
			})
		})
	})
}

func TestMetricsConcurrency(t *testing.T) {
	Convey("Given metrics concurrency", t, func() {
		registry := prometheus.NewRegistry()
		manager := NewManager(WithPrometheusRegistry(registry))

		Convey("When recording metrics concurrently", func() {
			done := make(chan bool, 10)

			for i := 0; i < 10; i++ {
				go func() {
					for j := 0; j < 100; j++ {
						manager.RecordHTTPRequest("health", "GET", "200")
						manager.RecordHTTPRequestDuration("health", "GET", "200", float64(j))
					}
					done <- true
				}()
			}

			for i := 0; i < 10; i++ {
				<-done
			}

			Convey("Then no increments should be lost", func() {
				So(testutil.ToFloat64(manager.httpRequests.WithLabelValues("health", "GET", "200")), ShouldEqual, 1000)
			})
		})
	})
}

func TestInit(t *testing.T) {
	Convey("Given the package-level manager", t, func() {
		previous := GetRegistry()

		Convey("When it is rebuilt with naming and labels", func() {
			manager := Init(
				WithNamespace("initns"),
				WithSubsystem("api"),
				WithRefreshInterval(3*time.Second),
				WithCustomLabels(map[string]string{"region": "eu"}),
				WithHistogramBuckets([]float64{1, 10}),
			)
			RecordEchoRequest("echoed")

			Convey("Then helpers should record into the new registry", func() {
				So(Global(), ShouldEqual, manager)
				So(GetRegistry(), ShouldNotEqual, previous)
				So(manager.RefreshInterval(), ShouldEqual, 3*time.Second)

				n, err := testutil.GatherAndCount(GetRegistry(), "initns_api_echo_requests_total")
				So(err, ShouldBeNil)
				So(n, ShouldEqual, 1)
				So(testutil.ToFloat64(manager.echoRequests.WithLabelValues("echoed")), ShouldEqual, 1)

				families, err := GetRegistry().Gather()
				So(err, ShouldBeNil)
				labels := map[string]string{}
				for _, f := range families {
					if f.GetName() != "initns_api_echo_requests_total" {
						continue
					}
					for _, l := range f.GetMetric()[0].GetLabel() {
						labels[l.GetName()] = l.GetValue()
					}
				}
				So(labels["region"], ShouldEqual, "eu")
				So(labels["outcome"], ShouldEqual, "echoed")
			})
		})

		Convey("When it is rebuilt disabled", func() {
			manager := Init(WithMetricsEnabled(false))
			RecordEchoRequest("echoed")

			Convey("Then nothing should be recorded", func() {
				So(testutil.ToFloat64(manager.echoRequests.WithLabelValues("echoed")), ShouldEqual, 0)
			})
		})

		Reset(func() { Init() })
	})
}
