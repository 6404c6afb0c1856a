package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/fisher/internal/adapters/http/api"
	service "github.com/okian/fisher/internal/app"
	"github.com/okian/fisher/internal/config"
	"github.com/okian/fisher/pkg/logger"
	"github.com/okian/fisher/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/smartystreets/goconvey/convey"
)

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		convey.Convey("When testing configuration loading", func() {
			_ = os.Setenv("FISHER_ADDR", ":8080")
			_ = os.Setenv("FISHER_MAX_SESSIONS", "42")
			_ = os.Setenv("FISHER_DISPLAY_DIGITS", "5")
			defer func() {
				_ = os.Unsetenv("FISHER_ADDR")
				_ = os.Unsetenv("FISHER_MAX_SESSIONS")
				_ = os.Unsetenv("FISHER_DISPLAY_DIGITS")
			}()

			convey.Convey("Then configuration should be loadable", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.MaxSessions, convey.ShouldEqual, 42)
				convey.So(cfg.DisplayDigits, convey.ShouldEqual, 5)
			})
		})

		convey.Convey("When testing invalid configuration", func() {
			_ = os.Setenv("FISHER_ADDR", "")
			defer func() { _ = os.Unsetenv("FISHER_ADDR") }()

			convey.Convey("Then configuration loading should fail", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When testing metrics initialization", func() {
			convey.Convey("Then a metrics manager should be creatable on its own registry", func() {
				manager := metrics.NewManager(metrics.WithPrometheusRegistry(prometheus.NewRegistry()))
				convey.So(manager, convey.ShouldNotBeNil)
			})
		})
	})
}

func TestMainApplicationIntegration(t *testing.T) {
	convey.Convey("Given a service wired like main does", t, func() {
		cfg := config.New()
		svc := service.New(
			service.WithLogger(logger.Nop()),
			service.WithDisplayDigits(cfg.DisplayDigits),
			service.WithMaxSessions(cfg.MaxSessions),
			service.WithSessionTTL(cfg.SessionTTL()),
			service.WithMaxIterations(cfg.MaxSeriesIterations),
		)
		convey.So(svc.Start(context.Background()), convey.ShouldBeNil)
		defer svc.Stop()

		mux := http.NewServeMux()
		api.NewServer(svc, svc).Register(context.Background(), mux)

		convey.Convey("Then the registered routes answer", func() {
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)

			w = httptest.NewRecorder()
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/sessions", nil))
			convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
		})

		convey.Convey("Then the metrics updaters run without panicking", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)

			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			convey.So(func() { startSystemMetricsUpdater(ctx) }, convey.ShouldNotPanic)
			convey.So(func() { startServiceMetricsUpdater(ctx, svc) }, convey.ShouldNotPanic)
		})
	})
}

func TestRunShutsDownOnCancel(t *testing.T) {
	convey.Convey("Given a configuration on a free port", t, func() {
		cfg := config.New()
		cfg.Addr = "127.0.0.1:0"

		convey.Convey("When the context is cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- run(ctx, cfg) }()
			time.Sleep(50 * time.Millisecond)
			cancel()

			convey.Convey("Then run returns cleanly", func() {
				select {
				case err := <-done:
					convey.So(err, convey.ShouldBeNil)
				case <-time.After(5 * time.Second):
					t.Fatal("run did not return after cancel")
				}
			})
		})
	})
}
