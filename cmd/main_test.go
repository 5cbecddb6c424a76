package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/thrive/internal/config"
	"github.com/okian/thrive/pkg/logger"
)

func TestNewService(t *testing.T) {
	convey.Convey("Given configuration", t, func() {
		_ = logger.Init()
		cfg := config.New()

		convey.Convey("When the timezone is valid", func() {
			cfg.Timezone = "Europe/Berlin"
			cfg.WorkerCount = 3
			svc, err := newService(cfg, logger.Get())

			convey.Convey("Then the service carries it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(svc.Location().String(), convey.ShouldEqual, "Europe/Berlin")
				convey.So(svc.GetStats()["workerCount"], convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When the timezone is unknown", func() {
			cfg.Timezone = "Mars/Olympus"
			_, err := newService(cfg, logger.Get())
			convey.So(err, convey.ShouldNotBeNil)
		})
	})
}

func TestNewMux(t *testing.T) {
	convey.Convey("Given a started service and its mux", t, func() {
		_ = logger.Init()
		ctx := context.Background()
		svc, err := newService(config.New(), logger.Get())
		convey.So(err, convey.ShouldBeNil)
		convey.So(svc.Start(ctx), convey.ShouldBeNil)
		defer svc.Stop()
		mux := newMux(ctx, svc)

		convey.Convey("Then docs and API routes are served", func() {
			for _, target := range []string{"/api-docs", "/openapi.yaml", "/stats", "/healthz", "/v1/level?xp=1"} {
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, http.NoBody))
				convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
			}

			w := httptest.NewRecorder()
			body := `{"sleep_hours":7,"mood":6,"stress":4,"exercise_minutes":20,"screen_time_hours":7}`
			mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/v1/score", strings.NewReader(body)))
			convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
		})

		convey.Convey("Then metrics refresh from stats", func() {
			convey.So(func() { updateServiceMetrics(svc) }, convey.ShouldNotPanic)
		})
	})
}
