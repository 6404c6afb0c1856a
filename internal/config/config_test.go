package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/fisher/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
			convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
			convey.So(cfg.LogFormat, convey.ShouldEqual, "text")
			convey.So(cfg.MaxSessions, convey.ShouldEqual, 10_000)
			convey.So(cfg.DisplayDigits, convey.ShouldEqual, 3)
			convey.So(cfg.MaxSeriesIterations, convey.ShouldEqual, 5000)
			convey.So(cfg.SessionTTL(), convey.ShouldEqual, time.Hour)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with out-of-range values", t, func() {
		cases := map[string]func(*config.Config){
			"empty addr":         func(c *config.Config) { c.Addr = " " },
			"no sessions":        func(c *config.Config) { c.MaxSessions = 0 },
			"negative ttl":       func(c *config.Config) { c.SessionTTLSeconds = -1 },
			"negative digits":    func(c *config.Config) { c.DisplayDigits = -1 },
			"too many digits":    func(c *config.Config) { c.DisplayDigits = 18 },
			"no iterations":      func(c *config.Config) { c.MaxSeriesIterations = 0 },
			"unknown log format": func(c *config.Config) { c.LogFormat = "xml" },
		}

		convey.Convey("Then each one is rejected as invalid", func() {
			for _, mutate := range cases {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			}
		})
	})
}
