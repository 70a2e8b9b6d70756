package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/snipe/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9081")
				convey.So(cfg.TickIntervalMS, convey.ShouldEqual, 1000)
				convey.So(cfg.VIPs, convey.ShouldBeEmpty)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("SNIPE_ADDR", ":8080")
			_ = os.Setenv("SNIPE_SNIPE_LIST", "/tmp/snipe.json")
			_ = os.Setenv("SNIPE_USERNAME", "ash")
			_ = os.Setenv("SNIPE_RETRY_DELAY_MS", "500")
			_ = os.Setenv("SNIPE_VIPS", "Dragonite, Snorlax")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.SnipeList, convey.ShouldEqual, "/tmp/snipe.json")
				convey.So(cfg.Username, convey.ShouldEqual, "ash")
				convey.So(cfg.RetryDelayMS, convey.ShouldEqual, 500)
				convey.So(cfg.VIPs, convey.ShouldResemble, []string{"Dragonite", "Snorlax"})
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			yamlContent := `
addr: ":9090"
username: misty
snipe_list: config/snipe.json
vips:
  - Lapras
  - Snorlax
cache_ttl_s: 120
home_lat: 35.6895
home_lng: 139.6917
`
			tmpFile := createTempConfigFile(yamlContent)
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SNIPE_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Username, convey.ShouldEqual, "misty")
				convey.So(cfg.SnipeList, convey.ShouldEqual, "config/snipe.json")
				convey.So(cfg.VIPs, convey.ShouldResemble, []string{"Lapras", "Snorlax"})
				convey.So(cfg.CacheTTLS, convey.ShouldEqual, 120)
				convey.So(cfg.HomeLat, convey.ShouldAlmostEqual, 35.6895)
				convey.So(cfg.RetryDelayMS, convey.ShouldEqual, 2000)
			})
		})

		convey.Convey("When env vars override the YAML file", func() {
			tmpFile := createTempConfigFile("addr: \":9090\"\nusername: misty\n")
			defer func() { _ = os.Remove(tmpFile) }()

			_ = os.Setenv("SNIPE_CONFIG", tmpFile)
			_ = os.Setenv("SNIPE_USERNAME", "brock")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.Username, convey.ShouldEqual, "brock")
			})
		})

		convey.Convey("When the YAML file is missing", func() {
			_ = os.Setenv("SNIPE_CONFIG", "/nonexistent/snipe.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail with a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When an env var makes the config invalid", func() {
			_ = os.Setenv("SNIPE_TICK_INTERVAL_MS", "0")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	envVars := []string{
		"SNIPE_CONFIG",
		"SNIPE_ADDR",
		"SNIPE_SNIPE_LIST",
		"SNIPE_USERNAME",
		"SNIPE_RETRY_DELAY_MS",
		"SNIPE_VIPS",
		"SNIPE_TICK_INTERVAL_MS",
	}
	for _, envVar := range envVars {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "snipe-config-*.yaml")
	if err != nil {
		panic(err)
	}

	if _, err := tmpFile.WriteString(content); err != nil {
		panic(err)
	}

	if err := tmpFile.Close(); err != nil {
		panic(err)
	}

	return tmpFile.Name()
}
