package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/podiumd/podium/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func clearConfigEnvVars() {
	for _, key := range []string{
		"PODIUM_CONFIG",
		"PODIUM_LOG_LEVEL",
		"PODIUM_ADDR",
		"PODIUM_RECOMPUTE_QUEUE_SIZE",
		"PODIUM_RECOMPUTE_WORKERS",
		"PODIUM_AGGREGATE_PARALLELISM",
		"PODIUM_MAX_LEADERBOARD_LIMIT",
		"PODIUM_SCORE_RATE_RPS",
		"PODIUM_SCORE_RATE_BURST",
		"PODIUM_STORAGE_DRIVER",
		"PODIUM_STORAGE_DSN",
	} {
		_ = os.Unsetenv(key)
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "podium.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write temp config: %v", err)
	}
	return path
}

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()

		convey.Convey("When loading config with defaults only", func() {
			clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldNotBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.LogLevel, convey.ShouldEqual, "info")
				convey.So(cfg.RecomputeQueueSize, convey.ShouldEqual, 1024)
				convey.So(cfg.RecomputeWorkers, convey.ShouldEqual, 4)
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 100)
				convey.So(cfg.ScoreRateRPS, convey.ShouldEqual, 10)
				convey.So(cfg.ScoreRateBurst, convey.ShouldEqual, 20)
				convey.So(cfg.StorageDriver, convey.ShouldEqual, "memory")
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("PODIUM_ADDR", ":8080")
			_ = os.Setenv("PODIUM_RECOMPUTE_QUEUE_SIZE", "512")
			_ = os.Setenv("PODIUM_RECOMPUTE_WORKERS", "8")
			_ = os.Setenv("PODIUM_STORAGE_DRIVER", "sqlite3")
			_ = os.Setenv("PODIUM_STORAGE_DSN", "file:podium.db")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.RecomputeQueueSize, convey.ShouldEqual, 512)
				convey.So(cfg.RecomputeWorkers, convey.ShouldEqual, 8)
				convey.So(cfg.StorageDriver, convey.ShouldEqual, "sqlite3")
				convey.So(cfg.StorageDSN, convey.ShouldEqual, "file:podium.db")
			})
		})

		convey.Convey("When loading config from a YAML file", func() {
			clearConfigEnvVars()
			path := createTempConfigFile(t, `
addr: ":9090"
recompute_workers: 2
max_leaderboard_limit: 25
`)
			_ = os.Setenv("PODIUM_CONFIG", path)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then file values override defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.RecomputeWorkers, convey.ShouldEqual, 2)
				convey.So(cfg.MaxLeaderboardLimit, convey.ShouldEqual, 25)
				convey.So(cfg.RecomputeQueueSize, convey.ShouldEqual, 1024)
			})
		})

		convey.Convey("When env vars and a file disagree", func() {
			clearConfigEnvVars()
			path := createTempConfigFile(t, `addr: ":9090"`)
			_ = os.Setenv("PODIUM_CONFIG", path)
			_ = os.Setenv("PODIUM_ADDR", ":7070")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then env wins", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":7070")
			})
		})

		convey.Convey("When the config file does not exist", func() {
			clearConfigEnvVars()
			_ = os.Setenv("PODIUM_CONFIG", "/nonexistent/podium.yaml")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails with the load sentinel", func() {
				convey.So(err, convey.ShouldWrap, config.ErrLoadConfig)
			})
		})

		convey.Convey("When the storage driver is unknown", func() {
			clearConfigEnvVars()
			_ = os.Setenv("PODIUM_STORAGE_DRIVER", "cassandra")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When a SQL driver is selected without a DSN", func() {
			clearConfigEnvVars()
			_ = os.Setenv("PODIUM_STORAGE_DRIVER", "postgres")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then loading fails", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})

		convey.Convey("When a numeric field is out of range", func() {
			clearConfigEnvVars()
			_ = os.Setenv("PODIUM_RECOMPUTE_WORKERS", "0")
			defer clearConfigEnvVars()

			_, err := config.Load(ctx)

			convey.Convey("Then validation rejects it", func() {
				convey.So(err, convey.ShouldWrap, config.ErrInvalidConfig)
			})
		})
	})
}

func TestConfigNew(t *testing.T) {
	convey.Convey("Given the default config", t, func() {
		cfg := config.New()

		convey.Convey("Then it passes its own validation", func() {
			clearConfigEnvVars()
			loaded, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(loaded.Addr, convey.ShouldEqual, cfg.Addr)
			convey.So(loaded.StorageDriver, convey.ShouldEqual, cfg.StorageDriver)
		})
	})
}
