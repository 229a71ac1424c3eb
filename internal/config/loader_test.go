package config_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/rosterquiz/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfigLoader(t *testing.T) {
	convey.Convey("Given a config loader", t, func() {
		ctx := context.Background()
		clearConfigEnvVars()

		convey.Convey("When loading config with defaults only", func() {
			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load successfully with defaults", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg, convey.ShouldResemble, config.New(ctx))
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("ROSTERQUIZ_STORE_PATH", "/tmp/rq.db")
			_ = os.Setenv("ROSTERQUIZ_DAILY_MAX_MISSES", "5")
			_ = os.Setenv("ROSTERQUIZ_DAILY_TIMEZONE", "UTC")
			_ = os.Setenv("ROSTERQUIZ_LOG_JSON", "true")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.StorePath, convey.ShouldEqual, "/tmp/rq.db")
				convey.So(cfg.DailyMaxMisses, convey.ShouldEqual, 5)
				convey.So(cfg.DailyTimezone, convey.ShouldEqual, "UTC")
				convey.So(cfg.LogJSON, convey.ShouldBeTrue)
				convey.So(cfg.GauntletMaxMisses, convey.ShouldEqual, 3)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(t, `
log_level: debug
catalog_path: /srv/teams.yaml
reverse_deck_size: 8
reverse_win_threshold: 6
metrics_namespace: quiz
metrics_labels:
  host: den
`)
			_ = os.Setenv("ROSTERQUIZ_CONFIG", tmpFile)
			_ = os.Setenv("ROSTERQUIZ_REVERSE_DECK_SIZE", "10")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "debug")              // From file
				convey.So(cfg.CatalogPath, convey.ShouldEqual, "/srv/teams.yaml") // From file
				convey.So(cfg.ReverseWinThreshold, convey.ShouldEqual, 6)         // From file
				convey.So(cfg.ReverseDeckSize, convey.ShouldEqual, 10)            // Overridden by env
				convey.So(cfg.ReverseMaxMisses, convey.ShouldEqual, 3)            // From defaults
				convey.So(cfg.MetricsNamespace, convey.ShouldEqual, "quiz")
				convey.So(cfg.MetricsLabels, convey.ShouldResemble, map[string]string{"host": "den"})
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(t, `invalid: yaml: content: [`)
			_ = os.Setenv("ROSTERQUIZ_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("ROSTERQUIZ_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("ROSTERQUIZ_DAILY_MAX_MISSES", "not_a_number")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config that fails validation", func() {
			_ = os.Setenv("ROSTERQUIZ_DAILY_BOUNDARY", "3pm")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
				convey.So(err.Error(), convey.ShouldContainSubstring, "daily_boundary")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestLoadDotEnv(t *testing.T) {
	convey.Convey("Given a .env file", t, func() {
		clearConfigEnvVars()
		defer clearConfigEnvVars()
		path := filepath.Join(t.TempDir(), ".env")
		convey.So(os.WriteFile(path, []byte("ROSTERQUIZ_SUGGESTION_LIMIT=4\nROSTERQUIZ_LOG_LEVEL=warn\n"), 0o600), convey.ShouldBeNil)

		convey.Convey("When a variable is already set", func() {
			_ = os.Setenv("ROSTERQUIZ_LOG_LEVEL", "error")
			convey.So(config.LoadDotEnv(path), convey.ShouldBeNil)
			cfg, err := config.Load(context.Background())

			convey.Convey("Then the file should fill gaps without overriding it", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.SuggestionLimit, convey.ShouldEqual, 4)
				convey.So(cfg.LogLevel, convey.ShouldEqual, "error")
			})
		})

		convey.Convey("When the file does not exist", func() {
			err := config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env"))

			convey.Convey("Then it should be skipped", func() {
				convey.So(err, convey.ShouldBeNil)
			})
		})
	})
}

func clearConfigEnvVars() {
	for _, kv := range os.Environ() {
		key, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(key, "ROSTERQUIZ_") {
			_ = os.Unsetenv(key)
		}
	}
}

func createTempConfigFile(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "rosterquiz.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}
