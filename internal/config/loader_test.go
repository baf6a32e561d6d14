package config_test

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/okian/jokerank/internal/config"
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
				convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
				convey.So(cfg.JokeCount, convey.ShouldEqual, 5)
				convey.So(cfg.MaxAttempts, convey.ShouldEqual, 50)
				convey.So(cfg.RequestTimeoutMS, convey.ShouldEqual, 5000)
			})
		})

		convey.Convey("When loading config with environment variables", func() {
			_ = os.Setenv("JOKERANK_ADDR", ":8080")
			_ = os.Setenv("JOKERANK_JOKE_COUNT", "10")
			_ = os.Setenv("JOKERANK_ENDPOINT_URL", "http://localhost:1234/joke")
			_ = os.Setenv("JOKERANK_FETCH_ON_START", "false")
			_ = os.Setenv("JOKERANK_LOG_FORMAT", "json")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should override defaults with env vars", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.JokeCount, convey.ShouldEqual, 10)
				convey.So(cfg.EndpointURL, convey.ShouldEqual, "http://localhost:1234/joke")
				convey.So(cfg.FetchOnStart, convey.ShouldBeFalse)
				convey.So(cfg.LogFormat, convey.ShouldEqual, "json")
			})

			convey.Convey("And max_attempts should follow joke_count", func() {
				convey.So(cfg.MaxAttempts, convey.ShouldEqual, 100)
			})
		})

		convey.Convey("When loading config with YAML file", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
joke_count: 3
max_attempts: 7
request_timeout_ms: 250
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("JOKERANK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should load from YAML file", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":9090")
				convey.So(cfg.JokeCount, convey.ShouldEqual, 3)
				convey.So(cfg.MaxAttempts, convey.ShouldEqual, 7)
				convey.So(cfg.RequestTimeoutMS, convey.ShouldEqual, 250)
				convey.So(cfg.EndpointURL, convey.ShouldEqual, config.DefaultEndpointURL)
			})
		})

		convey.Convey("When loading config with both file and environment variables", func() {
			tmpFile := createTempConfigFile(`
addr: ":9090"
joke_count: 3
`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("JOKERANK_CONFIG", tmpFile)
			_ = os.Setenv("JOKERANK_ADDR", ":8080")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then environment variables should override file values", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
				convey.So(cfg.JokeCount, convey.ShouldEqual, 3)
				convey.So(cfg.MaxAttempts, convey.ShouldEqual, 30)
			})
		})

		convey.Convey("When loading config with invalid YAML file", func() {
			tmpFile := createTempConfigFile(`invalid: yaml: content: [`)
			defer func() { _ = os.Remove(tmpFile) }()
			_ = os.Setenv("JOKERANK_CONFIG", tmpFile)
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a load error", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrLoadConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with non-existent file", func() {
			_ = os.Setenv("JOKERANK_CONFIG", "/non/existent/file.yaml")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with empty addr", func() {
			_ = os.Setenv("JOKERANK_ADDR", "")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return a validation error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "addr must not be empty")
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When loading config with a relative endpoint", func() {
			_ = os.Setenv("JOKERANK_ENDPOINT_URL", "/joke")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should be rejected", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When loading config with invalid numeric environment variables", func() {
			_ = os.Setenv("JOKERANK_JOKE_COUNT", "five")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should return an error", func() {
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})

		convey.Convey("When max_attempts is below joke_count", func() {
			_ = os.Setenv("JOKERANK_JOKE_COUNT", "5")
			_ = os.Setenv("JOKERANK_MAX_ATTEMPTS", "4")
			defer clearConfigEnvVars()

			cfg, err := config.Load(ctx)

			convey.Convey("Then it should fail validation", func() {
				convey.So(cfg, convey.ShouldBeNil)
				convey.So(err.Error(), convey.ShouldContainSubstring, "max_attempts")
			})
		})
	})
}

// Helper functions.

func clearConfigEnvVars() {
	for _, envVar := range []string{
		"JOKERANK_CONFIG",
		"JOKERANK_ADDR",
		"JOKERANK_ENDPOINT_URL",
		"JOKERANK_JOKE_COUNT",
		"JOKERANK_MAX_ATTEMPTS",
		"JOKERANK_FETCH_ON_START",
		"JOKERANK_LOG_FORMAT",
		"JOKERANK_LOG_LEVEL",
	} {
		_ = os.Unsetenv(envVar)
	}
}

func createTempConfigFile(content string) string {
	tmpFile, err := os.CreateTemp("", "jokerank-config-*.yaml")
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
