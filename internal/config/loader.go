package config

import (
	"context"
	"net/url"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Environment variables read by Load.
const (
	EnvPrefix = "JOKERANK_"
	EnvConfig = "JOKERANK_CONFIG"
)

// Load builds a Config by layering defaults, optional file, and env vars.
// Order of precedence (low -> high):
//  1. defaults (New())
//  2. file (YAML) if JOKERANK_CONFIG is set
//  3. env (prefix JOKERANK_)
//
// When max_attempts is not set explicitly it follows joke_count.
func Load(ctx context.Context) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path := os.Getenv(EnvConfig); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, loadFailed(err)
		}
	}

	// JOKERANK_JOKE_COUNT -> joke_count (flat keys, underscores preserved)
	envProvider := env.Provider(EnvPrefix, ".", func(s string) string {
		s = strings.ToLower(s)
		s = strings.TrimPrefix(s, strings.ToLower(EnvPrefix))
		return s
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, loadFailed(err)
	}
	// the loader's own pointer variable is not a setting
	k.Delete("config")

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, loadFailed(err)
	}

	if !k.Exists("max_attempts") {
		cfg.MaxAttempts = cfg.JokeCount * DefaultMaxAttemptFactor
	}

	if err := cfg.Validate(ctx); err != nil {
		return nil, err
	}
	if u, err := url.Parse(cfg.EndpointURL); err != nil || u.Scheme == "" || u.Host == "" {
		return nil, invalid("endpoint_url must be an absolute URL")
	}
	return &cfg, nil
}
