package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"
)

const (
	SourceStdin    = "stdin"
	SourceArgs     = "args"
	SourcePostgres = "postgres"
	SourceRedis    = "redis"
)

type Config struct {
	Source   string   `yaml:"source"`
	Ranges   []string `yaml:"ranges"`
	Random   bool     `yaml:"random"`
	Seed     uint64   `yaml:"seed"`
	Limit    int      `yaml:"limit"`
	LogLevel string   `yaml:"log_level"`
	Serve    string   `yaml:"serve"`
	Postgres Postgres `yaml:"postgres"`
	Redis    Redis    `yaml:"redis"`
}

type Postgres struct {
	DSN        string  `yaml:"dsn"`
	NetworkIDs []int64 `yaml:"network_ids"`
}

type Redis struct {
	URL string `yaml:"url"`
	Key string `yaml:"key"`
}

func Default() Config {
	return Config{
		Source:   SourceStdin,
		LogLevel: "warn",
		Redis: Redis{
			URL: "redis://localhost:6379/0",
			Key: "netenum:ranges",
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.UnmarshalStrict(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch c.Source {
	case SourceStdin, SourceArgs, SourceRedis:
	case SourcePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("source %q requires a postgres dsn", c.Source)
		}
	default:
		return fmt.Errorf("unknown source %q", c.Source)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative: %d", c.Limit)
	}
	return nil
}
