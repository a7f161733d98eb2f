// Package config loads pgdiscover settings from a YAML file, an optional
// .env file and PGDISCOVER_* environment variables, in that order of
// increasing precedence.
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/koustreak/pgdiscovery/internal/database"
	"github.com/koustreak/pgdiscovery/internal/errs"
	"github.com/koustreak/pgdiscovery/internal/filestore"
	"github.com/koustreak/pgdiscovery/internal/logger"
	"github.com/koustreak/pgdiscovery/internal/server"
	"go.yaml.in/yaml/v3"
)

// EnvPrefix is prepended to every environment override.
const EnvPrefix = "PGDISCOVER_"

// DefaultEnvFile is loaded when present and no other env file is named.
const DefaultEnvFile = ".env"

// Config is the complete pgdiscover configuration.
type Config struct {
	Database database.Config  `yaml:"database"`
	Log      logger.Config    `yaml:"log"`
	Server   server.Config    `yaml:"server"`
	Export   filestore.Config `yaml:"export"`

	// Concurrency bounds the relations inspected in parallel by snapshots.
	Concurrency int `yaml:"concurrency"`
}

// Default returns a config that connects to a local PostgreSQL.
func Default() *Config {
	return &Config{
		Database:    *database.DefaultConfig("postgres://localhost:5432/postgres"),
		Log:         *logger.DefaultConfig(),
		Server:      *server.DefaultConfig(),
		Export:      *filestore.DefaultConfig("", "", ""),
		Concurrency: 4,
	}
}

// Load builds a Config from defaults, then path (skipped when empty), then
// envFile (DefaultEnvFile when empty and present), then the environment.
func Load(path, envFile string) (*Config, error) {
	if err := loadEnvFile(envFile); err != nil {
		return nil, err
	}

	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errs.Wrap(errs.ErrKindInvalidArgument, "failed to read config file "+path, err)
		}
		if err := Parse(data, cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(cfg, os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes YAML into cfg. Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return errs.Wrap(errs.ErrKindInvalidArgument, "failed to parse config", err)
	}
	return nil
}

func loadEnvFile(envFile string) error {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return errs.Wrap(errs.ErrKindInvalidArgument, "failed to load env file "+envFile, err)
		}
		return nil
	}
	if _, err := os.Stat(DefaultEnvFile); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(DefaultEnvFile); err != nil {
		return errs.Wrap(errs.ErrKindInvalidArgument, "failed to load "+DefaultEnvFile, err)
	}
	return nil
}

// Validate checks the sections every command needs. The export section is
// checked only when an endpoint is configured.
func (c *Config) Validate() error {
	if err := c.Database.Validate(); err != nil {
		return err
	}
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if c.Export.Enabled() {
		if err := c.Export.Validate(); err != nil {
			return err
		}
	}
	if c.Concurrency < 1 {
		return errs.InvalidArgument("concurrency must be at least 1: %d", c.Concurrency)
	}
	return nil
}

type lookupFunc func(key string) (string, bool)

// applyEnv overlays PGDISCOVER_* variables onto cfg.
func applyEnv(cfg *Config, lookup lookupFunc) error {
	e := envReader{lookup: lookup}

	if v, ok := e.str("DB_DRIVER"); ok {
		cfg.Database.Driver = database.Driver(strings.ToLower(v))
	}
	e.setStr("DB_DSN", &cfg.Database.DSN)
	e.setInt32("DB_MAX_CONNS", &cfg.Database.MaxConns)
	e.setInt32("DB_MIN_CONNS", &cfg.Database.MinConns)
	e.setDuration("DB_CONNECT_TIMEOUT", &cfg.Database.ConnectTimeout)
	e.setDuration("DB_QUERY_TIMEOUT", &cfg.Database.QueryTimeout)

	e.setStr("LOG_LEVEL", &cfg.Log.Level)
	e.setStr("LOG_FORMAT", &cfg.Log.Format)

	e.setStr("SERVER_ADDR", &cfg.Server.Addr)

	e.setStr("EXPORT_ENDPOINT", &cfg.Export.Endpoint)
	e.setStr("EXPORT_ACCESS_KEY", &cfg.Export.AccessKey)
	e.setStr("EXPORT_SECRET_KEY", &cfg.Export.SecretKey)
	e.setStr("EXPORT_REGION", &cfg.Export.Region)
	e.setStr("EXPORT_BUCKET", &cfg.Export.Bucket)
	e.setStr("EXPORT_PREFIX", &cfg.Export.Prefix)
	e.setBool("EXPORT_USE_SSL", &cfg.Export.UseSSL)

	e.setInt("CONCURRENCY", &cfg.Concurrency)

	return e.err
}

// envReader collects the first parse error so applyEnv reads linearly.
type envReader struct {
	lookup lookupFunc
	err    error
}

func (e *envReader) str(key string) (string, bool) {
	v, ok := e.lookup(EnvPrefix + key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

func (e *envReader) fail(key, v string, err error) {
	if e.err == nil {
		e.err = errs.Wrap(errs.ErrKindInvalidArgument, "invalid value for "+EnvPrefix+key+": "+strconv.Quote(v), err)
	}
}

func (e *envReader) setStr(key string, dst *string) {
	if v, ok := e.str(key); ok {
		*dst = v
	}
}

func (e *envReader) setInt(key string, dst *int) {
	if v, ok := e.str(key); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = n
	}
}

func (e *envReader) setInt32(key string, dst *int32) {
	if v, ok := e.str(key); ok {
		n, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = int32(n)
	}
}

func (e *envReader) setBool(key string, dst *bool) {
	if v, ok := e.str(key); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = b
	}
}

func (e *envReader) setDuration(key string, dst *time.Duration) {
	if v, ok := e.str(key); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			e.fail(key, v, err)
			return
		}
		*dst = d
	}
}
