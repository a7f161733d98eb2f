package filestore

import (
	"github.com/koustreak/pgdiscovery/internal/errs"
)

// Provider identifies the file storage backend.
type Provider string

const (
	ProviderMinIO Provider = "minio"
)

// Config holds the settings needed to publish snapshots to an object store.
type Config struct {
	// Provider is the storage backend (e.g. ProviderMinIO).
	Provider Provider `yaml:"provider"`

	// Endpoint is the host:port of the storage server.
	// Example: "localhost:9000" for local MinIO.
	Endpoint string `yaml:"endpoint"`

	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// UseSSL controls whether TLS is used for the connection.
	UseSSL bool `yaml:"use_ssl"`

	// Region is used by region-aware backends. Leave empty for MinIO.
	Region string `yaml:"region"`

	// Bucket receives published snapshots. It is created on first publish
	// when missing.
	Bucket string `yaml:"bucket"`

	// Prefix is prepended to every snapshot key, e.g. "snapshots".
	Prefix string `yaml:"prefix"`
}

// DefaultConfig returns a local-dev config for MinIO.
func DefaultConfig(endpoint, accessKey, secretKey string) *Config {
	return &Config{
		Provider:  ProviderMinIO,
		Endpoint:  endpoint,
		AccessKey: accessKey,
		SecretKey: secretKey,
		UseSSL:    false,
		Bucket:    "pgdiscover",
		Prefix:    "snapshots",
	}
}

// Enabled reports whether an endpoint has been configured.
func (c *Config) Enabled() bool {
	return c != nil && c.Endpoint != ""
}

// Validate checks that an enabled config names a known provider and a bucket.
func (c *Config) Validate() error {
	if !c.Enabled() {
		return errs.InvalidArgument("export endpoint is not configured")
	}
	if c.Provider != ProviderMinIO {
		return errs.InvalidArgument("unsupported export provider: %q", c.Provider)
	}
	if c.Bucket == "" {
		return errs.InvalidArgument("export bucket is required")
	}
	return nil
}
