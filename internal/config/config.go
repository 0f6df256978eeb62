// Package config holds runtime settings for the planloop sync engine and the
// demo daemon, assembled from defaults, an optional JSON file, and flags.
package config

import "time"

// Config holds runtime settings for the sync engine.
//
// Units: intervals and delays are time.Duration values (e.g., 30*time.Second).
type Config struct {
	// DBPath is the path to the local SQLite database file.
	DBPath string

	// FirestoreProjectID identifies the Firestore project backing sync.
	FirestoreProjectID string

	// FirestoreCredentialsFile is the optional path to a service-account
	// credentials JSON file. Empty means application default credentials.
	FirestoreCredentialsFile string

	// IDTokenFile is the path to the stored authentication ID token.
	IDTokenFile string

	// PushInterval is how often dirty entities are pushed to the remote store.
	PushInterval time.Duration

	// StartupDelay is the pause before the first pull after Start, giving the
	// host application time to finish initializing.
	StartupDelay time.Duration

	// MaxBatchSize caps the number of operations per remote write batch. The
	// backend enforces a hard limit of 500; stay under it.
	MaxBatchSize int

	// S3Region, S3Bucket, S3BaseEndpoint, S3AccessKey and S3SecretKey
	// configure presigned-URL generation for recipe photos.
	S3Region       string
	S3Bucket       string
	S3BaseEndpoint string
	S3AccessKey    string
	S3SecretKey    string

	// LogLevel is one of debug, info, warn, error.
	LogLevel string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = "planloop.db"
	c.PushInterval = 30 * time.Second
	c.StartupDelay = 2 * time.Second
	c.MaxBatchSize = 450
	c.LogLevel = "info"
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
