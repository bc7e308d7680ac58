// Package config loads the settings the integrity gates need: worker-pool
// size, retry policy, remote storage bucket, and the relation metadata
// database. Configuration is JSON, merged from a global file and a project
// file over built-in defaults.
package config

// StorageConfig points at the remote storage backend for file products.
type StorageConfig struct {
	Bucket          string `json:"bucket,omitempty"`           // GCS bucket holding remote products
	CredentialsFile string `json:"credentials_file,omitempty"` // Service account key; empty uses default credentials
}

// SyncConfig tunes the remote metadata synchronizer.
type SyncConfig struct {
	Workers int `json:"workers,omitempty"` // Max concurrent fetches
}

// RetryConfig tunes the retrying storage client. Durations are milliseconds.
type RetryConfig struct {
	InitialIntervalMS   int     `json:"initial_interval_ms,omitempty"`
	MaxIntervalMS       int     `json:"max_interval_ms,omitempty"`
	MaxElapsedTimeMS    int     `json:"max_elapsed_time_ms,omitempty"`
	Multiplier          float64 `json:"multiplier,omitempty"`
	RandomizationFactor float64 `json:"randomization_factor,omitempty"`
}

// MetadataConfig points at the SQLite store for relation metadata.
type MetadataConfig struct {
	Path string `json:"path,omitempty"`
}

// Config is the top-level configuration.
type Config struct {
	Storage  StorageConfig  `json:"storage"`
	Sync     SyncConfig     `json:"sync"`
	Retry    RetryConfig    `json:"retry"`
	Metadata MetadataConfig `json:"metadata"`
}
