package config

// DefaultConfig returns the built-in defaults. Storage is unset on purpose:
// remote sync stays disabled until a bucket is configured.
func DefaultConfig() *Config {
	return &Config{
		Sync: SyncConfig{
			Workers: 64,
		},
		Retry: RetryConfig{
			InitialIntervalMS:   100,
			MaxIntervalMS:       10_000,
			MaxElapsedTimeMS:    120_000,
			Multiplier:          2.0,
			RandomizationFactor: 0.5,
		},
		Metadata: MetadataConfig{
			Path: ".pipeline/metadata.db",
		},
	}
}
