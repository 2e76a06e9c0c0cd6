package config

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			Driver: DriverPostgres,
			URLEnv: "POSTGRESQL_URL",
		},
		Import: ImportConfig{
			BatchSize: 1000,
			Sheet:     "Sheet1",
		},
		Logging: LoggingConfig{
			Level:      "info",
			File:       "",
			MaxSize:    10,
			MaxBackups: 3,
		},
	}
}
