package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultBaseURL          = "https://statsapi.mlb.com/api/v1"
	DefaultAPITimeout       = 30 * time.Second
	DefaultMaxRetries       = 3
	DefaultRetryBackoff     = 1 * time.Second
	DefaultDBPort           = 5432
	DefaultDBSSLMode        = "prefer"
	DefaultMaxConns         = 10
	DefaultMinConns         = 2
	DefaultSweepInterval    = 1 * time.Minute
	DefaultClosedSeasonTTL  = 24 * time.Hour
	DefaultCurrentSeasonTTL = 5 * time.Minute
	DefaultFirstSeason      = 2015
	DefaultRolloverMonth    = 1
	DefaultFetchDelay       = 1 * time.Second
	DefaultSyncInterval     = 6 * time.Hour
	DefaultBackupQueueSize  = 256
	DefaultBackupWorkers    = 2
	DefaultBackupTimeout    = 30 * time.Second
)

func (c *Config) applyDefaults() {
	// API defaults
	if c.API.BaseURL == "" {
		c.API.BaseURL = DefaultBaseURL
	}
	if c.API.Timeout == 0 {
		c.API.Timeout = DefaultAPITimeout
	}
	if c.API.MaxRetries == 0 {
		c.API.MaxRetries = DefaultMaxRetries
	}
	if c.API.RetryBackoff == 0 {
		c.API.RetryBackoff = DefaultRetryBackoff
	}

	// Database defaults
	applyDBDefaults(&c.Database.Postgres)

	// Cache defaults
	if c.Cache.SweepInterval == 0 {
		c.Cache.SweepInterval = DefaultSweepInterval
	}
	if c.Cache.ClosedSeasonTTL == 0 {
		c.Cache.ClosedSeasonTTL = DefaultClosedSeasonTTL
	}
	if c.Cache.CurrentSeasonTTL == 0 {
		c.Cache.CurrentSeasonTTL = DefaultCurrentSeasonTTL
	}

	// Seasons defaults
	if c.Seasons.First == 0 {
		c.Seasons.First = DefaultFirstSeason
	}
	if c.Seasons.RolloverMonth == 0 {
		c.Seasons.RolloverMonth = DefaultRolloverMonth
	}

	// Syncer defaults
	if c.Syncer.FetchDelay == 0 {
		c.Syncer.FetchDelay = DefaultFetchDelay
	}
	if c.Syncer.Interval == 0 {
		c.Syncer.Interval = DefaultSyncInterval
	}

	// Backup defaults
	if c.Backup.QueueSize == 0 {
		c.Backup.QueueSize = DefaultBackupQueueSize
	}
	if c.Backup.Workers == 0 {
		c.Backup.Workers = DefaultBackupWorkers
	}
	if c.Backup.Timeout == 0 {
		c.Backup.Timeout = DefaultBackupTimeout
	}
}

func applyDBDefaults(db *DBConfig) {
	if db.Port == 0 {
		db.Port = DefaultDBPort
	}
	if db.SSLMode == "" {
		db.SSLMode = DefaultDBSSLMode
	}
	if db.MaxConns == 0 {
		db.MaxConns = DefaultMaxConns
	}
	if db.MinConns == 0 {
		db.MinConns = DefaultMinConns
	}
}
