package config

import "time"

// Config is the root configuration for the data-access core.
type Config struct {
	Instance InstanceConfig `yaml:"instance"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	Cache    CacheConfig    `yaml:"cache"`
	Seasons  SeasonsConfig  `yaml:"seasons"`
	Syncer   SyncerConfig   `yaml:"syncer"`
	Backup   BackupConfig   `yaml:"backup"`
}

// InstanceConfig identifies this deployment.
type InstanceConfig struct {
	ID string `yaml:"id"`
}

// APIConfig holds live-source (StatsAPI) client settings.
type APIConfig struct {
	BaseURL      string        `yaml:"base_url"`
	Timeout      time.Duration `yaml:"timeout"`
	MaxRetries   int           `yaml:"max_retries"`
	RetryBackoff time.Duration `yaml:"retry_backoff"`
}

// DatabaseConfig holds the historical-store connection.
type DatabaseConfig struct {
	Postgres DBConfig `yaml:"postgres"`
}

// DBConfig holds a single database connection.
type DBConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	SSLMode  string `yaml:"ssl_mode"`
	MaxConns int    `yaml:"max_conns"`
	MinConns int    `yaml:"min_conns"`
}

// CacheConfig holds in-process cache settings. The TTLs are freshness
// classes: closed-season data is immutable and cached for a long time,
// current-season data is capped at minutes to bound staleness.
type CacheConfig struct {
	SweepInterval    time.Duration `yaml:"sweep_interval"`
	ClosedSeasonTTL  time.Duration `yaml:"closed_season_ttl"`
	CurrentSeasonTTL time.Duration `yaml:"current_season_ttl"`
}

// SeasonsConfig holds the season calendar. First is the only fixed
// absolute value; everything else is derived relative to the current
// season.
type SeasonsConfig struct {
	First         int `yaml:"first"`
	RolloverMonth int `yaml:"rollover_month"`
}

// SyncerConfig holds backfill settings.
type SyncerConfig struct {
	FetchDelay time.Duration `yaml:"fetch_delay"`
	Interval   time.Duration `yaml:"interval"` // scheduled gap-sync interval (daemon mode)
	Entities   []string      `yaml:"entities"` // empty means every mirrored entity
}

// BackupConfig holds write-through backup settings.
type BackupConfig struct {
	QueueSize int           `yaml:"queue_size"`
	Workers   int           `yaml:"workers"`
	Timeout   time.Duration `yaml:"timeout"`
}
