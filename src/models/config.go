package models

// MConfig Structure
type MConfig struct {
	Name       string            `yaml:"name"`
	Host       string            `yaml:"host"`
	Port       int               `yaml:"port"`
	LogLevel   string            `yaml:"log_level"`
	Storage    MStorageConfig    `yaml:"storage"`
	Network    MNetworkConfig    `yaml:"network"`
	DataSource MDataSourceConfig `yaml:"data_source"`
	Analysis   MAnalysisConfig   `yaml:"analysis"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"`
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	Enabled            bool     `yaml:"enabled"`
	Proxies            []string `yaml:"proxies"`
	RequestTimeout     int      `yaml:"timeout"`
	MaxRetries         int      `yaml:"retries"`
	ConcurrentRequests int      `yaml:"concurrent_requests"`
	UserAgent          string   `yaml:"user_agent"`
}

type MDataSourceConfig struct {
	BarInterval           string          `yaml:"bar_interval"` // e.g. "5m"
	DataRetentionDays     int             `yaml:"data_retention_days"`
	UpdateIntervalSeconds int             `yaml:"update_interval_seconds"`
	Sources               []MSourceConfig `yaml:"sources"`
}

type MSourceConfig struct {
	Name    string   `yaml:"name"`
	Symbols []string `yaml:"symbols"`
	APIKey  string   `yaml:"api_key"` // Optional
}

// MAnalysisConfig tunes the structure pipeline. Zero values are replaced by
// defaults in config.Validate so a minimal YAML file stays valid.
type MAnalysisConfig struct {
	SwingLookback   int     `yaml:"swing_lookback"`    // bars on each side of a swing candidate
	NeutralBandFrac float64 `yaml:"neutral_band_frac"` // EQ band as a fraction of session range
	RetraceFrac     float64 `yaml:"retrace_frac"`      // pullback fraction flagging an EQ test
	RecentCloses    int     `yaml:"recent_closes"`     // closes sampled for the structure state
}
