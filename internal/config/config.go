package config

import (
	"path/filepath"
	"slices"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout bounds the single page fetch of an audit.
	DefaultTimeout = 10 * time.Second

	// DefaultBatchSize is the number of audits run concurrently when several
	// URLs are given.
	DefaultBatchSize = 4

	// AppName is the application name used for XDG directory paths.
	AppName = "shopaudit"

	// DefaultUserAgent identifies the auditor in HTTP requests.
	DefaultUserAgent = "Mozilla/5.0 (compatible; ShopAudit/1.0; +https://github.com/nao1215/shopaudit)"

	// DefaultMaxBodySize limits how much of a page is read.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultFormat is the report format written by the audit command.
	DefaultFormat = "text"

	// DefaultStore is the storage backend used by the CLI.
	DefaultStore = "sqlite"
)

// Output formats accepted by Config.Format.
var formats = []string{"text", "json", "markdown", "html"}

// Storage backends accepted by Config.Store.
var stores = []string{"sqlite", "memory", "redis"}

// Config holds the options of one audit run.
// It is populated from CLI flags and the optional config file and passed
// down explicitly.
type Config struct {
	// Timeout bounds each page fetch, body included.
	Timeout time.Duration

	// UserAgent is sent with every fetch.
	UserAgent string

	// MaxBodySize is the maximum number of body bytes read. 0 means the default.
	MaxBodySize int64

	// BatchSize is the number of concurrent audits for multiple targets.
	BatchSize int

	// ConfigFilePath is the explicit config file path, if any.
	ConfigFilePath string

	// File holds thresholds and site overrides loaded from the config file.
	File *File

	// Format is the report format: text, json, markdown or html.
	Format string

	// ReportFile is where the report is written. Empty means stdout.
	ReportFile string

	// Targets are the URLs to audit.
	Targets []string

	// SaveToDB enables persisting results.
	SaveToDB bool

	// Store selects the storage backend: sqlite, memory or redis.
	Store string

	// DBDir is the directory holding the SQLite database.
	DBDir string

	// RedisURL is the connection URL of the redis store.
	RedisURL string

	// Verbose enables debug logging.
	Verbose bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		BatchSize:   DefaultBatchSize,
		Format:      DefaultFormat,
		Store:       DefaultStore,
		File:        NewFile(),
	}
}

// Thresholds returns the thresholds from the config file, or the defaults.
func (c *Config) Thresholds() Thresholds {
	if c.File == nil {
		return DefaultThresholds()
	}
	return c.File.Thresholds
}

// XDGDataDir returns the XDG data directory for ShopAudit.
// On Linux: ~/.local/share/shopaudit
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for ShopAudit.
// On Linux: ~/.config/shopaudit
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first problem found.
func (c *Config) Validate() error {
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}
	if !slices.Contains(formats, c.Format) {
		return ErrUnknownFormat
	}
	if c.SaveToDB {
		if !slices.Contains(stores, c.Store) {
			return ErrUnknownStore
		}
		if c.Store == "redis" && c.RedisURL == "" {
			return ErrMissingRedisURL
		}
	}
	return c.Thresholds().Validate()
}

// Default server values.
const (
	DefaultAddr      = ":8080"
	DefaultRateLimit = 2.0
	DefaultBurst     = 5
)

// ServerConfig holds the options of the HTTP API.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string

	// PremiumToken unlocks premium exports when presented as a bearer token.
	// Empty disables premium exports.
	PremiumToken string

	// RateLimit is the sustained number of audits per second per client. 0 disables limiting.
	RateLimit float64

	// Burst is the number of audits a client may issue at once.
	Burst int

	// AllowedOrigins lists CORS origins. Empty allows none.
	AllowedOrigins []string
}

// NewServerConfig creates a ServerConfig with default values.
func NewServerConfig() *ServerConfig {
	return &ServerConfig{
		Addr:      DefaultAddr,
		RateLimit: DefaultRateLimit,
		Burst:     DefaultBurst,
	}
}

// Validate checks if the server configuration is valid.
func (c *ServerConfig) Validate() error {
	if c.Addr == "" {
		return ErrInvalidAddr
	}
	if c.RateLimit < 0 || c.Burst < 0 {
		return ErrInvalidRateLimit
	}
	return nil
}
