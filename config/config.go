// Package config holds the application's runtime configuration: the JSON
// document described in the server's external interface, plus a
// hot-swappable Provider so handlers always see a consistent snapshot.
package config

import (
	"sync/atomic"
	"time"
)

// Server holds the bind endpoint and worker-pool configuration.
type Server struct {
	Address string `json:"address"`
	Port    int    `json:"port"`
	Threads int    `json:"threads"`
}

// SSL holds TLS material paths. The files themselves are produced
// externally; this component only loads them.
type SSL struct {
	CertificateFile string `json:"certificate_file"`
	PrivateKeyFile  string `json:"private_key_file"`
	DHParamsFile    string `json:"dh_params_file"`
}

// Database holds the store DSN components and pool sizing.
type Database struct {
	Address           string `json:"address"`
	Port              int    `json:"port"`
	Username          string `json:"username"`
	Password          string `json:"password"`
	DBName            string `json:"db_name"`
	MaxConnections    int    `json:"max_connections"`
	ConnectionTimeout int    `json:"connection_timeout"` // seconds
}

// JWT holds signing and token lifetime configuration.
type JWT struct {
	SecretKey                string `json:"secret_key"`
	AccessTokenExpiryMinutes int    `json:"access_token_expiry_minutes"`
	RefreshTokenExpiryDays   int    `json:"refresh_token_expiry_days"`
}

// Logging holds sink selection for the access/error/console loggers.
type Logging struct {
	Level         string `json:"level"` // trace,debug,info,warning,error,fatal
	AccessLog     string `json:"access_log"`
	ErrorLog      string `json:"error_log"`
	ConsoleOutput bool   `json:"console_output"`
	LogAccess     bool   `json:"log_access"`
}

// Config is the root configuration document.
type Config struct {
	Server   Server   `json:"server"`
	SSL      SSL      `json:"ssl"`
	Database Database `json:"database"`
	JWT      JWT      `json:"jwt"`
	Logging  Logging  `json:"logging"`

	// Source records where this config was loaded from, for diagnostics only.
	Source string `json:"-"`
}

// AccessTokenExpiry returns the configured access-token lifetime as a Duration.
func (c *Config) AccessTokenExpiry() time.Duration {
	return time.Duration(c.JWT.AccessTokenExpiryMinutes) * time.Minute
}

// RefreshTokenExpiry returns the configured refresh-token lifetime as a Duration.
func (c *Config) RefreshTokenExpiry() time.Duration {
	return time.Duration(c.JWT.RefreshTokenExpiryDays) * 24 * time.Hour
}

// ConnectTimeout returns the configured pool-acquire timeout as a Duration.
func (c *Config) ConnectTimeout() time.Duration {
	return time.Duration(c.Database.ConnectionTimeout) * time.Second
}

// Provider holds the active configuration and allows atomic hot-swapping,
// so a config reload (e.g. on SIGHUP) never races an in-flight request
// reading a half-updated struct.
type Provider struct {
	value atomic.Value // holds *Config
}

// NewProvider creates a Provider seeded with the given config. Panics on a
// nil config: a Provider without a config is a construction bug, not a
// runtime condition to recover from.
func NewProvider(c *Config) *Provider {
	if c == nil {
		panic("config: initial config cannot be nil")
	}
	p := &Provider{}
	p.value.Store(c)
	return p
}

// Get returns the currently active configuration snapshot. Safe for
// concurrent use from any handler goroutine.
func (p *Provider) Get() *Config {
	return p.value.Load().(*Config)
}

// Update atomically swaps in a new configuration. The caller is responsible
// for validating newConfig before calling Update.
func (p *Provider) Update(newConfig *Config) {
	p.value.Store(newConfig)
}
