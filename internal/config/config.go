// Package config provides centralized configuration management for the connector
// server and CLI. It loads configuration from environment variables with sensible
// defaults and validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"path/filepath"
	"strconv"
	"time"
)

// RegistryFileName is the registry file created in the temp dir when
// CONNECTOR_REGISTRY_FILE is not set.
const RegistryFileName = "EIS_Connections.txt"

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server    ServerConfig
	Connector ConnectorConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Audit     AuditConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES" envAlt:"TRUSTED_PROXIES"`

	// MaxConcurrent is the number of workbook operations served at once (default: 8)
	MaxConcurrent int `env:"SERVER_MAX_CONCURRENT" default:"8"`

	// MaxWaitTime is how long a request waits for a workbook slot (default: 30s)
	MaxWaitTime time.Duration `env:"SERVER_MAX_WAIT_TIME" default:"30s"`
}

// ConnectorConfig holds the workbook and registry settings.
type ConnectorConfig struct {
	// ResourcesDir anchors relative workbook paths (default: working directory)
	ResourcesDir string `env:"CONNECTOR_RESOURCES_DIR"`

	// RegistryFile is the connection registry (default: <tmp>/EIS_Connections.txt)
	RegistryFile string `env:"CONNECTOR_REGISTRY_FILE"`

	// TemplateFile is copied to new connections whose workbook does not exist
	TemplateFile string `env:"CONNECTOR_TEMPLATE_FILE"`

	// DefaultFilename is offered as the default workbook name
	DefaultFilename string `env:"CONNECTOR_DEFAULT_FILENAME" default:"ExcelConnectorDemo.xlsx"`

	// ClientID is the application id expected in signed token audiences
	ClientID string `env:"CONNECTOR_CLIENT_ID"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 600)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"600"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// APIKeys is a comma-separated list of accepted X-API-Key values
	APIKeys []string `env:"API_KEYS"`

	// RequireAPIKey rejects requests without a valid key (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// AuditConfig holds audit sink settings.
type AuditConfig struct {
	// DatabaseURL enables the PostgreSQL audit sink when set
	DatabaseURL string `env:"AUDIT_DATABASE_URL"`

	// MaxConns is the maximum number of audit pool connections (default: 4)
	MaxConns int `env:"AUDIT_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of audit pool connections (default: 0)
	MinConns int `env:"AUDIT_MIN_CONNS" default:"0"`

	// MemoryEntries is how many entries the in-memory sink keeps (default: 1000)
	MemoryEntries int `env:"AUDIT_MEMORY_ENTRIES" default:"1000"`

	// RetentionDays is how long database entries are kept (default: 90)
	RetentionDays int `env:"AUDIT_RETENTION_DAYS" default:"90"`

	// PruneInterval is how often old database entries are deleted (default: 24h)
	PruneInterval time.Duration `env:"AUDIT_PRUNE_INTERVAL" default:"24h"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// ResolvePath anchors a relative workbook path at ResourcesDir.
func (c *ConnectorConfig) ResolvePath(name string) string {
	if name == "" || filepath.IsAbs(name) || c.ResourcesDir == "" {
		return name
	}
	return filepath.Join(c.ResourcesDir, name)
}
