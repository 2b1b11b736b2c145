package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gear6io/mtgapi/pkg/errors"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override, e.g. MTGAPI_DATABASE_DSN.
const EnvPrefix = "MTGAPI_"

// Config represents the server configuration
type Config struct {
	Log      LogConfig      `yaml:"log"`
	API      APIConfig      `yaml:"api"`
	Database DatabaseConfig `yaml:"database"`
	MTGIO    MTGIOConfig    `yaml:"mtgio"`
	Proxy    ProxyConfig    `yaml:"proxy"`
}

// LogConfig represents logging configuration
type LogConfig struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`      // "json" or "console"
	FilePath   string `yaml:"file_path"`   // Path to log file
	Console    bool   `yaml:"console"`     // Whether to log to console
	MaxSize    int    `yaml:"max_size"`    // Max file size in MB
	MaxBackups int    `yaml:"max_backups"` // Max number of backup files
	MaxAge     int    `yaml:"max_age"`     // Max age in days
	Cleanup    bool   `yaml:"cleanup"`     // Whether to cleanup log file on startup
}

// APIConfig controls the public HTTP surface
type APIConfig struct {
	Address  string `yaml:"address"`
	Port     int    `yaml:"port"`
	RootPath string `yaml:"root_path"`
	Version  string `yaml:"version"`
}

// DatabaseConfig selects the SQL resource backing the table cache
type DatabaseConfig struct {
	Driver       string `yaml:"driver"` // empty uses the SQLite driver compiled in, "memory" keeps tables in process
	DSN          string `yaml:"dsn"`
	MaxOpenConns int    `yaml:"max_open_conns"`
}

// MTGIOConfig configures the upstream card API client
type MTGIOConfig struct {
	BaseURL            string        `yaml:"base_url"`
	Version            string        `yaml:"version"`
	RateLimitHeader    string        `yaml:"rate_limit_header"`
	Timeout            time.Duration `yaml:"timeout"`
	Retries            int           `yaml:"retries"`
	ExponentialBackoff bool          `yaml:"exponential_backoff"`
	MinimumWait        time.Duration `yaml:"minimum_wait"`
	MaximumWait        time.Duration `yaml:"maximum_wait"`
	FollowRedirects    bool          `yaml:"follow_redirects"`
}

// ProxyConfig holds optional outbound proxies
type ProxyConfig struct {
	HTTP  string `yaml:"http"`
	HTTPS string `yaml:"https"`
}

// LoadDefaultConfig returns a default configuration
func LoadDefaultConfig() *Config {
	return &Config{
		Log: LogConfig{
			Level:      "info",
			Format:     "console",
			FilePath:   "logs/mtgapi.log",
			Console:    true,
			MaxSize:    100, // 100MB
			MaxBackups: 3,
			MaxAge:     7, // 7 days
			Cleanup:    false,
		},
		API: APIConfig{
			Address:  DEFAULT_SERVER_ADDRESS,
			Port:     HTTP_SERVER_PORT,
			RootPath: DEFAULT_ROOT_PATH,
			Version:  DEFAULT_API_VERSION,
		},
		Database: DatabaseConfig{
			DSN:          "data/mtgapi.db",
			MaxOpenConns: 1,
		},
		MTGIO: MTGIOConfig{
			BaseURL:            DEFAULT_MTGIO_BASE_URL,
			Version:            DEFAULT_MTGIO_VERSION,
			RateLimitHeader:    DEFAULT_RATE_LIMIT_HEADER,
			Timeout:            30 * time.Second,
			Retries:            3,
			ExponentialBackoff: true,
			MinimumWait:        1 * time.Second,
			MaximumWait:        10 * time.Second,
			FollowRedirects:    true,
		},
	}
}

// LoadConfig loads configuration from a file, applies environment overrides
// and validates the result
func LoadConfig(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.New(ErrConfigFileReadFailed, "failed to read config file", err).AddContext("path", filename)
	}

	config := LoadDefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, errors.New(ErrConfigFileParseFailed, "failed to parse config file", err).AddContext("path", filename)
	}

	return finish(config)
}

// LoadFromEnv starts from the defaults and applies environment overrides only
func LoadFromEnv() (*Config, error) {
	return finish(LoadDefaultConfig())
}

func finish(config *Config) (*Config, error) {
	if err := config.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, errors.New(ErrConfigValidationFailed, "configuration validation failed", err)
	}

	return config, nil
}

// SaveConfig saves configuration to a file
func SaveConfig(config *Config, filename string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return errors.New(ErrConfigFileMarshalFailed, "failed to marshal config", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return errors.New(ErrConfigFileWriteFailed, "failed to write config file", err)
	}

	return nil
}

// ApplyEnv overrides fields from MTGAPI_* variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"LOG_LEVEL":               &c.Log.Level,
		"LOG_FORMAT":              &c.Log.Format,
		"LOG_FILE_PATH":           &c.Log.FilePath,
		"API_ADDRESS":             &c.API.Address,
		"API_ROOT_PATH":           &c.API.RootPath,
		"API_VERSION":             &c.API.Version,
		"DATABASE_DRIVER":         &c.Database.Driver,
		"DATABASE_DSN":            &c.Database.DSN,
		"MTGIO_BASE_URL":          &c.MTGIO.BaseURL,
		"MTGIO_VERSION":           &c.MTGIO.Version,
		"MTGIO_RATE_LIMIT_HEADER": &c.MTGIO.RateLimitHeader,
		"PROXY_HTTP":              &c.Proxy.HTTP,
		"PROXY_HTTPS":             &c.Proxy.HTTPS,
	}
	for key, field := range strs {
		if v, ok := lookup(EnvPrefix + key); ok {
			*field = v
		}
	}

	ints := map[string]*int{
		"API_PORT":                &c.API.Port,
		"DATABASE_MAX_OPEN_CONNS": &c.Database.MaxOpenConns,
		"MTGIO_RETRIES":           &c.MTGIO.Retries,
	}
	for key, field := range ints {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return errors.New(ErrConfigEnvInvalid, "invalid integer in environment", err).AddContext("variable", EnvPrefix+key)
		}
		*field = n
	}

	bools := map[string]*bool{
		"LOG_CONSOLE":               &c.Log.Console,
		"MTGIO_EXPONENTIAL_BACKOFF": &c.MTGIO.ExponentialBackoff,
		"MTGIO_FOLLOW_REDIRECTS":    &c.MTGIO.FollowRedirects,
	}
	for key, field := range bools {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return errors.New(ErrConfigEnvInvalid, "invalid boolean in environment", err).AddContext("variable", EnvPrefix+key)
		}
		*field = b
	}

	durations := map[string]*time.Duration{
		"MTGIO_TIMEOUT":      &c.MTGIO.Timeout,
		"MTGIO_MINIMUM_WAIT": &c.MTGIO.MinimumWait,
		"MTGIO_MAXIMUM_WAIT": &c.MTGIO.MaximumWait,
	}
	for key, field := range durations {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			continue
		}
		d, err := parseDuration(v)
		if err != nil {
			return errors.New(ErrConfigEnvInvalid, "invalid duration in environment", err).AddContext("variable", EnvPrefix+key)
		}
		*field = d
	}

	return nil
}

// parseDuration accepts Go durations ("1.5s") and bare seconds ("30").
func parseDuration(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.ParseFloat(v, 64); err == nil {
		return time.Duration(secs * float64(time.Second)), nil
	}
	return time.ParseDuration(v)
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.API.Validate(); err != nil {
		return errors.New(ErrAPIValidationFailed, "api validation failed", err)
	}

	if err := c.Database.Validate(); err != nil {
		return errors.New(ErrDatabaseValidationFailed, "database validation failed", err)
	}

	if err := c.MTGIO.Validate(); err != nil {
		return errors.New(ErrMTGIOValidationFailed, "mtgio validation failed", err)
	}

	if err := c.Proxy.Validate(); err != nil {
		return errors.New(ErrProxyValidationFailed, "proxy validation failed", err)
	}

	return nil
}

// Validate validates the API configuration
func (a *APIConfig) Validate() error {
	if !IsValidPort(a.Port) {
		return errors.New(ErrInvalidPort, fmt.Sprintf("port %d is out of range", a.Port), nil)
	}

	if a.RootPath != "" && !strings.HasPrefix(a.RootPath, "/") {
		return errors.New(ErrRootPathInvalid, "root_path must start with '/'", nil).AddContext("root_path", a.RootPath)
	}

	return nil
}

// Validate validates the database configuration
func (d *DatabaseConfig) Validate() error {
	if strings.TrimSpace(d.DSN) == "" {
		return errors.New(ErrDatabaseDSNRequired, "dsn is required in database configuration", nil)
	}

	if d.MaxOpenConns < 0 {
		return errors.New(ErrDatabasePoolInvalid, "max_open_conns cannot be negative", nil)
	}

	return nil
}

// Validate validates the upstream API configuration
func (m *MTGIOConfig) Validate() error {
	if m.BaseURL == "" {
		return errors.New(ErrMTGIOBaseURLRequired, "base_url is required in mtgio configuration", nil)
	}

	if u, err := url.Parse(m.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return errors.New(ErrMTGIOBaseURLInvalid, "base_url must be an absolute URL", err).AddContext("base_url", m.BaseURL)
	}

	if m.Retries < 1 {
		return errors.New(ErrMTGIORetriesInvalid, "retries must be at least 1", nil)
	}

	if m.MinimumWait > m.MaximumWait {
		return errors.New(ErrMTGIOWaitInvalid, "minimum_wait cannot exceed maximum_wait", nil).
			AddContext("minimum_wait", m.MinimumWait.String()).
			AddContext("maximum_wait", m.MaximumWait.String())
	}

	if m.Timeout <= 0 {
		return errors.New(ErrMTGIOTimeoutInvalid, "timeout must be positive", nil)
	}

	return nil
}

// Validate validates the proxy configuration
func (p *ProxyConfig) Validate() error {
	for scheme, raw := range map[string]string{"http": p.HTTP, "https": p.HTTPS} {
		if raw == "" {
			continue
		}
		if u, err := url.Parse(raw); err != nil || u.Host == "" {
			return errors.New(ErrProxyURLInvalid, "proxy must be an absolute URL", err).AddContext("scheme", scheme)
		}
	}
	return nil
}

// GetHTTPAddress returns the address the API binds to
func (c *Config) GetHTTPAddress() string {
	return fmt.Sprintf("%s:%d", c.API.Address, c.API.Port)
}

// GetAPIBaseURL returns the upstream base including its version segment
func (c *Config) GetAPIBaseURL() string {
	return strings.TrimRight(c.MTGIO.BaseURL, "/") + "/" + strings.Trim(c.MTGIO.Version, "/")
}
