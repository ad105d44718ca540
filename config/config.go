package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the global tool configuration
type Config struct {
	// General configuration
	General struct {
		// LogLevel is the logging level
		LogLevel string `yaml:"logLevel"`

		// DataDir is where the session journal lives
		DataDir string `yaml:"dataDir"`
	} `yaml:"general"`

	// Printer configuration
	Printer struct {
		// Name overrides the OS default printer when set
		Name string `yaml:"name"`

		// Backend selects the submitter: "system" or "dry-run"
		Backend string `yaml:"backend"`

		// SubmitTimeout bounds a single print submission
		SubmitTimeout time.Duration `yaml:"submitTimeout"`

		// DryRunFailures lists file names the dry-run backend refuses
		DryRunFailures []string `yaml:"dryRunFailures"`
	} `yaml:"printer"`

	// Hot folder configuration
	Watch struct {
		// Enabled starts the folder watcher in server mode
		Enabled bool `yaml:"enabled"`

		// Directory is the hot folder
		Directory string `yaml:"directory"`

		// Debounce is the quiet period before a changed file is reported
		Debounce time.Duration `yaml:"debounce"`

		// FlushInterval is how often pending files are handed to a session
		FlushInterval time.Duration `yaml:"flushInterval"`
	} `yaml:"watch"`

	// HTTP server configuration
	HTTP struct {
		// Enabled enables the HTTP server
		Enabled bool `yaml:"enabled"`

		// Address to bind the HTTP server
		Address string `yaml:"address"`

		// Port to bind the HTTP server
		Port int `yaml:"port"`
	} `yaml:"http"`

	// Security configuration
	Security struct {
		// EnableAuthentication requires a bearer token on the API
		EnableAuthentication bool `yaml:"enableAuthentication"`

		// JWT configuration
		JWT struct {
			// Secret is the signing key for tokens
			Secret string `yaml:"secret"`

			// ExpirationMinutes is the token validity duration
			ExpirationMinutes int `yaml:"expirationMinutes"`
		} `yaml:"jwt"`
	} `yaml:"security"`

	// Monitoring configuration
	Monitoring struct {
		// Prometheus enables the metrics endpoint
		Prometheus bool `yaml:"prometheus"`

		// Path of the metrics endpoint
		Path string `yaml:"path"`
	} `yaml:"monitoring"`

	// Session journal configuration
	Journal struct {
		// Engine is "memory" or "secure"
		Engine string `yaml:"engine"`

		// Path of the encrypted journal file
		Path string `yaml:"path"`

		// MaxEntries caps the number of kept reports (0 = unlimited)
		MaxEntries int `yaml:"maxEntries"`
	} `yaml:"journal"`

	Logging struct {
		Level       string `yaml:"level"` // "ERROR", "WARN", "INFO", "DEBUG"
		ChannelSize int    `yaml:"channelSize"`
		Format      string `yaml:"format"` // "json" or "text"
		Output      string `yaml:"output"` // "stdout", "stderr" or "file"
		FilePath    string `yaml:"filePath"`
	} `yaml:"logging"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	c := &Config{}

	// General configuration
	c.General.LogLevel = "info"
	c.General.DataDir = "./data"

	// Printer configuration
	c.Printer.Name = ""
	c.Printer.Backend = "system"
	c.Printer.SubmitTimeout = 30 * time.Second
	c.Printer.DryRunFailures = []string{}

	// Hot folder configuration
	c.Watch.Enabled = false
	c.Watch.Directory = ""
	c.Watch.Debounce = 2 * time.Second
	c.Watch.FlushInterval = 5 * time.Second

	// HTTP server configuration
	c.HTTP.Enabled = true
	c.HTTP.Address = "127.0.0.1"
	c.HTTP.Port = 8631

	// Security configuration
	c.Security.EnableAuthentication = false
	c.Security.JWT.Secret = "changeme"
	c.Security.JWT.ExpirationMinutes = 60 * 24

	// Monitoring configuration
	c.Monitoring.Prometheus = true
	c.Monitoring.Path = "/metrics"

	// Journal configuration
	c.Journal.Engine = "memory"
	c.Journal.Path = "journal.db"
	c.Journal.MaxEntries = 500

	// Logging configuration defaults
	c.Logging.Level = "INFO"
	c.Logging.ChannelSize = 1000
	c.Logging.Format = "json"
	c.Logging.Output = "stdout"
	c.Logging.FilePath = ""

	return c
}

// LoadConfig loads the configuration from a file
func LoadConfig(path string) (*Config, error) {
	// Check if the file exists
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s", path)
	}

	// Read file
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// Load the default configuration
	config := DefaultConfig()

	// Decode the YAML file
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	// Complete relative paths
	if !filepath.IsAbs(config.General.DataDir) {
		dir, err := filepath.Abs(filepath.Dir(path))
		if err != nil {
			return nil, fmt.Errorf("failed to get absolute path: %w", err)
		}
		config.General.DataDir = filepath.Join(dir, config.General.DataDir)
	}

	config.ResolvePaths()

	// Validate the configuration
	if err := validateConfig(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ResolvePaths anchors the journal path under the data directory
func (c *Config) ResolvePaths() {
	if c.Journal.Path != "" && !filepath.IsAbs(c.Journal.Path) {
		c.Journal.Path = filepath.Join(c.General.DataDir, c.Journal.Path)
	}
}

// SaveConfig saves the configuration to a file
func SaveConfig(config *Config, path string) error {
	// Encode the configuration to YAML
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	// Create parent directory if necessary
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	// Write file
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks a configuration built without LoadConfig
func (c *Config) Validate() error {
	return validateConfig(c)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	// Check the log level
	logLevel := strings.ToLower(config.General.LogLevel)
	if logLevel != "debug" && logLevel != "info" && logLevel != "warn" && logLevel != "error" {
		return fmt.Errorf("invalid log level: %s", config.General.LogLevel)
	}

	// Check the printer backend
	backend := strings.ToLower(config.Printer.Backend)
	if backend != "system" && backend != "dry-run" {
		return fmt.Errorf("invalid printer backend: %s", config.Printer.Backend)
	}

	if config.Printer.SubmitTimeout < 0 {
		return fmt.Errorf("invalid submit timeout: %s", config.Printer.SubmitTimeout)
	}

	// Check the journal engine
	engine := strings.ToLower(config.Journal.Engine)
	if engine != "memory" && engine != "secure" {
		return fmt.Errorf("invalid journal engine: %s", config.Journal.Engine)
	}
	if engine == "secure" && config.Journal.Path == "" {
		return fmt.Errorf("secure journal enabled but no path specified")
	}

	// check ports
	if config.HTTP.Enabled && (config.HTTP.Port < 1 || config.HTTP.Port > 65535) {
		return fmt.Errorf("invalid HTTP port: %d", config.HTTP.Port)
	}

	if config.Security.EnableAuthentication && config.Security.JWT.Secret == "" {
		return fmt.Errorf("authentication enabled but JWT secret is empty")
	}

	if config.Watch.Enabled && config.Watch.Directory == "" {
		return fmt.Errorf("watch enabled but no directory specified")
	}

	// Check the logging output
	format := strings.ToLower(config.Logging.Format)
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid log format: %s", config.Logging.Format)
	}

	output := strings.ToLower(config.Logging.Output)
	if output != "stdout" && output != "stderr" && output != "file" {
		return fmt.Errorf("invalid log output: %s", config.Logging.Output)
	}
	if output == "file" && config.Logging.FilePath == "" {
		return fmt.Errorf("log output is file but no file path specified")
	}

	return nil
}
