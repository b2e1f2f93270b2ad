// File: internal/config/config.go
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// Components depend on this instead of the concrete struct so tests can hand
// in their own values.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Bridge() BridgeConfig
	LinkedIn() LinkedInConfig
	Scraper() ScraperConfig
	Server() ServerConfig

	// Bridge Setters
	SetBridgeEnabled(bool)
	SetBridgeFallback(bool)
	SetBridgeURL(string)

	// Browser Setters
	SetBrowserHeadless(bool)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg   LoggerConfig   `mapstructure:"logger" yaml:"logger"`
	BrowserCfg  BrowserConfig  `mapstructure:"browser" yaml:"browser"`
	BridgeCfg   BridgeConfig   `mapstructure:"bridge" yaml:"bridge"`
	LinkedInCfg LinkedInConfig `mapstructure:"linkedin" yaml:"linkedin"`
	ScraperCfg  ScraperConfig  `mapstructure:"scraper" yaml:"scraper"`
	ServerCfg   ServerConfig   `mapstructure:"server" yaml:"server"`
}

// --- Interface Method Implementations (Getters) ---

func (c *Config) Logger() LoggerConfig     { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig   { return c.BrowserCfg }
func (c *Config) Bridge() BridgeConfig     { return c.BridgeCfg }
func (c *Config) LinkedIn() LinkedInConfig { return c.LinkedInCfg }
func (c *Config) Scraper() ScraperConfig   { return c.ScraperCfg }
func (c *Config) Server() ServerConfig     { return c.ServerCfg }

// --- Interface Method Implementations (Setters) ---

func (c *Config) SetBridgeEnabled(b bool)  { c.BridgeCfg.Enabled = b }
func (c *Config) SetBridgeFallback(b bool) { c.BridgeCfg.FallbackToDirect = b }
func (c *Config) SetBridgeURL(u string)    { c.BridgeCfg.URL = u }
func (c *Config) SetBrowserHeadless(b bool) {
	c.BrowserCfg.Headless = b
}

// LoggerConfig holds all the configuration for the logger.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"log_file" yaml:"log_file"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig defines the color codes for different log levels.
type ColorConfig struct {
	Debug  string `mapstructure:"debug" yaml:"debug"`
	Info   string `mapstructure:"info" yaml:"info"`
	Warn   string `mapstructure:"warn" yaml:"warn"`
	Error  string `mapstructure:"error" yaml:"error"`
	DPanic string `mapstructure:"dpanic" yaml:"dpanic"`
	Panic  string `mapstructure:"panic" yaml:"panic"`
	Fatal  string `mapstructure:"fatal" yaml:"fatal"`
}

// BrowserConfig holds settings for the locally launched Chrome instance used
// by direct sessions.
type BrowserConfig struct {
	Headless          bool           `mapstructure:"headless" yaml:"headless"`
	DisableGPU        bool           `mapstructure:"disable_gpu" yaml:"disable_gpu"`
	IgnoreTLSErrors   bool           `mapstructure:"ignore_tls_errors" yaml:"ignore_tls_errors"`
	UserAgent         string         `mapstructure:"user_agent" yaml:"user_agent"`
	ExecPath          string         `mapstructure:"exec_path" yaml:"exec_path"`
	Args              []string       `mapstructure:"args" yaml:"args"`
	Viewport          map[string]int `mapstructure:"viewport" yaml:"viewport"`
	NavigationTimeout time.Duration  `mapstructure:"navigation_timeout" yaml:"navigation_timeout"`
	// AuthSettleDelay is how long to wait after loading the feed before
	// checking whether LinkedIn bounced us to a login page.
	AuthSettleDelay time.Duration `mapstructure:"auth_settle_delay" yaml:"auth_settle_delay"`
}

// BridgeConfig controls the remote browser bridge and transport selection.
type BridgeConfig struct {
	Enabled          bool          `mapstructure:"enabled" yaml:"enabled"`
	FallbackToDirect bool          `mapstructure:"fallback_to_direct" yaml:"fallback_to_direct"`
	URL              string        `mapstructure:"url" yaml:"url"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
	ProfileName      string        `mapstructure:"profile_name" yaml:"profile_name"`
	Headless         bool          `mapstructure:"headless" yaml:"headless"`
	UserDataRoot     string        `mapstructure:"user_data_root" yaml:"user_data_root"`
	AuthSettleDelay  time.Duration `mapstructure:"auth_settle_delay" yaml:"auth_settle_delay"`
}

// LinkedInConfig carries the account credentials. The cookie is normally
// supplied through LINKEDIN_COOKIE rather than the config file.
type LinkedInConfig struct {
	Cookie string `mapstructure:"cookie" yaml:"cookie"`
}

// ScraperConfig tunes profile extraction.
type ScraperConfig struct {
	PageLoadWait      time.Duration `mapstructure:"page_load_wait" yaml:"page_load_wait"`
	RequestsPerMinute int           `mapstructure:"requests_per_minute" yaml:"requests_per_minute"`
}

// ServerConfig configures the tool server.
type ServerConfig struct {
	ListenAddr      string        `mapstructure:"listen_addr" yaml:"listen_addr"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for various configuration parameters.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "linkedin-mcp")
	v.SetDefault("logger.log_file", "")
	v.SetDefault("logger.max_size", 100)
	v.SetDefault("logger.max_backups", 5)
	v.SetDefault("logger.max_age", 30)
	v.SetDefault("logger.compress", true)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.disable_gpu", true)
	v.SetDefault("browser.ignore_tls_errors", false)
	v.SetDefault("browser.viewport", map[string]int{"width": 1920, "height": 1080})
	v.SetDefault("browser.navigation_timeout", "60s")
	v.SetDefault("browser.auth_settle_delay", "2s")

	// -- Bridge --
	v.SetDefault("bridge.enabled", false)
	v.SetDefault("bridge.fallback_to_direct", true)
	v.SetDefault("bridge.url", "http://localhost:3000")
	v.SetDefault("bridge.timeout", "30s")
	v.SetDefault("bridge.profile_name", "linkedin")
	v.SetDefault("bridge.headless", false)
	v.SetDefault("bridge.user_data_root", "/tmp")
	v.SetDefault("bridge.auth_settle_delay", "2s")

	// -- Scraper --
	v.SetDefault("scraper.page_load_wait", "3s")
	v.SetDefault("scraper.requests_per_minute", 20)

	// -- Server --
	v.SetDefault("server.listen_addr", "127.0.0.1:8080")
	v.SetDefault("server.request_timeout", "5m")
	v.SetDefault("server.shutdown_timeout", "10s")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config

	// Secrets come from the environment.
	_ = v.BindEnv("linkedin.cookie", "LINKEDIN_COOKIE")

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.expandPaths(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func (c *Config) expandPaths() error {
	var err error
	if c.LoggerCfg.LogFile, err = homedir.Expand(c.LoggerCfg.LogFile); err != nil {
		return fmt.Errorf("logger.log_file: %w", err)
	}
	if c.BridgeCfg.UserDataRoot, err = homedir.Expand(c.BridgeCfg.UserDataRoot); err != nil {
		return fmt.Errorf("bridge.user_data_root: %w", err)
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	if err := c.BridgeCfg.Validate(); err != nil {
		return fmt.Errorf("bridge configuration invalid: %w", err)
	}
	if c.BrowserCfg.AuthSettleDelay < 0 {
		return fmt.Errorf("browser.auth_settle_delay must not be negative")
	}
	if c.ScraperCfg.RequestsPerMinute <= 0 {
		return fmt.Errorf("scraper.requests_per_minute must be a positive integer")
	}
	if c.ScraperCfg.PageLoadWait < 0 {
		return fmt.Errorf("scraper.page_load_wait must not be negative")
	}
	return nil
}

// Validate checks the bridge settings. Nothing is required while the bridge
// is disabled.
func (b *BridgeConfig) Validate() error {
	if !b.Enabled {
		return nil
	}
	if b.URL == "" {
		return fmt.Errorf("url is required when the bridge is enabled")
	}
	if !strings.HasPrefix(b.URL, "http://") && !strings.HasPrefix(b.URL, "https://") {
		return fmt.Errorf("url must use http or https, got %q", b.URL)
	}
	if b.Timeout <= 0 {
		return fmt.Errorf("timeout must be a positive duration")
	}
	if b.ProfileName == "" {
		return fmt.Errorf("profile_name is required when the bridge is enabled")
	}
	if b.AuthSettleDelay < 0 {
		return fmt.Errorf("auth_settle_delay must not be negative")
	}
	return nil
}
