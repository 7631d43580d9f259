// File: internal/config/config.go
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Interface defines the contract for accessing application configuration.
// This allows for dependency injection and mocking in tests.
type Interface interface {
	Logger() LoggerConfig
	Browser() BrowserConfig
	Flow() FlowConfig
	Artifacts() ArtifactsConfig
	Report() ReportConfig

	// Flow Setters
	SetSearchTerm(string)
	SetTransmission(string)

	// Browser Setters
	SetBrowserHeadless(bool)
	SetBrowserSlowMo(time.Duration)

	// Report Setters
	SetReportFile(string)
	SetReportFormats([]string)
}

// Config holds the entire application configuration.
type Config struct {
	LoggerCfg    LoggerConfig    `mapstructure:"logger" yaml:"logger"`
	BrowserCfg   BrowserConfig   `mapstructure:"browser" yaml:"browser"`
	FlowCfg      FlowConfig      `mapstructure:"flow" yaml:"flow"`
	ArtifactsCfg ArtifactsConfig `mapstructure:"artifacts" yaml:"artifacts"`
	ReportCfg    ReportConfig    `mapstructure:"report" yaml:"report"`
}

var _ Interface = (*Config)(nil)

func (c *Config) Logger() LoggerConfig       { return c.LoggerCfg }
func (c *Config) Browser() BrowserConfig     { return c.BrowserCfg }
func (c *Config) Flow() FlowConfig           { return c.FlowCfg }
func (c *Config) Artifacts() ArtifactsConfig { return c.ArtifactsCfg }
func (c *Config) Report() ReportConfig       { return c.ReportCfg }

func (c *Config) SetSearchTerm(s string)           { c.FlowCfg.SearchTerm = s }
func (c *Config) SetTransmission(s string)         { c.FlowCfg.Filters.Transmission = s }
func (c *Config) SetBrowserHeadless(b bool)        { c.BrowserCfg.Headless = b }
func (c *Config) SetBrowserSlowMo(d time.Duration) { c.BrowserCfg.SlowMo = d }
func (c *Config) SetReportFile(s string)           { c.ReportCfg.File = s }
func (c *Config) SetReportFormats(f []string)      { c.ReportCfg.Formats = f }

// LoggerConfig holds all the configuration for the logger. LogFile is not read
// from config; the run command fills it in from artifacts.logs_dir.
type LoggerConfig struct {
	Level       string      `mapstructure:"level" yaml:"level"`
	Format      string      `mapstructure:"format" yaml:"format"`
	AddSource   bool        `mapstructure:"add_source" yaml:"add_source"`
	ServiceName string      `mapstructure:"service_name" yaml:"service_name"`
	LogFile     string      `mapstructure:"-" yaml:"-"`
	MaxSize     int         `mapstructure:"max_size" yaml:"max_size"`
	MaxBackups  int         `mapstructure:"max_backups" yaml:"max_backups"`
	MaxAge      int         `mapstructure:"max_age" yaml:"max_age"`
	Compress    bool        `mapstructure:"compress" yaml:"compress"`
	Colors      ColorConfig `mapstructure:"colors" yaml:"colors"`
}

// ColorConfig names the terminal color for each log level.
type ColorConfig struct {
	Debug string `mapstructure:"debug" yaml:"debug"`
	Info  string `mapstructure:"info" yaml:"info"`
	Warn  string `mapstructure:"warn" yaml:"warn"`
	Error string `mapstructure:"error" yaml:"error"`
}

// BrowserConfig holds settings for the automated Chromium instance. SlowMo is
// the minimum spacing between driver actions.
type BrowserConfig struct {
	Headless      bool          `mapstructure:"headless" yaml:"headless"`
	SlowMo        time.Duration `mapstructure:"slow_mo" yaml:"slow_mo"`
	Window        WindowConfig  `mapstructure:"window" yaml:"window"`
	UserAgent     string        `mapstructure:"user_agent" yaml:"user_agent"`
	Args          []string      `mapstructure:"args" yaml:"args"`
	ExecPath      string        `mapstructure:"exec_path" yaml:"exec_path"`
	LaunchTimeout time.Duration `mapstructure:"launch_timeout" yaml:"launch_timeout"`
	Debug         bool          `mapstructure:"debug" yaml:"debug"`
}

// WindowConfig is the browser viewport size in pixels.
type WindowConfig struct {
	Width  int `mapstructure:"width" yaml:"width"`
	Height int `mapstructure:"height" yaml:"height"`
}

// FlowConfig describes what the search-and-filter flow does.
type FlowConfig struct {
	HomeURL    string         `mapstructure:"home_url" yaml:"home_url"`
	SearchTerm string         `mapstructure:"search_term" yaml:"search_term"`
	Filters    FiltersConfig  `mapstructure:"filters" yaml:"filters"`
	Timeouts   TimeoutsConfig `mapstructure:"timeouts" yaml:"timeouts"`
}

// FiltersConfig lists the facet values applied after searching. An empty
// value skips that filter.
type FiltersConfig struct {
	Transmission string `mapstructure:"transmission" yaml:"transmission"`
}

// TimeoutsConfig bounds every wait the flow performs.
type TimeoutsConfig struct {
	Default    time.Duration `mapstructure:"default" yaml:"default"`
	Home       time.Duration `mapstructure:"home" yaml:"home"`
	Results    time.Duration `mapstructure:"results" yaml:"results"`
	Filter     time.Duration `mapstructure:"filter" yaml:"filter"`
	Navigation time.Duration `mapstructure:"navigation" yaml:"navigation"`
	Shutdown   time.Duration `mapstructure:"shutdown" yaml:"shutdown"`
}

// ArtifactsConfig holds the output directories of a run.
type ArtifactsConfig struct {
	ScreenshotsDir string `mapstructure:"screenshots_dir" yaml:"screenshots_dir"`
	ReportsDir     string `mapstructure:"reports_dir" yaml:"reports_dir"`
	LogsDir        string `mapstructure:"logs_dir" yaml:"logs_dir"`
}

// ReportConfig controls the rendered report. A relative File is resolved
// against artifacts.reports_dir.
type ReportConfig struct {
	File             string   `mapstructure:"file" yaml:"file"`
	Formats          []string `mapstructure:"formats" yaml:"formats"`
	Title            string   `mapstructure:"title" yaml:"title"`
	Subtitle         string   `mapstructure:"subtitle" yaml:"subtitle"`
	EmbedScreenshots bool     `mapstructure:"embed_screenshots" yaml:"embed_screenshots"`
	VerifyArtifacts  bool     `mapstructure:"verify_artifacts" yaml:"verify_artifacts"`
	LogExcerptBytes  int      `mapstructure:"log_excerpt_bytes" yaml:"log_excerpt_bytes"`
	TimeZone         string   `mapstructure:"time_zone" yaml:"time_zone"`
}

// supportedFormats is the set accepted in report.formats.
var supportedFormats = map[string]bool{"html": true, "json": true, "junit": true}

// NewDefaultConfig creates a new configuration struct populated with default values.
func NewDefaultConfig() *Config {
	v := viper.New()
	SetDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		// Defaults are static, so this only fires on a programming error.
		panic(fmt.Sprintf("failed to unmarshal default config: %v", err))
	}
	return &cfg
}

// SetDefaults initializes default values for every configuration key.
func SetDefaults(v *viper.Viper) {
	// -- Logger --
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.add_source", false)
	v.SetDefault("logger.service_name", "ebay-flow")
	v.SetDefault("logger.max_size", 50)
	v.SetDefault("logger.max_backups", 3)
	v.SetDefault("logger.max_age", 14)
	v.SetDefault("logger.compress", false)
	v.SetDefault("logger.colors.debug", "cyan")
	v.SetDefault("logger.colors.info", "green")
	v.SetDefault("logger.colors.warn", "yellow")
	v.SetDefault("logger.colors.error", "red")

	// -- Browser --
	v.SetDefault("browser.headless", true)
	v.SetDefault("browser.slow_mo", "0s")
	v.SetDefault("browser.window.width", 1920)
	v.SetDefault("browser.window.height", 1080)
	v.SetDefault("browser.launch_timeout", "30s")
	v.SetDefault("browser.debug", false)

	// -- Flow --
	v.SetDefault("flow.home_url", "https://www.ebay.com/")
	v.SetDefault("flow.search_term", "mazda mx-5")
	v.SetDefault("flow.filters.transmission", "Manual")
	v.SetDefault("flow.timeouts.default", "30s")
	v.SetDefault("flow.timeouts.home", "15s")
	v.SetDefault("flow.timeouts.results", "20s")
	v.SetDefault("flow.timeouts.filter", "15s")
	v.SetDefault("flow.timeouts.navigation", "60s")
	v.SetDefault("flow.timeouts.shutdown", "10s")

	// -- Artifacts --
	v.SetDefault("artifacts.screenshots_dir", "screenshots")
	v.SetDefault("artifacts.reports_dir", "reports")
	v.SetDefault("artifacts.logs_dir", "logs")

	// -- Report --
	v.SetDefault("report.file", "test_report.html")
	v.SetDefault("report.formats", []string{"html"})
	v.SetDefault("report.title", "eBay Automation Test Report")
	v.SetDefault("report.subtitle", "Search and filter validation")
	v.SetDefault("report.embed_screenshots", false)
	v.SetDefault("report.verify_artifacts", true)
	v.SetDefault("report.log_excerpt_bytes", 10000)
	v.SetDefault("report.time_zone", "Local")
}

// NewConfigFromViper creates a new configuration instance from a viper object.
// Paths are home-expanded and the result is validated.
func NewConfigFromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.ExpandPaths(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// ExpandPaths resolves a leading "~" in every configured path.
func (c *Config) ExpandPaths() error {
	paths := []*string{
		&c.ArtifactsCfg.ScreenshotsDir,
		&c.ArtifactsCfg.ReportsDir,
		&c.ArtifactsCfg.LogsDir,
		&c.ReportCfg.File,
		&c.BrowserCfg.ExecPath,
	}
	for _, p := range paths {
		if *p == "" {
			continue
		}
		expanded, err := homedir.Expand(*p)
		if err != nil {
			return fmt.Errorf("failed to expand path %q: %w", *p, err)
		}
		*p = expanded
	}
	return nil
}

// Validate checks the configuration for required fields and sane values.
func (c *Config) Validate() error {
	u, err := url.Parse(c.FlowCfg.HomeURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("flow.home_url must be an absolute http(s) URL, got %q", c.FlowCfg.HomeURL)
	}
	if strings.TrimSpace(c.FlowCfg.SearchTerm) == "" {
		return fmt.Errorf("flow.search_term is required")
	}
	if err := c.FlowCfg.Timeouts.Validate(); err != nil {
		return fmt.Errorf("flow.timeouts: %w", err)
	}
	if c.BrowserCfg.SlowMo < 0 {
		return fmt.Errorf("browser.slow_mo must not be negative")
	}
	if c.BrowserCfg.Window.Width <= 0 || c.BrowserCfg.Window.Height <= 0 {
		return fmt.Errorf("browser.window dimensions must be positive")
	}
	if c.ArtifactsCfg.ScreenshotsDir == "" || c.ArtifactsCfg.ReportsDir == "" || c.ArtifactsCfg.LogsDir == "" {
		return fmt.Errorf("artifacts directories must not be empty")
	}
	if c.ReportCfg.File == "" {
		return fmt.Errorf("report.file is required")
	}
	if len(c.ReportCfg.Formats) == 0 {
		return fmt.Errorf("report.formats must list at least one format")
	}
	for _, f := range c.ReportCfg.Formats {
		if !supportedFormats[strings.ToLower(f)] {
			return fmt.Errorf("unsupported report format %q", f)
		}
	}
	if c.ReportCfg.LogExcerptBytes < 0 {
		return fmt.Errorf("report.log_excerpt_bytes must not be negative")
	}
	if _, err := c.ReportCfg.Location(); err != nil {
		return err
	}
	return nil
}

// Validate checks that every timeout is positive.
func (t TimeoutsConfig) Validate() error {
	named := map[string]time.Duration{
		"default":    t.Default,
		"home":       t.Home,
		"results":    t.Results,
		"filter":     t.Filter,
		"navigation": t.Navigation,
		"shutdown":   t.Shutdown,
	}
	for _, name := range []string{"default", "home", "results", "filter", "navigation", "shutdown"} {
		if named[name] <= 0 {
			return fmt.Errorf("%s must be a positive duration", name)
		}
	}
	return nil
}

// Location resolves TimeZone. An empty value or "Local" selects the system zone.
func (r ReportConfig) Location() (*time.Location, error) {
	switch r.TimeZone {
	case "", "Local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(r.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("report.time_zone: %w", err)
	}
	return loc, nil
}
