// Package config loads the econ-series YAML configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"github.com/rxtech-lab/econ-series/internal/version"
	"github.com/rxtech-lab/econ-series/pkg/errors"
	"github.com/rxtech-lab/econ-series/pkg/seriesdata"
	"github.com/rxtech-lab/econ-series/pkg/seriesdata/provider"
	"github.com/rxtech-lab/econ-series/pkg/seriesdata/writer"
	"github.com/rxtech-lab/econ-series/pkg/timeseries"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

const (
	DefaultLogLevel     = "info"
	DefaultTimeout      = 60 * time.Second
	DefaultDataDir      = "data"
	DefaultExportFormat = string(writer.FormatParquet)
	// DefaultSchedule runs batches daily at 07:00. Specs take a seconds field.
	DefaultSchedule = "0 0 7 * * *"
)

// Config holds all application configuration.
type Config struct {
	Version  string         `yaml:"version"`
	LogLevel string         `yaml:"log_level"`
	// Timeout bounds each fetch. Nil means unset; an explicit 0 disables it.
	Timeout  *time.Duration `yaml:"timeout"`
	Schedule string         `yaml:"schedule"`

	Providers struct {
		FRED struct {
			APIKey     string        `yaml:"api_key"`
			BaseURL    string        `yaml:"base_url"`
			RetryCount int           `yaml:"retry_count"`
			Timeout    time.Duration `yaml:"timeout"`
		} `yaml:"fred"`
		Polygon struct {
			APIKey string `yaml:"api_key"`
		} `yaml:"polygon"`
		Parquet struct {
			Dir string `yaml:"dir"`
		} `yaml:"parquet"`
	} `yaml:"providers"`

	Export struct {
		Format string `yaml:"format"`
		Dir    string `yaml:"dir"`
	} `yaml:"export"`

	Series []seriesdata.RequestConfig `yaml:"series"`
}

// LoadDotEnv loads variables from the given .env files into the process
// environment. Missing files are skipped and existing variables win.
func LoadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue
		}

		if err := godotenv.Load(path); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "failed to load %s", path)
		}
	}

	return nil
}

// Load reads config from a YAML file, then applies environment variable overrides
// and defaults. A missing file yields a config built from the environment alone.
func Load(path string) (*Config, error) {
	cfg := &Config{}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "read config %s", path)
		}

		if len(data) > 0 {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "parse config %s", path)
			}
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.applyDefaults()

	return cfg, nil
}

// Parse decodes a YAML document and applies defaults, without environment overrides.
func Parse(data []byte) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidConfiguration, "parse config", err)
	}

	cfg.applyDefaults()

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("FRED_API_KEY"); v != "" {
		c.Providers.FRED.APIKey = v
	}
	if v := os.Getenv("FRED_BASE_URL"); v != "" {
		c.Providers.FRED.BaseURL = v
	}
	if v := os.Getenv("POLYGON_API_KEY"); v != "" {
		c.Providers.Polygon.APIKey = v
	}
	if v := os.Getenv("SERIES_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("SERIES_DATA_DIR"); v != "" {
		c.Providers.Parquet.Dir = v
		c.Export.Dir = v
	}
	if v := os.Getenv("SERIES_TIMEOUT"); v != "" {
		timeout, err := time.ParseDuration(v)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid SERIES_TIMEOUT %q", v)
		}
		c.Timeout = &timeout
	}
	if v := os.Getenv("FRED_RETRY_COUNT"); v != "" {
		retries, err := strconv.Atoi(v)
		if err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid FRED_RETRY_COUNT %q", v)
		}
		c.Providers.FRED.RetryCount = retries
	}

	return nil
}

func (c *Config) applyDefaults() {
	if c.Version == "" {
		c.Version = version.ConfigVersion
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Timeout == nil {
		timeout := DefaultTimeout
		c.Timeout = &timeout
	}
	if c.Schedule == "" {
		c.Schedule = DefaultSchedule
	}
	if c.Providers.FRED.BaseURL == "" {
		c.Providers.FRED.BaseURL = provider.DefaultFREDBaseURL
	}
	if c.Providers.Parquet.Dir == "" {
		c.Providers.Parquet.Dir = DefaultDataDir
	}
	if c.Export.Format == "" {
		c.Export.Format = DefaultExportFormat
	}
	if c.Export.Dir == "" {
		c.Export.Dir = DefaultDataDir
	}
}

// Validate checks the config version and every value the tool cannot default.
func (c *Config) Validate() error {
	if err := version.CheckConfigCompatibility(version.ConfigVersion, c.Version); err != nil {
		return err
	}

	var level zapcore.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return errors.Newf(errors.ErrCodeInvalidConfiguration, "log_level %q is not one of debug, info, warn, error", c.LogLevel)
	}

	if c.Timeout != nil && *c.Timeout < 0 {
		return errors.New(errors.ErrCodeInvalidConfiguration, "timeout must not be negative")
	}

	if _, err := writer.ParseFormat(c.Export.Format); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfiguration, "invalid export.format", err)
	}

	if _, err := ParseSchedule(c.Schedule); err != nil {
		return err
	}

	for i := range c.Series {
		if err := c.Series[i].Validate(); err != nil {
			return errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "series[%d] (%s)", i, c.Series[i].Symbol)
		}
	}

	return nil
}

// ParseSchedule parses a cron spec with a leading seconds field.
// Descriptors such as @daily and @every 1h are accepted too.
func ParseSchedule(spec string) (cron.Schedule, error) {
	schedule, err := scheduleParser.Parse(spec)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeInvalidConfiguration, err, "invalid schedule %q", spec)
	}

	return schedule, nil
}

var scheduleParser = cron.NewParser(
	cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// FetcherConfig converts the config into the fetcher's configuration.
func (c *Config) FetcherConfig() seriesdata.Config {
	var timeout time.Duration
	if c.Timeout != nil {
		timeout = *c.Timeout
	}

	return seriesdata.Config{
		Timeout: timeout,
		Providers: provider.Config{
			FRED: provider.FREDConfig{
				APIKey:     c.Providers.FRED.APIKey,
				BaseURL:    c.Providers.FRED.BaseURL,
				Timeout:    c.Providers.FRED.Timeout,
				RetryCount: c.Providers.FRED.RetryCount,
			},
			PolygonAPIKey: c.Providers.Polygon.APIKey,
			ParquetDir:    c.Providers.Parquet.Dir,
		},
	}
}

// ExportFormat returns the validated export format.
func (c *Config) ExportFormat() (writer.Format, error) {
	return writer.ParseFormat(c.Export.Format)
}

// Requests converts the series list into fetch requests.
func (c *Config) Requests() ([]timeseries.Request, error) {
	requests := make([]timeseries.Request, 0, len(c.Series))
	for i := range c.Series {
		req, err := c.Series[i].ToRequest()
		if err != nil {
			return nil, fmt.Errorf("series[%d]: %w", i, err)
		}

		requests = append(requests, req)
	}

	return requests, nil
}
