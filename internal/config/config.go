package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the full ytcomments configuration
type Config struct {
	APIKey           string        `mapstructure:"api_key"`
	APIKeySecret     string        `mapstructure:"api_key_secret"` // Secret Manager path, used when api_key is empty
	Part             []string      `mapstructure:"part"`
	MaxResults       int           `mapstructure:"max_results"`
	Order            string        `mapstructure:"order"`
	IncludeReplies   bool          `mapstructure:"include_replies"`
	SaveFormat       string        `mapstructure:"save_format"`
	OutputDir        string        `mapstructure:"output_dir"`
	MaxPages         int           `mapstructure:"max_pages"`
	ReplyConcurrency int           `mapstructure:"reply_concurrency"`
	StripMarkup      bool          `mapstructure:"strip_markup"`
	RequestTimeout   string        `mapstructure:"request_timeout"`
	Logging          LoggingConfig `mapstructure:"logging"`
}

// LoggingConfig controls run log output
type LoggingConfig struct {
	Format     string `mapstructure:"format"`      // text or json
	GCPProject string `mapstructure:"gcp_project"` // mirror logs to Cloud Logging when set
	LogName    string `mapstructure:"log_name"`
}

// Defaults
const (
	DefaultMaxResults     = 100
	DefaultOrder          = "time"
	DefaultSaveFormat     = "json"
	DefaultOutputDir      = "."
	DefaultRequestTimeout = "30s"
	DefaultLogFormat      = "text"
	DefaultLogName        = "ytcomments"
)

// Load loads configuration from file and environment
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom unmarshals configuration from v and applies defaults.
func LoadFrom(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(cfg)

	return cfg, nil
}

// applyDefaults sets default values for unset fields
func applyDefaults(cfg *Config) {
	cfg.Part = normalizeParts(cfg.Part)
	if len(cfg.Part) == 0 {
		cfg.Part = []string{"snippet"}
	}

	if cfg.MaxResults == 0 {
		cfg.MaxResults = DefaultMaxResults
	}

	if cfg.Order == "" {
		cfg.Order = DefaultOrder
	}

	if cfg.SaveFormat == "" {
		cfg.SaveFormat = DefaultSaveFormat
	}

	if cfg.OutputDir == "" {
		cfg.OutputDir = DefaultOutputDir
	}

	if cfg.ReplyConcurrency == 0 {
		cfg.ReplyConcurrency = 1
	}

	if cfg.RequestTimeout == "" {
		cfg.RequestTimeout = DefaultRequestTimeout
	}

	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}

	if cfg.Logging.LogName == "" {
		cfg.Logging.LogName = DefaultLogName
	}
}

// normalizeParts splits comma-joined entries ("snippet,replies") and drops
// blanks, so a part list from a flag, env var or YAML all look the same.
func normalizeParts(parts []string) []string {
	var out []string
	for _, p := range parts {
		for _, s := range strings.Split(p, ",") {
			if s = strings.TrimSpace(s); s != "" {
				out = append(out, s)
			}
		}
	}
	return out
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.APIKey == "" && c.APIKeySecret == "" {
		return fmt.Errorf("an API key is required (set api_key or api_key_secret)")
	}

	if c.MaxResults < 1 || c.MaxResults > 100 {
		return fmt.Errorf("invalid max_results: %d (must be between 1 and 100)", c.MaxResults)
	}

	validOrders := map[string]bool{"time": true, "relevance": true}
	if !validOrders[c.Order] {
		return fmt.Errorf("invalid order: %s (must be time or relevance)", c.Order)
	}

	if c.MaxPages < 0 {
		return fmt.Errorf("invalid max_pages: %d (must be 0 or greater)", c.MaxPages)
	}

	if c.ReplyConcurrency < 1 {
		return fmt.Errorf("invalid reply_concurrency: %d (must be at least 1)", c.ReplyConcurrency)
	}

	if c.RequestTimeout != "" {
		d, err := time.ParseDuration(c.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout: %w", err)
		}
		if d < 0 {
			return fmt.Errorf("invalid request_timeout: %s (must not be negative)", c.RequestTimeout)
		}
	}

	validFormats := map[string]bool{"text": true, "json": true}
	if !validFormats[c.Logging.Format] {
		return fmt.Errorf("invalid logging format: %s (must be text or json)", c.Logging.Format)
	}

	return nil
}

// Timeout returns the parsed request_timeout. Zero means no per-call limit.
func (c *Config) Timeout() time.Duration {
	d, err := time.ParseDuration(c.RequestTimeout)
	if err != nil {
		return 0
	}
	return d
}
