package config

import (
	"fmt"
	"os"
	"path"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Public  Public
	private Private
}

type Public struct {
	Port                 int           `yaml:"port"`
	APIBaseURL           string        `yaml:"api_base_url"`
	APITimeout           time.Duration `yaml:"api_timeout"`
	SecureCookies        bool          `yaml:"secure_cookies"`
	LogLevel             string        `yaml:"log_level"`
	LogJSON              bool          `yaml:"log_json"`
	SessionTTL           time.Duration `yaml:"session_ttl"`
	SessionSweepInterval time.Duration `yaml:"session_sweep_interval"`
	JwtTTL               time.Duration `yaml:"jwt_ttl"`
	MaxImageSizeBytes    int64         `yaml:"max_image_size_bytes"`
	SuggestedUsersLimit  int           `yaml:"suggested_users_limit"`
	ReplyRatePerMinute   float64       `yaml:"reply_rate_per_minute"`
	CORSAllowedOrigins   []string      `yaml:"cors_allowed_origins"`
	TemplatesPath        string        `yaml:"templates_path"`
	StaticPath           string        `yaml:"static_path"`
}

type Private struct {
	JwtKey string `yaml:"jwt_key"`
}

func (c *Config) JwtKey() string {
	return c.private.JwtKey
}

func (c *Config) JwtTTL() time.Duration {
	return c.Public.JwtTTL
}

// Defaults are applied before the yaml files are read, so every key is optional
// except the ones Validate insists on.
func Defaults() Public {
	return Public{
		Port:                 8081,
		APIBaseURL:           "http://api:8080",
		APITimeout:           10 * time.Second,
		LogLevel:             "info",
		SessionTTL:           24 * time.Hour,
		SessionSweepInterval: 5 * time.Minute,
		JwtTTL:               30 * 24 * time.Hour,
		MaxImageSizeBytes:    5 << 20,
		SuggestedUsersLimit:  3,
		ReplyRatePerMinute:   20,
		TemplatesPath:        "frontend/templates",
		StaticPath:           "frontend/static",
	}
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var result *multierror.Error
	p := c.Public

	if p.Port <= 0 || p.Port > 65535 {
		result = multierror.Append(result, fmt.Errorf("port %d is out of range", p.Port))
	}
	if !strings.HasPrefix(p.APIBaseURL, "http://") && !strings.HasPrefix(p.APIBaseURL, "https://") {
		result = multierror.Append(result, fmt.Errorf("api_base_url %q must be an http(s) URL", p.APIBaseURL))
	}
	if p.APITimeout <= 0 {
		result = multierror.Append(result, fmt.Errorf("api_timeout must be positive"))
	}
	if p.SessionTTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("session_ttl must be positive"))
	}
	if p.SessionSweepInterval <= 0 {
		result = multierror.Append(result, fmt.Errorf("session_sweep_interval must be positive"))
	}
	if p.JwtTTL <= 0 {
		result = multierror.Append(result, fmt.Errorf("jwt_ttl must be positive"))
	}
	if p.MaxImageSizeBytes <= 0 {
		result = multierror.Append(result, fmt.Errorf("max_image_size_bytes must be positive"))
	}
	if p.SuggestedUsersLimit < 0 {
		result = multierror.Append(result, fmt.Errorf("suggested_users_limit must not be negative"))
	}
	if p.ReplyRatePerMinute <= 0 {
		result = multierror.Append(result, fmt.Errorf("reply_rate_per_minute must be positive"))
	}
	if c.private.JwtKey == "" {
		result = multierror.Append(result, fmt.Errorf("jwt_key is required"))
	}

	return result.ErrorOrNil()
}

func loadPath(configPath string, output interface{}) error {
	configFile, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("can't read config file: %w", err)
	}
	if err := yaml.UnmarshalStrict(configFile, output); err != nil {
		return fmt.Errorf("can't unmarshal config file %s: %w", configPath, err)
	}
	return nil
}

// Load reads public.yaml and private.yaml from configFolder.
// JWT_SECRET overrides the private key when set.
func Load(configFolder string) (*Config, error) {
	public := Defaults()
	if err := loadPath(path.Join(configFolder, "public.yaml"), &public); err != nil {
		return nil, err
	}

	var private Private
	if err := loadPath(path.Join(configFolder, "private.yaml"), &private); err != nil {
		return nil, err
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		private.JwtKey = secret
	}

	cfg := &Config{Public: public, private: private}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func MustLoad(configFolder string) *Config {
	cfg, err := Load(configFolder)
	if err != nil {
		panic(err)
	}
	return cfg
}

// New builds a config in code; used by tests and tools.
func New(public Public, jwtKey string) *Config {
	return &Config{Public: public, private: Private{JwtKey: jwtKey}}
}
