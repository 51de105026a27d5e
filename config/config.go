package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// ErrConfig marks fatal configuration problems: missing credentials, missing
// required flags. Runs failing with it exit non-zero immediately.
var ErrConfig = errors.New("configuration error")

type EngineConfig struct {
	Name     string
	Endpoint string
	Method   string
	// APIKeyEnv names the environment variable carrying the engine API key,
	// e.g. BING_API_KEY. Empty for ping-style engines.
	APIKeyEnv string
}

type Config struct {
	Site struct {
		URL         string
		ContentRoot string
		SitemapURL  string
	}
	Build struct {
		DefaultPriority   float64
		DefaultChangeFreq string
		UserAgent         string
		MaxDepth          int
		AllowedDomains    []string
	}
	Index struct {
		ProjectSitemaps []string
	}
	Submit struct {
		Engines    []EngineConfig
		Strict     bool
		TimeoutSec int
	}
	Console struct {
		BaseURL         string
		CredentialsFile string
	}
	Notify struct {
		Always  bool
		Channel string
	}
	News struct {
		Feeds []string
		Limit int
	}
	Server struct {
		Port int
	}
	Storage struct {
		Driver string
		Path   string
	}
}

func LoadConfig() (*Config, error) {
	// Secrets may come from a local .env during development.
	godotenv.Load()

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	// Default values
	viper.SetDefault("build.defaultpriority", 0.5)
	viper.SetDefault("build.defaultchangefreq", "weekly")
	viper.SetDefault("build.useragent", "siteops-builder/1.0")
	viper.SetDefault("build.maxdepth", 5)
	viper.SetDefault("submit.strict", false)
	viper.SetDefault("submit.timeoutsec", 30)
	viper.SetDefault("console.baseurl", "https://www.googleapis.com/webmasters/v3")
	viper.SetDefault("notify.always", false)
	viper.SetDefault("notify.channel", "email")
	viper.SetDefault("news.limit", 10)
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("storage.driver", "sqlite")
	viper.SetDefault("storage.path", "siteops.db")

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("%w: reading config file: %v", ErrConfig, err)
		}
		// No config file is fine; defaults plus flags cover the batch jobs.
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("%w: parsing config: %v", ErrConfig, err)
	}

	if len(cfg.Submit.Engines) == 0 {
		cfg.Submit.Engines = DefaultEngines()
	}
	if cfg.Console.CredentialsFile == "" {
		cfg.Console.CredentialsFile = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
	}

	return &cfg, nil
}

// DefaultEngines are the ping endpoints used when none are configured.
func DefaultEngines() []EngineConfig {
	return []EngineConfig{
		{Name: "google", Endpoint: "https://www.google.com/ping", Method: "GET"},
		{Name: "bing", Endpoint: "https://www.bing.com/ping", Method: "GET", APIKeyEnv: "BING_API_KEY"},
	}
}

func (c *Config) GetSubmitTimeout() time.Duration {
	if c.Submit.TimeoutSec <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Submit.TimeoutSec) * time.Second
}

// GetEnv returns the environment value for key, or defaultVal when unset.
func GetEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// RequireEnv returns the environment value for key, or ErrConfig when unset.
func RequireEnv(key string) (string, error) {
	val := os.Getenv(key)
	if val == "" {
		return "", fmt.Errorf("%w: required environment variable %s is not set", ErrConfig, key)
	}
	return val, nil
}
