package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	API     APIConfig
	Store   StoreConfig
	OAuth   OAuthConfig
	Logger  LoggerConfig
	Attempt AttemptConfig
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

type StoreConfig struct {
	Path string `yaml:"path"`
}

type OAuthConfig struct {
	Google OAuthProviderConfig `yaml:"google"`
	GitHub OAuthProviderConfig `yaml:"github"`
}

type OAuthProviderConfig struct {
	ClientID     string `yaml:"client_id"`
	ClientSecret string `yaml:"client_secret"`
	RedirectURL  string `yaml:"redirect_url"`
}

type LoggerConfig struct {
	Level string `yaml:"level"`
	Env   string `yaml:"env"`
}

type AttemptConfig struct {
	// RemoteScoring routes attempt creation and scoring through the
	// backend; when false attempts are scored locally.
	RemoteScoring bool `yaml:"remote_scoring"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	// Add config paths based on environment
	if os.Getenv("ENV") == "test" {
		viper.AddConfigPath("../../config")
		viper.AddConfigPath("../../")
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(filepath.Join(home, ".studypath"))
		}
	}

	viper.SetEnvPrefix("STUDYPATH")
	viper.AutomaticEnv()

	viper.SetDefault("api.timeout", 15)
	viper.SetDefault("store.path", defaultStorePath())
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.env", "development")
	viper.SetDefault("attempt.remote_scoring", true)

	if err := viper.ReadInConfig(); err != nil {
		// A missing config file is fine for the CLI; env vars and
		// defaults still apply.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{
		API: APIConfig{
			BaseURL: viper.GetString("api.base_url"),
			Timeout: viper.GetDuration("api.timeout") * time.Second,
		},
		Store: StoreConfig{
			Path: viper.GetString("store.path"),
		},
		OAuth: OAuthConfig{
			Google: OAuthProviderConfig{
				ClientID:     viper.GetString("oauth.google.client_id"),
				ClientSecret: viper.GetString("oauth.google.client_secret"),
				RedirectURL:  viper.GetString("oauth.google.redirect_url"),
			},
			GitHub: OAuthProviderConfig{
				ClientID:     viper.GetString("oauth.github.client_id"),
				ClientSecret: viper.GetString("oauth.github.client_secret"),
				RedirectURL:  viper.GetString("oauth.github.redirect_url"),
			},
		},
		Logger: LoggerConfig{
			Level: viper.GetString("logger.level"),
			Env:   viper.GetString("logger.env"),
		},
		Attempt: AttemptConfig{
			RemoteScoring: viper.GetBool("attempt.remote_scoring"),
		},
	}

	// Override with environment variables if set
	if baseURL := os.Getenv("STUDYPATH_API_URL"); baseURL != "" {
		config.API.BaseURL = baseURL
	}
	if storePath := os.Getenv("STUDYPATH_STORE_PATH"); storePath != "" {
		config.Store.Path = storePath
	}
	if level := os.Getenv("STUDYPATH_LOG_LEVEL"); level != "" {
		config.Logger.Level = level
	}

	if config.API.BaseURL == "" {
		return nil, fmt.Errorf("api.base_url is not configured")
	}

	return config, nil
}

func defaultStorePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "studypath.db"
	}
	return filepath.Join(home, ".studypath", "studypath.db")
}
