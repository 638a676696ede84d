package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	AI       AIConfig       `yaml:"ai"`
}

type ServerConfig struct {
	Name string `yaml:"name"`
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type AuthConfig struct {
	JWTSecret        string        `yaml:"jwt_secret"`
	AccessTokenTTL   time.Duration `yaml:"access_token_ttl"`
	RememberTokenTTL time.Duration `yaml:"remember_token_ttl"`
}

type AIConfig struct {
	GeminiBaseURL string `yaml:"gemini_base_url"`
	GeminiModel   string `yaml:"gemini_model"`
	GeminiAPIKey  string `yaml:"gemini_api_key"`
	SearchURL     string `yaml:"search_url"` // empty disables content search
	SearchTopK    int    `yaml:"search_top_k"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("EDUMATE_JWT_SECRET"); v != "" {
		c.Auth.JWTSecret = v
	}
	if v := os.Getenv("EDUMATE_GEMINI_API_KEY"); v != "" {
		c.AI.GeminiAPIKey = v
	}
}

func (c *Config) validate() error {
	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}
	if len(c.Auth.JWTSecret) < 32 {
		return fmt.Errorf("auth.jwt_secret must be at least 32 characters")
	}
	if c.AI.GeminiAPIKey == "" {
		return fmt.Errorf("ai.gemini_api_key is required")
	}
	return nil
}

func (c *Config) setDefaults() {
	if c.Server.Host == "" {
		c.Server.Host = "0.0.0.0"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.Name == "" {
		c.Server.Name = "EduMate Server"
	}
	if c.Database.Path == "" {
		c.Database.Path = "./data/edumate.db"
	}
	if c.Auth.AccessTokenTTL == 0 {
		c.Auth.AccessTokenTTL = 15 * time.Minute
	}
	if c.Auth.RememberTokenTTL == 0 {
		c.Auth.RememberTokenTTL = 30 * 24 * time.Hour
	}
	if c.AI.GeminiBaseURL == "" {
		c.AI.GeminiBaseURL = "https://generativelanguage.googleapis.com"
	}
	if c.AI.GeminiModel == "" {
		c.AI.GeminiModel = "gemini-2.0-flash"
	}
	if c.AI.SearchTopK == 0 {
		c.AI.SearchTopK = 5
	}
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
