package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Secrets are the two required provider credentials, loaded once at
// startup. Absence of either is a fatal startup condition.
type Secrets struct {
	ScrapingBeeKey string
	GoogleAPIKey   string
}

// Config carries the non-secret settings. Everything has a default so the
// server runs without a config file.
type Config struct {
	Port     string         `yaml:"port"`
	LogLevel string         `yaml:"log_level"` // "info" or "debug"
	Scraper  ScraperConfig  `yaml:"scraper"`
	Strategy StrategyConfig `yaml:"strategy"`
	Renderer RendererConfig `yaml:"renderer"`
}

type ScraperConfig struct {
	BaseURL string        `yaml:"base_url"`
	WaitMS  int           `yaml:"wait_ms"`
	Timeout time.Duration `yaml:"timeout"`
}

type StrategyConfig struct {
	Model         string `yaml:"model"`
	CampaignCount int    `yaml:"campaign_count"`
}

type RendererConfig struct {
	BaseURL      string        `yaml:"base_url"`
	ImageModel   string        `yaml:"image_model"`
	VideoModel   string        `yaml:"video_model"`
	VideoEnabled bool          `yaml:"video_enabled"`
	Timeout      time.Duration `yaml:"timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
	PollDeadline time.Duration `yaml:"poll_deadline"`
}

func Default() Config {
	return Config{
		Port:     "8080",
		LogLevel: "info",
		Scraper: ScraperConfig{
			BaseURL: "https://app.scrapingbee.com/api/v1/",
			WaitMS:  3000,
			Timeout: 45 * time.Second,
		},
		Strategy: StrategyConfig{
			Model:         "gemini-2.5-flash",
			CampaignCount: 3,
		},
		Renderer: RendererConfig{
			BaseURL:      "https://generativelanguage.googleapis.com/v1beta",
			ImageModel:   "imagen-4.0-generate-preview-06-06",
			VideoModel:   "veo-3.0-generate-preview",
			VideoEnabled: false,
			Timeout:      60 * time.Second,
			PollInterval: 5 * time.Second,
			PollDeadline: 3 * time.Minute,
		},
	}
}

// Load reads config.yaml from path when present and overlays it on the
// defaults. A missing file is fine; a malformed one is an error.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	if port := os.Getenv("PORT"); port != "" {
		cfg.Port = port
	}
	return cfg, nil
}

// LoadSecrets pulls the required credentials from the environment,
// reading a .env file first when one exists.
func LoadSecrets() (Secrets, error) {
	// .env is optional; real environments set the variables directly.
	_ = godotenv.Load()

	s := Secrets{
		ScrapingBeeKey: os.Getenv("SCRAPINGBEE_API_KEY"),
		GoogleAPIKey:   os.Getenv("GOOGLE_API_KEY"),
	}
	if s.ScrapingBeeKey == "" {
		return s, fmt.Errorf("SCRAPINGBEE_API_KEY environment variable is required")
	}
	if s.GoogleAPIKey == "" {
		return s, fmt.Errorf("GOOGLE_API_KEY environment variable is required")
	}
	return s, nil
}
