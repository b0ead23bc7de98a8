// Package config loads process configuration from the environment, with an
// optional .env file for development.
package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the full process configuration.
type Config struct {
	// GeminiAPIKey authenticates both the live session and the one-shot
	// analysis call.
	GeminiAPIKey string `env:"GEMINI_API_KEY"`

	// LiveModel is the streaming model behind the scorekeeper session.
	LiveModel string `env:"COURTSIDE_LIVE_MODEL" envDefault:"gemini-2.5-flash-native-audio-preview-09-2025"`

	// AnalysisModel answers the one-shot deep-analysis snapshot.
	AnalysisModel string `env:"COURTSIDE_ANALYSIS_MODEL" envDefault:"gemini-3-pro-preview"`

	// Addr is the HTTP listen address.
	Addr string `env:"COURTSIDE_ADDR" envDefault:":8080"`

	// DBPath is the sqlite file for saved games.
	DBPath string `env:"COURTSIDE_DB" envDefault:"courtside.db"`

	// VideoSource selects camera or screen capture.
	VideoSource string `env:"COURTSIDE_VIDEO_SOURCE" envDefault:"camera"`

	// FrameRate is frames per second sent to the live session.
	FrameRate int `env:"COURTSIDE_FRAME_RATE" envDefault:"5"`

	// LogLevel is debug, info, warn or error.
	LogLevel string `env:"COURTSIDE_LOG_LEVEL" envDefault:"info"`
}

// Load reads .env if present, then the environment. The API key is the only
// required value.
func Load() (Config, error) {
	// Missing .env is the normal production case.
	_ = godotenv.Load()

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse environment: %w", err)
	}
	if cfg.GeminiAPIKey == "" {
		return Config{}, errors.New("GEMINI_API_KEY is required")
	}
	if cfg.VideoSource != "camera" && cfg.VideoSource != "screen" {
		return Config{}, fmt.Errorf("COURTSIDE_VIDEO_SOURCE must be camera or screen, got %q", cfg.VideoSource)
	}
	return cfg, nil
}
