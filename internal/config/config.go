package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// STT backend selectors.
const (
	STTBackendGoogle  = "google"
	STTBackendWhisper = "whisper"
	STTBackendMock    = "mock"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port string

	STTBackend      string
	WhisperEndpoint string
	WhisperAPIKey   string
	WhisperModel    string

	GeminiAPIKey string
	GeminiModel  string

	// Empty MongoURI disables the recording archive.
	MongoURI      string
	MongoDatabase string

	MaxConcurrentCalls  int
	ExternalCallTimeout time.Duration
}

// Load reads the configuration from the environment, applying defaults.
func Load() (*Config, error) {
	cfg := &Config{
		Port:                getEnv("PORT", "8080"),
		STTBackend:          getEnv("STT_BACKEND", STTBackendMock),
		WhisperEndpoint:     getEnv("WHISPER_ENDPOINT", "https://api.openai.com/v1/audio/transcriptions"),
		WhisperAPIKey:       os.Getenv("WHISPER_API_KEY"),
		WhisperModel:        getEnv("WHISPER_MODEL", "whisper-1"),
		GeminiAPIKey:        os.Getenv("GEMINI_API_KEY"),
		GeminiModel:         getEnv("GEMINI_MODEL", "gemini-2.0-flash"),
		MongoURI:            os.Getenv("MONGODB_URI"),
		MongoDatabase:       getEnv("MONGODB_DATABASE", "callscribe"),
		MaxConcurrentCalls:  getEnvInt("MAX_CONCURRENT_CALLS", 8),
		ExternalCallTimeout: time.Duration(getEnvInt("EXTERNAL_CALL_TIMEOUT_SECONDS", 30)) * time.Second,
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks cross-field consistency.
func (c *Config) Validate() error {
	switch c.STTBackend {
	case STTBackendGoogle, STTBackendMock:
	case STTBackendWhisper:
		if c.WhisperEndpoint == "" {
			return fmt.Errorf("WHISPER_ENDPOINT is required for the whisper backend")
		}
	default:
		return fmt.Errorf("unknown STT backend %q", c.STTBackend)
	}

	if c.MaxConcurrentCalls <= 0 {
		return fmt.Errorf("MAX_CONCURRENT_CALLS must be positive, got %d", c.MaxConcurrentCalls)
	}
	if c.ExternalCallTimeout <= 0 {
		return fmt.Errorf("EXTERNAL_CALL_TIMEOUT_SECONDS must be positive")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fallback
	}
	return parsed
}
