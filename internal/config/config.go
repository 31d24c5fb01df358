package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"

	"github.com/kapu/culturesphere-go/internal/constants"
	"github.com/kapu/culturesphere-go/internal/util"
	apperrors "github.com/kapu/culturesphere-go/pkg/errors"
)

type Config struct {
	Server  ServerConfig
	Qloo    QlooConfig
	Gemini  GeminiConfig
	OpenAI  OpenAIConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Port        int
	FrontendURL string
}

// Addr returns the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type QlooConfig struct {
	APIKey             string
	BaseURL            string
	Timeout            time.Duration
	DomainProfilesFile string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

type OpenAIConfig struct {
	APIKey         string
	Model          string
	EnableFallback bool
}

type LoggingConfig struct {
	Level  string
	File   string
	Format string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnvInt("PORT", 3001),
			FrontendURL: getEnv("FRONTEND_URL", "http://localhost:5173"),
		},
		Qloo: QlooConfig{
			APIKey:             getEnv("QLOO_API_KEY", ""),
			BaseURL:            getEnv("QLOO_BASE_URL", constants.QlooAPIConfig.BaseURL),
			Timeout:            time.Duration(getEnvInt("QLOO_TIMEOUT_SECONDS", int(constants.QlooAPIConfig.Timeout/time.Second))) * time.Second,
			DomainProfilesFile: getEnv("DOMAIN_PROFILES_FILE", ""),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", constants.GenerationConfig.DefaultGeminiModel),
		},
		OpenAI: OpenAIConfig{
			APIKey:         getEnv("OPENAI_API_KEY", ""),
			Model:          getEnv("OPENAI_MODEL", constants.GenerationConfig.DefaultOpenAIModel),
			EnableFallback: getEnvBool("OPENAI_ENABLE_FALLBACK", true),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			File:   getEnv("LOG_FILE", ""),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate rejects structurally invalid settings. Missing API keys are not
// errors; see Warnings.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return apperrors.NewConfigError(fmt.Sprintf("PORT must be between 1 and 65535, got %d", c.Server.Port), "PORT")
	}
	if c.Server.FrontendURL == "" {
		return apperrors.NewConfigError("FRONTEND_URL is required", "FRONTEND_URL")
	}
	if u, err := url.Parse(c.Qloo.BaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		return apperrors.NewConfigError("QLOO_BASE_URL must be an absolute URL", "QLOO_BASE_URL")
	}
	if c.Qloo.Timeout <= 0 {
		return apperrors.NewConfigError("QLOO_TIMEOUT_SECONDS must be positive", "QLOO_TIMEOUT_SECONDS")
	}
	if c.Qloo.DomainProfilesFile != "" {
		if _, err := os.Stat(c.Qloo.DomainProfilesFile); err != nil {
			return apperrors.NewConfigError("DOMAIN_PROFILES_FILE is not readable", "DOMAIN_PROFILES_FILE")
		}
	}
	return nil
}

// Warnings lists settings that degrade the service without preventing startup.
func (c *Config) Warnings() []string {
	var warnings []string
	if c.Qloo.APIKey == "" {
		warnings = append(warnings, "QLOO_API_KEY is not set; taste insights are disabled")
	}
	if c.Gemini.APIKey == "" && c.OpenAI.APIKey == "" {
		warnings = append(warnings, "no GEMINI_API_KEY or OPENAI_API_KEY; responses use the fallback template")
	}
	return warnings
}

func (c *Config) LogOptions() util.LogOptions {
	return util.LogOptions{
		Level:  c.Logging.Level,
		File:   c.Logging.File,
		Format: c.Logging.Format,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}
