package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"spilcafe-catalog/internal/constants"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.uber.org/fx"
	"golang.org/x/text/language"
)

type Config struct {
	CatalogURL         string
	FetchTimeout       time.Duration
	Locale             language.Tag
	ServerPort         string
	LogLevel           zerolog.Level
	CORSAllowedOrigins []string
}

func Load(logger zerolog.Logger) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logger.Debug().Msg(".env file not found, using environment variables or defaults")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	zerolog.SetGlobalLevel(cfg.LogLevel)

	logger.Info().
		Str("catalog_url", cfg.CatalogURL).
		Dur("fetch_timeout", cfg.FetchTimeout).
		Str("locale", cfg.Locale.String()).
		Str("server_port", cfg.ServerPort).
		Str("log_level", cfg.LogLevel.String()).
		Strs("cors_allowed_origins", cfg.CORSAllowedOrigins).
		Msg("configuration loaded")

	return cfg, nil
}

// FromEnv reads the configuration from the process environment only.
func FromEnv() (*Config, error) {
	cfg := &Config{
		CatalogURL: getEnv("CATALOG_URL", constants.DefaultCatalogURL),
		ServerPort: getEnv("SERVER_PORT", "8080"),
	}

	if !strings.HasPrefix(cfg.CatalogURL, "http://") && !strings.HasPrefix(cfg.CatalogURL, "https://") {
		return nil, fmt.Errorf("CATALOG_URL must be an http(s) URL, got %q", cfg.CatalogURL)
	}

	timeout, err := time.ParseDuration(getEnv("CATALOG_FETCH_TIMEOUT", constants.DefaultFetchTimeout.String()))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_FETCH_TIMEOUT: %w", err)
	}
	if timeout <= 0 {
		return nil, fmt.Errorf("CATALOG_FETCH_TIMEOUT must be positive, got %s", timeout)
	}
	cfg.FetchTimeout = timeout

	locale, err := language.Parse(getEnv("CATALOG_LOCALE", constants.DefaultLocale))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_LOCALE: %w", err)
	}
	cfg.Locale = locale

	level, err := zerolog.ParseLevel(strings.ToLower(getEnv("LOG_LEVEL", "info")))
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	cfg.LogLevel = level

	for _, origin := range strings.Split(getEnv("CORS_ALLOWED_ORIGINS", "*"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			cfg.CORSAllowedOrigins = append(cfg.CORSAllowedOrigins, origin)
		}
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

var Module = fx.Provide(Load)
