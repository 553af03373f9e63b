package config

import (
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads the application configuration from the environment, after
// loading an optional .env file.
func Load() (*App, error) {
	logger := slog.Default()

	if err := godotenv.Load(); err != nil {
		logger.Warn("No .env file found, using system environment variables")
	}

	var cfg App
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}

	logger.Info("App config loaded",
		"env", cfg.Env,
		"db", maskValue(cfg.DB.Url),
		"stripe_api_key", maskValue(cfg.Stripe.ApiKey),
		"mirakl_base_url", cfg.Mirakl.BaseURL,
		"mirakl_api_key", maskValue(cfg.Mirakl.ApiKey),
		"custom_field_code", cfg.Mirakl.CustomFieldCode,
		"ignored_shop_field_code", cfg.Mirakl.IgnoredShopFieldCode,
		"prefill_onboarding", cfg.Stripe.PrefillOnboarding,
	)
	return &cfg, nil
}

func maskValue(key string) string {
	if len(key) <= 6 {
		return "****"
	}
	return key[:2] + "****" + key[len(key)-4:]
}
