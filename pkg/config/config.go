package config

import "time"

type DB struct {
	Url string `envconfig:"URL"`
}

type Server struct {
	Scheme string `envconfig:"SCHEME" default:"http"`
	Host   string `envconfig:"HOST" default:"localhost"`
	Port   int    `envconfig:"PORT" default:"8000"`
}

type Log struct {
	Level  int    `envconfig:"LEVEL" default:"0"`
	Format string `envconfig:"FORMAT" default:"json"`
}

//revive:disable
type Stripe struct {
	ApiKey string `envconfig:"API_KEY" required:"true"`
	// PlatformAccountID is the destination for transfers pulled back from
	// connected accounts (subscription fees, extra invoices).
	PlatformAccountID string `envconfig:"PLATFORM_ACCOUNT_ID"`
	// OnboardingReturnURL is the fixed redirect after a seller completes
	// Express onboarding.
	OnboardingReturnURL string `envconfig:"ONBOARDING_RETURN_URL" default:"http://localhost:8000/onboarding/complete"`
	// OnboardingRefreshURL is the base URL of our refresh endpoint; the
	// per-mapping token is appended as a query parameter.
	OnboardingRefreshURL string `envconfig:"ONBOARDING_REFRESH_URL" default:"http://localhost:8000/onboarding/refresh"`
	// PrefillOnboarding forwards shop profile details into account creation.
	PrefillOnboarding bool `envconfig:"PREFILL_ONBOARDING" default:"false"`
	// AccountMetadata is a JSON object mapping Mirakl shop attribute keys
	// to Stripe account metadata keys.
	AccountMetadata string `envconfig:"ACCOUNT_METADATA"`
}

type Mirakl struct {
	BaseURL string        `envconfig:"BASE_URL"`
	ApiKey  string        `envconfig:"API_KEY"`
	Timeout time.Duration `envconfig:"HTTP_TIMEOUT" default:"10s"`
	// CustomFieldCode is the shop custom field receiving generated
	// onboarding/login link URLs.
	CustomFieldCode string `envconfig:"CUSTOM_FIELD_CODE" default:"stripe-url"`
	// IgnoredShopFieldCode is the shop custom field carrying the explicit
	// per-shop ignore signal ("true" excludes the shop from settlement).
	IgnoredShopFieldCode string `envconfig:"IGNORED_SHOP_FIELD_CODE" default:"stripe-ignored"`
}

//revive:enable

type App struct {
	Env    string  `envconfig:"APP_ENV" default:"development"`
	Server *Server `envconfig:"SERVER"`
	Log    *Log    `envconfig:"LOG"`
	DB     *DB     `envconfig:"DATABASE"`
	Stripe *Stripe `envconfig:"STRIPE"`
	Mirakl *Mirakl `envconfig:"MIRAKL"`
}
