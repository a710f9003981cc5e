package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	ChargePolicySuccess = "success"
	ChargePolicyAttempt = "attempt"
)

type AppConfig struct {
	Port           string
	Environment    string
	FrontendURL    string
	AllowedOrigins string
	MetricsToken   string
}

type JWTConfig struct {
	Secret string
	Issuer string
	TTL    time.Duration
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	Currency      string
	SuccessURL    string
	CancelURL     string
	Timeout       time.Duration
}

type TranslationConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	Timeout        time.Duration
	MaxConcurrency int
	SystemPrompt   string
}

type OCRConfig struct {
	APIKey  string
	URL     string
	Timeout time.Duration
}

// CreditsConfig is the pricing policy applied by the credit ledger.
type CreditsConfig struct {
	DefaultAllotment   int
	DefaultTier        string
	CreditsPerLanguage int
	ChargePolicy       string
}

type R2Config struct {
	AccountID       string
	AccessKeyID     string
	SecretAccessKey string
	Bucket          string
}

type EmailConfig struct {
	ResendAPIKey   string
	FromAddress    string
	FromName       string
	SupportAddress string
}

type RateLimitConfig struct {
	Max    int
	Window time.Duration
}

type Config struct {
	App         AppConfig
	DatabaseURL string
	RedisURL    string
	JWT         JWTConfig
	Stripe      StripeConfig
	Translation TranslationConfig
	OCR         OCRConfig
	Credits     CreditsConfig
	R2          R2Config
	Email       EmailConfig
	RateLimit   RateLimitConfig
}

func LoadConfig() *Config {
	cfg := &Config{}

	cfg.App.Port = getenv("PORT", "8080")
	cfg.App.Environment = getenv("ENVIRONMENT", "development")
	cfg.App.FrontendURL = strings.TrimRight(getenv("FRONTEND_URL", "http://localhost:5173"), "/")
	cfg.App.AllowedOrigins = getenv("CORS_ALLOWED_ORIGINS", "http://localhost:5173")
	// Without a token /metrics is not served.
	cfg.App.MetricsToken = os.Getenv("METRICS_TOKEN")

	cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	cfg.RedisURL = os.Getenv("REDIS_URL")

	cfg.JWT.Secret = os.Getenv("JWT_SECRET")
	cfg.JWT.Issuer = getenv("JWT_ISSUER", "menutranslator")
	cfg.JWT.TTL = getenvDuration("JWT_TTL", 7*24*time.Hour)

	// Stripe
	cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.Stripe.WebhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	cfg.Stripe.Currency = strings.ToLower(getenv("STRIPE_CURRENCY", "brl"))
	cfg.Stripe.SuccessURL = getenv("STRIPE_SUCCESS_URL", cfg.App.FrontendURL+"/dashboard?payment=success&session_id={CHECKOUT_SESSION_ID}")
	cfg.Stripe.CancelURL = getenv("STRIPE_CANCEL_URL", cfg.App.FrontendURL+"/dashboard?payment=canceled")
	cfg.Stripe.Timeout = getenvDuration("STRIPE_TIMEOUT", 15*time.Second)

	// Translation provider (OpenAI compatible)
	cfg.Translation.APIKey = os.Getenv("TRANSLATION_API_KEY")
	cfg.Translation.BaseURL = getenv("TRANSLATION_BASE_URL", "https://api.deepseek.com/v1")
	cfg.Translation.Model = getenv("TRANSLATION_MODEL", "deepseek-chat")
	cfg.Translation.Timeout = getenvDuration("TRANSLATION_TIMEOUT", 60*time.Second)
	cfg.Translation.MaxConcurrency = getenvInt("TRANSLATION_MAX_CONCURRENCY", 4)
	cfg.Translation.SystemPrompt = os.Getenv("TRANSLATION_SYSTEM_PROMPT")

	cfg.OCR.APIKey = os.Getenv("OCR_API_KEY")
	cfg.OCR.URL = getenv("OCR_URL", "https://api.deepseek.com/v1/vision/ocr")
	cfg.OCR.Timeout = getenvDuration("OCR_TIMEOUT", 60*time.Second)

	cfg.Credits.DefaultAllotment = getenvInt("CREDITS_DEFAULT_ALLOTMENT", 10)
	cfg.Credits.DefaultTier = getenv("CREDITS_DEFAULT_TIER", "free")
	cfg.Credits.CreditsPerLanguage = getenvInt("CREDITS_PER_LANGUAGE", 1)
	cfg.Credits.ChargePolicy = normalizeChargePolicy(getenv("CREDITS_CHARGE_POLICY", ChargePolicySuccess))

	// R2 config
	cfg.R2.AccountID = os.Getenv("R2_ACCOUNT_ID")
	cfg.R2.AccessKeyID = os.Getenv("R2_ACCESS_KEY_ID")
	cfg.R2.SecretAccessKey = os.Getenv("R2_SECRET_ACCESS_KEY")
	cfg.R2.Bucket = os.Getenv("R2_BUCKET")

	cfg.Email.ResendAPIKey = os.Getenv("RESEND_API_KEY")
	cfg.Email.FromAddress = os.Getenv("EMAIL_FROM_ADDRESS")
	cfg.Email.FromName = getenv("EMAIL_FROM_NAME", "Menu Translator")
	cfg.Email.SupportAddress = os.Getenv("EMAIL_SUPPORT_ADDRESS")

	cfg.RateLimit.Max = getenvInt("RATE_LIMIT_MAX", 60)
	cfg.RateLimit.Window = getenvDuration("RATE_LIMIT_WINDOW", time.Minute)

	return cfg
}

func (c *Config) IsProduction() bool {
	return c.App.Environment == "production"
}

// R2Enabled reports whether object storage credentials are present.
func (c *Config) R2Enabled() bool {
	return c.R2.AccountID != "" && c.R2.AccessKeyID != "" && c.R2.SecretAccessKey != "" && c.R2.Bucket != ""
}

func normalizeChargePolicy(v string) string {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case ChargePolicyAttempt:
		return ChargePolicyAttempt
	default:
		return ChargePolicySuccess
	}
}

func getenv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	v := getenv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := getenv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}
