package bootstrap

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the resolved runtime configuration for the storefront.
// It merges file defaults and environment overrides to support both local and deployed runs.
type Config struct {
	ServiceID string

	HTTPPort int
	GRPCPort int

	DatabaseURL string
	RedisURL    string

	AdminPassword   string
	SessionTTL      time.Duration
	AdminSessionTTL time.Duration

	BcryptCost int

	WaitlistLimit    int
	VisitorWindow    time.Duration
	FreeShippingMin  float64
	FlatShippingRate float64

	StripeBaseURL       string
	StripeSecretKey     string
	StripeWebhookSecret string
	StripeTimeout       time.Duration
	CheckoutSuccessURL  string
	CheckoutCancelURL   string

	ShippoBaseURL  string
	ShippoAPIToken string
	ShippoTimeout  time.Duration
	ShipFrom       map[string]string

	EventWebhookURL    string
	EventWebhookRoutes map[string]string
	EventHTTPTimeout   time.Duration

	MaxDBConns         int32
	OutboxPollInterval time.Duration
	OutboxBatchSize    int
	OutboxClaimTTL     time.Duration
	OutboxMaxRetries   int

	CartSweepInterval     time.Duration
	CheckoutSweepInterval time.Duration
	CheckoutStaleAfter    time.Duration
	CheckoutSweepBatch    int
}

// configFile mirrors the YAML schema used by configs/default.yaml.
// It is intentionally separate from Config so runtime-only fields stay internal.
type configFile struct {
	Service struct {
		ID       string `yaml:"id"`
		HTTPPort int    `yaml:"http_port"`
		GRPCPort int    `yaml:"grpc_port"`
	} `yaml:"service"`
	Dependencies struct {
		PostgresURL string `yaml:"postgres_url"`
		RedisURL    string `yaml:"redis_url"`
	} `yaml:"dependencies"`
	Store struct {
		WaitlistLimit    int     `yaml:"waitlist_limit"`
		FreeShippingMin  float64 `yaml:"free_shipping_min"`
		FlatShippingRate float64 `yaml:"flat_shipping_rate"`
	} `yaml:"store"`
	Stripe struct {
		BaseURL    string `yaml:"base_url"`
		SuccessURL string `yaml:"success_url"`
		CancelURL  string `yaml:"cancel_url"`
	} `yaml:"stripe"`
	Shippo struct {
		BaseURL string            `yaml:"base_url"`
		From    map[string]string `yaml:"from"`
	} `yaml:"shippo"`
	Events struct {
		WebhookURL string            `yaml:"webhook_url"`
		Routes     map[string]string `yaml:"routes"`
	} `yaml:"events"`
}

// LoadConfig resolves configuration in priority order: defaults -> file -> env.
// This order keeps local bootstrap simple while allowing environment-specific overrides.
func LoadConfig(path string) (Config, error) {
	cfg := Config{
		ServiceID:             "gym-storefront",
		HTTPPort:              8080,
		GRPCPort:              9090,
		SessionTTL:            30 * 24 * time.Hour,
		AdminSessionTTL:       12 * time.Hour,
		BcryptCost:            12,
		WaitlistLimit:         500,
		VisitorWindow:         5 * time.Minute,
		FreeShippingMin:       75,
		FlatShippingRate:      5.95,
		StripeBaseURL:         "https://api.stripe.com",
		StripeTimeout:         15 * time.Second,
		CheckoutSuccessURL:    "http://localhost:3000/checkout/success",
		CheckoutCancelURL:     "http://localhost:3000/checkout/cancel",
		ShippoBaseURL:         "https://api.goshippo.com",
		ShippoTimeout:         15 * time.Second,
		EventHTTPTimeout:      8 * time.Second,
		MaxDBConns:            20,
		OutboxPollInterval:    2 * time.Second,
		OutboxBatchSize:       100,
		OutboxClaimTTL:        30 * time.Second,
		OutboxMaxRetries:      5,
		CartSweepInterval:     5 * time.Minute,
		CheckoutSweepInterval: 10 * time.Minute,
		CheckoutStaleAfter:    time.Hour,
		CheckoutSweepBatch:    50,
	}

	raw, err := os.ReadFile(path)
	if err == nil {
		var f configFile
		if unmarshalErr := yaml.Unmarshal(raw, &f); unmarshalErr != nil {
			return Config{}, fmt.Errorf("parse config file: %w", unmarshalErr)
		}
		if f.Service.ID != "" {
			cfg.ServiceID = f.Service.ID
		}
		if f.Service.HTTPPort > 0 {
			cfg.HTTPPort = f.Service.HTTPPort
		}
		if f.Service.GRPCPort > 0 {
			cfg.GRPCPort = f.Service.GRPCPort
		}
		if f.Dependencies.PostgresURL != "" {
			cfg.DatabaseURL = f.Dependencies.PostgresURL
		}
		if f.Dependencies.RedisURL != "" {
			cfg.RedisURL = f.Dependencies.RedisURL
		}
		if f.Store.WaitlistLimit > 0 {
			cfg.WaitlistLimit = f.Store.WaitlistLimit
		}
		if f.Store.FreeShippingMin > 0 {
			cfg.FreeShippingMin = f.Store.FreeShippingMin
		}
		if f.Store.FlatShippingRate > 0 {
			cfg.FlatShippingRate = f.Store.FlatShippingRate
		}
		if f.Stripe.BaseURL != "" {
			cfg.StripeBaseURL = f.Stripe.BaseURL
		}
		if f.Stripe.SuccessURL != "" {
			cfg.CheckoutSuccessURL = f.Stripe.SuccessURL
		}
		if f.Stripe.CancelURL != "" {
			cfg.CheckoutCancelURL = f.Stripe.CancelURL
		}
		if f.Shippo.BaseURL != "" {
			cfg.ShippoBaseURL = f.Shippo.BaseURL
		}
		if len(f.Shippo.From) > 0 {
			cfg.ShipFrom = f.Shippo.From
		}
		if f.Events.WebhookURL != "" {
			cfg.EventWebhookURL = f.Events.WebhookURL
		}
		if len(f.Events.Routes) > 0 {
			cfg.EventWebhookRoutes = f.Events.Routes
		}
	}

	cfg.DatabaseURL = envOrDefault("DB_URL", envOrDefault("POSTGRES_URL", cfg.DatabaseURL))
	cfg.RedisURL = envOrDefault("REDIS_URL", cfg.RedisURL)
	cfg.AdminPassword = envOrDefault("ADMIN_PASSWORD", cfg.AdminPassword)
	cfg.StripeSecretKey = envOrDefault("STRIPE_SECRET_KEY", cfg.StripeSecretKey)
	cfg.StripeWebhookSecret = envOrDefault("STRIPE_WEBHOOK_SECRET", cfg.StripeWebhookSecret)
	cfg.StripeBaseURL = envOrDefault("STRIPE_BASE_URL", cfg.StripeBaseURL)
	cfg.CheckoutSuccessURL = envOrDefault("CHECKOUT_SUCCESS_URL", cfg.CheckoutSuccessURL)
	cfg.CheckoutCancelURL = envOrDefault("CHECKOUT_CANCEL_URL", cfg.CheckoutCancelURL)
	cfg.ShippoAPIToken = envOrDefault("SHIPPO_API_TOKEN", cfg.ShippoAPIToken)
	cfg.ShippoBaseURL = envOrDefault("SHIPPO_BASE_URL", cfg.ShippoBaseURL)
	cfg.EventWebhookURL = envOrDefault("EVENT_WEBHOOK_URL", cfg.EventWebhookURL)

	cfg.HTTPPort = envInt("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = envInt("GRPC_PORT", cfg.GRPCPort)
	cfg.BcryptCost = envInt("BCRYPT_ROUNDS", cfg.BcryptCost)
	cfg.WaitlistLimit = envInt("WAITLIST_LIMIT", cfg.WaitlistLimit)
	cfg.MaxDBConns = int32(envInt("DB_MAX_CONNS", int(cfg.MaxDBConns)))
	cfg.OutboxBatchSize = envInt("OUTBOX_BATCH_SIZE", cfg.OutboxBatchSize)
	cfg.OutboxMaxRetries = envInt("OUTBOX_MAX_RETRIES", cfg.OutboxMaxRetries)
	cfg.CheckoutSweepBatch = envInt("CHECKOUT_SWEEP_BATCH", cfg.CheckoutSweepBatch)
	cfg.FreeShippingMin = envFloat("FREE_SHIPPING_MIN", cfg.FreeShippingMin)
	cfg.FlatShippingRate = envFloat("FLAT_SHIPPING_RATE", cfg.FlatShippingRate)

	cfg.SessionTTL = time.Duration(envInt("SESSION_EXPIRY_DAYS", int(cfg.SessionTTL.Hours()/24))) * 24 * time.Hour
	cfg.AdminSessionTTL = time.Duration(envInt("ADMIN_SESSION_HOURS", int(cfg.AdminSessionTTL.Hours()))) * time.Hour
	cfg.VisitorWindow = time.Duration(envInt("VISITOR_WINDOW_SECONDS", int(cfg.VisitorWindow.Seconds()))) * time.Second
	cfg.StripeTimeout = time.Duration(envInt("STRIPE_TIMEOUT_SECONDS", int(cfg.StripeTimeout.Seconds()))) * time.Second
	cfg.ShippoTimeout = time.Duration(envInt("SHIPPO_TIMEOUT_SECONDS", int(cfg.ShippoTimeout.Seconds()))) * time.Second
	cfg.EventHTTPTimeout = time.Duration(envInt("EVENT_HTTP_TIMEOUT_SECONDS", int(cfg.EventHTTPTimeout.Seconds()))) * time.Second
	cfg.OutboxPollInterval = time.Duration(envInt("OUTBOX_POLL_SECONDS", int(cfg.OutboxPollInterval.Seconds()))) * time.Second
	cfg.OutboxClaimTTL = time.Duration(envInt("OUTBOX_CLAIM_TTL_SECONDS", int(cfg.OutboxClaimTTL.Seconds()))) * time.Second
	cfg.CartSweepInterval = time.Duration(envInt("CART_SWEEP_SECONDS", int(cfg.CartSweepInterval.Seconds()))) * time.Second
	cfg.CheckoutSweepInterval = time.Duration(envInt("CHECKOUT_SWEEP_SECONDS", int(cfg.CheckoutSweepInterval.Seconds()))) * time.Second
	cfg.CheckoutStaleAfter = time.Duration(envInt("CHECKOUT_STALE_MINUTES", int(cfg.CheckoutStaleAfter.Minutes()))) * time.Minute

	if cfg.DatabaseURL == "" {
		return Config{}, fmt.Errorf("missing DB_URL/POSTGRES_URL")
	}
	if cfg.RedisURL == "" {
		return Config{}, fmt.Errorf("missing REDIS_URL")
	}

	return cfg, nil
}

// envOrDefault returns an env var when present, otherwise the provided fallback.
func envOrDefault(name, fallback string) string {
	if value := os.Getenv(name); value != "" {
		return value
	}
	return fallback
}

// envInt parses integer env vars with safe fallback on empty/invalid values.
func envInt(name string, fallback int) int {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

// envFloat parses float env vars with safe fallback on empty/invalid values.
func envFloat(name string, fallback float64) float64 {
	raw := os.Getenv(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}
