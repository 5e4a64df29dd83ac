package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type ServerConfig struct {
	Port      string
	Mode      string // gin mode: debug/release
	PublicURL string // externally reachable base URL, used for gateway webhooks
}

type AuthConfig struct {
	JWTSecret string
}

type StorageConfig struct {
	UploadDir     string // primary uploads directory
	PersistentDir string // optional durable mirror (empty = disabled)
	BuildDir      string // site build-output mirror
}

// GatewayConfig holds one mobile money provider's credentials. A PaymentConfig
// row in the database wins over these values; they are the environment
// fallback only.
type GatewayConfig struct {
	BaseURL   string
	APIKey    string
	APISecret string
	ShortCode string
}

type Config struct {
	Env      string // development/production
	Server   ServerConfig
	Auth     AuthConfig
	Storage  StorageConfig
	RedisURL string
	Mpesa    GatewayConfig
	TigoPesa GatewayConfig
	Airtel   GatewayConfig
}

func (c *Config) Production() bool {
	return strings.EqualFold(c.Env, "production")
}

// Load reads configuration from the environment. Outside production, missing
// gateway credentials fall back to the providers' public sandbox endpoints;
// in production missing credentials are a startup error, never a silent
// sandbox fallback.
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "debug")
	v.SetDefault("UPLOAD_DIR", "uploads")
	v.SetDefault("BUILD_UPLOAD_DIR", "client/build/uploads")
	v.SetDefault("REDIS_URL", "localhost:6379")

	cfg := &Config{
		Env: v.GetString("APP_ENV"),
		Server: ServerConfig{
			Port:      v.GetString("PORT"),
			Mode:      v.GetString("GIN_MODE"),
			PublicURL: strings.TrimSuffix(v.GetString("PUBLIC_URL"), "/"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("JWT_SECRET"),
		},
		Storage: StorageConfig{
			UploadDir:     v.GetString("UPLOAD_DIR"),
			PersistentDir: v.GetString("PERSISTENT_DIR"),
			BuildDir:      v.GetString("BUILD_UPLOAD_DIR"),
		},
		RedisURL: v.GetString("REDIS_URL"),
		Mpesa: GatewayConfig{
			BaseURL:   v.GetString("MPESA_BASE_URL"),
			APIKey:    v.GetString("MPESA_API_KEY"),
			APISecret: v.GetString("MPESA_API_SECRET"),
			ShortCode: v.GetString("MPESA_SHORT_CODE"),
		},
		TigoPesa: GatewayConfig{
			BaseURL:   v.GetString("TIGOPESA_BASE_URL"),
			APIKey:    v.GetString("TIGOPESA_USERNAME"),
			APISecret: v.GetString("TIGOPESA_PASSWORD"),
			ShortCode: v.GetString("TIGOPESA_BILLER_MSISDN"),
		},
		Airtel: GatewayConfig{
			BaseURL:   v.GetString("AIRTEL_BASE_URL"),
			APIKey:    v.GetString("AIRTEL_CLIENT_ID"),
			APISecret: v.GetString("AIRTEL_CLIENT_SECRET"),
		},
	}

	if !cfg.Production() {
		applySandboxDefaults(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func applySandboxDefaults(cfg *Config) {
	if cfg.Mpesa.BaseURL == "" {
		cfg.Mpesa.BaseURL = "https://openapi.m-pesa.com/sandbox"
	}
	if cfg.TigoPesa.BaseURL == "" {
		cfg.TigoPesa.BaseURL = "https://accessgwtest.tigo.co.tz:8443"
	}
	if cfg.Airtel.BaseURL == "" {
		cfg.Airtel.BaseURL = "https://openapiuat.airtel.africa"
	}
	if cfg.Auth.JWTSecret == "" {
		cfg.Auth.JWTSecret = "dev-only-secret"
	}
	if cfg.Server.PublicURL == "" {
		cfg.Server.PublicURL = "http://localhost:" + cfg.Server.Port
	}
}

func (c *Config) validate() error {
	var missing []string

	if c.Production() {
		if c.Auth.JWTSecret == "" {
			missing = append(missing, "JWT_SECRET")
		}
		// webhooks must point at a reachable address, never at a default
		if c.Server.PublicURL == "" {
			missing = append(missing, "PUBLIC_URL")
		}
		if c.Mpesa.APIKey == "" || c.Mpesa.APISecret == "" {
			missing = append(missing, "MPESA_API_KEY/MPESA_API_SECRET")
		}
		if c.TigoPesa.APIKey == "" || c.TigoPesa.APISecret == "" {
			missing = append(missing, "TIGOPESA_USERNAME/TIGOPESA_PASSWORD")
		}
		if c.Airtel.APIKey == "" || c.Airtel.APISecret == "" {
			missing = append(missing, "AIRTEL_CLIENT_ID/AIRTEL_CLIENT_SECRET")
		}
	}
	if c.Storage.UploadDir == "" {
		missing = append(missing, "UPLOAD_DIR")
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}
