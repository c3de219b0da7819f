package config

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/viper"

	"github.com/medledger/medledger/pkg/ethaddr"
)

type Config struct {
	Port           string   `mapstructure:"PORT"`
	Env            string   `mapstructure:"ENV"`
	DatabaseURL    string   `mapstructure:"DATABASE_URL"`
	DBMaxConns     int32    `mapstructure:"DB_MAX_CONNS"`
	DBMinConns     int32    `mapstructure:"DB_MIN_CONNS"`
	AuthMode       string   `mapstructure:"AUTH_MODE"`
	AuthSecret     string   `mapstructure:"AUTH_SECRET"`
	TokenTTLMin    int      `mapstructure:"TOKEN_TTL_MINUTES"`
	AuditorAddress string   `mapstructure:"AUDITOR_ADDRESS"`
	BlobBackend    string   `mapstructure:"BLOB_BACKEND"`
	BlobPath       string   `mapstructure:"BLOB_PATH"`
	CORSOrigins    []string `mapstructure:"CORS_ORIGINS"`
	RateLimitRPS   float64  `mapstructure:"RATE_LIMIT_RPS"`
	RateLimitBurst int      `mapstructure:"RATE_LIMIT_BURST"`
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("PORT", "8000")
	v.SetDefault("ENV", "development")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MIN_CONNS", 5)
	v.SetDefault("AUTH_MODE", "") // auto-detect: "" -> inferred from ENV
	v.SetDefault("TOKEN_TTL_MINUTES", 60)
	v.SetDefault("BLOB_BACKEND", "leveldb")
	v.SetDefault("BLOB_PATH", "./data/blobs")
	v.SetDefault("CORS_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_RPS", 100)
	v.SetDefault("RATE_LIMIT_BURST", 200)

	// Bind env vars explicitly so Unmarshal picks them up
	v.BindEnv("PORT")
	v.BindEnv("ENV")
	v.BindEnv("DATABASE_URL")
	v.BindEnv("DB_MAX_CONNS")
	v.BindEnv("DB_MIN_CONNS")
	v.BindEnv("AUTH_MODE")
	v.BindEnv("AUTH_SECRET")
	v.BindEnv("TOKEN_TTL_MINUTES")
	v.BindEnv("AUDITOR_ADDRESS")
	v.BindEnv("BLOB_BACKEND")
	v.BindEnv("BLOB_PATH")
	v.BindEnv("CORS_ORIGINS")
	v.BindEnv("RATE_LIMIT_RPS")
	v.BindEnv("RATE_LIMIT_BURST")

	// Try reading .env file, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if cfg.CORSOrigins == nil {
		origins := v.GetString("CORS_ORIGINS")
		if origins != "" {
			cfg.CORSOrigins = strings.Split(origins, ",")
		}
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	if cfg.IsDev() {
		log.Println("WARNING: ============================================================")
		log.Println("WARNING: Server is running in DEVELOPMENT mode (ENV=development).")
		log.Println("WARNING: Caller identity is taken from the X-Account-Address header")
		log.Println("WARNING: without any token verification.")
		log.Println("WARNING: Set ENV=production and AUTH_SECRET for real deployments.")
		log.Println("WARNING: ============================================================")
	}

	return cfg, nil
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

// IsProduction returns true when the server is configured for production mode.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// ResolvedAuthMode returns the effective auth mode. If AUTH_MODE is explicitly
// set, it is returned. Otherwise the mode is inferred:
//   - ENV=development → "development" (caller taken from request header)
//   - Otherwise       → "standalone" (built-in HS256 token issuer)
func (c *Config) ResolvedAuthMode() string {
	if c.AuthMode != "" {
		return c.AuthMode
	}
	if c.IsDev() {
		return "development"
	}
	return "standalone"
}

// Validate checks that the configuration is safe to run. Standalone mode
// needs a signing secret; the auditor account, when set, must be a valid
// ledger address because role gating compares against it verbatim.
func (c *Config) Validate() error {
	mode := c.ResolvedAuthMode()
	if mode != "development" && mode != "standalone" {
		return fmt.Errorf("AUTH_MODE must be \"development\" or \"standalone\", got %q", mode)
	}
	if mode == "standalone" && c.AuthSecret == "" {
		return fmt.Errorf("AUTH_SECRET is required when AUTH_MODE is \"standalone\". " +
			"Refusing to start with unsigned tokens")
	}
	if c.IsProduction() && c.AuditorAddress == "" {
		return fmt.Errorf("AUDITOR_ADDRESS is required in production")
	}
	if c.AuditorAddress != "" && !ethaddr.Valid(c.AuditorAddress) {
		return fmt.Errorf("AUDITOR_ADDRESS is not a valid account address: %q", c.AuditorAddress)
	}

	switch c.BlobBackend {
	case "memory", "fs", "leveldb":
	default:
		return fmt.Errorf("BLOB_BACKEND must be \"memory\", \"fs\", or \"leveldb\", got %q", c.BlobBackend)
	}
	if c.BlobBackend != "memory" && c.BlobPath == "" {
		return fmt.Errorf("BLOB_PATH is required for the %s blob backend", c.BlobBackend)
	}

	return nil
}
