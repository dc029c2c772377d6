package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server    ServerConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Luarmor   LuarmorConfig
	TrueMoney TrueMoneyConfig
	Hcaptcha  HcaptchaConfig

	// Comma-separated prefixes a browser Origin/Referer must start with.
	// Empty disables the origin check entirely.
	AllowedOrigins []string

	// User-Agent substrings that mark a server-to-server HTTP client for
	// requests carrying neither Origin nor Referer.
	ServerAgentMarkers []string

	// Shared secret expected in the x-api-key header on the machine surface.
	LocalAPIKey string
}

type ServerConfig struct {
	Port        string
	Environment string
}

type PostgresConfig struct {
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type AuthConfig struct {
	JWTSecret      string
	JWTExpiryHours int
	AdminBootstrap string // secret required to register an admin user
}

type RateLimitConfig struct {
	Store         string // "memory" or "redis"
	Window        time.Duration
	MaxRequests   int
	SweepInterval time.Duration
}

type LuarmorConfig struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type TrueMoneyConfig struct {
	BaseURL    string
	PhoneTopup string
	Timeout    time.Duration
}

type HcaptchaConfig struct {
	Secret    string
	VerifyURL string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Port:        getEnv("PORT", "8080"),
			Environment: getEnv("ENVIRONMENT", "development"),
		},
		Postgres: PostgresConfig{
			DSN: os.Getenv("POSTGRES_DSN"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Auth: AuthConfig{
			JWTSecret:      os.Getenv("JWT_SECRET"),
			JWTExpiryHours: getEnvInt("JWT_EXPIRY_HOURS", 24),
			AdminBootstrap: os.Getenv("ADMIN_BOOTSTRAP_SECRET"),
		},
		RateLimit: RateLimitConfig{
			Store:         getEnv("RATE_LIMIT_STORE", "memory"),
			Window:        getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
			MaxRequests:   getEnvInt("RATE_LIMIT_MAX_REQUESTS", 5),
			SweepInterval: getEnvDuration("RATE_LIMIT_SWEEP_INTERVAL", 5*time.Minute),
		},
		Luarmor: LuarmorConfig{
			BaseURL: os.Getenv("LUARMOR_API_URL"),
			APIKey:  os.Getenv("LUARMOR_API_KEY"),
			Timeout: getEnvDuration("LUARMOR_TIMEOUT", 30*time.Second),
		},
		TrueMoney: TrueMoneyConfig{
			BaseURL:    getEnv("XPLUEM_API_BASE", "https://api.xpluem.com"),
			PhoneTopup: os.Getenv("PHONE_TOPUP"),
			Timeout:    getEnvDuration("TRUEMONEY_TIMEOUT", 30*time.Second),
		},
		Hcaptcha: HcaptchaConfig{
			Secret:    os.Getenv("HCAPTCHA_SECRET_KEY"),
			VerifyURL: getEnv("HCAPTCHA_VERIFY_URL", "https://hcaptcha.com/siteverify"),
		},
		LocalAPIKey: os.Getenv("LOCAL_API_KEY"),
	}

	if allowed := os.Getenv("ALLOWED_ORIGIN"); allowed != "" {
		for _, o := range strings.Split(allowed, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	markers := getEnv("SERVER_AGENT_MARKERS", "axios,node,go-http-client")
	for _, m := range strings.Split(markers, ",") {
		if m = strings.TrimSpace(m); m != "" {
			cfg.ServerAgentMarkers = append(cfg.ServerAgentMarkers, m)
		}
	}

	if cfg.LocalAPIKey == "" {
		return nil, errors.New("LOCAL_API_KEY is required")
	}
	if cfg.Luarmor.BaseURL == "" || cfg.Luarmor.APIKey == "" {
		return nil, errors.New("LUARMOR_API_URL and LUARMOR_API_KEY are required")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET is required")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func (r RedisConfig) GetRedisAddr() string {
	return r.Addr
}
