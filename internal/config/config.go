package config

import (
	"errors"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	DB struct {
		DSN string `yaml:"dsn"`
	} `yaml:"db"`
	WorldID struct {
		VerifyURL string `yaml:"verify_url"`
		AppID     string `yaml:"app_id"`
		Action    string `yaml:"action"`
	} `yaml:"world_id"`
	Auth struct {
		JWTSecret         string `yaml:"jwt_secret"`
		SessionTTLMinutes int    `yaml:"session_ttl_minutes"`
	} `yaml:"auth"`
	Payments struct {
		ProviderURL    string `yaml:"provider_url"`
		APIKey         string `yaml:"api_key"`
		WebhookSecret  string `yaml:"webhook_secret"`
		MaxRetries     int    `yaml:"max_retries"`
		PlatformFeeBps int64  `yaml:"platform_fee_bps"`
	} `yaml:"payments"`
	Limits struct {
		DailySubmissions int `yaml:"daily_submissions"`
	} `yaml:"limits"`
	Worker struct {
		IntervalSeconds int64 `yaml:"interval_seconds"`
	} `yaml:"worker"`
}

func Load(path string) (*Config, error) {
	// Optional .env for local runs; a missing file is not an error.
	_ = godotenv.Load()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	applyEnvOverrides(&cfg)
	applyDefaults(&cfg)

	if cfg.Server.Addr == "" {
		return nil, errors.New("server.addr is required")
	}
	if cfg.DB.DSN == "" {
		return nil, errors.New("db.dsn is required")
	}
	if cfg.WorldID.VerifyURL == "" || cfg.WorldID.AppID == "" || cfg.WorldID.Action == "" {
		return nil, errors.New("world_id config is incomplete")
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, errors.New("auth.jwt_secret is required")
	}
	if cfg.Payments.ProviderURL == "" || cfg.Payments.WebhookSecret == "" {
		return nil, errors.New("payments config is incomplete")
	}
	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.Auth.SessionTTLMinutes <= 0 {
		cfg.Auth.SessionTTLMinutes = 7 * 24 * 60
	}
	if cfg.Payments.MaxRetries <= 0 {
		cfg.Payments.MaxRetries = 5
	}
	if cfg.Limits.DailySubmissions <= 0 {
		cfg.Limits.DailySubmissions = 50
	}
	if cfg.Worker.IntervalSeconds <= 0 {
		cfg.Worker.IntervalSeconds = 30
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SERVER_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("ALLOWED_ORIGINS"); v != "" {
		cfg.Server.AllowedOrigins = splitCommaList(v)
	}
	if v := os.Getenv("DB_DSN"); v != "" {
		cfg.DB.DSN = v
	}
	if v := os.Getenv("WORLD_ID_VERIFY_URL"); v != "" {
		cfg.WorldID.VerifyURL = v
	}
	if v := os.Getenv("WORLD_ID_APP_ID"); v != "" {
		cfg.WorldID.AppID = v
	}
	if v := os.Getenv("WORLD_ID_ACTION"); v != "" {
		cfg.WorldID.Action = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Auth.JWTSecret = v
	}
	if v := os.Getenv("SESSION_TTL_MINUTES"); v != "" {
		cfg.Auth.SessionTTLMinutes = atoiOr(cfg.Auth.SessionTTLMinutes, v)
	}
	if v := os.Getenv("PAYMENTS_PROVIDER_URL"); v != "" {
		cfg.Payments.ProviderURL = v
	}
	if v := os.Getenv("PAYMENTS_API_KEY"); v != "" {
		cfg.Payments.APIKey = v
	}
	if v := os.Getenv("PAYMENTS_WEBHOOK_SECRET"); v != "" {
		cfg.Payments.WebhookSecret = v
	}
	if v := os.Getenv("PAYMENTS_MAX_RETRIES"); v != "" {
		cfg.Payments.MaxRetries = atoiOr(cfg.Payments.MaxRetries, v)
	}
	if v := os.Getenv("PLATFORM_FEE_BPS"); v != "" {
		cfg.Payments.PlatformFeeBps = atoi64Or(cfg.Payments.PlatformFeeBps, v)
	}
	if v := os.Getenv("DAILY_SUBMISSION_LIMIT"); v != "" {
		cfg.Limits.DailySubmissions = atoiOr(cfg.Limits.DailySubmissions, v)
	}
	if v := os.Getenv("WORKER_INTERVAL_SECONDS"); v != "" {
		cfg.Worker.IntervalSeconds = atoi64Or(cfg.Worker.IntervalSeconds, v)
	}
}

func splitCommaList(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		out = append(out, p)
	}
	return out
}

func atoiOr(fallback int, v string) int {
	i, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return i
}

func atoi64Or(fallback int64, v string) int64 {
	i, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		return fallback
	}
	return i
}
