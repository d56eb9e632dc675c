package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/xxxsen/common/logger"
)

type Config struct {
	Port          int              `json:"port"`
	AppURL        string           `json:"app_url"`
	JWTSecret     string           `json:"jwt_secret"`
	JWTTTLHours   int              `json:"jwt_ttl_hours"`
	CORSAllowlist []string         `json:"cors_allowlist"`
	LogConfig     logger.LogConfig `json:"log_config"`
	Storage       StorageConfig    `json:"storage"`
	OTP           OTPConfig        `json:"otp"`
	Mail          MailConfig       `json:"mail"`
	OAuth         OAuthConfig      `json:"oauth"`
}

type StorageConfig struct {
	Type     string         `json:"type"`
	Database DatabaseConfig `json:"database"`
	Redis    RedisConfig    `json:"redis"`
}

type DatabaseConfig struct {
	DSN      string `json:"dsn"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
	DBName   string `json:"db_name"`
	SSLMode  string `json:"ssl_mode"`
}

// RedisConfig, when Addr is set, moves the pending-code store onto redis so
// several server instances can share it.
type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password"`
	DB       int    `json:"db"`
}

type OTPConfig struct {
	TTLMinutes      int  `json:"ttl_minutes"`
	CooldownSeconds int  `json:"cooldown_seconds"`
	MaxAttempts     int  `json:"max_attempts"`
	ExposeDevCode   bool `json:"expose_dev_code"`
}

type MailConfig struct {
	Type         string `json:"type"`
	Host         string `json:"host"`
	Port         int    `json:"port"`
	Username     string `json:"username"`
	Password     string `json:"password"`
	From         string `json:"from"`
	ResendAPIKey string `json:"resend_api_key"`
}

type OAuthConfig struct {
	Google ProviderConfig `json:"google"`
}

type ProviderConfig struct {
	Enable       bool     `json:"enable"`
	ClientID     string   `json:"client_id"`
	ClientSecret string   `json:"client_secret"`
	RedirectURL  string   `json:"redirect_url"`
	Scopes       []string `json:"scopes"`
}

func Load(path string) (*Config, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	var cfg Config
	if err := json.NewDecoder(file).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("jwt_secret is required")
	}
	if cfg.Port == 0 {
		return nil, fmt.Errorf("port is required")
	}
	if cfg.AppURL == "" {
		cfg.AppURL = fmt.Sprintf("http://localhost:%d", cfg.Port)
	}
	if cfg.JWTTTLHours == 0 {
		cfg.JWTTTLHours = 24 * 7
	}
	if cfg.LogConfig.Level == "" {
		cfg.LogConfig.Level = "info"
	}
	if cfg.OTP.TTLMinutes == 0 {
		cfg.OTP.TTLMinutes = 10
	}
	if cfg.OTP.CooldownSeconds == 0 {
		cfg.OTP.CooldownSeconds = 60
	}
	if cfg.OTP.MaxAttempts == 0 {
		cfg.OTP.MaxAttempts = 5
	}
	if cfg.Storage.Type == "" {
		cfg.Storage.Type = "memory"
	}
	switch cfg.Storage.Type {
	case "memory":
	case "postgres":
		db := cfg.Storage.Database
		if db.DSN == "" && (db.Host == "" || db.User == "" || db.DBName == "") {
			return nil, fmt.Errorf("storage.database dsn or host/user/db_name are required for postgres")
		}
	default:
		return nil, fmt.Errorf("storage.type must be memory or postgres")
	}
	if cfg.Mail.Type == "" {
		cfg.Mail.Type = "log"
	}
	switch cfg.Mail.Type {
	case "log":
	case "smtp":
		if cfg.Mail.Host == "" || cfg.Mail.Port == 0 || cfg.Mail.From == "" {
			return nil, fmt.Errorf("mail host/port/from are required for smtp")
		}
	case "resend":
		if cfg.Mail.ResendAPIKey == "" || cfg.Mail.From == "" {
			return nil, fmt.Errorf("mail resend_api_key/from are required for resend")
		}
	default:
		return nil, fmt.Errorf("mail.type must be log, smtp or resend")
	}
	return &cfg, nil
}
