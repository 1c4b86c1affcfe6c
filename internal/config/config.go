package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		DSN      string
		Host     string
		Port     string
		User     string
		Password string
		Name     string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	HTTP struct {
		Host string
		Port string
	}

	Mail struct {
		Host string
		Port string
		User string
		Pass string
		From string
	}

	SMS struct {
		APIKey string
		Sender string
		URL    string
	}

	Storage struct {
		Endpoint      string
		AccessKey     string
		SecretKey     string
		UseSSL        bool
		Bucket        string
		PublicBaseURL string
		SignedURLTTL  time.Duration
	}

	Billing struct {
		PlusCost int64
		XCost    int64
		TermDays int
	}
}

func New() *Config {
	cfg := &Config{}

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "api_server")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database
	cfg.DB.DSN = os.Getenv("MYSQL_DSN")
	if cfg.DB.DSN == "" {
		cfg.DB.Host = getEnvDefault("DB_HOST", "localhost")
		cfg.DB.Port = getEnvDefault("DB_PORT", "3306")
		cfg.DB.User = getEnvDefault("DB_USER", "root")
		cfg.DB.Password = getEnvDefault("DB_PASSWORD", "root")
		cfg.DB.Name = getEnvDefault("DB_NAME", "myanmatch")

		cfg.DB.DSN = fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?parseTime=true&charset=utf8mb4&loc=UTC",
			cfg.DB.User, cfg.DB.Password, cfg.DB.Host, cfg.DB.Port, cfg.DB.Name,
		)
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// HTTP
	cfg.HTTP.Host = getEnvDefault("HTTP_HOST", "127.0.0.1")
	cfg.HTTP.Port = getEnvDefault("HTTP_PORT", "8080")

	// Mail (OTP delivery)
	cfg.Mail.Host = os.Getenv("MAIL_HOST")
	cfg.Mail.Port = getEnvDefault("MAIL_PORT", "465")
	cfg.Mail.User = os.Getenv("MAIL_USER")
	cfg.Mail.Pass = os.Getenv("MAIL_PASS")
	cfg.Mail.From = getEnvDefault("MAIL_FROM", cfg.Mail.User)

	// SMS (optional side channel)
	cfg.SMS.APIKey = os.Getenv("SMS_API_KEY")
	cfg.SMS.Sender = getEnvDefault("SMS_SENDER", "MyanMatch")
	cfg.SMS.URL = os.Getenv("SMS_API_URL")

	// Object storage
	cfg.Storage.Endpoint = getEnvDefault("S3_ENDPOINT", "localhost:9000")
	cfg.Storage.AccessKey = os.Getenv("S3_ACCESS_KEY")
	cfg.Storage.SecretKey = os.Getenv("S3_SECRET_KEY")
	cfg.Storage.UseSSL = isTruthy(os.Getenv("S3_USE_SSL"))
	cfg.Storage.Bucket = getEnvDefault("S3_BUCKET", "media")
	cfg.Storage.PublicBaseURL = getEnvDefault("S3_PUBLIC_BASE_URL", "")
	cfg.Storage.SignedURLTTL = getEnvDuration("S3_SIGNED_URL_TTL", 7*24*time.Hour)

	// Billing
	cfg.Billing.PlusCost = getEnvInt64("BILLING_PLUS_COST", 10000)
	cfg.Billing.XCost = getEnvInt64("BILLING_X_COST", 20000)
	cfg.Billing.TermDays = int(getEnvInt64("BILLING_TERM_DAYS", 30))

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func getEnvInt64(k string, def int64) int64 {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(k string, def time.Duration) time.Duration {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
