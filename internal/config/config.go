package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server   ServerConfig
	Logger   LoggerConfig
	Database DatabaseConfig
	Auth     AuthConfig
	Stock    StockConfig
}

type ServerConfig struct {
	AppEnv      string
	HTTPPort    string
	CORSOrigins string
}

type LoggerConfig struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type DatabaseConfig struct {
	Driver           string // postgres | sqlite
	DSN              string
	MaxOpenConns     int
	MaxIdleConns     int
	ConnMaxLifetime  time.Duration
	RetryMaxAttempts int
	RetryCooldown    time.Duration
}

type AuthConfig struct {
	TokenSecret  string
	CookieName   string
	CookieMaxAge int // saniye
	CookieSecure bool
}

type StockConfig struct {
	LowStockThreshold int
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"

	defaultDSN = "host=localhost user=postgres password=postgres dbname=isletme port=5432 sslmode=disable"
)

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			AppEnv:      getEnv("APP_ENV", "development"),
			HTTPPort:    getEnv("HTTP_PORT", "8080"),
			CORSOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000"),
		},
		Logger: LoggerConfig{
			Level:             getEnv("LOGGER_LEVEL", "info"),
			Encoding:          getEnv("LOGGER_ENCODING", "json"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		Database: DatabaseConfig{
			Driver:           strings.ToLower(getEnv("DB_DRIVER", DriverPostgres)),
			DSN:              getEnv("DATABASE_DSN", defaultDSN),
			MaxOpenConns:     getEnvInt("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:     getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime:  getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			RetryMaxAttempts: getEnvInt("DB_RETRY_MAX_ATTEMPTS", 3),
			RetryCooldown:    getEnvDuration("DB_RETRY_COOLDOWN", 5*time.Second),
		},
		Auth: AuthConfig{
			TokenSecret:  getEnv("AUTH_TOKEN_SECRET", ""),
			CookieName:   getEnv("AUTH_COOKIE_NAME", "auth_token"),
			CookieMaxAge: getEnvInt("AUTH_COOKIE_MAX_AGE", 60*60*24*7), // 1 hafta
			CookieSecure: getEnvBool("AUTH_COOKIE_SECURE", false),
		},
		Stock: StockConfig{
			LowStockThreshold: getEnvInt("LOW_STOCK_THRESHOLD", 10),
		},
	}
}

// Validate, sunucunun ayağa kalkmasına engel olan eksikleri döndürür.
func (c *Config) Validate() error {
	var errs []error

	if c.Auth.TokenSecret == "" {
		errs = append(errs, errors.New("AUTH_TOKEN_SECRET tanımlanmamış"))
	} else if len(c.Auth.TokenSecret) < 32 {
		errs = append(errs, errors.New("AUTH_TOKEN_SECRET en az 32 karakter olmalı"))
	}

	switch c.Database.Driver {
	case DriverPostgres, DriverSQLite:
	default:
		errs = append(errs, fmt.Errorf("bilinmeyen DB_DRIVER: %q", c.Database.Driver))
	}

	if c.Database.RetryMaxAttempts < 0 {
		errs = append(errs, errors.New("DB_RETRY_MAX_ATTEMPTS negatif olamaz"))
	}
	if c.Auth.CookieMaxAge <= 0 {
		errs = append(errs, errors.New("AUTH_COOKIE_MAX_AGE pozitif olmalı"))
	}

	return errors.Join(errs...)
}

// Warnings, production için riskli varsayılanları listeler.
func (c *Config) Warnings() []string {
	var w []string
	if c.Database.Driver == DriverPostgres && c.Database.DSN == defaultDSN {
		w = append(w, "DATABASE_DSN varsayılan değer kullanılıyor")
	}
	if c.Server.CORSOrigins == "http://localhost:3000" {
		w = append(w, "CORS_ALLOWED_ORIGINS varsayılan değer kullanılıyor")
	}
	if c.IsProduction() && !c.Auth.CookieSecure {
		w = append(w, "AUTH_COOKIE_SECURE production ortamında kapalı")
	}
	return w
}

func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

// getEnvDuration hem "5s" gibi süreleri hem de düz saniye değerlerini kabul eder.
func getEnvDuration(key string, def time.Duration) time.Duration {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second
	}
	return def
}
