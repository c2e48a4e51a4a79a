package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server ServerConfig
	DB     DBConfig
	Log    LogConfig
	CORS   CORSConfig
	Recon  ReconConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

// DBConfig holds PostgreSQL connection settings for the run archive.
// The archive is optional; with Enabled=false the server keeps runs
// in memory only.
type DBConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
	MaxOpen  int    `mapstructure:"max_open"`
	MaxIdle  int    `mapstructure:"max_idle"`
}

// DSN returns the PostgreSQL connection string.
func (d *DBConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Name, d.SSLMode,
	)
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// ReconConfig holds the reconciliation thresholds. Deliberately
// configurable: the right tolerances differ per client.
type ReconConfig struct {
	AmountEpsilon   float64 `mapstructure:"amount_epsilon"`
	MajorDeltaRatio float64 `mapstructure:"major_delta_ratio"`
	DateWindowDays  int     `mapstructure:"date_window_days"`
	Workers         int     `mapstructure:"workers"`
}

// Load reads configuration from environment variables with the GSTRECON_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("GSTRECON")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.environment", "development")

	// DB defaults
	v.SetDefault("db.enabled", false)
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "gstrecon")
	v.SetDefault("db.password", "gstrecon_secret")
	v.SetDefault("db.name", "gstrecon_db")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("db.max_open", 25)
	v.SetDefault("db.max_idle", 10)

	// Log defaults
	v.SetDefault("log.level", "debug")
	v.SetDefault("log.format", "console")

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173")

	// Reconciliation defaults
	v.SetDefault("recon.amount_epsilon", 1.0)
	v.SetDefault("recon.major_delta_ratio", 0.05)
	v.SetDefault("recon.date_window_days", 15)
	v.SetDefault("recon.workers", 4)

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":             "GSTRECON_SERVER_PORT",
		"server.read_timeout":     "GSTRECON_SERVER_READ_TIMEOUT",
		"server.write_timeout":    "GSTRECON_SERVER_WRITE_TIMEOUT",
		"server.environment":      "GSTRECON_SERVER_ENVIRONMENT",
		"db.enabled":              "GSTRECON_DB_ENABLED",
		"db.host":                 "GSTRECON_DB_HOST",
		"db.port":                 "GSTRECON_DB_PORT",
		"db.user":                 "GSTRECON_DB_USER",
		"db.password":             "GSTRECON_DB_PASSWORD",
		"db.name":                 "GSTRECON_DB_NAME",
		"db.sslmode":              "GSTRECON_DB_SSLMODE",
		"db.max_open":             "GSTRECON_DB_MAX_OPEN",
		"db.max_idle":             "GSTRECON_DB_MAX_IDLE",
		"log.level":               "GSTRECON_LOG_LEVEL",
		"log.format":              "GSTRECON_LOG_FORMAT",
		"cors.allowed_origins":    "GSTRECON_CORS_ALLOWED_ORIGINS",
		"recon.amount_epsilon":    "GSTRECON_RECON_AMOUNT_EPSILON",
		"recon.major_delta_ratio": "GSTRECON_RECON_MAJOR_DELTA_RATIO",
		"recon.date_window_days":  "GSTRECON_RECON_DATE_WINDOW_DAYS",
		"recon.workers":           "GSTRECON_RECON_WORKERS",
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if GSTRECON_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("GSTRECON_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.DB = DBConfig{
		Enabled:  v.GetBool("db.enabled"),
		Host:     v.GetString("db.host"),
		Port:     v.GetInt("db.port"),
		User:     v.GetString("db.user"),
		Password: v.GetString("db.password"),
		Name:     v.GetString("db.name"),
		SSLMode:  v.GetString("db.sslmode"),
		MaxOpen:  v.GetInt("db.max_open"),
		MaxIdle:  v.GetInt("db.max_idle"),
	}
	cfg.Log = LogConfig{
		Level:  v.GetString("log.level"),
		Format: v.GetString("log.format"),
	}

	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	cfg.Recon = ReconConfig{
		AmountEpsilon:   v.GetFloat64("recon.amount_epsilon"),
		MajorDeltaRatio: v.GetFloat64("recon.major_delta_ratio"),
		DateWindowDays:  v.GetInt("recon.date_window_days"),
		Workers:         v.GetInt("recon.workers"),
	}

	return cfg, nil
}
