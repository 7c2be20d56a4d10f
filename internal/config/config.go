package config

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all application configuration
type Config struct {
	Server   ServerConfig   `envPrefix:"SERVER_"`
	Database DatabaseConfig `envPrefix:"DB_"`
	Kafka    KafkaConfig    `envPrefix:"KAFKA_"`
	Log      LogConfig      `envPrefix:"LOG_"`
	Seed     SeedConfig     `envPrefix:"SEED_"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8000"`
	Host            string        `env:"HOST" envDefault:"0.0.0.0"`
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     string `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD" envDefault:"postgres"`
	DBName   string `env:"NAME" envDefault:"soja"`
	SSLMode  string `env:"SSLMODE" envDefault:"disable"`
}

// KafkaConfig holds Kafka configuration
type KafkaConfig struct {
	Enabled     bool     `env:"ENABLED" envDefault:"false"`
	Brokers     []string `env:"BROKERS" envDefault:"localhost:9092" envSeparator:","`
	PricesTopic string   `env:"PRICES_TOPIC" envDefault:"soy-futures-prices"`
	QuotesTopic string   `env:"QUOTES_TOPIC" envDefault:"soy-fixed-price-quotes"`
	GroupID     string   `env:"GROUP_ID" envDefault:"soy-fixed-price"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level string `env:"LEVEL" envDefault:"info"`
}

// SeedConfig holds the synthetic data seeder configuration
type SeedConfig struct {
	Year int `env:"YEAR" envDefault:"2024"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Seed.Year < 2000 || cfg.Seed.Year > 2099 {
		return nil, fmt.Errorf("seed year %d out of range [2000, 2099]", cfg.Seed.Year)
	}
	return cfg, nil
}

// Addr returns the host:port the HTTP server listens on
func (s *ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, s.Port)
}

// ConnectionString returns the PostgreSQL connection string
func (d *DatabaseConfig) ConnectionString() string {
	u := &url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.DBName,
		RawQuery: url.Values{"sslmode": []string{d.SSLMode}}.Encode(),
	}
	return u.String()
}
