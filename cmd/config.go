package cmd

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// Config holds all runtime settings for the dispatch service.
// Values load from a .env file when present, then from the environment,
// and command line flags override both.
type Config struct {
	HTTPPort   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSslMode  string
	RedisAddr  string

	// TickInterval is the pause between courier search attempts for one order.
	TickInterval time.Duration
	// DispatchDeadline bounds how long a single order is searched before the
	// order is rejected and compensated.
	DispatchDeadline time.Duration
	// CourierFreshnessWindow is how recent a location ping must be for the
	// courier to count as a candidate.
	CourierFreshnessWindow time.Duration

	PaymentServiceURL      string
	NotificationServiceURL string
}

// LoadConfig reads the configuration from .env, environment and flags.
func LoadConfig(args []string) (Config, error) {
	// Missing .env is fine, the environment may carry everything.
	_ = godotenv.Load(".env")

	config := Config{
		HTTPPort:               envOrDefault("HTTP_PORT", "8080"),
		DBHost:                 envOrDefault("DB_HOST", "localhost"),
		DBPort:                 envOrDefault("DB_PORT", "5432"),
		DBUser:                 envOrDefault("DB_USER", "postgres"),
		DBPassword:             os.Getenv("DB_PASSWORD"),
		DBName:                 envOrDefault("DB_NAME", "dispatch"),
		DBSslMode:              envOrDefault("DB_SSLMODE", "disable"),
		RedisAddr:              envOrDefault("REDIS_ADDR", "localhost:6379"),
		PaymentServiceURL:      envOrDefault("PAYMENT_SERVICE_URL", "http://localhost:8081"),
		NotificationServiceURL: envOrDefault("NOTIFICATION_SERVICE_URL", "http://localhost:8082"),
	}

	var err error
	if config.TickInterval, err = envSeconds("DISPATCH_TICK_SECONDS", 10); err != nil {
		return Config{}, err
	}
	if config.DispatchDeadline, err = envSeconds("DISPATCH_DEADLINE_SECONDS", 3600); err != nil {
		return Config{}, err
	}
	if config.CourierFreshnessWindow, err = envSeconds("COURIER_FRESHNESS_SECONDS", 60); err != nil {
		return Config{}, err
	}

	flags := pflag.NewFlagSet("dispatch", pflag.ContinueOnError)
	flags.StringVar(&config.HTTPPort, "http-port", config.HTTPPort, "port the HTTP API listens on")
	flags.StringVar(&config.RedisAddr, "redis-addr", config.RedisAddr, "redis address for courier location pings")
	flags.DurationVar(&config.TickInterval, "tick-interval", config.TickInterval, "pause between courier search attempts")
	flags.DurationVar(&config.DispatchDeadline, "dispatch-deadline", config.DispatchDeadline, "max total search time per order")
	flags.DurationVar(&config.CourierFreshnessWindow, "courier-freshness", config.CourierFreshnessWindow, "max age of a usable location ping")
	if err = flags.Parse(args); err != nil {
		return Config{}, err
	}

	if config.TickInterval <= 0 {
		return Config{}, fmt.Errorf("tick interval must be positive, got %s", config.TickInterval)
	}
	if config.DispatchDeadline < config.TickInterval {
		return Config{}, fmt.Errorf("dispatch deadline %s is shorter than tick interval %s",
			config.DispatchDeadline, config.TickInterval)
	}
	if config.CourierFreshnessWindow <= 0 {
		return Config{}, fmt.Errorf("courier freshness window must be positive, got %s", config.CourierFreshnessWindow)
	}

	return config, nil
}

// DSN builds the postgres connection string.
func (c Config) DSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSslMode)
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envSeconds(key string, fallback int) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return time.Duration(fallback) * time.Second, nil
	}
	seconds, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer number of seconds: %w", key, err)
	}
	return time.Duration(seconds) * time.Second, nil
}
