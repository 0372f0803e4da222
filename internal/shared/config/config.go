// Package config loads application configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Provider   ProviderConfig
	JWT        JWTConfig
	Encryption EncryptionConfig
	Scheduler  SchedulerConfig
	Firebase   FirebaseConfig
	Telemetry  TelemetryConfig
}

type ServerConfig struct {
	Port string
	Host string
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// ProviderConfig holds credentials for the bank data aggregator API.
type ProviderConfig struct {
	BaseURL       string
	ClientID      string
	Secret        string
	WebhookSecret string
}

type JWTConfig struct {
	Secret string
}

type EncryptionConfig struct {
	Key string
}

type SchedulerConfig struct {
	Enabled       bool
	ScheduleTimes []string
	WorkerCount   int
	JobDelay      time.Duration
	QueueSize     int
	RunOnStartup  bool
}

type FirebaseConfig struct {
	CredentialsFile string
	MessagesFile    string
}

type TelemetryConfig struct {
	Enabled      bool
	ServiceName  string
	OTLPEndpoint string
}

func Load() (*Config, error) {
	dbPort, err := getIntEnv("DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	scheduler, err := loadScheduler()
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "0.0.0.0"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnv("DB_USER", "centavo"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "centavo"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Provider: ProviderConfig{
			BaseURL:       getEnv("PROVIDER_BASE_URL", "https://sandbox.plaid.com"),
			ClientID:      getEnv("PROVIDER_CLIENT_ID", ""),
			Secret:        getEnv("PROVIDER_SECRET", ""),
			WebhookSecret: getEnv("PROVIDER_WEBHOOK_SECRET", ""),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
		},
		Encryption: EncryptionConfig{
			Key: getEnv("ENCRYPTION_KEY", ""),
		},
		Scheduler: scheduler,
		Firebase: FirebaseConfig{
			CredentialsFile: getEnv("FIREBASE_CREDENTIALS_FILE", ""),
			MessagesFile:    getEnv("NOTIFICATION_MESSAGES_FILE", ""),
		},
		Telemetry: TelemetryConfig{
			Enabled:      getBoolEnv("OTEL_ENABLED", false),
			ServiceName:  getEnv("OTEL_SERVICE_NAME", "centavo-api"),
			OTLPEndpoint: getEnv("OTEL_EXPORTER_ENDPOINT", "localhost:4318"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadScheduler() (SchedulerConfig, error) {
	workers, err := getIntEnv("SCHEDULER_WORKERS", 5)
	if err != nil {
		return SchedulerConfig{}, err
	}
	queueSize, err := getIntEnv("SCHEDULER_QUEUE_SIZE", 100)
	if err != nil {
		return SchedulerConfig{}, err
	}
	jobDelay, err := time.ParseDuration(getEnv("SCHEDULER_JOB_DELAY", "1s"))
	if err != nil {
		return SchedulerConfig{}, fmt.Errorf("invalid SCHEDULER_JOB_DELAY: %w", err)
	}

	return SchedulerConfig{
		Enabled:       getBoolEnv("SCHEDULER_ENABLED", true),
		ScheduleTimes: strings.Split(getEnv("SCHEDULER_TIMES", "06:00,12:00,18:00"), ","),
		WorkerCount:   workers,
		JobDelay:      jobDelay,
		QueueSize:     queueSize,
		RunOnStartup:  getBoolEnv("SCHEDULER_RUN_ON_STARTUP", false),
	}, nil
}

func (c *Config) validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Encryption.Key == "" {
		return fmt.Errorf("ENCRYPTION_KEY is required")
	}
	if len(c.Encryption.Key) != 32 {
		return fmt.Errorf("ENCRYPTION_KEY must be exactly 32 bytes for AES-256")
	}
	if c.Provider.ClientID == "" || c.Provider.Secret == "" {
		return fmt.Errorf("PROVIDER_CLIENT_ID and PROVIDER_SECRET are required")
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getBoolEnv(key string, defaultValue bool) bool {
	switch strings.ToLower(os.Getenv(key)) {
	case "true", "1", "yes":
		return true
	case "false", "0", "no":
		return false
	default:
		return defaultValue
	}
}
