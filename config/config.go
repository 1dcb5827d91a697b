package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP      HTTPConfig     `yaml:"http"`
	GRPC      GRPCConfig     `yaml:"grpc"`
	Database  DatabaseConfig `yaml:"database"`
	Redis     RedisConfig    `yaml:"redis"`
	Kafka     KafkaConfig    `yaml:"kafka"`
	Inventory ServiceConfig  `yaml:"inventory"`
	Directory ServiceConfig  `yaml:"directory"`
	Breaker   BreakerConfig  `yaml:"breaker"`
	Booking   BookingConfig  `yaml:"booking"`
	Log       LogConfig      `yaml:"log"`
}

type HTTPConfig struct {
	Address    string `yaml:"address"`
	SwaggerDir string `yaml:"swagger_dir"`
}

type GRPCConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// RedisConfig is optional; an empty Addr disables seat holds.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id"`
}

// ServiceConfig describes a downstream HTTP dependency.
type ServiceConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

func (s ServiceConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

type BreakerConfig struct {
	FailureThreshold   int `yaml:"failure_threshold"`
	WindowSeconds      int `yaml:"window_seconds"`
	OpenTimeoutSeconds int `yaml:"open_timeout_seconds"`
}

type BookingConfig struct {
	CancellationCutoffHours int `yaml:"cancellation_cutoff_hours"`
	SeatHoldTTLSeconds      int `yaml:"seat_hold_ttl_seconds"`
	NotifyTimeoutSeconds    int `yaml:"notify_timeout_seconds"`
	CommitTimeoutSeconds    int `yaml:"commit_timeout_seconds"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	cfg.applyDefaults()

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.HTTP.Address == "" {
		c.HTTP.Address = ":8080"
	}
	if c.GRPC.Address == "" {
		c.GRPC.Address = ":9090"
	}
	if c.Kafka.NotificationsTopic == "" {
		c.Kafka.NotificationsTopic = "ticket-confirmation"
	}
	if c.Kafka.GroupID == "" {
		c.Kafka.GroupID = "email-group"
	}
	if c.Inventory.TimeoutSeconds <= 0 {
		c.Inventory.TimeoutSeconds = 3
	}
	if c.Directory.TimeoutSeconds <= 0 {
		c.Directory.TimeoutSeconds = 3
	}
	if c.Breaker.FailureThreshold <= 0 {
		c.Breaker.FailureThreshold = 5
	}
	if c.Breaker.WindowSeconds <= 0 {
		c.Breaker.WindowSeconds = 30
	}
	if c.Breaker.OpenTimeoutSeconds <= 0 {
		c.Breaker.OpenTimeoutSeconds = 10
	}
	if c.Booking.CancellationCutoffHours <= 0 {
		c.Booking.CancellationCutoffHours = 24
	}
	if c.Booking.SeatHoldTTLSeconds <= 0 {
		c.Booking.SeatHoldTTLSeconds = 30
	}
	if c.Booking.NotifyTimeoutSeconds <= 0 {
		c.Booking.NotifyTimeoutSeconds = 10
	}
	if c.Booking.CommitTimeoutSeconds <= 0 {
		c.Booking.CommitTimeoutSeconds = 30
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
}
