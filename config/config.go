package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	GRPC     GRPCConfig     `yaml:"grpc"`
	Logger   LoggerConfig   `yaml:"logger"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Backend  BackendConfig  `yaml:"backend"`
	Payment  PaymentConfig  `yaml:"payment"`
	Event    EventConfig    `yaml:"event"`
	Booking  BookingConfig  `yaml:"booking"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address     string        `yaml:"address" validate:"required"`
	GinMode     string        `yaml:"gin_mode" validate:"oneof=debug release test"`
	ReadTimeout time.Duration `yaml:"read_timeout" validate:"gt=0"`
	// WriteTimeout of zero disables the limit, which the countdown stream needs.
	WriteTimeout time.Duration `yaml:"write_timeout" validate:"gte=0"`
	DocsEnabled  bool          `yaml:"docs_enabled"`
}

type GRPCConfig struct {
	Address string `yaml:"address" validate:"required"`
}

type LoggerConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host" validate:"required"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	User     string `yaml:"user" validate:"required"`
	Password string `yaml:"password"`
	Name     string `yaml:"name" validate:"required"`
	SSLMode  string `yaml:"ssl_mode" validate:"oneof=disable require verify-ca verify-full"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr" validate:"required"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers            []string `yaml:"brokers" validate:"required,min=1"`
	BookingEventsTopic string   `yaml:"booking_events_topic" validate:"required"`
	NotificationsTopic string   `yaml:"notifications_topic"`
	GroupID            string   `yaml:"group_id" validate:"required"`
}

// BackendConfig points at the remote booking API.
type BackendConfig struct {
	BaseURL string        `yaml:"base_url" validate:"required,url"`
	Timeout time.Duration `yaml:"timeout" validate:"gt=0"`
}

// PaymentConfig holds the hosted checkout settings handed to the browser.
type PaymentConfig struct {
	KeyID       string `yaml:"key_id" validate:"required"`
	KeySecret   string `yaml:"key_secret"`
	Merchant    string `yaml:"merchant" validate:"required"`
	Description string `yaml:"description"`
	ImageURL    string `yaml:"image_url"`
	ThemeColor  string `yaml:"theme_color"`
}

type EventConfig struct {
	Name         string    `yaml:"name" validate:"required"`
	StartsAt     time.Time `yaml:"starts_at" validate:"required"`
	Dates        string    `yaml:"dates"`
	CheckIn      string    `yaml:"check_in"`
	Venue        string    `yaml:"venue"`
	SupportEmail string    `yaml:"support_email"`
}

type BookingConfig struct {
	// Flow is "payment" (checkout first) or "direct" (post to the backend).
	Flow              string        `yaml:"flow" validate:"oneof=payment direct"`
	SubmissionLockTTL time.Duration `yaml:"submission_lock_ttl" validate:"gt=0"`
	BookingsCacheTTL  time.Duration `yaml:"bookings_cache_ttl" validate:"gt=0"`
	GreetingCacheTTL  time.Duration `yaml:"greeting_cache_ttl" validate:"gt=0"`
}

type WorkerConfig struct {
	AbandonSweepInterval time.Duration `yaml:"abandon_sweep_interval" validate:"gt=0"`
	AbandonAfter         time.Duration `yaml:"abandon_after" validate:"gt=0"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML document, fills defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	// Without a secret every checkout completion is accepted as signed.
	if cfg.HTTP.GinMode == "release" && cfg.Booking.Flow == "payment" && cfg.Payment.KeySecret == "" {
		return nil, fmt.Errorf("invalid config: payment.key_secret is required in release mode")
	}
	return cfg, nil
}

func Default() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:     ":8080",
			GinMode:     "release",
			ReadTimeout: 10 * time.Second,
		},
		GRPC:     GRPCConfig{Address: ":9090"},
		Logger:   LoggerConfig{Level: "info"},
		Database: DatabaseConfig{Port: 5432, SSLMode: "disable"},
		Kafka: KafkaConfig{
			BookingEventsTopic: "booking-events",
			GroupID:            "eventbooking-worker",
		},
		Backend: BackendConfig{Timeout: 15 * time.Second},
		Payment: PaymentConfig{ThemeColor: "#F37254"},
		Booking: BookingConfig{
			Flow:              "payment",
			SubmissionLockTTL: 10 * time.Minute,
			BookingsCacheTTL:  time.Minute,
			GreetingCacheTTL:  10 * time.Minute,
		},
		Worker: WorkerConfig{
			AbandonSweepInterval: 5 * time.Minute,
			AbandonAfter:         time.Hour,
		},
	}
}
