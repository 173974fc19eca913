package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// StripeConfig holds gateway credentials. An empty SecretKey selects the
// mock adapter so the service runs without a Stripe account.
type StripeConfig struct {
	SecretKey        string
	WebhookSecret    string
	ConnectAccountID string
}

// RedisConfig holds connection settings for the booking store. An empty
// Addr selects the in-memory store for local development.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig holds event bus settings. Publishing is optional and
// disabled unless Enabled is set and Brokers is non-empty.
type KafkaConfig struct {
	Enabled bool
	Brokers []string
}

// ScheduleConfig holds the bookable business hours.
type ScheduleConfig struct {
	StartHour           int
	EndHour             int
	SlotDurationMinutes int
	DaysOff             []time.Weekday
}

// ServiceConfig holds all configuration for the booking service.
type ServiceConfig struct {
	Port         string
	AppEnv       string
	AppURL       string
	CORSOrigins  []string
	RedisConfig  RedisConfig
	KafkaConfig  KafkaConfig
	StripeConfig StripeConfig
	Schedule     ScheduleConfig
}

// IsProduction reports whether the service runs with production settings.
func (c *ServiceConfig) IsProduction() bool {
	return c.AppEnv == "production"
}

// Load reads configuration from the environment, with a .env file as
// fallback for local development, and returns a ServiceConfig.
func Load() (*ServiceConfig, error) {
	// Missing .env is fine; real environments set variables directly.
	_ = godotenv.Load()

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVICE_PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_URL", "http://localhost:8080")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("BUSINESS_HOURS_START", 9)
	v.SetDefault("BUSINESS_HOURS_END", 17)
	v.SetDefault("SLOT_DURATION_MINUTES", 30)
	v.SetDefault("DAYS_OFF", "0,6")

	return &ServiceConfig{
		Port:        v.GetString("SERVICE_PORT"),
		AppEnv:      v.GetString("APP_ENV"),
		AppURL:      v.GetString("APP_URL"),
		CORSOrigins: splitList(v.GetString("CORS_ORIGINS")),
		RedisConfig: RedisConfig{
			Addr:     v.GetString("REDIS_ADDR"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		KafkaConfig: KafkaConfig{
			Enabled: v.GetBool("KAFKA_ENABLED"),
			Brokers: splitList(v.GetString("KAFKA_BROKERS")),
		},
		StripeConfig: StripeConfig{
			SecretKey:        v.GetString("STRIPE_SECRET_KEY"),
			WebhookSecret:    v.GetString("STRIPE_WEBHOOK_SECRET"),
			ConnectAccountID: v.GetString("STRIPE_CONNECT_ACCOUNT_ID"),
		},
		Schedule: loadSchedule(v),
	}, nil
}

// loadSchedule reads the business-hours knobs, falling back to the defaults
// when the configured values cannot produce a valid slot grid.
func loadSchedule(v *viper.Viper) ScheduleConfig {
	s := ScheduleConfig{
		StartHour:           v.GetInt("BUSINESS_HOURS_START"),
		EndHour:             v.GetInt("BUSINESS_HOURS_END"),
		SlotDurationMinutes: v.GetInt("SLOT_DURATION_MINUTES"),
		DaysOff:             parseDaysOff(v.GetString("DAYS_OFF")),
	}
	if s.SlotDurationMinutes <= 0 || s.SlotDurationMinutes > 60 {
		s.SlotDurationMinutes = 30
	}
	if s.StartHour < 0 || s.EndHour > 24 || s.StartHour >= s.EndHour {
		s.StartHour, s.EndHour = 9, 17
	}
	return s
}

// splitList parses a comma-separated value, dropping empty entries.
func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

// parseDaysOff parses weekday numbers (0=Sunday) from a comma-separated
// value. Invalid entries are skipped.
func parseDaysOff(raw string) []time.Weekday {
	var days []time.Weekday
	for _, part := range splitList(raw) {
		n, err := strconv.Atoi(part)
		if err != nil || n < 0 || n > 6 {
			continue
		}
		days = append(days, time.Weekday(n))
	}
	return days
}
