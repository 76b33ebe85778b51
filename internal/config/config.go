package config

import (
	"errors"
	"fmt"
	"os"

	"gymdesk/internal/models"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	App        AppConfig        `yaml:"app"`
	Database   DatabaseConfig   `yaml:"database"`
	Redis      RedisConfig      `yaml:"redis"`
	Monitoring MonitoringConfig `yaml:"monitoring"`
	Logging    LoggingConfig    `yaml:"logging"`
	API        APIConfig        `yaml:"api"`
	Booking    BookingConfig    `yaml:"booking"`
	Cart       CartConfig       `yaml:"cart"`
	Exports    ExportConfig     `yaml:"exports"`
	Telegram   TelegramConfig   `yaml:"telegram"`
	Trainers   []models.Trainer `yaml:"trainers"`
}

type AppConfig struct {
	Name        string `yaml:"name"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`
}

type DatabaseConfig struct {
	Path string `yaml:"path"`
}

type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Address  string `yaml:"address"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	PoolSize int    `yaml:"pool_size"`
}

type MonitoringConfig struct {
	PrometheusEnabled bool `yaml:"prometheus_enabled"`
	PrometheusPort    int  `yaml:"prometheus_port"`
}

type LoggingConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"`
	Output   string `yaml:"output"`
	FilePath string `yaml:"file_path"`
}

type APIConfig struct {
	Enabled   bool               `yaml:"enabled"`
	HTTP      APIHTTPConfig      `yaml:"http"`
	Auth      APIAuthConfig      `yaml:"auth"`
	RateLimit APIRateLimitConfig `yaml:"rate_limit"`
}

type APIHTTPConfig struct {
	Enabled bool `yaml:"enabled"`
	Port    int  `yaml:"port"`
}

type APIAuthConfig struct {
	Enabled      bool           `yaml:"enabled"`
	HeaderAPIKey string         `yaml:"header_api_key"`
	HeaderExtra  string         `yaml:"header_extra"`
	APIKeys      []APIClientKey `yaml:"api_keys"`
}

type APIClientKey struct {
	Key         string   `yaml:"key"`
	Extra       string   `yaml:"extra"`
	Name        string   `yaml:"name"`
	Permissions []string `yaml:"permissions"`
}

type APIRateLimitConfig struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// BookingConfig carries the canonical slot set and validation bounds. The
// slot labels are configuration, never derived data.
type BookingConfig struct {
	TimeSlots      []string `yaml:"time_slots"`
	MinAge         int      `yaml:"min_age"`
	MaxAge         int      `yaml:"max_age"`
	MaxBookingDays int      `yaml:"max_booking_days"`
}

type CartConfig struct {
	TTLSeconds        int    `yaml:"ttl_seconds"`
	CatalogPath       string `yaml:"catalog_path"`
	RateLimitRequests int    `yaml:"rate_limit_requests"`
	RateLimitWindow   int    `yaml:"rate_limit_window"`
}

type ExportConfig struct {
	Path      string `yaml:"path"`
	RangeDays int    `yaml:"range_days"`
}

type TelegramConfig struct {
	Enabled   bool    `yaml:"enabled"`
	BotToken  string  `yaml:"bot_token"`
	ChatIDs   []int64 `yaml:"chat_ids"`
	Debug     bool    `yaml:"debug"`
	ParseMode string  `yaml:"parse_mode"`
}

func Load(configPath string) (*Config, error) {
	// .env дополняет переменные окружения для локального запуска
	if err := godotenv.Load(".env"); err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	// Предварительная замена переменных окружения в YAML
	expandedData := []byte(os.ExpandEnv(string(data)))

	var config Config
	if err := yaml.Unmarshal(expandedData, &config); err != nil {
		return nil, err
	}

	config.applyDefaults()

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

func (c *Config) Validate() error {
	if c.Database.Path == "" {
		return errors.New("database path is required")
	}

	if c.Booking.MinAge > c.Booking.MaxAge {
		return fmt.Errorf("booking min_age %d exceeds max_age %d", c.Booking.MinAge, c.Booking.MaxAge)
	}

	if c.Telegram.Enabled && c.Telegram.BotToken == "" {
		return errors.New("telegram bot token is required when telegram is enabled")
	}

	if err := validateSlots(c.Booking.TimeSlots); err != nil {
		return err
	}

	return ValidateTrainers(c.Trainers)
}

func validateSlots(slots []string) error {
	seen := make(map[string]bool, len(slots))
	for _, slot := range slots {
		if slot == "" {
			return errors.New("empty time slot label in booking.time_slots")
		}
		if seen[slot] {
			return fmt.Errorf("duplicate time slot found: %s", slot)
		}
		seen[slot] = true
	}
	return nil
}

func ValidateTrainers(trainers []models.Trainer) error {
	// Check for duplicate trainer IDs
	trainerIDs := make(map[string]bool)
	for _, trainer := range trainers {
		if trainer.ID == "" {
			return fmt.Errorf("trainer '%s' has empty ID", trainer.Name)
		}
		if trainerIDs[trainer.ID] {
			return fmt.Errorf("duplicate trainer ID found: %s", trainer.ID)
		}
		trainerIDs[trainer.ID] = true
	}
	return nil
}

func (c *Config) applyDefaults() {
	if c.API.HTTP.Port == 0 {
		c.API.HTTP.Port = 8080
	}
	if c.Monitoring.PrometheusEnabled && c.Monitoring.PrometheusPort == 0 {
		c.Monitoring.PrometheusPort = 9090
	}
	// auth enabled by default when API is enabled
	if !c.API.Auth.Enabled {
		c.API.Auth.Enabled = true
	}
	if !c.API.HTTP.Enabled && c.API.Enabled {
		c.API.HTTP.Enabled = true
	}
	if c.API.Auth.HeaderAPIKey == "" {
		c.API.Auth.HeaderAPIKey = "x-api-key"
	}
	if c.API.Auth.HeaderExtra == "" {
		c.API.Auth.HeaderExtra = "x-api-extra"
	}

	// Booking defaults
	if len(c.Booking.TimeSlots) == 0 {
		c.Booking.TimeSlots = append([]string(nil), models.DefaultTimeSlots...)
	}
	if c.Booking.MinAge == 0 {
		c.Booking.MinAge = models.DefaultMinAge
	}
	if c.Booking.MaxAge == 0 {
		c.Booking.MaxAge = models.DefaultMaxAge
	}
	if c.Booking.MaxBookingDays == 0 {
		c.Booking.MaxBookingDays = models.DefaultMaxBookingDays
	}

	// Cart defaults
	if c.Cart.TTLSeconds == 0 {
		c.Cart.TTLSeconds = models.DefaultCartTTL
	}
	if c.Cart.RateLimitRequests == 0 {
		c.Cart.RateLimitRequests = models.RateLimitRequests
	}
	if c.Cart.RateLimitWindow == 0 {
		c.Cart.RateLimitWindow = models.RateLimitWindow
	}

	if c.Exports.RangeDays == 0 {
		c.Exports.RangeDays = models.DefaultExportRangeDays
	}
}
