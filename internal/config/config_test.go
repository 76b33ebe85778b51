package config

import (
	"os"
	"path/filepath"
	"testing"

	"gymdesk/internal/models"
)

func TestLoadConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
database:
  path: "test.db"
booking:
  time_slots:
    - "8:00 AM - 9:00 AM"
    - "9:00 AM - 10:00 AM"
trainers:
  - id: "tr-1"
    name: "Trainer One"
    is_active: true
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "test.db" {
		t.Errorf("expected database path test.db, got %s", cfg.Database.Path)
	}

	if len(cfg.Booking.TimeSlots) != 2 {
		t.Errorf("expected 2 time slots, got %d", len(cfg.Booking.TimeSlots))
	}

	if len(cfg.Trainers) != 1 || cfg.Trainers[0].ID != "tr-1" {
		t.Errorf("expected 1 trainer with ID tr-1")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	yamlContent := `
database:
  path: "test.db"
api:
  enabled: true
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.API.HTTP.Port != 8080 {
		t.Errorf("expected default http port 8080, got %d", cfg.API.HTTP.Port)
	}
	if !cfg.API.HTTP.Enabled {
		t.Errorf("expected http enabled when api is enabled")
	}
	if len(cfg.Booking.TimeSlots) != len(models.DefaultTimeSlots) {
		t.Errorf("expected default slot set, got %d slots", len(cfg.Booking.TimeSlots))
	}
	if cfg.Booking.MinAge != models.DefaultMinAge || cfg.Booking.MaxAge != models.DefaultMaxAge {
		t.Errorf("expected default age bounds, got [%d, %d]", cfg.Booking.MinAge, cfg.Booking.MaxAge)
	}
	if cfg.Cart.TTLSeconds != models.DefaultCartTTL {
		t.Errorf("expected default cart ttl, got %d", cfg.Cart.TTLSeconds)
	}
}

func TestLoadConfig_EnvExpansion(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	t.Setenv("GYMDESK_DB_PATH", "env.db")

	yamlContent := `
database:
  path: "${GYMDESK_DB_PATH}"
`
	if err := os.WriteFile(configPath, []byte(yamlContent), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	if cfg.Database.Path != "env.db" {
		t.Errorf("expected env-expanded path env.db, got %s", cfg.Database.Path)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{
			name: "valid config",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Booking:  BookingConfig{MinAge: 18, MaxAge: 65},
			},
			wantErr: false,
		},
		{
			name:    "missing database path",
			cfg:     Config{},
			wantErr: true,
		},
		{
			name: "inverted age bounds",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Booking:  BookingConfig{MinAge: 70, MaxAge: 65},
			},
			wantErr: true,
		},
		{
			name: "duplicate slot labels",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Booking:  BookingConfig{TimeSlots: []string{"8-9", "8-9"}},
			},
			wantErr: true,
		},
		{
			name: "telegram enabled without token",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Telegram: TelegramConfig{Enabled: true},
			},
			wantErr: true,
		},
		{
			name: "duplicate trainer ids",
			cfg: Config{
				Database: DatabaseConfig{Path: "path"},
				Trainers: []models.Trainer{{ID: "tr-1"}, {ID: "tr-1"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
