package config

import (
	"fmt"
	"os"
	"time"

	"eduplan/internal/eduplan"
	"eduplan/internal/repository"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

const (
	defaultLogLevel       = "info"
	defaultHTTPTimeout    = 15 * time.Second
	defaultMirrorInterval = 10 * time.Minute
)

type EduPlan struct {
	SheetID      string `env:"SHEET_ID" yaml:"sheet_id"`
	WebAppURL    string `env:"WEB_APP_URL" yaml:"web_app_url"`
	SheetTabName string `env:"SHEET_TAB_NAME" yaml:"sheet_tab_name"`
}

type Google struct {
	CredentialsFile string `env:"GOOGLE_CREDENTIALS_FILE" yaml:"credentials_file"`
	CredentialsJSON string `env:"GOOGLE_CREDENTIALS_JSON" yaml:"credentials_json"`
	APIKey          string `env:"GOOGLE_API_KEY" yaml:"api_key"`
	OwnerEmail      string `env:"GOOGLE_OWNER_EMAIL" yaml:"owner_email"`
}

type Mirror struct {
	Interval time.Duration `env:"MIRROR_INTERVAL" yaml:"interval"`
}

type Config struct {
	EduPlan     EduPlan           `yaml:",inline"`
	Google      Google            `yaml:"google"`
	Repo        repository.Config `envPrefix:"REPO_" yaml:"repo"`
	Mirror      Mirror            `yaml:"mirror"`
	LogLevel    string            `env:"LOGGER_LEVEL" yaml:"log_level"`
	HTTPTimeout time.Duration     `env:"HTTP_TIMEOUT" yaml:"http_timeout"`
}

// CLIOverrides carries flag values. Nil pointers leave the loaded value alone.
type CLIOverrides struct {
	ConfigFile   string
	SheetID      *string
	WebAppURL    *string
	SheetTabName *string
	LogLevel     *string
}

// Load resolves configuration with precedence:
// CLI flags > environment > YAML file > defaults.
// The EduPlan settings are not validated here.
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	if overrides != nil && overrides.ConfigFile != "" {
		if err := loadFromFile(overrides.ConfigFile, &cfg); err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
	}

	if err := ReadEnvConfig(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env config: %w", err)
	}

	if overrides != nil {
		applyCLIOverrides(&cfg, overrides)
	}

	return cfg, nil
}

// ReadEnvConfig overlays environment variables onto cfg. Unset variables keep
// whatever cfg already holds. The EduPlan keys are honoured even when set to
// an empty string, so a blank value reaches Validate instead of the default.
func ReadEnvConfig(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return err
	}

	for key, field := range map[string]*string{
		eduplan.KeySheetID:      &cfg.EduPlan.SheetID,
		eduplan.KeyWebAppURL:    &cfg.EduPlan.WebAppURL,
		eduplan.KeySheetTabName: &cfg.EduPlan.SheetTabName,
	} {
		if v, ok := os.LookupEnv(key); ok && v == "" {
			*field = ""
		}
	}
	return nil
}

// Settings freezes the EduPlan fields into the value handed to consumers.
func (c Config) Settings() eduplan.Settings {
	return eduplan.New(c.EduPlan.SheetID, c.EduPlan.WebAppURL, c.EduPlan.SheetTabName)
}

func defaultConfig() Config {
	return Config{
		EduPlan: EduPlan{
			SheetID:      eduplan.DefaultSheetID,
			WebAppURL:    eduplan.DefaultWebAppURL,
			SheetTabName: eduplan.DefaultSheetTabName,
		},
		Repo: repository.Config{
			Host:    "localhost",
			Port:    "5432",
			SSLMode: "disable",
		},
		Mirror: Mirror{
			Interval: defaultMirrorInterval,
		},
		LogLevel:    defaultLogLevel,
		HTTPTimeout: defaultHTTPTimeout,
	}
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse YAML: %w", err)
	}
	return nil
}

func applyCLIOverrides(cfg *Config, o *CLIOverrides) {
	if o.SheetID != nil {
		cfg.EduPlan.SheetID = *o.SheetID
	}
	if o.WebAppURL != nil {
		cfg.EduPlan.WebAppURL = *o.WebAppURL
	}
	if o.SheetTabName != nil {
		cfg.EduPlan.SheetTabName = *o.SheetTabName
	}
	if o.LogLevel != nil && *o.LogLevel != "" {
		cfg.LogLevel = *o.LogLevel
	}
}
