/*
Package config loads hwtimesheet settings.

SOURCES (later wins):
  1. Built-in defaults (setDefaults)
  2. timesheet.yaml in ".", then ~/.config/hwtimesheet, or the file given
     with --config
  3. A .env file in the working directory, if present
  4. TIMESHEET_* environment variables, e.g. TIMESHEET_SERVER_PORT=8080,
     TIMESHEET_PAYROLL_TAX_RATE_PERCENT=20

KEYS:
  database.path              SQLite file (":memory:" for a throwaway store)
  server.port                HTTP port for `timesheet serve`
  payroll.weekly_base        Base pay per week
  payroll.bonus_per_day      Site bonus per bonus day
  payroll.tax_rate_percent   Flat tax on taxable pay, 10 to 25
  log.level                  debug, info, warn, error
  log.file                   Optional JSON log file

SEE ALSO:
  - logging/logger.go: Consumes Log
  - cmd/timesheet/main.go: Calls Load before every command
*/
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/amauryrb/hwtimesheet/payroll"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TIMESHEET"

// FileName is the config file name without extension.
const FileName = "timesheet"

// Config is the full application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Payroll  PayrollConfig  `mapstructure:"payroll" yaml:"payroll"`
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path" validate:"required"`
}

type ServerConfig struct {
	Port int `mapstructure:"port" yaml:"port" validate:"min=1,max=65535"`
}

type PayrollConfig struct {
	WeeklyBase     float64 `mapstructure:"weekly_base" yaml:"weekly_base" validate:"gte=0"`
	BonusPerDay    float64 `mapstructure:"bonus_per_day" yaml:"bonus_per_day" validate:"gte=0"`
	TaxRatePercent float64 `mapstructure:"tax_rate_percent" yaml:"tax_rate_percent" validate:"min=10,max=25"`
}

type LogConfig struct {
	Level string `mapstructure:"level" yaml:"level" validate:"oneof=debug info warn error"`
	File  string `mapstructure:"file" yaml:"file,omitempty"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Database: DatabaseConfig{Path: "timesheet.db"},
		Server:   ServerConfig{Port: 5000},
		Payroll: PayrollConfig{
			WeeklyBase:     700,
			BonusPerDay:    45,
			TaxRatePercent: 15,
		},
		Log: LogConfig{Level: "info"},
	}
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("payroll.weekly_base", d.Payroll.WeeklyBase)
	v.SetDefault("payroll.bonus_per_day", d.Payroll.BonusPerDay)
	v.SetDefault("payroll.tax_rate_percent", d.Payroll.TaxRatePercent)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.file", d.Log.File)
}

// Load reads configuration. An empty path searches the default locations,
// and a missing file there is not an error. An explicit path must exist.
func Load(path string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		for _, p := range searchPaths() {
			v.AddConfigPath(p)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

var validate = validator.New()

// Validate checks every field against its constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Params returns the calculator parameters.
func (c Config) Params() payroll.Params {
	return payroll.Params{
		WeeklyBase:     decimal.NewFromFloat(c.Payroll.WeeklyBase),
		BonusPerDay:    decimal.NewFromFloat(c.Payroll.BonusPerDay),
		TaxRatePercent: decimal.NewFromFloat(c.Payroll.TaxRatePercent),
	}
}

// WriteDefault writes the default configuration as YAML to path. It refuses
// to replace an existing file unless force is set.
func WriteDefault(path string, force bool) error {
	if !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("config file %s already exists", path)
		}
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return fmt.Errorf("error encoding default config: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("error creating config directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0644)
}

func searchPaths() []string {
	paths := []string{"."}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", "hwtimesheet"))
	}
	return paths
}
