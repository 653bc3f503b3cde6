// Package config resolves runtime settings from defaults, an optional config
// file, a .env file and TASKWISE_* environment variables, in increasing order
// of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/sandeepkv93/taskwise/internal/model"
)

const EnvPrefix = "TASKWISE"

type RuntimeConfig struct {
	DBPath               string        `mapstructure:"db_path" validate:"required"`
	LogLevel             string        `mapstructure:"log_level" validate:"oneof=debug info warn error"`
	LogDev               bool          `mapstructure:"log_dev"`
	LogFile              string        `mapstructure:"log_file"`
	OptimizeDelay        time.Duration `mapstructure:"optimize_delay" validate:"gte=0"`
	ReminderBuffer       int           `mapstructure:"reminder_buffer" validate:"gt=0"`
	DesktopNotifications bool          `mapstructure:"desktop_notifications"`
	WeekStart            string        `mapstructure:"week_start"`
	WatchDebounce        time.Duration `mapstructure:"watch_debounce" validate:"gte=0"`
}

func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		DBPath:               "taskwise.db",
		LogLevel:             "info",
		LogDev:               false,
		OptimizeDelay:        2 * time.Second,
		ReminderBuffer:       64,
		DesktopNotifications: false,
		WatchDebounce:        250 * time.Millisecond,
	}
}

var validate = validator.New()

// New returns a viper instance wired for TASKWISE_* variables. configFile may
// be empty.
func New(configFile string) *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if configFile != "" {
		v.SetConfigFile(configFile)
	}

	d := DefaultRuntimeConfig()
	v.SetDefault("db_path", d.DBPath)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("log_dev", d.LogDev)
	v.SetDefault("log_file", d.LogFile)
	v.SetDefault("optimize_delay", d.OptimizeDelay)
	v.SetDefault("reminder_buffer", d.ReminderBuffer)
	v.SetDefault("desktop_notifications", d.DesktopNotifications)
	v.SetDefault("week_start", d.WeekStart)
	v.SetDefault("watch_debounce", d.WatchDebounce)
	return v
}

// ApplyDotEnv copies TASKWISE_* entries from the given .env files into v.
// Variables already present in the process environment win. Missing files
// are ignored.
func ApplyDotEnv(v *viper.Viper, paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		vals, err := godotenv.Read(path)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("read %s: %w", path, err)
		}
		for key, val := range vals {
			name, ok := strings.CutPrefix(key, EnvPrefix+"_")
			if !ok {
				continue
			}
			if _, set := os.LookupEnv(key); set {
				continue
			}
			v.Set(strings.ToLower(name), val)
		}
	}
	return nil
}

// Load reads the config file, if one was set, and decodes the result.
func Load(v *viper.Viper) (RuntimeConfig, error) {
	if v.ConfigFileUsed() != "" {
		if err := v.ReadInConfig(); err != nil {
			return RuntimeConfig{}, fmt.Errorf("read config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg RuntimeConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	if err := validate.Struct(cfg); err != nil {
		return RuntimeConfig{}, fmt.Errorf("invalid config: %w", err)
	}
	if _, _, err := cfg.StartDate(); err != nil {
		return RuntimeConfig{}, err
	}
	return cfg, nil
}

// StartDate returns the week_start override when one is configured.
func (c RuntimeConfig) StartDate() (time.Time, bool, error) {
	if strings.TrimSpace(c.WeekStart) == "" {
		return time.Time{}, false, nil
	}
	d, err := model.ParseDate(c.WeekStart)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("week_start: %w", err)
	}
	return d, true, nil
}
