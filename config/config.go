package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Remote   RemoteConfig
	Sync     SyncConfig
	Energy   EnergyConfig
}

type ServerConfig struct {
	Address  string
	HTTPPort string
}

type DatabaseConfig struct {
	// Driver: "sqlite" | "mysql" | "postgres" | "" (no DB, degraded mode)
	Driver string
	DSN    string
}

type LoggingConfig struct {
	Level  string
	Format string
	File   string
}

type RemoteConfig struct {
	// BaseURL of the upstream document store. Empty means the in-memory
	// client (dev/tests only).
	BaseURL        string
	TimeoutSeconds int
}

type SyncConfig struct {
	PollIntervalMinutes int
	RunOnStart          bool
}

type EnergyConfig struct {
	// Range for substituted tenant figures in the admin rollup (daily kWh).
	AdminFallbackMin float64
	AdminFallbackMax float64
}

// Load читает конфиг из файла (если задан) и окружения HEARTH_*.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.address", "0.0.0.0")
	v.SetDefault("server.http_port", "8000")
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "smart_home_energy.db")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.file", "")
	v.SetDefault("remote.base_url", "")
	v.SetDefault("remote.timeout_seconds", 10)
	v.SetDefault("sync.poll_interval_minutes", 60)
	v.SetDefault("sync.run_on_start", true)
	v.SetDefault("energy.admin_fallback_min", 20.0)
	v.SetDefault("energy.admin_fallback_max", 70.0)

	v.SetEnvPrefix("HEARTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	} else {
		v.SetConfigName("hearth")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/hearth")
		// отсутствие файла не ошибка — работаем на дефолтах
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Address:  v.GetString("server.address"),
			HTTPPort: v.GetString("server.http_port"),
		},
		Database: DatabaseConfig{
			Driver: v.GetString("database.driver"),
			DSN:    v.GetString("database.dsn"),
		},
		Logging: LoggingConfig{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
			File:   v.GetString("logging.file"),
		},
		Remote: RemoteConfig{
			BaseURL:        v.GetString("remote.base_url"),
			TimeoutSeconds: v.GetInt("remote.timeout_seconds"),
		},
		Sync: SyncConfig{
			PollIntervalMinutes: v.GetInt("sync.poll_interval_minutes"),
			RunOnStart:          v.GetBool("sync.run_on_start"),
		},
		Energy: EnergyConfig{
			AdminFallbackMin: v.GetFloat64("energy.admin_fallback_min"),
			AdminFallbackMax: v.GetFloat64("energy.admin_fallback_max"),
		},
	}
	if cfg.Energy.AdminFallbackMax < cfg.Energy.AdminFallbackMin {
		cfg.Energy.AdminFallbackMax = cfg.Energy.AdminFallbackMin
	}
	return cfg, nil
}
