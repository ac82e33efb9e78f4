package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application configuration.
type Config struct {
	Database DatabaseConfig
	Ledger   LedgerConfig
	UI       UIConfig
}

// DatabaseConfig holds sqlite settings.
type DatabaseConfig struct {
	Path string
}

// LedgerConfig pins the valid calendar range of the ledger.
type LedgerConfig struct {
	EpochYear   int `mapstructure:"epoch_year"`
	HorizonYear int `mapstructure:"horizon_year"`
}

// UIConfig holds presentation settings.
type UIConfig struct {
	CurrencySymbol string `mapstructure:"currency_symbol"`
	DateFormat     string `mapstructure:"date_format"`
}

// Load reads configuration from file and env. Env var overrides use prefix
// HISAB_.
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("database.path", filepath.Join(os.Getenv("HOME"), ".local", "share", "hisab", "hisab.db"))
	v.SetDefault("ledger.epoch_year", 2022)
	v.SetDefault("ledger.horizon_year", 2037)
	v.SetDefault("ui.currency_symbol", "$")
	v.SetDefault("ui.date_format", "2006-01-02")

	v.SetConfigType("toml")

	cfgPath := os.Getenv("HISAB_CONFIG")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.AddConfigPath(filepath.Join(os.Getenv("HOME"), ".config", "hisab"))
		v.SetConfigName("config")
	}

	v.SetEnvPrefix("HISAB")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// read config file if present
	_ = v.ReadInConfig()

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.Ledger.HorizonYear < c.Ledger.EpochYear {
		return Config{}, fmt.Errorf("ledger.horizon_year %d precedes ledger.epoch_year %d",
			c.Ledger.HorizonYear, c.Ledger.EpochYear)
	}
	return c, nil
}
