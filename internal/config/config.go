package config

import (
	"errors"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Logger   Logger   `mapstructure:"logger"`
	Binance  Binance  `mapstructure:"binance"`
	Database Database `mapstructure:"database"`
	Server   Server   `mapstructure:"server"`
	Defaults Defaults `mapstructure:"defaults"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level       string   `mapstructure:"level"`
	Format      string   `mapstructure:"format"`
	OutputPaths []string `mapstructure:"output_paths"`
}

// Binance holds the configuration for the public Binance market data API.
type Binance struct {
	Testnet        bool    `mapstructure:"testnet"`
	BaseURL        string  `mapstructure:"base_url"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Database holds the configuration for the plan journal.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port int `mapstructure:"port"`
}

// Defaults are applied to plan fields that are left empty.
type Defaults struct {
	Deposit              float64  `mapstructure:"deposit"`
	Risk                 float64  `mapstructure:"risk"`
	Leverage             Leverage `mapstructure:"leverage"`
	MaxTradeVolumeQuoted float64  `mapstructure:"max_trade_volume_quoted"`
	BreakevenFee         float64  `mapstructure:"breakeven_fee"`
}

// Leverage holds the default leverage settings.
type Leverage struct {
	Allow bool    `mapstructure:"allow"`
	Max   float64 `mapstructure:"max"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config.yml is not an error; defaults and the environment still apply.
func LoadConfig(path string) (config Config, err error) {
	if err = loadDotEnv(path); err != nil {
		return
	}

	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults()

	if err = viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("logger.output_paths", []string{"stderr"})

	viper.SetDefault("binance.testnet", false)
	viper.SetDefault("binance.rate_limit", 20)      // requests per second
	viper.SetDefault("binance.rate_limit_burst", 5) // burst size

	viper.SetDefault("database.dsn", "riskcalc.db")
	viper.SetDefault("server.port", 8080)

	viper.SetDefault("defaults.deposit", 0)
	viper.SetDefault("defaults.risk", 0.01)
	viper.SetDefault("defaults.leverage.allow", false)
	viper.SetDefault("defaults.leverage.max", 1)
	viper.SetDefault("defaults.max_trade_volume_quoted", 0)
	viper.SetDefault("defaults.breakeven_fee", 0.002)
}

// loadDotEnv loads path/.env into the process environment when it exists.
func loadDotEnv(path string) error {
	file := path + string(os.PathSeparator) + ".env"
	if _, err := os.Stat(file); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return godotenv.Load(file)
}
