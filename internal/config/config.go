package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Server      Server       `mapstructure:"server"`
	Database    Database     `mapstructure:"database"`
	Logger      Logger       `mapstructure:"logger"`
	Auth        Auth         `mapstructure:"auth"`
	Wallet      Wallet       `mapstructure:"wallet"`
	Trading     Trading      `mapstructure:"trading"`
	Quotes      Quotes       `mapstructure:"quotes"`
	Instruments []Instrument `mapstructure:"instruments"`
}

// Server holds the configuration for the HTTP API server.
type Server struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"`
}

// Auth holds the configuration for signup/login and token issuance.
type Auth struct {
	JWTSecret    string `mapstructure:"jwt_secret"`
	TokenTTLMins int    `mapstructure:"token_ttl_minutes"`
}

// Wallet holds the limits and fee applied to deposit/withdrawal requests.
type Wallet struct {
	MinDeposit    float64 `mapstructure:"min_deposit"`
	MinWithdrawal float64 `mapstructure:"min_withdrawal"`
	Fee           float64 `mapstructure:"fee"`
}

// Trading holds the parameters of the simulated trade lifecycle.
type Trading struct {
	MinTradeBalance float64 `mapstructure:"min_trade_balance"`
	SettleRate      float64 `mapstructure:"settle_rate"`
	TickInterval    int     `mapstructure:"tick_interval"`
}

// Quotes holds the configuration for the external quote feed client.
type Quotes struct {
	Enabled         bool    `mapstructure:"enabled"`
	BaseURL         string  `mapstructure:"base_url"`
	RateLimit       float64 `mapstructure:"rate_limit"`
	RateLimitBurst  int     `mapstructure:"rate_limit_burst"`
	RefreshInterval int     `mapstructure:"refresh_interval"`
}

// Instrument is a catalog entry seeded into the database at startup.
type Instrument struct {
	Symbol string  `mapstructure:"symbol"`
	Name   string  `mapstructure:"name"`
	Price  float64 `mapstructure:"price"`
	About  string  `mapstructure:"about"`
	Logo   string  `mapstructure:"logo"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("database.dsn", "papertrade.db")
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.format", "console")
	viper.SetDefault("auth.token_ttl_minutes", 60)
	viper.SetDefault("wallet.min_deposit", 40)
	viper.SetDefault("wallet.min_withdrawal", 10)
	viper.SetDefault("wallet.fee", 1)
	viper.SetDefault("trading.min_trade_balance", 40)
	viper.SetDefault("trading.settle_rate", 0.008)
	viper.SetDefault("trading.tick_interval", 1)
	viper.SetDefault("quotes.rate_limit", 20)      // requests per second
	viper.SetDefault("quotes.rate_limit_burst", 5) // burst size
	viper.SetDefault("quotes.refresh_interval", 300)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}
