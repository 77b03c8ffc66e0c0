package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Log          Logger       `mapstructure:"logger"`
	DB           Database     `mapstructure:"database"`
	API          API          `mapstructure:"api"`
	YahooFinance YahooFinance `mapstructure:"yahoo_finance"`
	Cache        Cache        `mapstructure:"cache"`
	Scheduler    Scheduler    `mapstructure:"scheduler"`
	Backtest     Backtest     `mapstructure:"backtest"`
}

type Logger struct {
	Level    string `mapstructure:"level"`
	Encoding string `mapstructure:"encoding"`
}

type Database struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	DBName          string `mapstructure:"name"`
	SSLMode         string `mapstructure:"ssl_mode"`
	TimeZone        string `mapstructure:"time_zone"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime string `mapstructure:"conn_max_lifetime"`
	LogLevel        string `mapstructure:"log_level"`
}

type API struct {
	Port int `mapstructure:"port"`
}

type YahooFinance struct {
	BaseURL             string        `mapstructure:"base_url"`
	Timeout             time.Duration `mapstructure:"timeout"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
}

type Cache struct {
	DefaultExpiration time.Duration `mapstructure:"default_expiration"`
	CleanupInterval   time.Duration `mapstructure:"cleanup_interval"`
}

type Scheduler struct {
	RefreshSpec     string        `mapstructure:"refresh_spec"`
	TimeoutDuration time.Duration `mapstructure:"timeout_duration"`
}

// Backtest holds the default strategy parameters used when a request does
// not override them. These are the free in-sample parameters; an OOS run
// freezes whatever was in effect when the lock was captured.
type Backtest struct {
	Symbols            []string  `mapstructure:"symbols"`
	Periods            []int     `mapstructure:"periods"`
	Weights            []float64 `mapstructure:"weights"`
	TransactionCostPct float64   `mapstructure:"transaction_cost_pct"`
	InitialCapital     float64   `mapstructure:"initial_capital"`
	OOSFraction        float64   `mapstructure:"oos_fraction"`
	MinOOSObservations int       `mapstructure:"min_oos_observations"`
}

func Load() (*Config, error) {
	viper.SetConfigType("yaml")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AddConfigPath(".")
	viper.AutomaticEnv()

	setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		fmt.Println("No config file loaded:", err)
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults() {
	viper.SetDefault("logger.level", "info")
	viper.SetDefault("logger.encoding", "console")
	viper.SetDefault("api.port", 8080)
	viper.SetDefault("yahoo_finance.base_url", "https://query1.finance.yahoo.com/v8/finance/chart")
	viper.SetDefault("yahoo_finance.timeout", 30*time.Second)
	viper.SetDefault("yahoo_finance.max_request_per_minute", 30)
	viper.SetDefault("cache.default_expiration", 15*time.Minute)
	viper.SetDefault("cache.cleanup_interval", 30*time.Minute)
	viper.SetDefault("scheduler.refresh_spec", "0 5 * * *")
	viper.SetDefault("scheduler.timeout_duration", 5*time.Minute)
	viper.SetDefault("backtest.symbols", []string{"SPY", "QQQ", "IWM"})
	viper.SetDefault("backtest.periods", []int{30, 90, 180})
	viper.SetDefault("backtest.weights", []float64{0.5, 0.3, 0.2})
	viper.SetDefault("backtest.transaction_cost_pct", 0.001)
	viper.SetDefault("backtest.initial_capital", 100000)
	viper.SetDefault("backtest.oos_fraction", 0.3)
	viper.SetDefault("backtest.min_oos_observations", 30)
}
