package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"skin-trade-dashboard-go/internal/matcher"
)

// Config holds all configuration for the application.
type Config struct {
	Server    Server    `mapstructure:"server"`
	Database  Database  `mapstructure:"database"`
	Logger    Logger    `mapstructure:"logger"`
	Ledger    Ledger    `mapstructure:"ledger"`
	Matcher   Matcher   `mapstructure:"matcher"`
	Valuation Valuation `mapstructure:"valuation"`
	Platforms Platforms `mapstructure:"platforms"`
	Refresh   Refresh   `mapstructure:"refresh"`
}

// Server holds the configuration for the web server.
type Server struct {
	Port      int    `mapstructure:"port"`
	StaticDir string `mapstructure:"static_dir"`
	IndexFile string `mapstructure:"index_file"`
}

// Database holds the configuration for the database.
type Database struct {
	Driver string `mapstructure:"driver"` // "sqlite" or "postgres"
	DSN    string `mapstructure:"dsn"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Ledger points at the per-platform CSV export directory.
type Ledger struct {
	DataDir string `mapstructure:"data_dir"`
}

// Matcher holds the item name markers that enable bulk aggregation.
type Matcher struct {
	BulkMarkers []string `mapstructure:"bulk_markers"`
}

// Valuation holds the haircuts applied when turning balances and inventory into a total value.
type Valuation struct {
	BalanceFactor   float64 `mapstructure:"balance_factor"`
	InventoryFactor float64 `mapstructure:"inventory_factor"`
}

// Platforms holds the upstream marketplace settings.
type Platforms struct {
	RateLimit      float64       `mapstructure:"rate_limit"`
	RateLimitBurst int           `mapstructure:"rate_limit_burst"`
	Timeout        time.Duration `mapstructure:"timeout"`
	C5             C5            `mapstructure:"c5"`
	Buff           Page          `mapstructure:"buff"`
	IGXE           Page          `mapstructure:"igxe"`
	Youpin         Page          `mapstructure:"youpin"`
}

// C5 holds the C5 open API credentials.
type C5 struct {
	BaseURL string `mapstructure:"base_url"`
	AppKey  string `mapstructure:"app_key"`
	SteamID string `mapstructure:"steam_id"`
}

// Page holds a cookie-authenticated marketplace site.
type Page struct {
	BaseURL string `mapstructure:"base_url"`
	Cookie  string `mapstructure:"cookie"`
	SteamID string `mapstructure:"steam_id"`
}

// Refresh holds the cron schedules for background jobs. Empty disables a job.
type Refresh struct {
	ImportSpec  string `mapstructure:"import_spec"`
	BalanceSpec string `mapstructure:"balance_spec"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")

	// Allow environment variables to override config file
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("server.port", 5000)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "trades.db")
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("ledger.data_dir", "data")
	v.SetDefault("matcher.bulk_markers", matcher.DefaultBulkMarkers)
	v.SetDefault("valuation.balance_factor", 0.99)
	v.SetDefault("valuation.inventory_factor", 0.965)
	v.SetDefault("platforms.rate_limit", 2)       // requests per second
	v.SetDefault("platforms.rate_limit_burst", 2) // burst size
	v.SetDefault("platforms.timeout", 15*time.Second)
	v.SetDefault("platforms.c5.base_url", "http://openapi.c5game.com")
	v.SetDefault("platforms.buff.base_url", "https://buff.163.com")
	v.SetDefault("platforms.igxe.base_url", "https://www.igxe.cn")
	v.SetDefault("platforms.youpin.base_url", "https://www.youpin898.com")
	// Credentials usually come from the environment only.
	for _, key := range []string{
		"platforms.c5.app_key", "platforms.c5.steam_id",
		"platforms.buff.cookie", "platforms.buff.steam_id",
		"platforms.igxe.cookie", "platforms.youpin.cookie",
	} {
		v.SetDefault(key, "")
	}
	v.SetDefault("refresh.import_spec", "0 */10 * * * *")
	v.SetDefault("refresh.balance_spec", "0 0 * * * *")

	err = v.ReadInConfig()
	if err != nil {
		return
	}

	err = v.Unmarshal(&config)
	return
}
