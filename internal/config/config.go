package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App    AppConfig    `mapstructure:"app"`
	Server ServerConfig `mapstructure:"server"`
	Log    LogConfig    `mapstructure:"log"`
	DB     DBConfig     `mapstructure:"db"`
	Cron   CronConfig   `mapstructure:"cron"`
	Oracle OracleConfig `mapstructure:"oracle"`
	Bridge BridgeConfig `mapstructure:"bridge"`
	Engine EngineConfig `mapstructure:"engine"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
	// APIToken, when set, is required as a bearer token on every write
	// endpoint. Read endpoints and health stay open.
	APIToken string `mapstructure:"api_token"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled          bool   `mapstructure:"enabled"`
	ResolutionSweep  string `mapstructure:"resolution_sweep"`
	SettlementCommit string `mapstructure:"settlement_commit"`
	StatsSnapshot    string `mapstructure:"stats_snapshot"`
	PriceRefresh     string `mapstructure:"price_refresh"`
}

type OracleConfig struct {
	BaseURL         string        `mapstructure:"base_url"`
	WSURL           string        `mapstructure:"ws_url"`
	Timeout         time.Duration `mapstructure:"timeout"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	MaxFeeds        int           `mapstructure:"max_feeds"`
}

type BridgeConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type EngineConfig struct {
	// MaxTradeBps caps one buy at this fraction of pool liquidity,
	// in basis points. Zero falls back to the protocol default.
	MaxTradeBps uint64 `mapstructure:"max_trade_bps"`
	// Resolvers are identities allowed to resolve markets besides the
	// market authority. The internal sweep bypasses this list.
	Resolvers []string `mapstructure:"resolvers"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MM")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("server.api_token", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.resolution_sweep", "@every 15s")
	v.SetDefault("cron.settlement_commit", "@every 1m")
	v.SetDefault("cron.stats_snapshot", "@every 5m")
	v.SetDefault("cron.price_refresh", "@every 30s")
	v.SetDefault("oracle.base_url", "https://hermes.pyth.network")
	v.SetDefault("oracle.ws_url", "wss://hermes.pyth.network/ws")
	v.SetDefault("oracle.timeout", "10s")
	v.SetDefault("oracle.refresh_interval", "30s")
	v.SetDefault("oracle.max_feeds", 100)
	v.SetDefault("bridge.base_url", "")
	v.SetDefault("bridge.api_key", "")
	v.SetDefault("bridge.timeout", "10s")
	v.SetDefault("engine.max_trade_bps", 1000)
	v.SetDefault("engine.resolvers", []string{})

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
