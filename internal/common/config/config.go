package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	Debug bool `env:"DEBUG" envDefault:"false"`
	// console или json
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	Server struct {
		Port   int    `env:"PORT" envDefault:"8080"`
		Origin string `env:"ORIGIN" envDefault:"http://localhost:3000"`
	}

	Redis struct {
		Enabled   bool   `env:"REDIS_ENABLED" envDefault:"true"`
		Host      string `env:"REDIS_HOST" envDefault:"localhost"`
		Port      int    `env:"REDIS_PORT" envDefault:"6379"`
		Password  string `env:"REDIS_PASSWORD" envDefault:""`
		DB        int    `env:"REDIS_DB" envDefault:"0"`
		KeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"contest"`
	}

	Postgres struct {
		// Пустой URL отключает запись отчетов о расчетах
		URL      string `env:"DATABASE_URL" envDefault:""`
		MinConns int    `env:"PG_MIN_CONNS" envDefault:"1"`
		MaxConns int    `env:"PG_MAX_CONNS" envDefault:"4"`
	}

	Telegram struct {
		BotToken       string   `env:"BOT_TOKEN"`
		InitDataTTLSec int      `env:"INIT_DATA_TTL_SEC" envDefault:"86400"`
		AdminIDs       []string `env:"ADMIN_IDS" envSeparator:","`
	}

	Escrow struct {
		Token          string `env:"ESCROW_TOKEN"`
		DepositStream  string `env:"ESCROW_DEPOSIT_STREAM" envDefault:"escrow:deposits"`
		TransferStream string `env:"ESCROW_TRANSFER_STREAM" envDefault:"escrow:transfers"`
		ConsumerGroup  string `env:"ESCROW_CONSUMER_GROUP" envDefault:"contest_engine"`
		ConsumerName   string `env:"ESCROW_CONSUMER_NAME" envDefault:"contest_engine_1"`
	}

	Workers struct {
		// 0 отключает встроенный триггер; sweep тогда вызывается извне
		SweepIntervalSec int `env:"SWEEP_INTERVAL_SEC" envDefault:"0"`
	}

	// Engine задает начальные значения GlobalConfig для пустого хранилища.
	Engine struct {
		EntryExpirationSec uint32 `env:"ENTRY_EXPIRATION_SEC" envDefault:"43200"`
		EntryArchiveSec    uint32 `env:"ENTRY_ARCHIVE_SEC" envDefault:"2592000"`
		PriceFreshnessSec  uint32 `env:"PRICE_FRESHNESS_SEC" envDefault:"1800"`
		PriceRetentionSec  uint32 `env:"PRICE_RETENTION_SEC" envDefault:"43200"`
		FeeAccount         string `env:"FEE_ACCOUNT" envDefault:""`
		FeeAccountMemo     string `env:"FEE_ACCOUNT_MEMO" envDefault:""`
		CurrencySymbol     string `env:"CURRENCY_SYMBOL" envDefault:"TON"`
		PriceSeries        string `env:"PRICE_SERIES" envDefault:"currency"`
		MaxRowsPerCall     uint32 `env:"MAX_ROWS_PER_CALL" envDefault:"500"`
	}
}

func Load() (*Config, error) {
	// .env необязателен: в production переменные приходят из окружения
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	return cfg, nil
}

// RedisAddr returns host:port for the redis client.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
