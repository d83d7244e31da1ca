package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"FxPulse/internal/domain/models"
	"FxPulse/pkg/logger"
)

type Config struct {
	Environment string                    `yaml:"environment" default:"development" validate:"required"`
	Server      ServerConfig              `yaml:"server"`
	Log         logger.Config             `yaml:"log"`
	Metrics     MetricsConfig             `yaml:"metrics"`
	Evaluation  EvaluationConfig          `yaml:"evaluation"`
	Data        DataConfig                `yaml:"data"`
	Kafka       KafkaConfig               `yaml:"kafka"`
	Instruments []models.InstrumentConfig `yaml:"instruments" validate:"required,min=1,unique=Symbol,dive"`
}

type ServerConfig struct {
	Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	// on-demand passes per second and burst, per client
	PassRate  float64 `yaml:"pass_rate" default:"0.2" validate:"gt=0"`
	PassBurst int     `yaml:"pass_burst" default:"2" validate:"gte=1"`

	CORSOrigins []string      `yaml:"cors_origins" default:"[\"*\"]"`
	SlowRequest time.Duration `yaml:"slow_request" default:"2s"`
}

type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path" default:"/metrics"`
}

type EvaluationConfig struct {
	Interval time.Duration `yaml:"interval" default:"15m"`
	// bars fetched per instrument; the volatility classifier needs 20
	Lookback int    `yaml:"lookback" default:"30" validate:"gte=20"`
	Workers  int    `yaml:"workers" default:"4" validate:"gte=1"`
	Timezone string `yaml:"timezone" default:"America/New_York"`
	// baseline sovereign yield series, US 10Y by default
	BaselineYield string `yaml:"baseline_yield" default:"^TNX" validate:"required"`
	YieldLookback int    `yaml:"yield_lookback" default:"5" validate:"gte=2"`
	// 0.10 or the stricter 0.15
	YieldTrendThreshold float64       `yaml:"yield_trend_threshold" default:"0.10" validate:"gt=0,lte=1"`
	FetchTimeout        time.Duration `yaml:"fetch_timeout" default:"20s"`
}

// Location returns the timezone used to derive the evaluation weekday.
func (e EvaluationConfig) Location() (*time.Location, error) {
	return time.LoadLocation(e.Timezone)
}

type DataConfig struct {
	Source     string           `yaml:"source" default:"yahoo" validate:"oneof=yahoo clickhouse"`
	Yahoo      YahooConfig      `yaml:"yahoo"`
	ClickHouse ClickHouseConfig `yaml:"clickhouse"`
	Cache      CacheConfig      `yaml:"cache"`
}

type YahooConfig struct {
	BaseURL string        `yaml:"base_url" default:"https://query1.finance.yahoo.com" validate:"url"`
	Timeout time.Duration `yaml:"timeout" default:"10s"`
	Range   string        `yaml:"range" default:"3mo" validate:"oneof=1mo 3mo 6mo 1y"`
	// consecutive failures before the breaker opens, and how long it stays open
	BreakerFailures uint32        `yaml:"breaker_failures" default:"3" validate:"gte=1"`
	BreakerTimeout  time.Duration `yaml:"breaker_timeout" default:"60s"`
}

type ClickHouseConfig struct {
	Host        string        `yaml:"host"`
	Port        int           `yaml:"port" default:"9000"`
	Database    string        `yaml:"database" default:"fxpulse"`
	User        string        `yaml:"user" default:"default"`
	Password    string        `yaml:"password"`
	BarsTable   string        `yaml:"bars_table" default:"daily_bars"`
	YieldsTable string        `yaml:"yields_table" default:"yield_quotes"`
	UseHTTP     bool          `yaml:"use_http"`
	DialTimeout time.Duration `yaml:"dial_timeout" default:"5s"`
	ReadTimeout time.Duration `yaml:"read_timeout" default:"10s"`
}

type CacheConfig struct {
	Backend    string        `yaml:"backend" default:"memory" validate:"oneof=none memory redis layered"`
	TTL        time.Duration `yaml:"ttl" default:"5m"`
	MaxEntries int           `yaml:"max_entries" default:"1000" validate:"gte=1"`
	Redis      RedisConfig   `yaml:"redis"`
}

type RedisConfig struct {
	Host     string `yaml:"host" default:"localhost"`
	Port     int    `yaml:"port" default:"6379"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Prefix   string `yaml:"prefix" default:"fxpulse"`
}

type KafkaConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Brokers      []string      `yaml:"brokers"`
	Topic        string        `yaml:"topic" default:"fxpulse.passes"`
	RequiredAcks int           `yaml:"required_acks" default:"-1" validate:"oneof=-1 0 1"`
	Compression  string        `yaml:"compression" default:"gzip" validate:"oneof=none gzip snappy lz4 zstd"`
	MaxAttempts  int           `yaml:"max_attempts" default:"3" validate:"gte=1"`
	WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
}

var validate = validator.New()

// Parse decodes YAML, applies defaults and validates.
func Parse(b []byte) (*Config, error) {
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(b)
}

// LoadWithEnv loads .env (if present), the YAML file, then applies
// environment overrides.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FXPULSE_ENV"); v != "" {
		c.Environment = v
	}
	if v := os.Getenv("FXPULSE_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	if v := os.Getenv("FXPULSE_DATA_SOURCE"); v != "" {
		c.Data.Source = v
	}
	if v := os.Getenv("FXPULSE_CLICKHOUSE_PASSWORD"); v != "" {
		c.Data.ClickHouse.Password = v
	}
	if v := os.Getenv("FXPULSE_REDIS_PASSWORD"); v != "" {
		c.Data.Cache.Redis.Password = v
	}
	if v := os.Getenv("FXPULSE_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := c.Evaluation.Location(); err != nil {
		return fmt.Errorf("evaluation.timezone: %w", err)
	}
	if c.Data.Source == "clickhouse" && c.Data.ClickHouse.Host == "" {
		return fmt.Errorf("data.clickhouse.host is required when data.source is clickhouse")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	return nil
}

// Symbols lists the configured instruments in order.
func (c *Config) Symbols() []string {
	out := make([]string, len(c.Instruments))
	for i, in := range c.Instruments {
		out[i] = in.Symbol
	}
	return out
}
