package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"EmaPull/internal/domain/repository"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Redis struct {
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Password     string        `yaml:"password"`
		DB           int           `yaml:"db"`
		PoolSize     int           `yaml:"pool_size"`
		MinIdleConns int           `yaml:"min_idle_conns"`
		PoolTimeout  time.Duration `yaml:"pool_timeout"`
	} `yaml:"redis"`
	Binance struct {
		APIKey            string        `yaml:"api_key"`
		SecretKey         string        `yaml:"secret_key"`
		BaseURL           string        `yaml:"base_url"`
		Timeout           time.Duration `yaml:"timeout"`
		SyntheticFallback bool          `yaml:"synthetic_fallback"`
		RequestsPerSec    float64       `yaml:"requests_per_sec"`
	} `yaml:"binance"`
	Pipeline struct {
		Symbols   []string      `yaml:"symbols"`
		Timeframe string        `yaml:"timeframe"`
		Periods   []int         `yaml:"periods"`
		Lookback  int           `yaml:"lookback"`
		TTL       time.Duration `yaml:"ttl"`
		Interval  time.Duration `yaml:"interval"`
		PairDelay time.Duration `yaml:"pair_delay"`
	} `yaml:"pipeline"`
	Stream struct {
		Enabled        bool          `yaml:"enabled"`
		URL            string        `yaml:"url"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay"`
		PingInterval   time.Duration `yaml:"ping_interval"`
	} `yaml:"stream"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		Linger       time.Duration `yaml:"linger"`
		BatchSize    int           `yaml:"batch_size"`
		BatchBytes   int           `yaml:"batch_bytes"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		Async        bool          `yaml:"async"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		WriteTimeout     time.Duration `yaml:"write_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()

	// Validate required fields
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	// Override with environment variables
	if v := os.Getenv("BINANCE_API_KEY"); v != "" {
		c.Binance.APIKey = v
	}
	if v := os.Getenv("BINANCE_SECRET_KEY"); v != "" {
		c.Binance.SecretKey = v
	}
	if v := os.Getenv("SYMBOLS"); v != "" {
		c.Pipeline.Symbols = strings.Split(v, ",")
	}
	if v := os.Getenv("TIMEFRAME"); v != "" {
		c.Pipeline.Timeframe = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Redis.DB = db
		}
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Binance.BaseURL == "" {
		c.Binance.BaseURL = "https://api.binance.com"
	}
	if c.Binance.Timeout <= 0 {
		c.Binance.Timeout = 10 * time.Second
	}
	if c.Pipeline.Timeframe == "" {
		c.Pipeline.Timeframe = "1h"
	}
	if len(c.Pipeline.Periods) == 0 {
		c.Pipeline.Periods = []int{9, 21, 50, 100, 200}
	}
	if c.Pipeline.Lookback <= 0 {
		c.Pipeline.Lookback = 500
	}
	if c.Pipeline.TTL <= 0 {
		c.Pipeline.TTL = 2 * time.Hour
	}
	if c.Pipeline.Interval <= 0 {
		c.Pipeline.Interval = 15 * time.Minute
	}
	if c.Pipeline.PairDelay < 0 {
		c.Pipeline.PairDelay = 0
	}
	if c.Stream.URL == "" {
		c.Stream.URL = "wss://stream.binance.com:9443"
	}
	if c.Stream.ReconnectDelay <= 0 {
		c.Stream.ReconnectDelay = 5 * time.Second
	}
	if c.Stream.PingInterval <= 0 {
		c.Stream.PingInterval = 30 * time.Second
	}
	if c.Redis.Host == "" {
		c.Redis.Host = "localhost"
	}
	if c.Redis.Port == 0 {
		c.Redis.Port = 6379
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if len(c.Pipeline.Symbols) == 0 {
		return fmt.Errorf("pipeline.symbols cannot be empty")
	}
	if !repository.IsValidTimeframe(c.Pipeline.Timeframe) {
		return fmt.Errorf("pipeline.timeframe %q is not supported", c.Pipeline.Timeframe)
	}
	maxPeriod := 0
	for _, p := range c.Pipeline.Periods {
		if p <= 0 {
			return fmt.Errorf("pipeline.periods must be positive, got %d", p)
		}
		if p > maxPeriod {
			maxPeriod = p
		}
	}
	if c.Pipeline.Lookback <= maxPeriod {
		return fmt.Errorf("pipeline.lookback (%d) must exceed the largest EMA period (%d)", c.Pipeline.Lookback, maxPeriod)
	}
	if c.Pipeline.TTL <= 0 {
		return fmt.Errorf("pipeline.ttl must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka.enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host required when clickhouse.enabled")
	}
	return nil
}

// MaxPeriod returns the largest configured EMA period.
func (c *Config) MaxPeriod() int {
	max := 0
	for _, p := range c.Pipeline.Periods {
		if p > max {
			max = p
		}
	}
	return max
}
