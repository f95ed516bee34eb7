package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Port            int           `yaml:"port" default:"8080" validate:"gte=1,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		AllowOrigins    []string      `yaml:"allow_origins" default:"[\"*\"]"`
	} `yaml:"server"`
	Log struct {
		Level     string `yaml:"level" default:"info" validate:"oneof=debug info warn error fatal panic"`
		Format    string `yaml:"format" default:"json" validate:"oneof=json console"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled     bool          `yaml:"enabled"`
			Topic       string        `yaml:"topic" default:"limes.logs"`
			Interval    time.Duration `yaml:"interval" default:"30s"`
			Threshold   int           `yaml:"threshold" default:"100"`
			IncludeWarn bool          `yaml:"include_warn"`
		} `yaml:"collector"`
	} `yaml:"log"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	RateLimit struct {
		Enabled bool          `yaml:"enabled" default:"true"`
		RPS     float64       `yaml:"rps" default:"20" validate:"gt=0"`
		Burst   int           `yaml:"burst" default:"40" validate:"gte=1"`
		IdleTTL time.Duration `yaml:"idle_ttl" default:"10m"`
	} `yaml:"rate_limit"`
	Series struct {
		Source           string            `yaml:"source" default:"file" validate:"oneof=file http clickhouse"`
		Dir              string            `yaml:"dir" default:"data"`
		BaseURL          string            `yaml:"base_url" validate:"required_if=Source http"`
		Timeout          time.Duration     `yaml:"timeout" default:"10s"`
		CacheTTL         time.Duration     `yaml:"cache_ttl" default:"60s"`
		IntradaySuffix   string            `yaml:"intraday_suffix" default:"15m" validate:"required"`
		IntradaySuffixes map[string]string `yaml:"intraday_suffixes"`
		TickersFile      string            `yaml:"tickers_file" default:"data/tickers.json"`
	} `yaml:"series"`
	Cache struct {
		Backend       string `yaml:"backend" default:"memory" validate:"oneof=memory redis layered"`
		MemoryMaxSize int    `yaml:"memory_max_size" default:"1000"`
		Redis         struct {
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size" default:"10"`
			Prefix   string `yaml:"prefix" default:"limes"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Overrides struct {
		Backend    string        `yaml:"backend" default:"memory" validate:"oneof=memory cache sqlite"`
		SQLitePath string        `yaml:"sqlite_path" default:"data/overrides.db"`
		TTL        time.Duration `yaml:"ttl"`
	} `yaml:"overrides"`
	History struct {
		Backend string `yaml:"backend" default:"memory" validate:"oneof=memory clickhouse none"`
		Size    int    `yaml:"size" default:"500" validate:"gte=1"`
	} `yaml:"history"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers" default:"[\"localhost:9092\"]"`
		Topic        string   `yaml:"topic" default:"limes.signals"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"limes"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"10s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"30s"`
		PricesTable      string        `yaml:"prices_table" default:"prices"`
		HistoryTable     string        `yaml:"history_table" default:"signal_history"`
	} `yaml:"clickhouse"`
	Signal struct {
		DefaultProfile  string               `yaml:"default_profile" default:"standard"`
		RefreshInterval time.Duration        `yaml:"refresh_interval" default:"5m" validate:"gte=1s"`
		ComputeTimeout  time.Duration        `yaml:"compute_timeout" default:"20s"`
		Profiles        map[string]yaml.Node `yaml:"profiles"`
	} `yaml:"signal"`
	WebSocket struct {
		PingInterval time.Duration `yaml:"ping_interval" default:"30s"`
		WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
		SendBuffer   int           `yaml:"send_buffer" default:"16" validate:"gte=1"`
		MaxSessions  int           `yaml:"max_sessions" default:"256" validate:"gte=1"`
	} `yaml:"websocket"`
}

var validate = validator.New()

// Default returns a Config with every default applied and no file read.
func Default() *Config {
	var c Config
	if err := defaults.Set(&c); err != nil {
		panic(fmt.Sprintf("config: default tags: %v", err))
	}
	return &c
}

// Load reads and parses a YAML configuration file on top of the defaults.
func Load(path string) (*Config, error) {
	c := Default()

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads .env (when present), the YAML file, and then applies
// LIMES_* environment overrides. An empty path skips the file.
func LoadWithEnv(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	c := Default()
	if path != "" {
		loaded, err := Load(path)
		if err != nil {
			return nil, err
		}
		c = loaded
	}

	if err := c.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	str := map[string]*string{
		"LIMES_ENV":                 &c.Environment,
		"LIMES_LOG_LEVEL":           &c.Log.Level,
		"LIMES_LOG_FORMAT":          &c.Log.Format,
		"LIMES_SERIES_SOURCE":       &c.Series.Source,
		"LIMES_SERIES_DIR":          &c.Series.Dir,
		"LIMES_SERIES_BASE_URL":     &c.Series.BaseURL,
		"LIMES_TICKERS_FILE":        &c.Series.TickersFile,
		"LIMES_CACHE_BACKEND":       &c.Cache.Backend,
		"LIMES_REDIS_HOST":          &c.Cache.Redis.Host,
		"LIMES_REDIS_PASSWORD":      &c.Cache.Redis.Password,
		"LIMES_OVERRIDES_BACKEND":   &c.Overrides.Backend,
		"LIMES_OVERRIDES_SQLITE":    &c.Overrides.SQLitePath,
		"LIMES_HISTORY_BACKEND":     &c.History.Backend,
		"LIMES_KAFKA_TOPIC":         &c.Kafka.Topic,
		"LIMES_CLICKHOUSE_HOST":     &c.ClickHouse.Host,
		"LIMES_CLICKHOUSE_PASSWORD": &c.ClickHouse.Password,
		"LIMES_DEFAULT_PROFILE":     &c.Signal.DefaultProfile,
	}
	for key, dst := range str {
		if v := getenv(key); v != "" {
			*dst = v
		}
	}

	if v := getenv("LIMES_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("LIMES_PORT: %w", err)
		}
		c.Server.Port = port
	}
	if v := getenv("LIMES_REFRESH_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("LIMES_REFRESH_INTERVAL: %w", err)
		}
		c.Signal.RefreshInterval = d
	}
	if v := getenv("LIMES_KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = splitList(v)
		c.Kafka.Enabled = true
	}
	return nil
}

func splitList(v string) []string {
	var out []string
	for _, s := range strings.Split(v, ",") {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// Validate checks field ranges and the cross-section requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Log.Collector.Enabled && !c.Kafka.Enabled {
		return fmt.Errorf("log.collector requires kafka")
	}
	if c.Series.Source == "clickhouse" || c.History.Backend == "clickhouse" {
		if c.ClickHouse.Host == "" || c.ClickHouse.Database == "" {
			return fmt.Errorf("clickhouse.host and clickhouse.database are required")
		}
	}
	if c.Overrides.Backend == "sqlite" && c.Overrides.SQLitePath == "" {
		return fmt.Errorf("overrides.sqlite_path is required for the sqlite backend")
	}
	return nil
}

// RedisAddr is host:port of the cache Redis.
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Cache.Redis.Host, c.Cache.Redis.Port)
}
