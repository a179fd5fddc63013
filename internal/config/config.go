package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sir_venger/vidstream/internal/models"
	"github.com/sir_venger/vidstream/pkg/streamproto"
)

const (
	defaultConfigPath     = "./config.yaml"
	defaultListenAddr     = ":8080"
	defaultDataDir        = "./videos"
	defaultLogLevel       = "info"
	defaultMaxUploadBytes = 2 << 30
	defaultGCTTLHours     = 24
	defaultGCIntervalMin  = 30
)

type Config struct {
	ListenAddr     string          `yaml:"listen_addr" json:"listen_addr"`
	DataDir        string          `yaml:"data_dir" json:"data_dir"`
	RoutePrefix    string          `yaml:"route_prefix" json:"route_prefix"`
	ContentType    string          `yaml:"content_type" json:"content_type"`
	LogLevel       string          `yaml:"log_level" json:"log_level"`
	LogJSON        bool            `yaml:"log_json" json:"log_json"`
	MaxUploadBytes int64           `yaml:"max_upload_bytes" json:"max_upload_bytes"`
	GC             GCConfig        `yaml:"gc" json:"gc"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" json:"rate_limit"`
}

// GCConfig задаёт фоновую очистку незавершённых загрузок. Нулевые значения отключают GC.
type GCConfig struct {
	TTLHours    int `yaml:"ttl_hours" json:"ttl_hours"`
	IntervalMin int `yaml:"interval_min" json:"interval_min"`
}

func (c GCConfig) TTL() time.Duration      { return time.Duration(c.TTLHours) * time.Hour }
func (c GCConfig) Interval() time.Duration { return time.Duration(c.IntervalMin) * time.Minute }

// RateLimitConfig ограничивает частоту запросов с одного адреса. RequestsPerMinute <= 0 отключает лимит.
type RateLimitConfig struct {
	RequestsPerMinute int `yaml:"requests_per_minute" json:"requests_per_minute"`
	Burst             int `yaml:"burst" json:"burst"`
}

// Default возвращает конфигурацию, с которой сервис стартует без файла.
func Default() *Config {
	return &Config{
		ListenAddr:     defaultListenAddr,
		DataDir:        defaultDataDir,
		RoutePrefix:    streamproto.DefaultRoutePrefix,
		ContentType:    models.DefaultContentType,
		LogLevel:       defaultLogLevel,
		MaxUploadBytes: defaultMaxUploadBytes,
		GC: GCConfig{
			TTLHours:    defaultGCTTLHours,
			IntervalMin: defaultGCIntervalMin,
		},
	}
}

// Load читает YAML-конфигурацию, применяет ENV-переопределения и возвращает актуальную структуру.
// Отсутствие файла по умолчанию не ошибка; явно указанный CONFIG_PATH обязан существовать.
func Load() (*Config, error) {
	c := Default()

	path := os.Getenv("CONFIG_PATH")
	explicit := path != ""
	if !explicit {
		path = defaultConfigPath
	}

	b, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(b, c); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	default:
		return nil, fmt.Errorf("read config: %w", err)
	}

	// ENV override
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("ROUTE_PREFIX"); v != "" {
		c.RoutePrefix = v
	}
	if v := os.Getenv("CONTENT_TYPE"); v != "" {
		c.ContentType = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := os.Getenv("LOG_JSON"); v != "" {
		c.LogJSON = v == "1" || strings.EqualFold(v, "true")
	}
	c.MaxUploadBytes = envInt64("MAX_UPLOAD_BYTES", c.MaxUploadBytes)
	c.GC.TTLHours = int(envInt64("GC_TTL_HOURS", int64(c.GC.TTLHours)))
	c.GC.IntervalMin = int(envInt64("GC_INTERVAL_MIN", int64(c.GC.IntervalMin)))
	c.RateLimit.RequestsPerMinute = int(envInt64("RATE_LIMIT_RPM", int64(c.RateLimit.RequestsPerMinute)))
	c.RateLimit.Burst = int(envInt64("RATE_LIMIT_BURST", int64(c.RateLimit.Burst)))

	if err := c.normalize(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) normalize() error {
	c.RoutePrefix = "/" + strings.Trim(strings.TrimSpace(c.RoutePrefix), "/")
	if c.RoutePrefix == "/" {
		return fmt.Errorf("route_prefix must not be empty")
	}
	if strings.TrimSpace(c.DataDir) == "" {
		return fmt.Errorf("data_dir must not be empty")
	}
	if c.ContentType == "" {
		c.ContentType = models.DefaultContentType
	}
	if c.RateLimit.RequestsPerMinute > 0 && c.RateLimit.Burst <= 0 {
		c.RateLimit.Burst = c.RateLimit.RequestsPerMinute
	}

	return nil
}

// envInt64 возвращает целочисленное значение из переменной окружения либо дефолт.
func envInt64(key string, def int64) int64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
