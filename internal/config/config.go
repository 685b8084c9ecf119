package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Tile     TileConfig
	Routing  RoutingConfig
	Log      LogConfig
	Worker   WorkerConfig
}

type ServerConfig struct {
	Host    string
	Port    int
	Env     string
	BaseURL string
}

type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxConns        int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	QueryTimeout    time.Duration
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig - настройки кеша тайлов и сегментов маршрутов
type CacheConfig struct {
	Backend         string // redis | memory
	TileBaseTTL     time.Duration
	SegmentTTL      time.Duration
	MemoryCapacity  uint64
	VersionSegments bool
}

// TileConfig - параметры генерации тайлов
type TileConfig struct {
	Width       int
	ExtentRatio int
}

type RoutingConfig struct {
	DefaultTolerance float64
}

type LogConfig struct {
	Level string
}

type WorkerConfig struct {
	Enabled           bool
	ConsumerGroup     string
	Stream            string
	StreamReadTimeout time.Duration
	MaxRetries        int
	ClaimMinIdle      time.Duration
}

// Load читает .env (если есть) и переменные окружения
func Load() (*Config, error) {
	v := viper.New()
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !isNotExist(err) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	return fromViper(v), nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("API_HOST", "0.0.0.0")
	v.SetDefault("API_PORT", 8080)
	v.SetDefault("API_ENV", "development")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("DB_MAX_CONNS", 20)
	v.SetDefault("DB_MAX_IDLE_CONNS", 5)
	v.SetDefault("DB_CONN_MAX_LIFETIME", 300)
	v.SetDefault("DB_CONN_MAX_IDLE_TIME", 60)
	v.SetDefault("DB_QUERY_TIMEOUT", 30)
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("CACHE_BACKEND", "redis")
	v.SetDefault("TILE_CACHE_BASE_TTL", 7*24*3600)
	v.SetDefault("SEGMENT_CACHE_TTL", 24*3600)
	v.SetDefault("CACHE_MEMORY_CAPACITY", 10_000)
	v.SetDefault("CACHE_VERSION_SEGMENTS", true)
	v.SetDefault("TILE_WIDTH", 512)
	v.SetDefault("TILE_EXTENT_RATIO", 8)
	v.SetDefault("ROUTING_TOPOLOGY_TOLERANCE", 0.00001)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("WORKER_CONSUMER_GROUP", "tiles-warm-workers")
	v.SetDefault("WORKER_STREAM", "stream:tiles:warm")
	v.SetDefault("WORKER_STREAM_READ_TIMEOUT", 5000)
	v.SetDefault("WORKER_MAX_RETRIES", 1)
	v.SetDefault("WORKER_CLAIM_MIN_IDLE", 3600)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Host:    v.GetString("API_HOST"),
			Port:    v.GetInt("API_PORT"),
			Env:     v.GetString("API_ENV"),
			BaseURL: v.GetString("API_BASE_URL"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			DBName:          v.GetString("DB_NAME"),
			SSLMode:         v.GetString("DB_SSLMODE"),
			MaxConns:        v.GetInt("DB_MAX_CONNS"),
			MaxIdleConns:    v.GetInt("DB_MAX_IDLE_CONNS"),
			ConnMaxLifetime: time.Duration(v.GetInt("DB_CONN_MAX_LIFETIME")) * time.Second,
			ConnMaxIdleTime: time.Duration(v.GetInt("DB_CONN_MAX_IDLE_TIME")) * time.Second,
			QueryTimeout:    time.Duration(v.GetInt("DB_QUERY_TIMEOUT")) * time.Second,
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetInt("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Cache: CacheConfig{
			Backend:         v.GetString("CACHE_BACKEND"),
			TileBaseTTL:     time.Duration(v.GetInt("TILE_CACHE_BASE_TTL")) * time.Second,
			SegmentTTL:      time.Duration(v.GetInt("SEGMENT_CACHE_TTL")) * time.Second,
			MemoryCapacity:  v.GetUint64("CACHE_MEMORY_CAPACITY"),
			VersionSegments: v.GetBool("CACHE_VERSION_SEGMENTS"),
		},
		Tile: TileConfig{
			Width:       v.GetInt("TILE_WIDTH"),
			ExtentRatio: v.GetInt("TILE_EXTENT_RATIO"),
		},
		Routing: RoutingConfig{
			DefaultTolerance: v.GetFloat64("ROUTING_TOPOLOGY_TOLERANCE"),
		},
		Log: LogConfig{
			Level: v.GetString("LOG_LEVEL"),
		},
		Worker: WorkerConfig{
			Enabled:           v.GetBool("WORKER_ENABLED"),
			ConsumerGroup:     v.GetString("WORKER_CONSUMER_GROUP"),
			Stream:            v.GetString("WORKER_STREAM"),
			StreamReadTimeout: time.Duration(v.GetInt("WORKER_STREAM_READ_TIMEOUT")) * time.Millisecond,
			MaxRetries:        v.GetInt("WORKER_MAX_RETRIES"),
			ClaimMinIdle:      time.Duration(v.GetInt("WORKER_CLAIM_MIN_IDLE")) * time.Second,
		},
	}
}

func (c *Config) GetServerAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
		c.Database.SSLMode,
	)
}

func (c *Config) GetRedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// TileExtent - размер системы координат MVT (ширина тайла * EXTENT_RATIO)
func (c *Config) TileExtent() int {
	return c.Tile.Width * c.Tile.ExtentRatio
}
