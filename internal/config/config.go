package config

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config хранит все настройки приложения
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	Quiz      QuizConfig
	RateLimit RateLimitConfig
	WebSocket WebSocketConfig
}

// ServerConfig содержит настройки HTTP сервера
type ServerConfig struct {
	Port           string
	ReadTimeout    int
	WriteTimeout   int
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// DatabaseConfig содержит настройки подключения к PostgreSQL
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	// MigrationsPath: путь к SQL-миграциям в формате source URL golang-migrate
	MigrationsPath string `mapstructure:"migrations_path"`
}

// RedisConfig содержит унифицированные настройки подключения к Redis
// Поддерживает режимы: single, sentinel, cluster
type RedisConfig struct {
	// Mode: Режим работы Redis ("single", "sentinel", "cluster"). По умолчанию "single".
	Mode string `mapstructure:"mode"`

	// Addrs: Список адресов Redis (хост:порт). Используется для всех режимов.
	Addrs []string `mapstructure:"addrs"`

	// Addr: Альтернативный адрес для режима 'single'.
	Addr string `mapstructure:"addr"`

	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`

	// MasterName: Имя мастер-сервера Redis (только для режима "sentinel")
	MasterName string `mapstructure:"master_name"`

	MaxRetries      int `mapstructure:"max_retries"`
	MinRetryBackoff int `mapstructure:"min_retry_backoff"` // мс
	MaxRetryBackoff int `mapstructure:"max_retry_backoff"` // мс
}

// JWTConfig содержит настройки JWT
type JWTConfig struct {
	Secret          string        `mapstructure:"secret"`
	ExpirationHrs   int           `mapstructure:"expirationHrs"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
}

// QuizConfig содержит настройки доменной логики викторин
type QuizConfig struct {
	DefaultPageSize int `mapstructure:"default_page_size"`
	MaxPageSize     int `mapstructure:"max_page_size"`
	// CacheTTLSec: время жизни закешированной карточки викторины
	CacheTTLSec int `mapstructure:"cache_ttl_sec"`
}

// RateLimitConfig содержит лимиты запросов для чувствительных эндпоинтов
type RateLimitConfig struct {
	AttemptMaxRequests int `mapstructure:"attempt_max_requests"`
	AttemptWindowSec   int `mapstructure:"attempt_window_sec"`
	AuthMaxRequests    int `mapstructure:"auth_max_requests"`
	AuthWindowSec      int `mapstructure:"auth_window_sec"`
}

// WebSocketConfig содержит настройки потока событий викторин
type WebSocketConfig struct {
	Cluster ClusterConfig
	Limits  LimitsConfig
	Buffers BuffersConfig
}

// ClusterConfig содержит настройки межинстансной рассылки через Redis Pub/Sub
type ClusterConfig struct {
	Enabled       bool
	InstanceID    string `mapstructure:"instance_id"`
	EventsChannel string `mapstructure:"events_channel"`
}

// LimitsConfig содержит настройки ограничений соединения
type LimitsConfig struct {
	MaxMessageSize int `mapstructure:"max_message_size"`
	WriteWait      int `mapstructure:"write_wait"` // секунды
	PongWait       int `mapstructure:"pong_wait"`  // секунды
}

// BuffersConfig содержит настройки буферов
type BuffersConfig struct {
	ClientSendBuffer int `mapstructure:"client_send_buffer"`
	BroadcastBuffer  int `mapstructure:"broadcast_buffer"`
}

// PostgresConnectionString формирует строку подключения к PostgreSQL
func (d *DatabaseConfig) PostgresConnectionString() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
	)
}

// CacheTTL возвращает TTL кеша викторин
func (q QuizConfig) CacheTTL() time.Duration {
	return time.Duration(q.CacheTTLSec) * time.Second
}

func setDefaults(vip *viper.Viper) {
	vip.SetDefault("server.port", "8080")
	vip.SetDefault("server.readtimeout", 10)
	vip.SetDefault("server.writetimeout", 10)
	vip.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})
	vip.SetDefault("database.sslmode", "disable")
	vip.SetDefault("database.migrations_path", "file://migrations")
	vip.SetDefault("redis.mode", "single")
	vip.SetDefault("jwt.expirationHrs", 24)
	vip.SetDefault("jwt.cleanup_interval", time.Hour)
	vip.SetDefault("quiz.default_page_size", 20)
	vip.SetDefault("quiz.max_page_size", 100)
	vip.SetDefault("quiz.cache_ttl_sec", 300)
	vip.SetDefault("ratelimit.attempt_max_requests", 30)
	vip.SetDefault("ratelimit.attempt_window_sec", 60)
	vip.SetDefault("ratelimit.auth_max_requests", 5)
	vip.SetDefault("ratelimit.auth_window_sec", 60)
	vip.SetDefault("websocket.cluster.events_channel", "quiz_events")
	vip.SetDefault("websocket.limits.max_message_size", 512)
	vip.SetDefault("websocket.limits.write_wait", 10)
	vip.SetDefault("websocket.limits.pong_wait", 30)
	vip.SetDefault("websocket.buffers.client_send_buffer", 64)
	vip.SetDefault("websocket.buffers.broadcast_buffer", 256)
}

// Load загружает конфигурацию из файла
func Load(configPath string) (*Config, error) {
	vip := viper.New() // Новый экземпляр Viper, без глобального состояния

	setDefaults(vip)

	// Привязка для секции Database
	vip.BindEnv("database.host", "DATABASE_HOST")
	vip.BindEnv("database.port", "DATABASE_PORT")
	vip.BindEnv("database.user", "DATABASE_USER")
	vip.BindEnv("database.password", "DATABASE_PASSWORD")
	vip.BindEnv("database.dbname", "DATABASE_DBNAME")
	vip.BindEnv("database.sslmode", "DATABASE_SSLMODE")
	vip.BindEnv("database.migrations_path", "DATABASE_MIGRATIONS_PATH")

	// Привязка для секции Redis
	vip.BindEnv("redis.mode", "REDIS_MODE")
	vip.BindEnv("redis.addrs", "REDIS_ADDRS")
	vip.BindEnv("redis.addr", "REDIS_ADDR")
	vip.BindEnv("redis.password", "REDIS_PASSWORD")
	vip.BindEnv("redis.db", "REDIS_DB")
	vip.BindEnv("redis.master_name", "REDIS_MASTER_NAME")

	// Привязка для секции JWT
	vip.BindEnv("jwt.secret", "JWT_SECRET")
	vip.BindEnv("jwt.expirationHrs", "JWT_EXPIRATIONHRS")
	vip.BindEnv("jwt.cleanup_interval", "JWT_CLEANUP_INTERVAL")

	// Привязка для Server
	vip.BindEnv("server.port", "SERVER_PORT")

	// Привязка для WebSocket Cluster
	vip.BindEnv("websocket.cluster.enabled", "WEBSOCKET_CLUSTER_ENABLED")
	vip.BindEnv("websocket.cluster.instance_id", "WEBSOCKET_INSTANCE_ID")

	if configPath != "" {
		vip.SetConfigFile(configPath)
		// Файл не обязателен: значения могут прийти из переменных окружения
		if err := vip.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				log.Printf("Файл конфигурации '%s' не найден, используются переменные окружения/умолчания.", configPath)
			} else {
				log.Printf("Предупреждение: не удалось прочитать файл конфигурации '%s': %v", configPath, err)
			}
		}
	}

	var cfg Config
	if err := vip.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if os.Getenv("GIN_MODE") != "release" {
		log.Printf("--- Загруженные значения конфигурации ---")
		log.Printf("Database Host: %s", cfg.Database.Host)
		log.Printf("Database Port: %s", cfg.Database.Port)
		log.Printf("Database Name: %s", cfg.Database.DBName)
		log.Printf("Redis Addr: %s (mode: %s)", cfg.Redis.Addr, cfg.Redis.Mode)
		log.Printf("JWT Expiration Hours: %d", cfg.JWT.ExpirationHrs)
		log.Printf("JWT Secret Set: %t", cfg.JWT.Secret != "")
		log.Printf("Server Port: %s", cfg.Server.Port)
		log.Printf("Websocket Cluster Enabled: %t", cfg.WebSocket.Cluster.Enabled)
		log.Printf("-----------------------------------------")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate проверяет обязательные параметры
func (c *Config) Validate() error {
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT secret is required in config (check JWT_SECRET env var)")
	}
	if c.Database.Host == "" || c.Database.DBName == "" || c.Database.User == "" {
		return fmt.Errorf("database configuration (host, dbname, user) is incomplete in config (check DATABASE_HOST, DATABASE_DBNAME, DATABASE_USER env vars)")
	}
	if len(c.Redis.Addrs) == 0 && c.Redis.Addr == "" {
		return fmt.Errorf("redis configuration is incomplete (check REDIS_ADDR or REDIS_ADDRS env vars)")
	}
	if c.Quiz.DefaultPageSize <= 0 || c.Quiz.MaxPageSize < c.Quiz.DefaultPageSize {
		return fmt.Errorf("invalid quiz pagination settings: default=%d max=%d", c.Quiz.DefaultPageSize, c.Quiz.MaxPageSize)
	}
	if os.Getenv("GIN_MODE") == "release" && c.Database.Password == "" {
		return fmt.Errorf("database password is required in release mode (check DATABASE_PASSWORD env var)")
	}
	return nil
}
