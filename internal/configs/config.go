package configs

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type DBconfig struct {
	URL             string
	RunMigrations   bool
	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type RESTconfig struct {
	Port               string
	CORSAllowedOrigins []string
	MaxUploadMB        int64
}

type AuthConfig struct {
	SigningKey string
	Issuer     string
	TokenTTL   time.Duration
}

type RedisConfig struct {
	Enabled         bool
	Addr            string
	Password        string
	DB              int
	ListingCacheTTL time.Duration
}

type RabbitMQConfig struct {
	Enabled  bool
	URL      string
	Exchange string
}

type MediaConfig struct {
	Root    string
	BaseURL string
}

type StdoutLogConfig struct {
	Level  string
	Format string // text | json | tint
}

type FluentBitConfig struct {
	Enabled bool
	Host    string
	Port    int
	Level   string
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Database     DBconfig
	Rest         RESTconfig
	Auth         AuthConfig
	Redis        RedisConfig
	RabbitMQ     RabbitMQConfig
	Media        MediaConfig
	StdoutLogger StdoutLogConfig
	FluentBit    FluentBitConfig
}

// LoadConfig загружает конфигурацию из .env (если он есть) и переменных окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath...)
	} else {
		err = godotenv.Load()
	}
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("could not load .env file (path: %v): %w", envPath, err)
		}
		log.Printf("Info: .env file not found (path: %v), using process environment\n", envPath)
	}

	cfg := &AppConfig{}
	cfg.AppName = getEnvAsString("APP_NAME", "marketplace-service")

	cfg.Database.URL = os.Getenv("DATABASE_URL")
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}
	cfg.Database.RunMigrations = getEnvAsBool("RUN_MIGRATIONS", true)
	// Ноль оставляет значения пула pgx по умолчанию
	cfg.Database.MaxConns = int32(getEnvAsInt("DB_MAX_CONNS", 0))
	cfg.Database.MinConns = int32(getEnvAsInt("DB_MIN_CONNS", 0))
	cfg.Database.MaxConnLifetime = getEnvAsDuration("DB_MAX_CONN_LIFETIME", time.Hour)

	cfg.Rest.Port = getEnvAsString("PORT", "8080")
	cfg.Rest.CORSAllowedOrigins = getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"*"})
	cfg.Rest.MaxUploadMB = int64(getEnvAsInt("MAX_UPLOAD_MB", 20))
	if cfg.Rest.MaxUploadMB <= 0 {
		return nil, fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", cfg.Rest.MaxUploadMB)
	}

	cfg.Auth.SigningKey = os.Getenv("JWT_SIGNING_KEY")
	if cfg.Auth.SigningKey == "" {
		return nil, fmt.Errorf("JWT_SIGNING_KEY environment variable is required")
	}
	cfg.Auth.Issuer = getEnvAsString("JWT_ISSUER", cfg.AppName)
	cfg.Auth.TokenTTL = getEnvAsDuration("JWT_TTL", 24*time.Hour)

	cfg.Redis.Enabled = getEnvAsBool("REDIS_ENABLED", false)
	if cfg.Redis.Enabled {
		cfg.Redis.Addr = os.Getenv("REDIS_ADDR")
		if cfg.Redis.Addr == "" {
			log.Println("WARNING: REDIS_ENABLED is true, but REDIS_ADDR is not set. Disabling Redis.")
			cfg.Redis.Enabled = false
		}
		cfg.Redis.Password = os.Getenv("REDIS_PASSWORD")
		cfg.Redis.DB = getEnvAsInt("REDIS_DB", 0)
	}
	cfg.Redis.ListingCacheTTL = getEnvAsDuration("LISTING_CACHE_TTL", time.Minute)

	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			log.Println("WARNING: RABBITMQ_ENABLED is true, but RABBITMQ_URL is not set. Disabling event publishing.")
			cfg.RabbitMQ.Enabled = false
		}
	}
	cfg.RabbitMQ.Exchange = getEnvAsString("RABBITMQ_EXCHANGE", "marketplace.events")

	cfg.Media.Root = getEnvAsString("MEDIA_ROOT", "./media")
	cfg.Media.BaseURL = getEnvAsString("MEDIA_BASE_URL", "http://localhost:"+cfg.Rest.Port+"/media")

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")
	cfg.StdoutLogger.Format = getEnvAsString("STDOUT_LOG_FORMAT", "tint")

	cfg.FluentBit.Enabled = getEnvAsBool("FLUENTBIT_ENABLED", false)
	if cfg.FluentBit.Enabled {
		cfg.FluentBit.Host = os.Getenv("FLUENTBIT_HOST")
		if cfg.FluentBit.Host == "" {
			log.Println("WARNING: FLUENTBIT_ENABLED is true, but FLUENTBIT_HOST is not set. Disabling Fluent Bit.")
			cfg.FluentBit.Enabled = false
		}
		cfg.FluentBit.Port = getEnvAsInt("FLUENTBIT_PORT", 24224)
		cfg.FluentBit.Level = getEnvAsString("FLUENTBIT_LOG_LEVEL", "info")
	}

	return cfg, nil
}

func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.Atoi(strings.TrimSpace(valueStr))
	if err != nil {
		log.Printf("Warning: Invalid integer value for %s: '%s'. Using default: %d\n", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
	if err != nil {
		log.Printf("Warning: Invalid boolean value for %s: '%s'. Using default: %t\n", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	value, err := time.ParseDuration(strings.TrimSpace(valueStr))
	if err != nil || value <= 0 {
		log.Printf("Warning: Invalid duration value for %s: '%s'. Using default: %s\n", key, valueStr, defaultValue)
		return defaultValue
	}
	return value
}

func getEnvAsList(key string, defaultValue []string) []string {
	valueStr, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(valueStr) == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valueStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
