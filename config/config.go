package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yeremiapane/restaurant-seating/database"
	"github.com/yeremiapane/restaurant-seating/models"
	"github.com/yeremiapane/restaurant-seating/utils"
	"gorm.io/gorm"
)

const (
	StoreGorm   = "gorm"
	StoreRedis  = "redis"
	StoreMemory = "memory"
)

type Config struct {
	Port     string
	GinMode  string
	LogLevel string

	StoreDriver string
	DBDriver    string
	DBDSN       string

	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string

	JWTSecret     string
	StaffPIN      string
	TokenTTL      time.Duration
	AllowedOrigin string

	LayoutFile string

	TimerTotalMinutes     int
	TimerLastOrderMinutes int
	AutoStartTimer        bool
	TickInterval          time.Duration
	AlertTolerance        time.Duration

	MetricsPrefix string
}

func LoadConfig() *Config {
	return &Config{
		Port:     getEnv("PORT", "8080"),
		GinMode:  getEnv("GIN_MODE", "debug"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", StoreGorm)),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", database.DriverSQLite)),
		DBDSN:       getEnv("DB_DSN", "seating.db"),

		RedisAddr:      getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:  getEnv("REDIS_PASSWORD", ""),
		RedisDB:        getEnvAsInt("REDIS_DB", 0),
		RedisKeyPrefix: getEnv("REDIS_KEY_PREFIX", "seating"),

		JWTSecret:     getEnv("JWT_SECRET", ""),
		StaffPIN:      getEnv("STAFF_PIN", ""),
		TokenTTL:      getEnvAsDuration("TOKEN_TTL", 12*time.Hour),
		AllowedOrigin: getEnv("ALLOWED_ORIGIN", "*"),

		LayoutFile: getEnv("LAYOUT_FILE", ""),

		TimerTotalMinutes:     getEnvAsInt("TIMER_TOTAL_MINUTES", models.DefaultTotalMinutes),
		TimerLastOrderMinutes: getEnvAsInt("TIMER_LAST_ORDER_MINUTES", models.DefaultLastOrderMinutes),
		AutoStartTimer:        getEnvAsBool("SEATING_AUTO_START_TIMER", true),
		TickInterval:          getEnvAsDuration("TICK_INTERVAL", time.Second),
		AlertTolerance:        getEnvAsDuration("ALERT_TOLERANCE", time.Second),

		MetricsPrefix: getEnv("METRICS_PREFIX", "seating"),
	}
}

// Validate rejects settings the services cannot run with.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreGorm, StoreRedis, StoreMemory:
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q", c.StoreDriver)
	}
	if c.TimerTotalMinutes <= 0 || c.TimerLastOrderMinutes <= 0 {
		return fmt.Errorf("timer defaults must be positive, got %d/%d", c.TimerTotalMinutes, c.TimerLastOrderMinutes)
	}
	if c.TickInterval <= 0 {
		return fmt.Errorf("TICK_INTERVAL must be positive, got %s", c.TickInterval)
	}
	if c.AlertTolerance <= 0 {
		return fmt.Errorf("ALERT_TOLERANCE must be positive, got %s", c.AlertTolerance)
	}
	return nil
}

func InitDB(cfg *Config) (*gorm.DB, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, err
	}
	return db, nil
}

func InitRedis(ctx context.Context, cfg *Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping %s: %w", cfg.RedisAddr, err)
	}

	utils.InfoLogger.Printf("Redis connected (%s db %d)", cfg.RedisAddr, cfg.RedisDB)
	return client, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
