package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
)

// Config captures environment driven configuration values for the announcer.
type Config struct {
	TelegramToken       string
	TelegramEndpoint    string
	Channel             string
	SQLitePath          string
	Location            *time.Location
	DefaultCapacity     int
	HTTPPort            int
	AdminTokenHash      string
	GatewayTokenHash    string
	RedisAddr           string
	RedisPassword       string
	RedisDB             int
	MaintenanceInterval time.Duration
	LogLevel            slog.Level
}

// DefaultEnvFile is read by Load when no files are given.
const DefaultEnvFile = ".env"

// Load parses configuration values from the process environment. Values from
// files are applied first without overriding variables that are already set;
// missing files are ignored.
func Load(files ...string) (Config, error) {
	if len(files) == 0 {
		files = []string{DefaultEnvFile}
	}
	for _, file := range files {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("не удалось прочитать %s: %w", file, err)
		}
	}

	cfg := Config{
		SQLitePath:          "announcer.db",
		DefaultCapacity:     10,
		HTTPPort:            8080,
		MaintenanceInterval: time.Hour,
		LogLevel:            slog.LevelInfo,
	}

	missing := make([]string, 0, 3)
	invalid := make([]string, 0, 2)

	required := func(key string, dst *string) {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			*dst = value
			return
		}
		missing = append(missing, key)
	}
	required("TELEGRAM_BOT_TOKEN", &cfg.TelegramToken)
	required("ANNOUNCER_CHANNEL", &cfg.Channel)
	required("ANNOUNCER_ADMIN_TOKEN_HASH", &cfg.AdminTokenHash)

	cfg.TelegramEndpoint = strings.TrimSpace(os.Getenv("TELEGRAM_API_ENDPOINT"))
	cfg.GatewayTokenHash = strings.TrimSpace(os.Getenv("ANNOUNCER_GATEWAY_TOKEN_HASH"))

	if path := strings.TrimSpace(os.Getenv("ANNOUNCER_SQLITE_PATH")); path != "" {
		cfg.SQLitePath = path
	}

	zone := strings.TrimSpace(os.Getenv("ANNOUNCER_TIMEZONE"))
	if zone == "" {
		zone = "Europe/Moscow"
	}
	if loc, err := time.LoadLocation(zone); err != nil {
		invalid = append(invalid, "ANNOUNCER_TIMEZONE")
	} else {
		cfg.Location = loc
	}

	if capacityValue := strings.TrimSpace(os.Getenv("ANNOUNCER_DEFAULT_CAPACITY")); capacityValue != "" {
		capacity, err := strconv.Atoi(capacityValue)
		if err != nil || capacity <= 0 {
			invalid = append(invalid, "ANNOUNCER_DEFAULT_CAPACITY")
		} else {
			cfg.DefaultCapacity = capacity
		}
	}

	if portValue := strings.TrimSpace(os.Getenv("ANNOUNCER_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "ANNOUNCER_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	cfg.RedisAddr = strings.TrimSpace(os.Getenv("ANNOUNCER_REDIS_ADDR"))
	cfg.RedisPassword = os.Getenv("ANNOUNCER_REDIS_PASSWORD")
	if dbValue := strings.TrimSpace(os.Getenv("ANNOUNCER_REDIS_DB")); dbValue != "" {
		db, err := strconv.Atoi(dbValue)
		if err != nil || db < 0 {
			invalid = append(invalid, "ANNOUNCER_REDIS_DB")
		} else {
			cfg.RedisDB = db
		}
	}

	if intervalValue := strings.TrimSpace(os.Getenv("ANNOUNCER_MAINTENANCE_INTERVAL")); intervalValue != "" {
		interval, err := time.ParseDuration(intervalValue)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "ANNOUNCER_MAINTENANCE_INTERVAL")
		} else {
			cfg.MaintenanceInterval = interval
		}
	}

	if levelValue := strings.TrimSpace(os.Getenv("ANNOUNCER_LOG_LEVEL")); levelValue != "" {
		if err := cfg.LogLevel.UnmarshalText([]byte(levelValue)); err != nil {
			invalid = append(invalid, "ANNOUNCER_LOG_LEVEL")
		}
	}

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("не заданы обязательные переменные окружения: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("некорректные значения переменных окружения: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
