package configs

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DBconfig хранит конфигурацию для БД
type DBconfig struct {
	URL string
}

type RESTconfig struct {
	PORT string
}

// RabbitMQConfig хранит конфигурацию для RabbitMQ
type RabbitMQConfig struct {
	URL     string
	Enabled bool
}

type StdoutLogConfig struct {
	Level string `mapstructure:"STDOUT_LOG_LEVEL" default:"debug"` // По умолчанию DEBUG
}

type FluentBitConfig struct {
	Host    string
	Port    int
	Enabled bool
	Level   string `mapstructure:"FLUENTBIT_LOG_LEVEL" default:"info"` // По умолчанию INFO
}

// SchedulerConfig хранит настройки периодического запуска конвейера
type SchedulerConfig struct {
	Enabled       bool
	IntervalHours int
}

// FetcherConfig хранит общие ограничения для адаптеров источников
type FetcherConfig struct {
	MaxPages     int
	DelaySeconds int
}

// RetentionConfig хранит окно хранения объявлений
type RetentionConfig struct {
	Days int
}

// ProfilesConfig хранит путь к файлу поисковых профилей
type ProfilesConfig struct {
	Path string
}

// TelegramConfig хранит настройки Telegram-уведомлений
type TelegramConfig struct {
	Enabled  bool
	BotToken string
	ChatIDs  []string
}

// KeepAliveConfig хранит настройки самопинга для бесплатных хостингов
type KeepAliveConfig struct {
	Enabled         bool
	ServiceURL      string
	IntervalMinutes int
}

// AppConfig хранит всю конфигурацию приложения
type AppConfig struct {
	AppName      string
	Database     DBconfig
	Rest         RESTconfig
	RabbitMQ     RabbitMQConfig
	FluentBit    FluentBitConfig
	StdoutLogger StdoutLogConfig
	Scheduler    SchedulerConfig
	Fetcher      FetcherConfig
	Retention    RetentionConfig
	Profiles     ProfilesConfig
	Telegram     TelegramConfig
	KeepAlive    KeepAliveConfig
}

// LoadConfig загружает конфигурацию из переменных окружения.
func LoadConfig(envPath ...string) (*AppConfig, error) {
	var err error
	if len(envPath) > 0 {
		err = godotenv.Load(envPath[0])
	} else {
		err = godotenv.Load()
	}

	if err != nil {
		// На хостинге .env отсутствует, вся конфигурация приходит из окружения
		log.Printf("Info: Could not load .env file (path: %v): %v.\n", envPath, err)
	}

	cfg := &AppConfig{}

	cfg.AppName = os.Getenv("APP_NAME")
	if cfg.AppName == "" {
		cfg.AppName = "monitoring-service" // Устанавливаем default
	}

	// Читаем DATABASE URL
	cfg.Database.URL = os.Getenv("DATABASE_URL")
	if cfg.Database.URL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is required")
	}

	// Читаем конфигурацию для REST
	cfg.Rest.PORT = os.Getenv("PORT")
	if cfg.Rest.PORT == "" {
		cfg.Rest.PORT = "8080"
	}

	// Читаем конфигурацию для RabbitMQ
	cfg.RabbitMQ.Enabled = getEnvAsBool("RABBITMQ_ENABLED", false)
	if cfg.RabbitMQ.Enabled {
		cfg.RabbitMQ.URL = os.Getenv("RABBITMQ_URL")
		if cfg.RabbitMQ.URL == "" {
			log.Println("WARNING: RABBITMQ_ENABLED is true, but RABBITMQ_URL is not set. Disabling RabbitMQ.")
			cfg.RabbitMQ.Enabled = false
		}
	}

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

	cfg.StdoutLogger.Level = getEnvAsString("STDOUT_LOG_LEVEL", "debug")

	cfg.Scheduler.Enabled = getEnvAsBool("ENABLE_SCHEDULER", true)
	cfg.Scheduler.IntervalHours = getEnvAsInt("SCRAPE_INTERVAL_HOURS", 6)

	cfg.Fetcher.MaxPages = getEnvAsInt("MAX_PAGES_PER_SOURCE", 25)
	cfg.Fetcher.DelaySeconds = getEnvAsInt("FETCH_DELAY_SECONDS", 2)

	cfg.Retention.Days = getEnvAsInt("RETENTION_DAYS", 90)

	cfg.Profiles.Path = getEnvAsString("PROFILES_PATH", "configs/profiles.json")

	cfg.Telegram.Enabled = getEnvAsBool("TELEGRAM_ENABLED", false)
	if cfg.Telegram.Enabled {
		cfg.Telegram.BotToken = os.Getenv("TELEGRAM_BOT_TOKEN")
		for _, chatID := range strings.Split(os.Getenv("TELEGRAM_CHAT_IDS"), ",") {
			if trimmed := strings.TrimSpace(chatID); trimmed != "" {
				cfg.Telegram.ChatIDs = append(cfg.Telegram.ChatIDs, trimmed)
			}
		}
		if cfg.Telegram.BotToken == "" || len(cfg.Telegram.ChatIDs) == 0 {
			log.Println("WARNING: TELEGRAM_ENABLED is true, but TELEGRAM_BOT_TOKEN or TELEGRAM_CHAT_IDS is not set. Disabling Telegram.")
			cfg.Telegram.Enabled = false
		}
	}

	cfg.KeepAlive.Enabled = getEnvAsBool("KEEPALIVE_ENABLED", false)
	if cfg.KeepAlive.Enabled {
		cfg.KeepAlive.ServiceURL = os.Getenv("SERVICE_URL")
		if cfg.KeepAlive.ServiceURL == "" {
			log.Println("WARNING: KEEPALIVE_ENABLED is true, but SERVICE_URL is not set. Disabling keep-alive.")
			cfg.KeepAlive.Enabled = false
		}
		cfg.KeepAlive.IntervalMinutes = getEnvAsInt("KEEPALIVE_INTERVAL_MINUTES", 10)
	}

	return cfg, nil
}

// getEnvAsString читает переменную окружения как строку или возвращает значение по умолчанию
func getEnvAsString(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

// getEnvAsInt читает переменную окружения как int или возвращает значение по умолчанию
// Логирует ошибку, если переменная есть, но не может быть преобразована в int
func getEnvAsInt(key string, defaultValue int) int {
	valueStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}

	valueInt, err := strconv.Atoi(valueStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as int: %v. Using default value: %d\n", key, valueStr, err, defaultValue)
		return defaultValue
	}
	return valueInt
}

// getEnvAsBool читает переменную окружения как bool или возвращает значение по умолчанию
func getEnvAsBool(key string, defaultValue bool) bool {
	valStr, exists := os.LookupEnv(key)
	if !exists {
		return defaultValue
	}
	valBool, err := strconv.ParseBool(valStr)
	if err != nil {
		log.Printf("Warning: Environment variable %s (value: %s) could not be parsed as bool: %v. Using default value: %t\n", key, valStr, err, defaultValue)
		return defaultValue
	}
	return valBool
}
