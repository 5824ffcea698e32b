// Package config загружает конфигурацию сервиса из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
// Если рядом лежит .env — он подхватывается через godotenv до разбора.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Драйверы хранилища.
const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"info"`
	// Часовой пояс для бейджей «сова» и «жаворонок», если клиент не прислал своё время
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"UTC"`

	// --- HTTP ---
	HTTPAddr            string        `envconfig:"HTTP_ADDR" default:":8080"`
	HTTPShutdownTimeout time.Duration `envconfig:"HTTP_SHUTDOWN_TIMEOUT" default:"10s"`

	// --- Store ---
	StoreDriver string `envconfig:"STORE_DRIVER" default:"postgres"`
	SQLitePath  string `envconfig:"SQLITE_PATH" default:"codeblooded.db"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"codeblooded"`
	DBPassword string `envconfig:"DB_PASSWORD"`
	DBName     string `envconfig:"DB_NAME" default:"codeblooded"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`

	// --- Clout ---
	CloutDecayPercent     int           `envconfig:"CLOUT_DECAY_PERCENT" default:"5"`
	CloutDecaySchedule    string        `envconfig:"CLOUT_DECAY_SCHEDULE" default:"0 0 * * 1"`
	CloutRateLimitActions int           `envconfig:"CLOUT_RATE_LIMIT_ACTIONS" default:"10"`
	CloutRateLimitWindow  time.Duration `envconfig:"CLOUT_RATE_LIMIT_WINDOW" default:"5m"`
	CloutReciprocalLimit  int           `envconfig:"CLOUT_RECIPROCAL_LIMIT" default:"3"`
	CloutReciprocalWindow time.Duration `envconfig:"CLOUT_RECIPROCAL_WINDOW" default:"1h"`

	// --- Badges ---
	BadgeCatalogPath     string `envconfig:"BADGE_CATALOG_PATH" default:"catalog/badges.yaml"`
	BadgeCatalogWatch    bool   `envconfig:"BADGE_CATALOG_WATCH" default:"true"`
	BadgeRefreshSchedule string `envconfig:"BADGE_REFRESH_SCHEDULE" default:"@every 15m"`

	// --- Notifications ---
	// Telegram-чат, куда объявляются новые бейджи. Пустой токен = отключено.
	NotifyTelegramToken  string `envconfig:"NOTIFY_TELEGRAM_TOKEN"`
	NotifyTelegramChatID int64  `envconfig:"NOTIFY_TELEGRAM_CHAT_ID"`
	// NATS-сабжект для событий разблокировки. Пустой URL = отключено.
	NotifyNATSURL     string `envconfig:"NOTIFY_NATS_URL"`
	NotifyNATSSubject string `envconfig:"NOTIFY_NATS_SUBJECT" default:"codeblooded.badges.unlocked"`

	// --- Rate Limiting (HTTP) ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"120"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`

	// --- Feature Flags ---
	FeatureDecayEnabled  bool `envconfig:"FEATURE_DECAY_ENABLED" default:"true"`
	FeatureBadgesEnabled bool `envconfig:"FEATURE_BADGES_ENABLED" default:"true"`
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Validate проверяет согласованность настроек после загрузки.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StorePostgres:
		if c.DBPassword == "" {
			return fmt.Errorf("DB_PASSWORD обязателен для STORE_DRIVER=postgres")
		}
		if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
			return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH не задан")
		}
	default:
		return fmt.Errorf("неизвестный STORE_DRIVER %q (postgres|sqlite)", c.StoreDriver)
	}
	if c.CloutDecayPercent < 0 || c.CloutDecayPercent > 100 {
		return fmt.Errorf("CLOUT_DECAY_PERCENT должен быть в диапазоне 0..100")
	}
	if c.CloutRateLimitActions <= 0 || c.CloutRateLimitWindow <= 0 {
		return fmt.Errorf("CLOUT_RATE_LIMIT_ACTIONS и CLOUT_RATE_LIMIT_WINDOW должны быть > 0")
	}
	if c.CloutReciprocalLimit <= 0 || c.CloutReciprocalWindow <= 0 {
		return fmt.Errorf("CLOUT_RECIPROCAL_LIMIT и CLOUT_RECIPROCAL_WINDOW должны быть > 0")
	}
	if c.NotifyTelegramToken != "" && c.NotifyTelegramChatID == 0 {
		return fmt.Errorf("NOTIFY_TELEGRAM_CHAT_ID обязателен, если задан NOTIFY_TELEGRAM_TOKEN")
	}
	if c.RateLimitRequests <= 0 || c.RateLimitWindow <= 0 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS и RATE_LIMIT_WINDOW должны быть > 0")
	}
	return nil
}

// Load читает .env (если есть) и переменные окружения, заполняет структуру Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("не удалось прочитать .env: %w", err)
	}

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
