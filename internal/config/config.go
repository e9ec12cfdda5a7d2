package config

import (
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/auth"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/cache"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/database"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/external"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/messaging"
	"github.com/Yassine-Frigui/Zenshe-spa-sub002/internal/search"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию приложения
type Config struct {
	Port           string
	GinMode        string
	LogLevel       string
	LogFormat      string
	RequestTimeout time.Duration
	CORSOrigins    []string
	// PublicURL is the externally reachable API base, used in emails and by the smoke validator
	PublicURL   string
	FrontendURL string

	Reservations ReservationsConfig

	Database      database.Config
	JWT           auth.Config
	NATS          messaging.Config
	Cache         cache.Config
	Elasticsearch search.Config
	Brevo         external.BrevoConfig
	JotForm       external.JotFormConfig
}

// ReservationsConfig holds the booking window of the spa.
type ReservationsConfig struct {
	OpeningTime        string
	ClosingTime        string
	CompletionInterval time.Duration
}

// Load загружает конфигурацию из переменных окружения.
// An optional .env file in the working directory is loaded first; real env vars win.
func Load() *Config {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	return &Config{
		Port:           getEnv("PORT", "5000"),
		GinMode:        getEnv("GIN_MODE", "debug"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		RequestTimeout: time.Duration(getEnvInt("REQUEST_TIMEOUT_SEC", 30)) * time.Second,
		CORSOrigins:    getEnvList("CORS_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		PublicURL:      strings.TrimRight(getEnv("API_URL", getEnv("VITE_API_URL", "http://localhost:5000")), "/"),
		FrontendURL:    strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),

		Reservations: ReservationsConfig{
			OpeningTime:        getEnv("SPA_OPENING_TIME", "09:00"),
			ClosingTime:        getEnv("SPA_CLOSING_TIME", "20:00"),
			CompletionInterval: time.Duration(getEnvInt("RESERVATION_COMPLETION_INTERVAL_SEC", 300)) * time.Second,
		},

		Database: database.Config{
			Host:               getEnv("DB_HOST", "localhost"),
			Port:               getEnvInt("DB_PORT", 3306),
			User:               getEnv("DB_USER", "root"),
			Password:           getEnv("DB_PASSWORD", ""),
			DBName:             getEnv("DB_NAME", "zenshe_spa"),
			MaxOpenConns:       getEnvInt("DB_MAX_OPEN_CONNS", 20),
			MaxIdleConns:       getEnvInt("DB_MAX_IDLE_CONNS", 10),
			ConnMaxLifetimeMin: getEnvInt("DB_CONN_MAX_LIFETIME_MIN", 5),
			ConnMaxIdleTimeMin: getEnvInt("DB_CONN_MAX_IDLE_TIME_MIN", 1),
		},

		JWT: auth.Config{
			Secret: getEnv("JWT_SECRET", "dev-jwt-secret-change-me"),
			TTL:    time.Duration(getEnvInt("JWT_TTL_HOURS", 24)) * time.Hour,
			Issuer: getEnv("JWT_ISSUER", "zenshe-spa"),
		},

		NATS: messaging.Config{
			Enabled:   getEnvBool("NATS_ENABLED", false),
			URL:       getEnv("NATS_URL", "nats://localhost:4222"),
			ClusterID: getEnv("NATS_CLUSTER_ID", "zenshe"),
			ClientID:  getEnv("NATS_CLIENT_ID", "zenshe-api"),
		},

		Cache: cache.Config{
			Enabled:  getEnvBool("VALKEY_ENABLED", false),
			Addr:     getEnv("VALKEY_ADDR", "localhost:6379"),
			Password: getEnv("VALKEY_PASSWORD", ""),
			Prefix:   getEnv("VALKEY_PREFIX", "zenshe:"),
			TTL:      time.Duration(getEnvInt("VALKEY_TTL_SEC", 300)) * time.Second,
		},

		Elasticsearch: search.Config{
			Enabled:    getEnvBool("ELASTICSEARCH_ENABLED", false),
			URL:        getEnv("ELASTICSEARCH_URL", "http://localhost:9200"),
			Index:      getEnv("ELASTICSEARCH_INDEX", "products"),
			Username:   os.Getenv("ELASTICSEARCH_USERNAME"),
			Password:   os.Getenv("ELASTICSEARCH_PASSWORD"),
			MaxRetries: getEnvInt("ELASTICSEARCH_MAX_RETRIES", 3),
		},

		Brevo: external.BrevoConfig{
			APIKey:      os.Getenv("BREVO_API_KEY"),
			BaseURL:     getEnv("BREVO_API_URL", "https://api.brevo.com/v3"),
			SenderEmail: getEnv("BREVO_SENDER_EMAIL", "contact@zenshe-spa.com"),
			SenderName:  getEnv("BREVO_SENDER_NAME", "ZenShe Spa"),
			Timeout:     time.Duration(getEnvInt("BREVO_TIMEOUT_SEC", 15)) * time.Second,
		},

		JotForm: external.JotFormConfig{
			FormID:  getEnv("JOTFORM_FORM_ID", os.Getenv("VITE_JOTFORM_FORM_ID")),
			BaseURL: getEnv("JOTFORM_FORM_URL", "https://form.jotform.com"),
			Timeout: time.Duration(getEnvInt("JOTFORM_TIMEOUT_SEC", 15)) * time.Second,
			TTL:     time.Duration(getEnvInt("JOTFORM_CACHE_TTL_SEC", 600)) * time.Second,
		},
	}
}

// getEnv получает значение переменной окружения или возвращает значение по умолчанию
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt получает целочисленное значение переменной окружения
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
		slog.Warn("Invalid boolean env value, using default", "key", key, "value", value)
	}
	return defaultValue
}

// getEnvList splits a comma separated variable, dropping empty entries
func getEnvList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
