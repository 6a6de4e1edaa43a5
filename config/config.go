package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server   ServerConfig
	Backend  BackendConfig
	VietQR   VietQRConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Kafka    KafkaConfig
	Observ   ObservabilityConfig
	Register RegisterConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// BackendConfig points at the storefront REST API that owns products, invoices and users.
type BackendConfig struct {
	BaseURL string
	Timeout time.Duration
}

type VietQRConfig struct {
	Endpoint    string
	APIKey      string
	ClientID    string
	AccountNo   string
	AccountName string
	AcqID       int
	BankName    string
	StoreLabel  string
	Timeout     time.Duration
}

// DatabaseConfig enables the local receipt mirror when URL is set.
type DatabaseConfig struct {
	URL string
}

// RedisConfig enables durable token storage when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// KafkaConfig enables invoice events when Brokers is non-empty.
type KafkaConfig struct {
	Brokers       []string
	TopicInvoice  string
	ConsumerGroup string
}

type ObservabilityConfig struct {
	JaegerEndpoint string
}

type RegisterConfig struct {
	RemoveDebounce time.Duration
}

func Load() *Config {
	_ = godotenv.Load()

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	apiTimeout, _ := strconv.Atoi(getEnv("API_TIMEOUT_SECONDS", "10"))
	qrTimeout, _ := strconv.Atoi(getEnv("VIETQR_TIMEOUT_SECONDS", "10"))
	acqID, _ := strconv.Atoi(getEnv("VIETQR_ACQ_ID", "970436"))
	debounceMs, _ := strconv.Atoi(getEnv("REMOVE_DEBOUNCE_MS", "10"))

	cfg := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Env:  getEnv("ENV", "development"),
		},
		Backend: BackendConfig{
			BaseURL: strings.TrimRight(getEnv("API_BASE_URL", "http://localhost:5000"), "/"),
			Timeout: time.Duration(apiTimeout) * time.Second,
		},
		VietQR: VietQRConfig{
			Endpoint:    getEnv("VIETQR_ENDPOINT", "https://api.vietqr.io/v2/generate"),
			APIKey:      getEnv("VIETQR_API_KEY", ""),
			ClientID:    getEnv("VIETQR_CLIENT_ID", ""),
			AccountNo:   getEnv("VIETQR_ACCOUNT_NO", "1030979625"),
			AccountName: getEnv("VIETQR_ACCOUNT_NAME", "LAM TIEU MINH"),
			AcqID:       acqID,
			BankName:    getEnv("VIETQR_BANK_NAME", "Vietcombank"),
			StoreLabel:  getEnv("VIETQR_STORE_LABEL", "Sukem Store"),
			Timeout:     time.Duration(qrTimeout) * time.Second,
		},
		Database: DatabaseConfig{
			URL: getEnv("DATABASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		Kafka: KafkaConfig{
			Brokers:       splitCSV(getEnv("KAFKA_BROKERS", "")),
			TopicInvoice:  getEnv("KAFKA_TOPIC_INVOICE_EVENTS", "invoice-events"),
			ConsumerGroup: getEnv("KAFKA_CONSUMER_GROUP", "pos-terminal-group"),
		},
		Observ: ObservabilityConfig{
			JaegerEndpoint: getEnv("JAEGER_ENDPOINT", "http://localhost:14268/api/traces"),
		},
		Register: RegisterConfig{
			RemoveDebounce: time.Duration(debounceMs) * time.Millisecond,
		},
	}

	log.Printf("Config loaded: env=%s, port=%s, backend=%s", cfg.Server.Env, cfg.Server.Port, cfg.Backend.BaseURL)
	return cfg
}

func getEnv(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func splitCSV(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
