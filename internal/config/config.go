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
	HTTPPort        string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration

	DBHost         string
	DBPort         int
	DBUser         string
	DBPassword     string
	DBName         string
	MigrationsPath string

	// Fees are in currency minor units, shared by the quote endpoint and
	// transaction creation.
	BaseFee     float64
	DeliveryFee float64
	Currency    string

	GatewayBaseURL      string
	GatewayPublicKey    string
	GatewayPrivateKey   string
	GatewayIntegrityKey string

	RedisAddr    string
	KafkaBrokers []string
}

// Load reads .env when present, then the process environment.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using system environment")
	}

	return &Config{
		HTTPPort:        getEnv("HTTP_PORT", "8080"),
		RequestTimeout:  30 * time.Second,
		ShutdownTimeout: 10 * time.Second,

		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnvInt("DB_PORT", 5432),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     getEnv("DB_PASSWORD", "postgres"),
		DBName:         getEnv("DB_NAME", "payments"),
		MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),

		BaseFee:     getEnvFloat("BASE_FEE", 1000),
		DeliveryFee: getEnvFloat("DELIVERY_FEE", 5000),
		Currency:    getEnv("CURRENCY", "COP"),

		GatewayBaseURL:      getEnv("PAYMENT_GATEWAY_BASE_URL", ""),
		GatewayPublicKey:    getEnv("PAYMENT_GATEWAY_PUBLIC_KEY", ""),
		GatewayPrivateKey:   getEnv("PAYMENT_GATEWAY_PRIVATE_KEY", ""),
		GatewayIntegrityKey: getEnv("PAYMENT_GATEWAY_INTEGRITY_KEY", ""),

		RedisAddr:    getEnv("REDIS_ADDR", "localhost:6379"),
		KafkaBrokers: strings.Split(getEnv("KAFKA_BROKERS", "localhost:9092"), ","),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("invalid %s=%q, using default %d", key, value, defaultValue)
		return defaultValue
	}
	return n
}

func getEnvFloat(key string, defaultValue float64) float64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		log.Printf("invalid %s=%q, using default %v", key, value, defaultValue)
		return defaultValue
	}
	return f
}
