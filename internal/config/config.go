package config

import (
	"os"
	"strconv"
)

// Config holds application configuration
type Config struct {
	Port         string
	PricePerKwh  string
	InitialBill  string
	MaxReading   float64 // 0 disables the upper bound
	AuditLogPath string
	Debug        bool
}

// Load loads configuration from environment variables
func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		PricePerKwh:  getEnv("PRICE_PER_KWH", "0.15"),
		InitialBill:  getEnv("INITIAL_BILL", "50.00"),
		MaxReading:   getEnvFloat("MAX_READING", 0),
		AuditLogPath: getEnv("AUDIT_LOG_PATH", "server_logs.csv"),
		Debug:        getEnvBool("DEBUG", false),
	}
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	b, err := strconv.ParseBool(val)
	if err != nil {
		return defaultVal
	}
	return b
}

func getEnvFloat(key string, defaultVal float64) float64 {
	val := os.Getenv(key)
	if val == "" {
		return defaultVal
	}
	f, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return defaultVal
	}
	return f
}
