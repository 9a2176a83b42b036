package config

import (
	"os"

	"github.com/joho/godotenv"
)

var Current AppConfig

type AppConfig struct {
	// Port web server port
	Port string

	// AppEnv represent the environment in which the process runs
	AppEnv string

	// LogFilename when set, logs are also written to this rotating file
	LogFilename string
	// LogConsoleLevel minimum level for console output (trace, debug, info...)
	LogConsoleLevel string

	// SettingsStore selects where the settings are persisted: file, redis or mem
	SettingsStore string
	// SettingsPath is the JSON file used by the file settings store
	SettingsPath string

	// RedisURL URL for Redis
	RedisURL string
	// RedisHost if RedisURL is not used, host for Redis
	RedisHost string
	// RedisPassword if RedisURL is not used, password for Redis
	RedisPassword string

	// AWSRegion region for AWS
	AWSRegion string
	// AWSEndpoint overrides the S3 endpoint (S3-compatible stores)
	AWSEndpoint string
	// AWSAccessKeyID static access key, the default credential chain is used when empty
	AWSAccessKeyID string
	// AWSSecretAccessKey static secret key matching AWSAccessKeyID
	AWSSecretAccessKey string
}

const (
	SettingsStoreFile  = "file"
	SettingsStoreRedis = "redis"
	SettingsStoreMem   = "mem"
)

// LoadConfig reads the .env file when present and returns the configuration
// found in the environment.
func LoadConfig() AppConfig {
	// a missing .env is fine, the environment may already be populated
	_ = godotenv.Load()

	return AppConfig{
		Port:               os.Getenv("PORT"),
		AppEnv:             os.Getenv("APP_ENV"),
		LogFilename:        os.Getenv("LOG_FILENAME"),
		LogConsoleLevel:    os.Getenv("LOG_CONSOLE_LEVEL"),
		SettingsStore:      getEnv("SETTINGS_STORE", SettingsStoreFile),
		SettingsPath:       getEnv("SETTINGS_PATH", "imgpaste.json"),
		RedisURL:           os.Getenv("REDIS_URL"),
		RedisHost:          os.Getenv("REDIS_HOST"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		AWSRegion:          getEnv("AWS_REGION", "us-east-1"),
		AWSEndpoint:        os.Getenv("AWS_ENDPOINT"),
		AWSAccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		AWSSecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
