package global

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds process-wide configuration, loaded once from the environment.
type Config struct {
	Port string
	Env  string

	MongoURI      string
	MongoDatabase string
	MongoPoolSize int
	MongoMaxRetry int

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	JWTSecret      string
	GoogleClientID string

	// NodeID names this process in presence keys and snowflake IDs.
	NodeID int64
}

// Load reads configuration from environment variables. A .env file is picked
// up when present (development convenience).
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Port:           getEnv("PORT", "5000"),
		Env:            getEnv("ENV", "development"),
		MongoURI:       getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase:  getEnv("MONGO_DB", "skillswap"),
		MongoPoolSize:  getEnvInt("MONGO_POOL_SIZE", 100),
		MongoMaxRetry:  getEnvInt("MONGO_MAX_RETRY", 3),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		RedisDB:        getEnvInt("REDIS_DB", 0),
		JWTSecret:      getEnv("JWT_SECRET", "dev-secret"),
		GoogleClientID: os.Getenv("GOOGLE_CLIENT_ID"),
		NodeID:         int64(getEnvInt("NODE_ID", 1)),
	}

	if cfg.Env == "production" && cfg.JWTSecret == "dev-secret" {
		panic("JWT_SECRET is required in production")
	}
	return cfg
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
