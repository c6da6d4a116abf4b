package config

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env   string
	Port  int
	DBURL string

	JWTSecret   string
	TokenTTL    time.Duration

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ImageDir      string
	ModelDir      string
	ImageMaxBytes int64
	ModelMaxBytes int64

	AuthRateLimit  int
	AuthRateWindow time.Duration

	AllowedOrigins []string

	OTLPEndpoint string

	SeedUserName     string
	SeedUserEmail    string
	SeedUserPassword string
}

func Load() Config {
	// .env is a dev convenience; absence is fine.
	_ = godotenv.Load()

	return Config{
		Env:   getEnv("APP_ENV", "dev"),
		Port:  getEnvInt("PORT", 8080),
		DBURL: buildDBURL(),

		JWTSecret: getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:  time.Duration(getEnvInt("TOKEN_TTL_HOURS", 48)) * time.Hour,

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),

		ImageDir:      getEnv("IMAGE_DIR", "images"),
		ModelDir:      getEnv("MODEL_DIR", "models"),
		ImageMaxBytes: int64(getEnvInt("IMAGE_MAX_BYTES", 1_000_000)),
		ModelMaxBytes: int64(getEnvInt("MODEL_MAX_BYTES", 100_000_000)),

		AuthRateLimit:  getEnvInt("AUTH_RATE_LIMIT", 10),
		AuthRateWindow: time.Duration(getEnvInt("AUTH_RATE_WINDOW_SECONDS", 60)) * time.Second,

		AllowedOrigins: splitEnv("CORS_ORIGINS", "http://localhost:3000"),

		OTLPEndpoint: getEnv("OTLP_ENDPOINT", ""),

		SeedUserName:     getEnv("SEED_USER_NAME", "dev"),
		SeedUserEmail:    getEnv("SEED_USER_EMAIL", ""),
		SeedUserPassword: getEnv("SEED_USER_PASSWORD", ""),
	}
}

func buildDBURL() string {
	if url := os.Getenv("DB_URL"); url != "" {
		return url
	}

	host := getEnv("DB_HOST", "127.0.0.1")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "planthub")
	pass := getEnv("DB_PASSWORD", "planthub")
	name := getEnv("DB_NAME", "planthub")
	ssl := getEnv("DB_SSLMODE", "disable")

	return "postgres://" + user + ":" + pass + "@" + host + ":" + port + "/" + name + "?sslmode=" + ssl
}

func WithTimeout(duration time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), duration)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		num, err := strconv.Atoi(v)

		if err != nil {
			fmt.Println(err)
			return fallback
		}

		return num
	}
	return fallback
}

func splitEnv(key, fallback string) []string {
	raw := getEnv(key, fallback)

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))

	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}

	return out
}
