package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

type Config struct {
	Env        string
	ServerPort string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	DBSSLMode  string

	AutoMigrate bool

	JWTSecret  string
	SessionTTL time.Duration

	InviteSecret string
	InviteTTL    time.Duration

	// FrontendURL is used for invitation links and as the CORS allow list
	// (comma separated).
	FrontendURL string

	// RedisURL is optional. Without it invitations are not single use.
	RedisURL string

	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// Load reads the environment, optionally seeded from envFile.
func Load(envFile string, logger *zap.Logger) *Config {
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil {
		logger.Warn("No .env file found, using system environment variables", zap.String("file", envFile))
	} else {
		logger.Info("ENV file loaded", zap.String("file", envFile))
	}

	jwtSecret := getEnv("JWT_SECRET", "supersecretkey")

	return &Config{
		Env:          getEnv("ENV", "dev"),
		ServerPort:   getEnv("SERVER_PORT", "8080"),
		DBHost:       getEnv("DB_HOST", "localhost"),
		DBPort:       getEnv("DB_PORT", "5432"),
		DBUser:       getEnv("DB_USER", "workflo"),
		DBPassword:   getEnv("DB_PASSWORD", "workflo"),
		DBName:       getEnv("DB_NAME", "workflo"),
		DBSSLMode:    getEnv("DB_SSLMODE", "disable"),
		AutoMigrate:  getEnvAsBool("AUTO_MIGRATE", true),
		JWTSecret:    jwtSecret,
		SessionTTL:   getEnvAsDuration("SESSION_TTL", 24*time.Hour),
		InviteSecret: getEnv("INVITE_SECRET", jwtSecret),
		InviteTTL:    getEnvAsDuration("INVITE_TTL", 24*time.Hour),
		FrontendURL:  getEnv("FRONTEND_URL", "http://localhost:3000"),
		RedisURL:     getEnv("REDIS_URL", ""),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvAsInt("SMTP_PORT", 587),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", "no-reply@workflo.local"),
	}
}

func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName, c.DBSSLMode,
	)
}

// MigrateURL is the golang-migrate URL for the pgx/v5 driver.
func (c *Config) MigrateURL() string {
	u := url.URL{
		Scheme:   "pgx5",
		User:     url.UserPassword(c.DBUser, c.DBPassword),
		Host:     c.DBHost + ":" + c.DBPort,
		Path:     "/" + c.DBName,
		RawQuery: "sslmode=" + url.QueryEscape(c.DBSSLMode),
	}
	return u.String()
}

// AllowedOrigins splits FrontendURL into CORS origins.
func (c *Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.FrontendURL, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// PublicURL is the first configured frontend origin.
func (c *Config) PublicURL() string {
	if origins := c.AllowedOrigins(); len(origins) > 0 {
		return strings.TrimRight(origins[0], "/")
	}
	return ""
}

func (c *Config) IsDev() bool {
	return c.Env == "dev"
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvAsInt(key string, defaultVal int) int {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.Atoi(value); err == nil {
			return v
		}
	}
	return defaultVal
}

func getEnvAsBool(key string, defaultVal bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := strconv.ParseBool(value); err == nil {
			return v
		}
	}
	return defaultVal
}

func getEnvAsDuration(key string, defaultVal time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if v, err := time.ParseDuration(value); err == nil {
			return v
		}
	}
	return defaultVal
}
