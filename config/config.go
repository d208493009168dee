package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"civicfix-be/models"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Port       string
	Env        string
	CORSOrigin string
	LogFile    string

	StoreDriver string
	MongoURI    string
	MongoDB     string

	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	ComplaintLimitPrefix string
	ComplaintDailyLimit  int

	JWTSecret      string
	TokenTTL       time.Duration
	BootstrapAdmin models.Principal

	TrendsTimezone string

	Mail MailConfig
}

// MailConfig selects and configures the notification transport.
type MailConfig struct {
	Transport      string
	Host           string
	Port           int
	User           string
	Pass           string
	FromName       string
	ReplyTo        string
	SkipTLSVerify  bool
	Timeout        time.Duration
	AttemptTimeout time.Duration
	MaxConnections int
	RateLimit      int
}

// Load builds Config from environment with sensible defaults.
func Load() *Config {
	adminEmail := getEnv("ADMIN_EMAIL", "admin@civicfix.com")
	return &Config{
		Port:       getEnv("PORT", "5000"),
		Env:        getEnv("GO_ENV", "development"),
		CORSOrigin: getEnv("CORS_ORIGIN", "https://civicfix-frontend-pearl.vercel.app"),
		LogFile:    os.Getenv("LOG_FILE"),

		StoreDriver: strings.ToLower(getEnv("STORE_DRIVER", "mongo")),
		MongoURI:    os.Getenv("MONGODB_URI"),
		MongoDB:     getEnv("MONGODB_DATABASE", "civicfix"),

		RedisAddr:            os.Getenv("REDIS_ADDRESS"),
		RedisPassword:        os.Getenv("REDIS_PASSWORD"),
		RedisDB:              getEnvInt("REDIS_DB", 0),
		ComplaintLimitPrefix: getEnv("REDIS_QUEUE_FOR_COMPLAINT_LIMIT", "complaint_limit"),
		ComplaintDailyLimit:  getEnvInt("COMPLAINT_DAILY_LIMIT", 10),

		JWTSecret: os.Getenv("JWT_SECRET"),
		TokenTTL:  getEnvDuration("TOKEN_TTL", 7*24*time.Hour),
		BootstrapAdmin: models.Principal{
			ID:    getEnv("ADMIN_ID", "admin-id"),
			Name:  getEnv("ADMIN_NAME", "Admin"),
			Email: adminEmail,
			Role:  models.RoleAdmin,
		},

		TrendsTimezone: getEnv("TRENDS_TIMEZONE", "UTC"),

		Mail: MailConfig{
			Transport:      strings.ToLower(getEnv("MAIL_TRANSPORT", "smtp")),
			Host:           getEnv("SMTP_HOST", "smtp.gmail.com"),
			Port:           getEnvInt("SMTP_PORT", 587),
			User:           os.Getenv("EMAIL_USER"),
			Pass:           os.Getenv("EMAIL_PASS"),
			FromName:       getEnv("MAIL_FROM_NAME", "CivicFix"),
			ReplyTo:        adminEmail,
			SkipTLSVerify:  getEnvBool("SMTP_SKIP_TLS_VERIFY", false),
			Timeout:        getEnvDuration("SMTP_TIMEOUT", 10*time.Second),
			AttemptTimeout: getEnvDuration("MAIL_ATTEMPT_TIMEOUT", 15*time.Second),
			MaxConnections: getEnvInt("MAIL_MAX_CONNECTIONS", 1),
			RateLimit:      getEnvInt("MAIL_RATE_LIMIT", 5),
		},
	}
}

// IsProduction reports whether GO_ENV is production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Location returns the timezone used to bucket complaint trends, UTC when unknown.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.TrendsTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if parsed, err := strconv.ParseBool(v); err == nil {
			return parsed
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			return parsed
		}
	}
	return def
}
