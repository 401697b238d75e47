package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds application configuration.
type Config struct {
	AppName     string
	AppVersion  string
	Environment string

	OTLPEndpoint string

	DBType            string
	DBHost            string
	DBPort            string
	DBName            string
	DBUser            string
	DBPassword        string
	DBSSLMode         string
	DBMaxIdleConn     int
	DBMaxOpenConn     int
	DBConnMaxLifetime int
	DBConnMaxIdleTime int

	HTTPAddr string

	Vision    VisionConfig
	Media     MediaConfig
	RateLimit RateLimitConfig
	Bootstrap BootstrapConfig
	Email     EmailConfig
}

// VisionConfig configures the image similarity scorer.
type VisionConfig struct {
	// Provider selects the scorer implementation: "genai" (remote
	// vision model) or "histogram" (offline, lower precision).
	Provider string
	// ApprovalThreshold is the minimum similarity for automatic approval.
	ApprovalThreshold float64
	APIBaseURL        string
	APIKey            string
	Model             string
	TimeoutSeconds    int
}

// MediaConfig configures where submission media files live.
type MediaConfig struct {
	RootDir string
}

// RateLimitConfig configures the redis-backed submission limiter.
type RateLimitConfig struct {
	Enabled       bool
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SubmitRate  float64
	SubmitBurst int
}

// EmailConfig configures the SMTP escalation channel. An empty host
// disables outbound mail.
type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
}

// BootstrapConfig controls startup seeding for local/self-hosted setups.
type BootstrapConfig struct {
	EnsureDefaultAdmin bool
	DefaultPoolGoal    int64
}

// Load loads configuration from environment variables and .env file.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		AppName:     getenv("APP_SERVICE", "moim"),
		AppVersion:  getenv("APP_VERSION", "0.1.0"),
		Environment: getenv("ENVIRONMENT", "development"),

		OTLPEndpoint: getenv("OTLP_ENDPOINT", "localhost:4317"),

		DBType:            getenv("DATABASE_TYPE", "postgres"),
		DBHost:            getenv("DATABASE_HOST", "localhost"),
		DBPort:            getenv("DATABASE_PORT", "5432"),
		DBName:            getenv("DATABASE_NAME", "moim"),
		DBUser:            getenv("DATABASE_USER", "postgres"),
		DBPassword:        getenv("DATABASE_PASSWORD", "postgres"),
		DBSSLMode:         getenv("DATABASE_SSLMODE", "disable"),
		DBMaxIdleConn:     getenvInt("DATABASE_MAX_IDLE_CONN", 5),
		DBMaxOpenConn:     getenvInt("DATABASE_MAX_OPEN_CONN", 25),
		DBConnMaxLifetime: getenvInt("DATABASE_CONN_MAX_LIFETIME", 1800),
		DBConnMaxIdleTime: getenvInt("DATABASE_CONN_MAX_IDLE_TIME", 300),

		HTTPAddr: getenv("HTTP_ADDR", ":8080"),

		Vision: VisionConfig{
			Provider:          strings.ToLower(getenv("VISION_PROVIDER", "genai")),
			ApprovalThreshold: getenvFloat("AI_APPROVAL_THRESHOLD", 0.8),
			APIBaseURL:        getenv("GENAI_API_URL", "https://generativelanguage.googleapis.com/v1beta"),
			APIKey:            strings.TrimSpace(getenv("GENAI_API_KEY", "")),
			Model:             getenv("GENAI_MODEL", "gemini-2.5-pro"),
			TimeoutSeconds:    getenvInt("GENAI_TIMEOUT_SECONDS", 15),
		},

		Media: MediaConfig{
			RootDir: getenv("MEDIA_ROOT", "./media"),
		},

		RateLimit: RateLimitConfig{
			Enabled:       getenvBool("RATE_LIMIT_ENABLED", false),
			RedisAddr:     strings.TrimSpace(getenv("RATE_LIMIT_REDIS_ADDR", "")),
			RedisPassword: getenv("RATE_LIMIT_REDIS_PASSWORD", ""),
			RedisDB:       getenvInt("RATE_LIMIT_REDIS_DB", 0),
			SubmitRate:    getenvFloat("RATE_LIMIT_SUBMIT_RATE", 1),
			SubmitBurst:   getenvInt("RATE_LIMIT_SUBMIT_BURST", 5),
		},

		Bootstrap: BootstrapConfig{
			EnsureDefaultAdmin: getenvBool("BOOTSTRAP_DEFAULT_ADMIN", true),
			DefaultPoolGoal:    getenvInt64("BOOTSTRAP_DEFAULT_POOL_GOAL", 0),
		},

		Email: EmailConfig{
			SMTPHost:     strings.TrimSpace(getenv("SMTP_HOST", "")),
			SMTPPort:     getenvInt("SMTP_PORT", 587),
			SMTPUsername: getenv("SMTP_USERNAME", ""),
			SMTPPassword: getenv("SMTP_PASSWORD", ""),
			SMTPFrom:     getenv("SMTP_FROM", "no-reply@moim.local"),
		},
	}
}

func getenv(key, def string) string {
	if value := os.Getenv(key); strings.TrimSpace(value) != "" {
		return value
	}
	return def
}

func getenvBool(key string, def bool) bool {
	value := strings.ToLower(strings.TrimSpace(os.Getenv(key)))
	if value == "" {
		return def
	}
	switch value {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return def
	}
}

func getenvInt(key string, def int) int {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return def
	}
	return parsed
}

func getenvInt64(key string, def int64) int64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def
	}
	return parsed
}

func getenvFloat(key string, def float64) float64 {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return def
	}
	return parsed
}
