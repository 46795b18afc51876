package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "change-me-in-production"

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Auth      AuthConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	Qdrant    QdrantConfig
	Storage   StorageConfig
	Stripe    StripeConfig
	Events    EventsConfig
	Logger    LoggerConfig
}

type ServerConfig struct {
	Port       string `validate:"required"`
	Env        string `validate:"required,oneof=development production test"`
	BaseURL    string `validate:"required,url"`
	ChromePath string
}

type DatabaseConfig struct {
	Driver     string `validate:"required,oneof=postgres sqlite"`
	Host       string
	Port       string
	User       string
	Password   string
	DBName     string
	SQLitePath string
}

type AuthConfig struct {
	JWTSecret       string        `validate:"required,min=16"`
	AccessTokenTTL  time.Duration `validate:"required"`
	RefreshTokenTTL time.Duration `validate:"required"`
}

type AIConfig struct {
	OpenAIAPIKey       string
	OpenAIBaseURL      string
	OpenRouterAPIKey   string
	AnthropicAPIKey    string
	GeminiAPIKey       string
	GeminiModel        string
	GeminiEmbedModel   string
	SiteName           string
	StructuredRetries  int `validate:"gte=0,lte=5"`
	RequestTimeout     time.Duration
	DefaultTemperature float32
}

type RateLimitConfig struct {
	RequestsPerMinute int `validate:"gte=1"`
	Burst             int `validate:"gte=1"`
	LoginPerMinute    int `validate:"gte=1"`
}

type QdrantConfig struct {
	URL        string
	APIKey     string
	Collection string
}

type StorageConfig struct {
	Driver      string `validate:"required,oneof=local s3"`
	UploadPath  string
	MaxFileSize int64 `validate:"gt=0"`
	S3Bucket    string
	S3Endpoint  string
	S3Region    string
	S3AccessKey string
	S3SecretKey string
}

type StripeConfig struct {
	SecretKey     string
	WebhookSecret string
	ProPriceID    string
	SuccessURL    string
	CancelURL     string
	PortalReturn  string
}

type EventsConfig struct {
	RabbitMQURL string
	Exchange    string
}

type LoggerConfig struct {
	Level      string `validate:"required,oneof=debug info warning error"`
	Type       string `validate:"required,oneof=console file"`
	FilePath   string
	MaxSize    int
	MaxBackups int
	MaxAge     int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found. Using default values.")
	}

	port := getEnv("PORT", "3021")

	return &Config{
		Server: ServerConfig{
			Port:       port,
			Env:        getEnv("ENV", "development"),
			BaseURL:    getEnv("SITE_URL", "http://localhost:"+port),
			ChromePath: getEnv("CHROME_PATH", ""),
		},
		Database: DatabaseConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", "postgres"),
			DBName:     getEnv("DB_NAME", "kryptohire"),
			SQLitePath: getEnv("SQLITE_PATH", "kryptohire.db"),
		},
		Auth: AuthConfig{
			JWTSecret:       getEnv("JWT_SECRET", defaultJWTSecret),
			AccessTokenTTL:  getEnvAsDuration("ACCESS_TOKEN_TTL", "1h"),
			RefreshTokenTTL: getEnvAsDuration("REFRESH_TOKEN_TTL", "720h"),
		},
		AI: AIConfig{
			OpenAIAPIKey:       getEnv("OPENAI_API_KEY", ""),
			OpenAIBaseURL:      getEnv("OPENAI_BASE_URL", ""),
			OpenRouterAPIKey:   getEnv("OPENROUTER_API_KEY", ""),
			AnthropicAPIKey:    getEnv("ANTHROPIC_API_KEY", ""),
			GeminiAPIKey:       getEnv("GEMINI_API_KEY", ""),
			GeminiModel:        getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
			GeminiEmbedModel:   getEnv("GEMINI_EMBED_MODEL", "text-embedding-004"),
			SiteName:           getEnv("AI_SITE_NAME", "Kryptohire"),
			StructuredRetries:  getEnvAsInt("AI_MAX_RETRIES", 2),
			RequestTimeout:     getEnvAsDuration("AI_REQUEST_TIMEOUT", "120s"),
			DefaultTemperature: float32(getEnvAsFloat("AI_DEFAULT_TEMPERATURE", 0.5)),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: getEnvAsInt("AI_RATE_LIMIT_PER_MINUTE", 10),
			Burst:             getEnvAsInt("AI_RATE_LIMIT_BURST", 5),
			LoginPerMinute:    getEnvAsInt("LOGIN_RATE_LIMIT_PER_MINUTE", 20),
		},
		Qdrant: QdrantConfig{
			URL:        getEnv("QDRANT_URL", ""),
			APIKey:     getEnv("QDRANT_API_KEY", ""),
			Collection: getEnv("QDRANT_COLLECTION", "kryptohire_resumes"),
		},
		Storage: StorageConfig{
			Driver:      getEnv("STORAGE_DRIVER", "local"),
			UploadPath:  getEnv("UPLOAD_PATH", "./uploads"),
			MaxFileSize: getEnvAsInt64("MAX_FILE_SIZE", 10485760),
			S3Bucket:    getEnv("S3_BUCKET", ""),
			S3Endpoint:  getEnv("S3_ENDPOINT", ""),
			S3Region:    getEnv("S3_REGION", "auto"),
			S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("S3_SECRET_KEY", ""),
		},
		Stripe: StripeConfig{
			SecretKey:     getEnv("STRIPE_SECRET_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			ProPriceID:    getEnv("STRIPE_PRO_PRICE_ID", ""),
			SuccessURL:    getEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/subscription/checkout/success"),
			CancelURL:     getEnv("STRIPE_CANCEL_URL", "http://localhost:3000/subscription"),
			PortalReturn:  getEnv("STRIPE_PORTAL_RETURN_URL", "http://localhost:3000/settings"),
		},
		Events: EventsConfig{
			RabbitMQURL: getEnv("RABBITMQ_URL", ""),
			Exchange:    getEnv("RABBITMQ_EXCHANGE", "optimization_updates"),
		},
		Logger: LoggerConfig{
			Level:      getEnv("LOG_LEVEL", "info"),
			Type:       getEnv("LOG_TYPE", "console"),
			FilePath:   getEnv("LOG_FILE_PATH", "./logs/kryptohire.log"),
			MaxSize:    getEnvAsInt("LOG_MAX_SIZE_MB", 10),
			MaxBackups: getEnvAsInt("LOG_MAX_BACKUPS", 3),
			MaxAge:     getEnvAsInt("LOG_MAX_AGE_DAYS", 28),
		},
	}
}

// Validate checks struct constraints plus the rules that depend on more than one field.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Server.Env == "production" && c.Auth.JWTSecret == defaultJWTSecret {
		return fmt.Errorf("JWT_SECRET must be set in production")
	}

	if c.Storage.Driver == "s3" && c.Storage.S3Bucket == "" {
		return fmt.Errorf("S3_BUCKET is required when STORAGE_DRIVER=s3")
	}

	if c.Logger.Type == "file" && c.Logger.FilePath == "" {
		return fmt.Errorf("LOG_FILE_PATH is required for the file logger")
	}

	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// GetAdminDSN points at the maintenance database, used to create the application database.
func (c *Config) GetAdminDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=postgres sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
	)
}

// UsesCustomOpenAIProxy reports whether OPENAI_BASE_URL points somewhere other than api.openai.com.
func (c AIConfig) UsesCustomOpenAIProxy() bool {
	return c.OpenAIBaseURL != "" && !strings.Contains(c.OpenAIBaseURL, "api.openai.com")
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsInt64(key string, defaultValue int64) int64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseInt(valueStr, 10, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	valueStr := getEnv(key, "")
	if value, err := strconv.ParseFloat(valueStr, 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := getEnv(key, defaultValue)
	if duration, err := time.ParseDuration(valueStr); err == nil {
		return duration
	}
	duration, _ := time.ParseDuration(defaultValue)
	return duration
}
