// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gagliardetto/solana-go"
	"github.com/joho/godotenv"
)

const defaultJWTSecret = "your-secret-key-change-in-production"

type Config struct {
	Environment string
	Server      ServerConfig
	Database    DatabaseConfig
	JWT         JWTConfig
	Redis       RedisConfig
	AWS         AWSConfig
	Payment     PaymentConfig
	Admin       AdminConfig
	Static      StaticConfig
	I18n        I18nConfig
	Log         LogConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Port         string
	Host         string
	BaseURL      string
	ReadTimeout  int
	WriteTimeout int
	IdleTimeout  int
}

type DatabaseConfig struct {
	Driver       string // postgres or sqlite
	Host         string
	Port         string
	User         string
	Password     string
	Database     string
	SSLMode      string
	SQLitePath   string
	MaxOpenConns int
	MaxIdleConns int
	MaxLifetime  int
	LogLevel     string
	SeedLessons  bool
}

type JWTConfig struct {
	SecretKey      string
	AccessPassTTL  int // in hours
	AccessPassName string
}

type RedisConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	TTL      int // in seconds
}

type AWSConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
	S3Bucket        string
	CloudFrontURL   string
	PresignTTL      int // in minutes
}

// PaymentConfig describes what a lesson challenge asks the client to pay.
type PaymentConfig struct {
	RecipientAddress  string
	AssetSymbol       string
	AssetMint         string
	AssetDecimals     int
	Network           string
	AmountTolerance   float64
	MinLessonPrice    float64
	MaxLessonPrice    float64
	StrictSignature   bool
	MaxTimeoutSeconds int
}

type AdminConfig struct {
	APIKeyHash string
}

type StaticConfig struct {
	Dir        string
	UploadsDir string
}

type I18nConfig struct {
	DefaultLocale string
}

type LogConfig struct {
	Level  string
	Format string
}

type RateLimitConfig struct {
	Enabled         bool
	GeneralPerSec   float64
	GeneralBurst    int
	PaymentsPerMin  float64
	PaymentsBurst   int
	CleanupInterval int // in seconds
}

func Load() (*Config, error) {
	// Load .env file if it exists
	godotenv.Load()

	environment := getEnv("ENVIRONMENT", "development")

	config := &Config{
		Environment: environment,
		Server: ServerConfig{
			Port:         getEnv("PORT", getEnv("SERVER_PORT", "3000")),
			Host:         getEnv("SERVER_HOST", "localhost"),
			BaseURL:      getEnv("SERVER_BASE_URL", "http://localhost:3000"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
			IdleTimeout:  getEnvAsInt("SERVER_IDLE_TIMEOUT", 60),
		},
		Database: DatabaseConfig{
			Driver:       getEnv("DB_DRIVER", "sqlite"),
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "5432"),
			User:         getEnv("DB_USER", "postgres"),
			Password:     getEnv("DB_PASSWORD", ""),
			Database:     getEnv("DB_NAME", "uni402"),
			SSLMode:      getEnv("DB_SSL_MODE", "disable"),
			SQLitePath:   getEnv("DB_SQLITE_PATH", "file:uni402?mode=memory&cache=shared"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 25),
			MaxLifetime:  getEnvAsInt("DB_MAX_LIFETIME", 300),
			LogLevel:     getEnv("DB_LOG_LEVEL", "silent"),
			SeedLessons:  getEnvAsBool("SEED_LESSONS", environment == "development"),
		},
		JWT: JWTConfig{
			SecretKey:      getEnv("JWT_SECRET", defaultJWTSecret),
			AccessPassTTL:  getEnvAsInt("ACCESS_PASS_TTL", 720), // 30 days
			AccessPassName: getEnv("ACCESS_PASS_ISSUER", "uni402"),
		},
		Redis: RedisConfig{
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      getEnvAsInt("REDIS_ACCESS_TTL", 600),
		},
		AWS: AWSConfig{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
			SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
			S3Bucket:        getEnv("AWS_S3_BUCKET", "uni402-lessons"),
			CloudFrontURL:   getEnv("AWS_CLOUDFRONT_URL", ""),
			PresignTTL:      getEnvAsInt("AWS_PRESIGN_TTL", 15),
		},
		Payment: PaymentConfig{
			RecipientAddress:  getEnv("CREATOR_WALLET", "Hx402UniPayCreatorAddress123456789"),
			AssetSymbol:       getEnv("PAYMENT_TOKEN", "USDC"),
			AssetMint:         getEnv("USDC_MINT", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v"),
			AssetDecimals:     getEnvAsInt("PAYMENT_TOKEN_DECIMALS", 6),
			Network:           getEnv("PAYMENT_NETWORK", "solana"),
			AmountTolerance:   getEnvAsFloat("PAYMENT_AMOUNT_TOLERANCE", 0.001),
			MinLessonPrice:    getEnvAsFloat("LESSON_MIN_PRICE", 0.01),
			MaxLessonPrice:    getEnvAsFloat("LESSON_MAX_PRICE", 0.05),
			StrictSignature:   getEnvAsBool("PAYMENT_STRICT_SIGNATURE", false),
			MaxTimeoutSeconds: getEnvAsInt("PAYMENT_MAX_TIMEOUT_SECONDS", 300),
		},
		Admin: AdminConfig{
			APIKeyHash: getEnv("ADMIN_API_KEY_HASH", ""),
		},
		Static: StaticConfig{
			Dir:        getEnv("STATIC_DIR", "./web"),
			UploadsDir: getEnv("UPLOADS_DIR", "./uploads"),
		},
		I18n: I18nConfig{
			DefaultLocale: getEnv("DEFAULT_LOCALE", "en"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", ""),
		},
		RateLimit: RateLimitConfig{
			Enabled:         getEnvAsBool("RATE_LIMIT_ENABLED", true),
			GeneralPerSec:   getEnvAsFloat("RATE_LIMIT_GENERAL_PER_SEC", 10),
			GeneralBurst:    getEnvAsInt("RATE_LIMIT_GENERAL_BURST", 20),
			PaymentsPerMin:  getEnvAsFloat("RATE_LIMIT_PAYMENTS_PER_MIN", 30),
			PaymentsBurst:   getEnvAsInt("RATE_LIMIT_PAYMENTS_BURST", 10),
			CleanupInterval: getEnvAsInt("RATE_LIMIT_CLEANUP_INTERVAL", 60),
		},
	}

	return config, config.Validate()
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func (c *Config) Validate() error {
	if c.JWT.SecretKey == defaultJWTSecret && c.IsProduction() {
		return fmt.Errorf("JWT secret key must be changed in production")
	}

	switch c.Database.Driver {
	case "postgres":
		if c.Database.Password == "" && c.IsProduction() {
			return fmt.Errorf("database password is required in production")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}

	if c.Payment.MinLessonPrice <= 0 || c.Payment.MinLessonPrice > c.Payment.MaxLessonPrice {
		return fmt.Errorf("invalid lesson price range [%v, %v]", c.Payment.MinLessonPrice, c.Payment.MaxLessonPrice)
	}

	if c.Payment.AmountTolerance < 0 {
		return fmt.Errorf("payment amount tolerance must not be negative")
	}

	if c.Payment.RecipientAddress == "" {
		return fmt.Errorf("recipient wallet address is required")
	}

	// The demo recipient is not a real account, so only production insists on decodable keys.
	if c.IsProduction() {
		if _, err := solana.PublicKeyFromBase58(c.Payment.RecipientAddress); err != nil {
			return fmt.Errorf("invalid recipient wallet address: %w", err)
		}
		if _, err := solana.PublicKeyFromBase58(c.Payment.AssetMint); err != nil {
			return fmt.Errorf("invalid asset mint address: %w", err)
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(strings.ToLower(value)); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
