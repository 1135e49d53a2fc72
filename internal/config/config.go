package config

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	aws_pkg "github.com/QJQnova/Eps-sub001/internal/aws"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// Config holds all environment-driven settings shared by the binaries.
type Config struct {
	Env  string
	Port string

	DatabaseURL string
	RedisURL    string

	JWTSecret     string
	AdminUsername string

	AnthropicAPIKey string
	AnthropicModel  string

	BulkStorageDir  string
	ImportBatchSize int
	CacheTTL        time.Duration

	CORSAllowedOrigins []string
	RateLimitRPS       float64
	RateLimitBurst     int

	AWS                 aws_pkg.Settings
	S3Bucket            string
	S3Prefix            string
	S3PublicURL         string
	OrderEventsTopicARN string
	ImportEventsTopic   string
	CloudWatchEnabled   bool
	CloudWatchLogGroup  string
	CloudWatchNamespace string
	UseSecretsManager   bool
}

// Load reads .env (when present) and the process environment. Required
// values are checked by the binaries through Require*, because the scraper
// needs a different subset than the server.
func Load() *Config {
	_ = godotenv.Load()

	cfg := &Config{
		Env:  getEnv("APP_ENV", "development"),
		Port: getEnv("PORT", "8080"),

		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    getEnv("REDIS_URL", "redis://localhost:6379"),

		JWTSecret:     os.Getenv("JWT_SECRET"),
		AdminUsername: os.Getenv("ADMIN_USERNAME"),

		AnthropicAPIKey: os.Getenv("ANTHROPIC_API_KEY"),
		AnthropicModel:  getEnv("ANTHROPIC_MODEL", "claude-sonnet-4-20250514"),

		BulkStorageDir:  getEnv("BULK_STORAGE_DIR", "./data/bulk_imports"),
		ImportBatchSize: getEnvInt("IMPORT_BATCH_SIZE", 500),
		CacheTTL:        getEnvDuration("CACHE_TTL", 10*time.Minute),

		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173")),
		RateLimitRPS:       getEnvFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:     getEnvInt("RATE_LIMIT_BURST", 40),

		AWS: aws_pkg.Settings{
			Region:          getEnv("AWS_REGION", "us-east-1"),
			Endpoint:        os.Getenv("AWS_ENDPOINT"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		S3Bucket:            os.Getenv("AWS_S3_BUCKET"),
		S3Prefix:            getEnv("AWS_S3_PREFIX", "products/"),
		S3PublicURL:         os.Getenv("AWS_S3_PUBLIC_URL"),
		OrderEventsTopicARN: os.Getenv("ORDER_EVENTS_TOPIC_ARN"),
		ImportEventsTopic:   os.Getenv("IMPORT_EVENTS_TOPIC_ARN"),
		CloudWatchEnabled:   os.Getenv("CLOUDWATCH_ENABLED") == "true",
		CloudWatchLogGroup:  os.Getenv("CLOUDWATCH_LOG_GROUP"),
		CloudWatchNamespace: os.Getenv("CLOUDWATCH_NAMESPACE"),
		UseSecretsManager:   os.Getenv("AWS_USE_SECRETS") == "true",
	}

	if cfg.ImportBatchSize <= 0 {
		cfg.ImportBatchSize = 500
	}
	return cfg
}

// ApplySecrets overrides credentials from AWS Secrets Manager when
// AWS_USE_SECRETS=true. Missing secrets keep the environment values.
func (c *Config) ApplySecrets(ctx context.Context) {
	if !c.UseSecretsManager {
		return
	}
	awsCfg, err := aws_pkg.LoadAWSConfig(ctx, c.AWS)
	if err != nil {
		zap.L().Warn("Secrets Manager unavailable, using environment", zap.Error(err))
		return
	}
	applied := aws_pkg.NewCredentialStore(awsCfg).Apply(ctx, map[string]*string{
		"eps/DATABASE_URL":      &c.DatabaseURL,
		"eps/JWT_SECRET":        &c.JWTSecret,
		"eps/ANTHROPIC_API_KEY": &c.AnthropicAPIKey,
	})
	zap.L().Info("Credentials loaded from Secrets Manager", zap.Strings("secrets", applied))
}

// LogWriter returns a CloudWatch Logs writer for binary when
// CLOUDWATCH_ENABLED=true, or nil. Setup failures are reported on stderr and
// leave logging on the console.
func (c *Config) LogWriter(ctx context.Context, binary string) io.Writer {
	if !c.CloudWatchEnabled {
		return nil
	}
	awsCfg, err := aws_pkg.LoadAWSConfig(ctx, c.AWS)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CloudWatch logging disabled: %v\n", err)
		return nil
	}
	w, err := aws_pkg.NewCloudWatchLogsWriter(ctx, awsCfg, c.CloudWatchLogGroup, binary)
	if err != nil {
		fmt.Fprintf(os.Stderr, "CloudWatch logging disabled: %v\n", err)
		return nil
	}
	return w
}

// RequireDatabase fails when DATABASE_URL is not set.
func (c *Config) RequireDatabase() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}
	return nil
}

// RequireServer validates what the HTTP server cannot start without.
func (c *Config) RequireServer() error {
	if err := c.RequireDatabase(); err != nil {
		return err
	}
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v, err := strconv.Atoi(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if v, err := strconv.ParseFloat(os.Getenv(key), 64); err == nil {
		return v
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, err := time.ParseDuration(os.Getenv(key)); err == nil {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
