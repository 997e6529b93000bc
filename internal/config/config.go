// Package config carga la configuración desde config.yml y variables de entorno.
package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const defaultJWTSecret = "dev-secret-change-me"

// Drivers soportados por componente.
const (
	StorageMemory   = "memory"
	StoragePostgres = "postgres"
	StorageDynamo   = "dynamodb"

	BlobMemory = "memory"
	BlobS3     = "s3"

	FeedMemory = "memory"
	FeedRedis  = "redis"

	AuthDev    = "dev"
	AuthJWT    = "jwt"
	AuthRemote = "remote"
)

type Config struct {
	Port      string `mapstructure:"PORT"`
	Env       string `mapstructure:"APP_ENV"`
	AppName   string `mapstructure:"APP_NAME"`
	LogLevel  string `mapstructure:"LOG_LEVEL"`
	LogFormat string `mapstructure:"LOG_FORMAT"`

	AllowedOrigins string `mapstructure:"ALLOWED_ORIGINS"`

	StorageDriver     string `mapstructure:"STORAGE_DRIVER"`
	DBDSN             string `mapstructure:"DB_DSN"`
	DynamoTablePrefix string `mapstructure:"DYNAMO_TABLE_PREFIX"`

	AWSRegion   string `mapstructure:"AWS_REGION"`
	AWSEndpoint string `mapstructure:"AWS_ENDPOINT_URL"`

	BlobDriver  string `mapstructure:"BLOB_DRIVER"`
	S3Bucket    string `mapstructure:"S3_BUCKET_NAME"`
	MaxUploadMB int64  `mapstructure:"MAX_UPLOAD_MB"`

	FeedDriver string `mapstructure:"FEED_DRIVER"`
	RedisURL   string `mapstructure:"REDIS_URL"`

	AuthMode      string `mapstructure:"AUTH_MODE"`
	JWTSecret     string `mapstructure:"JWT_SECRET"`
	IdPBaseURL    string `mapstructure:"IDP_BASE_URL"`
	IdPAPIKey     string `mapstructure:"IDP_API_KEY"`
	AdminUserIDs  string `mapstructure:"ADMIN_USER_IDS"`
	GeminiAPIKey  string `mapstructure:"GEMINI_API_KEY"`
	GeminiModel   string `mapstructure:"GEMINI_MODEL"`
	ChatbotMaxLen int    `mapstructure:"CHATBOT_MAX_QUESTION_LEN"`
}

// Load lee config.yml (opcional, en . o ..) y pisa con env vars.
func Load() (*Config, error) {
	v := viper.New()
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	v.SetConfigName("config")
	v.SetConfigType("yml")
	return LoadWith(v)
}

// LoadWith permite inyectar un *viper.Viper (tests).
func LoadWith(v *viper.Viper) (*Config, error) {
	v.AutomaticEnv()

	// El archivo es opcional; en contenedores todo llega por env.
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	setDefaults(v)

	var cfg Config
	// AutomaticEnv solo resuelve keys conocidas, así que cada campo necesita default o binding.
	for _, key := range keys() {
		_ = v.BindEnv(key)
	}
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "petora-connect")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:9002")
	v.SetDefault("STORAGE_DRIVER", StorageMemory)
	v.SetDefault("DB_DSN", "")
	v.SetDefault("DYNAMO_TABLE_PREFIX", "petora_")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.SetDefault("AWS_ENDPOINT_URL", "")
	v.SetDefault("BLOB_DRIVER", BlobMemory)
	v.SetDefault("S3_BUCKET_NAME", "")
	v.SetDefault("MAX_UPLOAD_MB", 5)
	v.SetDefault("FEED_DRIVER", FeedMemory)
	v.SetDefault("REDIS_URL", "localhost:6379")
	v.SetDefault("AUTH_MODE", AuthDev)
	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("IDP_BASE_URL", "")
	v.SetDefault("IDP_API_KEY", "")
	v.SetDefault("ADMIN_USER_IDS", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "gemini-2.0-flash")
	v.SetDefault("CHATBOT_MAX_QUESTION_LEN", 1000)
}

func keys() []string {
	return []string{
		"PORT", "APP_ENV", "APP_NAME", "LOG_LEVEL", "LOG_FORMAT", "ALLOWED_ORIGINS",
		"STORAGE_DRIVER", "DB_DSN", "DYNAMO_TABLE_PREFIX", "AWS_REGION", "AWS_ENDPOINT_URL",
		"BLOB_DRIVER", "S3_BUCKET_NAME", "MAX_UPLOAD_MB", "FEED_DRIVER", "REDIS_URL",
		"AUTH_MODE", "JWT_SECRET", "IDP_BASE_URL", "IDP_API_KEY", "ADMIN_USER_IDS",
		"GEMINI_API_KEY", "GEMINI_MODEL", "CHATBOT_MAX_QUESTION_LEN",
	}
}

func (c *Config) normalize() {
	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	c.BlobDriver = strings.ToLower(strings.TrimSpace(c.BlobDriver))
	c.FeedDriver = strings.ToLower(strings.TrimSpace(c.FeedDriver))
	c.AuthMode = strings.ToLower(strings.TrimSpace(c.AuthMode))
	c.Env = strings.ToLower(strings.TrimSpace(c.Env))
}

// IsProduction indica si APP_ENV es producción.
func (c *Config) IsProduction() bool {
	return c.Env == "production" || c.Env == "prod"
}

// Origins devuelve ALLOWED_ORIGINS como lista.
func (c *Config) Origins() []string {
	return splitCSV(c.AllowedOrigins)
}

// Admins devuelve ADMIN_USER_IDS como lista.
func (c *Config) Admins() []string {
	return splitCSV(c.AdminUserIDs)
}

// Validate verifica que cada driver elegido tenga lo que necesita.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Port) == "" {
		return errors.New("PORT is required")
	}

	switch c.StorageDriver {
	case StorageMemory:
	case StoragePostgres:
		if strings.TrimSpace(c.DBDSN) == "" {
			return errors.New("DB_DSN is required for STORAGE_DRIVER=postgres")
		}
	case StorageDynamo:
		if strings.TrimSpace(c.AWSRegion) == "" {
			return errors.New("AWS_REGION is required for STORAGE_DRIVER=dynamodb")
		}
	default:
		return fmt.Errorf("unknown STORAGE_DRIVER %q", c.StorageDriver)
	}

	switch c.BlobDriver {
	case BlobMemory:
	case BlobS3:
		if strings.TrimSpace(c.S3Bucket) == "" {
			return errors.New("S3_BUCKET_NAME is required for BLOB_DRIVER=s3")
		}
	default:
		return fmt.Errorf("unknown BLOB_DRIVER %q", c.BlobDriver)
	}

	switch c.FeedDriver {
	case FeedMemory, FeedRedis:
	default:
		return fmt.Errorf("unknown FEED_DRIVER %q", c.FeedDriver)
	}

	switch c.AuthMode {
	case AuthDev:
		if c.IsProduction() {
			return errors.New("AUTH_MODE=dev is not allowed in production")
		}
	case AuthJWT:
		if c.IsProduction() && (c.JWTSecret == defaultJWTSecret || len(c.JWTSecret) < 32) {
			return errors.New("JWT_SECRET must be changed and at least 32 characters in production")
		}
	case AuthRemote:
		if strings.TrimSpace(c.IdPBaseURL) == "" || strings.TrimSpace(c.IdPAPIKey) == "" {
			return errors.New("IDP_BASE_URL and IDP_API_KEY are required for AUTH_MODE=remote")
		}
	default:
		return fmt.Errorf("unknown AUTH_MODE %q", c.AuthMode)
	}

	if c.MaxUploadMB <= 0 {
		return errors.New("MAX_UPLOAD_MB must be positive")
	}
	return nil
}

func splitCSV(s string) []string {
	out := make([]string, 0)
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
