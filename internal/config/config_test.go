package config

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWith_Defaults(t *testing.T) {
	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, StorageMemory, cfg.StorageDriver)
	assert.Equal(t, BlobMemory, cfg.BlobDriver)
	assert.Equal(t, FeedMemory, cfg.FeedDriver)
	assert.Equal(t, AuthDev, cfg.AuthMode)
	assert.Equal(t, int64(5), cfg.MaxUploadMB)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:9002"}, cfg.Origins())
}

func TestLoadWith_EnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", "DynamoDB")
	t.Setenv("AWS_REGION", "eu-west-1")
	t.Setenv("ADMIN_USER_IDS", "admin-1, admin-2,")

	cfg, err := LoadWith(viper.New())
	require.NoError(t, err)
	assert.Equal(t, StorageDynamo, cfg.StorageDriver)
	assert.Equal(t, "eu-west-1", cfg.AWSRegion)
	assert.Equal(t, []string{"admin-1", "admin-2"}, cfg.Admins())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Port:          "8080",
			StorageDriver: StorageMemory,
			BlobDriver:    BlobMemory,
			FeedDriver:    FeedMemory,
			AuthMode:      AuthDev,
			MaxUploadMB:   5,
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"ok", func(c *Config) {}, ""},
		{"postgres sin dsn", func(c *Config) { c.StorageDriver = StoragePostgres }, "DB_DSN"},
		{"s3 sin bucket", func(c *Config) { c.BlobDriver = BlobS3 }, "S3_BUCKET_NAME"},
		{"driver desconocido", func(c *Config) { c.FeedDriver = "kafka" }, "FEED_DRIVER"},
		{"dev en prod", func(c *Config) { c.Env = "production" }, "AUTH_MODE=dev"},
		{"jwt débil en prod", func(c *Config) {
			c.Env = "production"
			c.AuthMode = AuthJWT
			c.JWTSecret = "short"
		}, "JWT_SECRET"},
		{"remote sin idp", func(c *Config) { c.AuthMode = AuthRemote }, "IDP_BASE_URL"},
		{"upload cero", func(c *Config) { c.MaxUploadMB = 0 }, "MAX_UPLOAD_MB"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(&c)
			err := c.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
