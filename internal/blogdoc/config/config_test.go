package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"LISTEN_ADDR", "STORAGE_BACKEND", "MAX_BLOB_SIZE", "WEB_URL", "STATS_CRON", "BOLT_PATH"} {
		t.Setenv(key, "")
	}

	cfg := ReadConfig()
	assert.Equal(t, ":8080", cfg.ListenAddr)
	assert.Equal(t, ":2112", cfg.MetricsAddr)
	assert.Equal(t, StorageBolt, cfg.StorageBackend)
	assert.Equal(t, "posts.db", cfg.BoltPath)
	assert.Equal(t, DefaultMaxBlobSize, cfg.MaxBlobSize)
	assert.Equal(t, "@every 5m", cfg.StatsCron)
	assert.Nil(t, cfg.WebURL)
}

func TestReadConfig_FromEnv(t *testing.T) {
	t.Setenv("LISTEN_ADDR", ":9000")
	t.Setenv("STORAGE_BACKEND", "sql")
	t.Setenv("DATABASE_URL", "sqlite://posts.sqlite")
	t.Setenv("MAX_BLOB_SIZE", "2048")
	t.Setenv("BLOB_ZSTD", "true")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "supersecret")
	t.Setenv("WEB_URL", "https://blog.example.com")

	cfg := ReadConfig()
	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, StorageSQL, cfg.StorageBackend)
	assert.Equal(t, "sqlite://posts.sqlite", cfg.DatabaseDSN)
	assert.Equal(t, 2048, cfg.MaxBlobSize)
	assert.True(t, cfg.BlobZstd)
	assert.Equal(t, "supersecret", cfg.AWSSecretKey)
	if assert.NotNil(t, cfg.WebURL) {
		assert.Equal(t, "blog.example.com", cfg.WebURL.Host)
	}
}

func TestReadConfig_UnknownBackend(t *testing.T) {
	t.Setenv("STORAGE_BACKEND", "redis")
	assert.Equal(t, StorageBolt, ReadConfig().StorageBackend)
}

func TestReadConfig_InvalidValues(t *testing.T) {
	t.Setenv("MAX_BLOB_SIZE", "100kb")
	t.Setenv("BLOB_ZSTD", "maybe")

	cfg := ReadConfig()
	assert.Equal(t, DefaultMaxBlobSize, cfg.MaxBlobSize)
	assert.False(t, cfg.BlobZstd)
}

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"supersecret", "s*********t"},
		{"пароль", "п****ь"},
		{"ab", "**"},
		{"a", "*"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, maskSecret(tt.in))
		})
	}
	assert.True(t, isSecret("AWSSecretKey"))
	assert.False(t, isSecret("AWSBucketName"))
}
