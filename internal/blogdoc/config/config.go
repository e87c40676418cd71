// Управление конфигурацией сервиса постов из переменных окружения.
// Содержит структуру Config для хранения параметров и функцию ReadConfig для их загрузки из переменных окружения.
//
// Основные возможности:
//   - Загрузка конфигурации из переменных окружения с использованием тегов struct.
//   - Преобразование типов данных из переменных окружения (string, int, bool).
//   - Маскировка секретных значений (passwords) в логах.
//   - Обработка ошибок при парсинге URL.
//   - Предоставление значений по умолчанию для адресов, хранилища и лимита размера blob.
package config

import (
	"log/slog"
	"net/url"
)

// Бэкенды хранилища blob.
const (
	StorageBolt  = "bolt"
	StorageSQL   = "sql"
	StorageMinio = "minio"
)

const (
	DefaultMaxBlobSize = 100 * 1024
	DefaultStatsCron   = "@every 5m"
)

type Config struct {
	ListenAddr     string `env:"LISTEN_ADDR"`
	MetricsAddr    string `env:"METRICS_ADDR"`
	MetricsDisable bool   `env:"METRICS_DISABLED"`

	StorageBackend string `env:"STORAGE_BACKEND"`
	BoltPath       string `env:"BOLT_PATH"`
	DatabaseDSN    string `env:"DATABASE_URL"`

	AWSAccessKey  string `env:"AWS_ACCESS_KEY_ID"`
	AWSSecretKey  string `env:"AWS_SECRET_ACCESS_KEY"`
	AWSEndpoint   string `env:"AWS_S3_ENDPOINT_URL"`
	AWSBucketName string `env:"AWS_S3_BUCKET_NAME"`

	MaxBlobSize int  `env:"MAX_BLOB_SIZE"`
	BlobZstd    bool `env:"BLOB_ZSTD"`

	StatsCron string `env:"STATS_CRON"`

	WebURLRaw string `env:"WEB_URL"`
	WebURL    *url.URL

	PDFFontPath     string `env:"PDF_FONT_PATH"`
	PDFBoldFontPath string `env:"PDF_BOLD_FONT_PATH"`
}

// ReadConfig загружает конфигурацию из переменных окружения и подставляет значения по умолчанию.
// Некорректный WEB_URL не останавливает сервис: относительные изображения при экспорте в PDF пропускаются.
func ReadConfig() *Config {
	config := &Config{}

	envConfig("env", config)
	config.applyDefaults()

	if config.WebURLRaw != "" {
		var err error
		config.WebURL, err = url.Parse(config.WebURLRaw)
		if err != nil {
			slog.Error("WEB_URL incorrect", "err", err)
			config.WebURL = nil
		}
	}

	return config
}

func (config *Config) applyDefaults() {
	if config.ListenAddr == "" {
		config.ListenAddr = ":8080"
	}
	if config.MetricsAddr == "" {
		config.MetricsAddr = ":2112"
	}

	switch config.StorageBackend {
	case StorageBolt, StorageSQL, StorageMinio:
	case "":
		config.StorageBackend = StorageBolt
	default:
		slog.Warn("Unknown STORAGE_BACKEND, fallback to bolt", "value", config.StorageBackend)
		config.StorageBackend = StorageBolt
	}

	if config.BoltPath == "" {
		config.BoltPath = "posts.db"
	}
	if config.MaxBlobSize <= 0 {
		config.MaxBlobSize = DefaultMaxBlobSize
	}
	if config.StatsCron == "" {
		config.StatsCron = DefaultStatsCron
	}
}
