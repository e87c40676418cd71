// Пакет предоставляет интерфейс и реализации хранилища компактных документов постов: встроенная база bbolt, SQL (postgres или sqlite) через gorm и Minio. Хранилище работает с непрозрачными blob по строковому ключу и поддерживает перечисление с размерами для статистики.
package blobstorage

import (
	"errors"
	"fmt"
	"time"

	"github.com/aisa-it/blogdoc/internal/blogdoc/config"
	gormLog "gorm.io/gorm/logger"
)

var ErrNotFound = errors.New("blob not found")

type BlobInfo struct {
	Key string `json:"key" yaml:"key"`
	// Размер blob в том виде, в котором его передали в Put
	Size int64 `json:"size" yaml:"size"`
	// Размер на диске, отличается от Size при сжатии zstd
	StoredSize int64     `json:"stored_size" yaml:"stored_size"`
	UpdatedAt  time.Time `json:"updated_at" yaml:"updated_at"`
}

type BlobStorage interface {
	Put(key string, blob []byte) error
	// Get возвращает ErrNotFound, если ключа нет.
	Get(key string) ([]byte, error)
	// Delete отсутствующего ключа не является ошибкой.
	Delete(key string) error
	Exist(key string) (bool, error)
	List(fn func(BlobInfo) error) error
	Close() error
}

// Open создает хранилище по STORAGE_BACKEND. Для sql логгер запросов передается в gorm.
func Open(cfg *config.Config, logger gormLog.Interface) (BlobStorage, error) {
	switch cfg.StorageBackend {
	case config.StorageBolt, "":
		return NewBoltStorage(cfg.BoltPath, cfg.BlobZstd)
	case config.StorageSQL:
		db, err := OpenDB(cfg.DatabaseDSN, logger)
		if err != nil {
			return nil, err
		}
		return NewSQLStorage(db)
	case config.StorageMinio:
		return NewMinioStorage(cfg.AWSEndpoint, cfg.AWSAccessKey, cfg.AWSSecretKey, false, cfg.AWSBucketName)
	}
	return nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
}

func checkKey(key string) error {
	if key == "" {
		return errors.New("empty blob key")
	}
	return nil
}
