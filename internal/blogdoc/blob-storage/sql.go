package blobstorage

import (
	"errors"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormLog "gorm.io/gorm/logger"
)

const sqlitePrefix = "sqlite://"

// DocBlob - строка таблицы doc_blobs.
type DocBlob struct {
	Key       string `gorm:"column:blob_key;primaryKey;size:255"`
	Data      []byte `gorm:"column:data;not null"`
	Size      int64  `gorm:"column:size"`
	UpdatedAt time.Time
}

func (DocBlob) TableName() string { return "doc_blobs" }

type SQLStorage struct {
	db *gorm.DB
}

// OpenDB открывает базу по DSN: sqlite://<файл> для sqlite, иначе DSN postgres.
func OpenDB(dsn string, logger gormLog.Interface) (*gorm.DB, error) {
	var dialector gorm.Dialector
	if strings.HasPrefix(dsn, sqlitePrefix) {
		dialector = sqlite.Open(strings.TrimPrefix(dsn, sqlitePrefix))
	} else {
		dialector = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: false,
		})
	}

	gormCfg := &gorm.Config{TranslateError: true}
	if logger != nil {
		gormCfg.Logger = logger
	}
	return gorm.Open(dialector, gormCfg)
}

func NewSQLStorage(db *gorm.DB) (*SQLStorage, error) {
	if err := db.AutoMigrate(&DocBlob{}); err != nil {
		return nil, err
	}
	return &SQLStorage{db: db}, nil
}

func (s *SQLStorage) Put(key string, blob []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	if blob == nil {
		blob = []byte{}
	}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "blob_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "size", "updated_at"}),
	}).Create(&DocBlob{
		Key:  key,
		Data: blob,
		Size: int64(len(blob)),
	}).Error
}

func (s *SQLStorage) Get(key string) ([]byte, error) {
	var rec DocBlob
	if err := s.db.Where("blob_key = ?", key).First(&rec).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if rec.Data == nil {
		return []byte{}, nil
	}
	return rec.Data, nil
}

func (s *SQLStorage) Delete(key string) error {
	return s.db.Where("blob_key = ?", key).Delete(&DocBlob{}).Error
}

func (s *SQLStorage) Exist(key string) (bool, error) {
	var count int64
	err := s.db.Model(&DocBlob{}).
		Where("blob_key = ?", key).
		Count(&count).Error
	return count > 0, err
}

func (s *SQLStorage) List(fn func(BlobInfo) error) error {
	var batch []DocBlob
	return s.db.Model(&DocBlob{}).
		Select("blob_key", "size", "updated_at").
		FindInBatches(&batch, 100, func(tx *gorm.DB, _ int) error {
			for _, rec := range batch {
				if err := fn(BlobInfo{
					Key:        rec.Key,
					Size:       rec.Size,
					StoredSize: rec.Size,
					UpdatedAt:  rec.UpdatedAt,
				}); err != nil {
					return err
				}
			}
			return nil
		}).Error
}

func (s *SQLStorage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
