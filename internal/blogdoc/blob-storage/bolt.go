package blobstorage

import (
	"bytes"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
	"go.etcd.io/bbolt"
)

var postsBucket = []byte("posts")


// boltRecord - конверт значения в bbolt. Флаг Zstd хранится в записи, поэтому чтение не зависит от текущей настройки.
type boltRecord struct {
	Data      []byte `msgpack:"d"`
	Zstd      bool   `msgpack:"z,omitempty"`
	Size      int64  `msgpack:"s"`
	UpdatedAt int64  `msgpack:"u"`
}

type BoltStorage struct {
	bdb  *bbolt.DB
	zstd bool

	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

// newZstdCodec создает кодер и декодер для EncodeAll/DecodeAll, оба безопасны для конкурентного использования.
func newZstdCodec(level zstd.EncoderLevel) (*zstd.Encoder, *zstd.Decoder, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, nil, fmt.Errorf("zstd encoder: %w", err)
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return encoder, decoder, nil
}

// NewBoltStorage открывает файл bbolt. Декодер zstd создается всегда: записи, сжатые раньше, читаются и при выключенном BLOB_ZSTD.
func NewBoltStorage(path string, useZstd bool) (*BoltStorage, error) {
	encoder, decoder, err := newZstdCodec(zstd.SpeedDefault)
	if err != nil {
		return nil, err
	}

	bdb, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: 5 * time.Second})
	if err != nil {
		encoder.Close()
		decoder.Close()
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}

	if err := bdb.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(postsBucket)
		return err
	}); err != nil {
		bdb.Close()
		encoder.Close()
		decoder.Close()
		return nil, err
	}

	return &BoltStorage{bdb: bdb, zstd: useZstd, encoder: encoder, decoder: decoder}, nil
}

func (s *BoltStorage) Put(key string, blob []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	rec := boltRecord{
		Data:      blob,
		Size:      int64(len(blob)),
		UpdatedAt: time.Now().UnixMilli(),
	}
	if s.zstd && len(blob) > 0 {
		rec.Data = s.encoder.EncodeAll(blob, nil)
		rec.Zstd = true
	}

	value, err := msgpack.Marshal(&rec)
	if err != nil {
		return err
	}

	return s.bdb.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(postsBucket).Put([]byte(key), value)
	})
}

func (s *BoltStorage) Get(key string) ([]byte, error) {
	var raw []byte
	if err := s.bdb.View(func(tx *bbolt.Tx) error {
		v := tx.Bucket(postsBucket).Get([]byte(key))
		if v == nil {
			return ErrNotFound
		}
		// значение валидно только внутри транзакции
		raw = bytes.Clone(v)
		return nil
	}); err != nil {
		return nil, err
	}

	rec, err := decodeRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	if !rec.Zstd {
		if rec.Data == nil {
			return []byte{}, nil
		}
		return rec.Data, nil
	}
	return s.decoder.DecodeAll(rec.Data, make([]byte, 0, rec.Size))
}

func (s *BoltStorage) Delete(key string) error {
	return s.bdb.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket(postsBucket).Delete([]byte(key))
	})
}

func (s *BoltStorage) Exist(key string) (bool, error) {
	var exist bool
	err := s.bdb.View(func(tx *bbolt.Tx) error {
		exist = tx.Bucket(postsBucket).Get([]byte(key)) != nil
		return nil
	})
	return exist, err
}

// List обходит записи в порядке ключей. fn вызывается внутри транзакции чтения и не должен писать в хранилище.
func (s *BoltStorage) List(fn func(BlobInfo) error) error {
	return s.bdb.View(func(tx *bbolt.Tx) error {
		return tx.Bucket(postsBucket).ForEach(func(k, v []byte) error {
			rec, err := decodeRecord(v)
			if err != nil {
				return fmt.Errorf("decode %s: %w", k, err)
			}
			return fn(BlobInfo{
				Key:        string(k),
				Size:       rec.Size,
				StoredSize: int64(len(rec.Data)),
				UpdatedAt:  time.UnixMilli(rec.UpdatedAt),
			})
		})
	})
}

func (s *BoltStorage) Close() error {
	err := s.bdb.Close()
	s.encoder.Close()
	s.decoder.Close()
	return err
}

func decodeRecord(raw []byte) (boltRecord, error) {
	var rec boltRecord
	err := msgpack.Unmarshal(raw, &rec)
	return rec, err
}
