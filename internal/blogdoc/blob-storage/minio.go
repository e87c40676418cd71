package blobstorage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

const (
	UploadTries = 5

	blobContentType = "application/json"
	objectPrefix    = "posts/"
)

type MinioStorage struct {
	client     *minio.Client
	bucketName string
	retryDelay time.Duration
}

func NewMinioStorage(endpoint string, accessKeyID string, secretAccessKey string, useSSL bool, bucketName string) (*MinioStorage, error) {
	client, err := minio.New(endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(accessKeyID, secretAccessKey, ""),
		Secure: useSSL,
	})
	if err != nil {
		return nil, err
	}

	exists, err := client.BucketExists(context.Background(), bucketName)
	if err != nil {
		return nil, err
	}

	if !exists {
		// Create bucket if not exist
		if err := client.MakeBucket(context.Background(), bucketName, minio.MakeBucketOptions{}); err != nil {
			return nil, err
		}
	}

	return &MinioStorage{client: client, bucketName: bucketName, retryDelay: 2 * time.Second}, nil
}

func (s *MinioStorage) Put(key string, blob []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}

	var err error
	for i := range UploadTries {
		_, err = s.client.PutObject(context.Background(),
			s.bucketName,
			objectPrefix+key,
			bytes.NewReader(blob),
			int64(len(blob)),
			minio.PutObjectOptions{ContentType: blobContentType},
		)
		if err != nil {
			resp := minio.ToErrorResponse(err)
			slog.Error("Upload blob to minio", "key", key, "try", i+1, "code", resp.StatusCode, "msg", resp.Message)
			time.Sleep(s.retryDelay)
			continue
		}
		break
	}
	return err
}

func (s *MinioStorage) Get(key string) ([]byte, error) {
	obj, err := s.client.GetObject(context.Background(),
		s.bucketName,
		objectPrefix+key,
		minio.GetObjectOptions{},
	)
	if err != nil {
		return nil, notFoundOr(err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, notFoundOr(err)
	}
	return data, nil
}

func (s *MinioStorage) Delete(key string) error {
	return s.client.RemoveObject(
		context.Background(),
		s.bucketName,
		objectPrefix+key,
		minio.RemoveObjectOptions{},
	)
}

func (s *MinioStorage) Exist(key string) (bool, error) {
	_, err := s.client.StatObject(
		context.Background(),
		s.bucketName,
		objectPrefix+key,
		minio.StatObjectOptions{},
	)
	if err != nil {
		if notFoundOr(err) == ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (s *MinioStorage) List(fn func(info BlobInfo) error) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for obj := range s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: objectPrefix, Recursive: true}) {
		if obj.Err != nil {
			return obj.Err
		}
		if err := fn(BlobInfo{
			Key:        obj.Key[len(objectPrefix):],
			Size:       obj.Size,
			StoredSize: obj.Size,
			UpdatedAt:  obj.LastModified,
		}); err != nil {
			return err
		}
	}
	return nil
}

func (s *MinioStorage) Close() error {
	return nil
}

func notFoundOr(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return ErrNotFound
	}
	return err
}
