package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"alfredoptarigan/kryptohire/internal/apperrors"
	"alfredoptarigan/kryptohire/internal/config"
)

const (
	MimePDF  = "application/pdf"
	MimeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

var allowedUploads = map[string]string{
	".pdf":  MimePDF,
	".docx": MimeDOCX,
}

// StoredFile is an uploaded document after it has been persisted.
type StoredFile struct {
	Key          string
	OriginalName string
	ContentType  string
	Data         []byte
}

type StorageService interface {
	SaveUpload(ctx context.Context, file *multipart.FileHeader, prefix string) (*StoredFile, error)
	Get(ctx context.Context, key string) ([]byte, error)
	Delete(ctx context.Context, key string) error
}

// objectStore is the backend a StorageService writes to.
type objectStore interface {
	put(ctx context.Context, key string, data []byte, contentType string) error
	get(ctx context.Context, key string) ([]byte, error)
	remove(ctx context.Context, key string) error
}

type storageService struct {
	store objectStore
}

// NewStorageService builds the local or S3-compatible backend selected in config.
func NewStorageService(ctx context.Context, cfg config.StorageConfig) (StorageService, error) {
	switch cfg.Driver {
	case "s3":
		store, err := newS3Store(ctx, cfg)
		if err != nil {
			return nil, err
		}
		return &storageService{store: store}, nil
	default:
		store := &localStore{uploadPath: cfg.UploadPath}
		if err := store.ensureUploadDir(); err != nil {
			return nil, err
		}
		return &storageService{store: store}, nil
	}
}

func (s *storageService) SaveUpload(ctx context.Context, file *multipart.FileHeader, prefix string) (*StoredFile, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	contentType, ok := allowedUploads[ext]
	if !ok {
		return nil, apperrors.Validation(fmt.Sprintf("invalid file extension: %s", ext), map[string]string{"file": "only .pdf and .docx files are accepted"})
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	key := fmt.Sprintf("%s/%s%s", prefix, uuid.New().String(), ext)
	if err := s.store.put(ctx, key, data, contentType); err != nil {
		return nil, err
	}

	return &StoredFile{
		Key:          key,
		OriginalName: file.Filename,
		ContentType:  contentType,
		Data:         data,
	}, nil
}

func (s *storageService) Get(ctx context.Context, key string) ([]byte, error) {
	return s.store.get(ctx, key)
}

func (s *storageService) Delete(ctx context.Context, key string) error {
	return s.store.remove(ctx, key)
}

type localStore struct {
	uploadPath string
}

func (l *localStore) ensureUploadDir() error {
	if err := os.MkdirAll(l.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

func (l *localStore) path(key string) string {
	return filepath.Join(l.uploadPath, filepath.FromSlash(key))
}

func (l *localStore) put(_ context.Context, key string, data []byte, _ string) error {
	dst := l.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	if err := os.WriteFile(dst, data, 0644); err != nil {
		return fmt.Errorf("failed to save file: %w", err)
	}
	return nil
}

func (l *localStore) get(_ context.Context, key string) ([]byte, error) {
	data, err := os.ReadFile(l.path(key))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

func (l *localStore) remove(_ context.Context, key string) error {
	if err := os.Remove(l.path(key)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// s3Store talks to S3 or any S3-compatible service such as Cloudflare R2.
type s3Store struct {
	client *s3.Client
	bucket string
}

func newS3Store(ctx context.Context, cfg config.StorageConfig) (*s3Store, error) {
	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.S3Region)}
	if cfg.S3AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKey, cfg.S3SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3Endpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Store{client: client, bucket: cfg.S3Bucket}, nil
}

func (s *s3Store) put(ctx context.Context, key string, data []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to put object: %w", err)
	}
	return nil
}

func (s *s3Store) get(ctx context.Context, key string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get object: %w", err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	return data, nil
}

func (s *s3Store) remove(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete object: %w", err)
	}
	return nil
}
