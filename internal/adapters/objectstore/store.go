package objectstore

import (
	"context"
	"fmt"
	"log/slog"
	"mime"
	"net/url"
	"path"
	"strings"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/samirrijal/imoveis/internal/core/domain"
	"github.com/samirrijal/imoveis/internal/pkg/config"
)

const maxExtLen = 10

// Store implements ports.PhotoStorage on an S3-compatible bucket.
type Store struct {
	client     *minio.Client
	bucket     string
	folder     string
	publicBase *url.URL
}

// New connects to the object store and makes sure the bucket exists.
func New(ctx context.Context, cfg config.StorageConfig) (*Store, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio client: %w", err)
	}

	base, err := publicBaseURL(cfg.PublicBaseURL, client.EndpointURL(), cfg.Bucket)
	if err != nil {
		return nil, err
	}

	s := &Store{
		client:     client,
		bucket:     cfg.Bucket,
		folder:     strings.Trim(cfg.UploadFolder, "/"),
		publicBase: base,
	}

	if err := s.ensureBucket(ctx, cfg.Region); err != nil {
		return nil, err
	}

	slog.Info("object storage ready", "endpoint", cfg.Endpoint, "bucket", cfg.Bucket, "folder", s.folder)
	return s, nil
}

func (s *Store) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("make bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Upload streams the photo into the upload folder and returns its public URL.
func (s *Store) Upload(ctx context.Context, photo domain.PhotoUpload) (string, error) {
	key := objectKey(s.folder, uuid.NewString(), photo.Filename)

	contentType := photo.ContentType
	if contentType == "" {
		contentType = mime.TypeByExtension(path.Ext(key))
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	size := photo.Size
	if size < 0 {
		size = -1
	}

	if _, err := s.client.PutObject(ctx, s.bucket, key, photo.Body, size,
		minio.PutObjectOptions{ContentType: contentType},
	); err != nil {
		return "", fmt.Errorf("put object %s: %w", key, err)
	}

	return objectURL(s.publicBase, key), nil
}

// Ping checks that the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("bucket %s not found", s.bucket)
	}
	return nil
}

// objectKey builds "<folder>/<id><ext>" keeping a short lowercase extension
// from the client filename.
func objectKey(folder, id, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if len(ext) > maxExtLen || strings.ContainsAny(ext, " /\\?#%") {
		ext = ""
	}
	if folder == "" {
		return id + ext
	}
	return folder + "/" + id + ext
}

// publicBaseURL returns the URL that object keys are appended to. When no
// explicit base is configured, objects are addressed path-style on the
// storage endpoint.
func publicBaseURL(configured string, endpoint *url.URL, bucket string) (*url.URL, error) {
	if configured != "" {
		u, err := url.Parse(strings.TrimRight(configured, "/"))
		if err != nil {
			return nil, fmt.Errorf("parse storage.public_base_url: %w", err)
		}
		if u.Scheme == "" || u.Host == "" {
			return nil, fmt.Errorf("storage.public_base_url must be absolute, got %q", configured)
		}
		return u, nil
	}
	u := *endpoint
	u.Path = "/" + bucket
	return &u, nil
}

func objectURL(base *url.URL, key string) string {
	u := *base
	u.Path = strings.TrimRight(u.Path, "/") + "/" + key
	u.RawPath = ""
	return u.String()
}
