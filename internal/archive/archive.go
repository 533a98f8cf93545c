// Package archive uploads export documents to S3-compatible object storage.
package archive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"tagflow/internal/config"
	"tagflow/internal/fileutil"
	"tagflow/internal/logging"
	"tagflow/internal/textutil"
)

// ErrDisabled is returned when archive.enabled is false.
var ErrDisabled = errors.New("export archive disabled")

// Receipt identifies an uploaded object.
type Receipt struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
	ETag   string `json:"etag"`
	Size   int64  `json:"size"`
	SHA256 string `json:"sha256"`
}

// Uploader stores an export document and reports where it went.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (Receipt, error)
}

// objectClient is the subset of *minio.Client used here.
type objectClient interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
}

// Archiver uploads documents to a single bucket.
type Archiver struct {
	client objectClient
	bucket string
	prefix string
	logger *slog.Logger
	now    func() time.Time
	newID  func() uuid.UUID
}

// New builds an Archiver from cfg. It returns ErrDisabled when archiving is off.
func New(cfg config.Archive, logger *slog.Logger) (*Archiver, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("init object storage client: %w", err)
	}
	return newArchiver(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func newArchiver(client objectClient, bucket, prefix string, logger *slog.Logger) *Archiver {
	return &Archiver{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
		logger: logging.NewComponentLogger(logger, "archive"),
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.New,
	}
}

// Bucket returns the configured bucket name.
func (a *Archiver) Bucket() string {
	return a.bucket
}

// Check reports whether the bucket exists.
func (a *Archiver) Check(ctx context.Context) (bool, error) {
	exists, err := a.client.BucketExists(ctx, a.bucket)
	if err != nil {
		return false, fmt.Errorf("check bucket %q: %w", a.bucket, err)
	}
	return exists, nil
}

// EnsureBucket creates the bucket when it does not exist.
func (a *Archiver) EnsureBucket(ctx context.Context) error {
	exists, err := a.Check(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}
	if err := a.client.MakeBucket(ctx, a.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("create bucket %q: %w", a.bucket, err)
	}
	a.logger.Info("archive bucket created", logging.String("bucket", a.bucket))
	return nil
}

// Upload stores data under a unique key derived from name.
func (a *Archiver) Upload(ctx context.Context, name string, data []byte) (Receipt, error) {
	key := ObjectKey(a.prefix, name, a.now(), a.newID())
	sum := fileutil.SHA256Hex(data)
	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType:  "application/json",
		UserMetadata: map[string]string{"sha256": sum},
	})
	if err != nil {
		return Receipt{}, fmt.Errorf("upload %s/%s: %w", a.bucket, key, err)
	}
	a.logger.Info("export archived",
		logging.String("bucket", a.bucket),
		logging.String("key", key),
		logging.Int64("size", info.Size),
		logging.Event("export_archived"),
	)
	return Receipt{Bucket: a.bucket, Key: key, ETag: info.ETag, Size: int64(len(data)), SHA256: sum}, nil
}

// ObjectKey returns prefix/YYYY/MM/DD/<id>-<name>.json with name reduced to a
// safe key segment.
func ObjectKey(prefix, name string, at time.Time, id uuid.UUID) string {
	base := strings.TrimSuffix(path.Base(name), path.Ext(name))
	leaf := fmt.Sprintf("%s-%s.json", id.String(), textutil.KeySegment(base))
	return path.Join(strings.Trim(prefix, "/"), at.UTC().Format("2006/01/02"), leaf)
}
