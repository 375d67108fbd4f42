package storage

import (
	"context"
	"crypto/sha256"
	"fmt"
	"io"
	"path"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"datanexus/internal/config"
)

const objectPrefix = "datasets/"

// s3Store is a self-hosted content-store provider backed by an S3-compatible
// bucket (MinIO, AWS S3, etc.). It derives the CID itself while streaming
// the blob, then keys the object by that CID so downloads are
// content-addressed. Safe for concurrent use.
type s3Store struct {
	client *minio.Client
	bucket string
}

// NewS3 creates the S3-compatible content-store provider. It validates
// connectivity and ensures the bucket exists (creates it if missing).
func NewS3(cfg config.S3Config) (Store, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("s3 endpoint is required")
	}
	if cfg.AccessKey == "" || cfg.SecretKey == "" {
		return nil, fmt.Errorf("s3 credentials are required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	cli, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("create s3 client: %w", err)
	}

	st := &s3Store{client: cli, bucket: cfg.Bucket}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exists, err := cli.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := cli.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	return st, nil
}

// Upload streams the blob into a staging object while hashing it, then moves
// it under its CID. The CID is only known once the stream has been fully
// consumed, so the object cannot be keyed by it up front.
func (s *s3Store) Upload(ctx context.Context, r io.Reader, fileName string, size int64) (UploadResult, error) {
	if r == nil {
		return UploadResult{}, &UploadError{Reason: ReasonRejected, Err: fmt.Errorf("no payload")}
	}

	hasher := sha256.New()
	staging := objectPrefix + "staging/" + uuid.NewString()

	info, err := s.client.PutObject(ctx, s.bucket, staging, io.TeeReader(r, hasher), size, minio.PutObjectOptions{
		ContentType:  "application/octet-stream",
		UserMetadata: map[string]string{"original-filename": fileName},
	})
	if err != nil {
		return UploadResult{}, classifyS3Error(err)
	}

	cid, err := ComputeCID(hasher.Sum(nil))
	if err != nil {
		return UploadResult{}, &UploadError{Reason: ReasonInternal, Err: err}
	}

	key := objectPrefix + cid
	_, err = s.client.CopyObject(ctx,
		minio.CopyDestOptions{Bucket: s.bucket, Object: key},
		minio.CopySrcOptions{Bucket: s.bucket, Object: staging},
	)
	if err != nil {
		return UploadResult{}, classifyS3Error(err)
	}
	// Staging object removal is best effort; a leftover staging object is
	// garbage, not corruption.
	_ = s.client.RemoveObject(ctx, s.bucket, staging, minio.RemoveObjectOptions{})

	return UploadResult{CID: cid, FileName: fileName, FileSizeBytes: info.Size}, nil
}

// List walks the content-addressed prefix. The object key's base name is the
// CID; original filenames live in per-object metadata and are not fetched
// here to keep the listing a single round trip per page.
func (s *s3Store) List(ctx context.Context) ([]StoredObject, int, error) {
	objects := []StoredObject{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: objectPrefix}) {
		if obj.Err != nil {
			return nil, 0, fmt.Errorf("list objects: %w", obj.Err)
		}
		name := path.Base(obj.Key)
		if !ValidCID(name) {
			continue // staging leftovers
		}
		objects = append(objects, StoredObject{
			CID:           name,
			FileName:      name,
			FileSizeBytes: obj.Size,
			CreatedAt:     obj.LastModified.Unix(),
		})
	}
	return objects, len(objects), nil
}

// classifyS3Error maps backend failures onto the upload error taxonomy.
func classifyS3Error(err error) *UploadError {
	resp := minio.ToErrorResponse(err)
	switch resp.Code {
	case "EntityTooLarge":
		return &UploadError{Reason: ReasonTooLarge, Err: err}
	case "AccessDenied", "InvalidRequest", "NoSuchBucket":
		return &UploadError{Reason: ReasonRejected, Err: err}
	case "":
		return &UploadError{Reason: ReasonUnreachable, Err: err}
	default:
		return &UploadError{Reason: ReasonInternal, Err: err}
	}
}
