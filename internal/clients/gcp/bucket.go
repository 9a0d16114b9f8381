package gcp

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/dbctx"
	"github.com/yungbote/crystal-grimoire-backend/internal/pkg/logger"
)

type BucketConfig struct {
	Name        string
	CDNDomain   string
	Credentials string
}

// SpecimenBucket stores the photos submitted for identification.
type SpecimenBucket interface {
	UploadImage(dbc dbctx.Context, key string, contentType string, data []byte) error
	DeleteImage(dbc dbctx.Context, key string) error
	GetPublicURL(key string) string
}

type specimenBucket struct {
	log           *logger.Logger
	storageClient *storage.Client
	name          string
	cdnDomain     string
}

func NewSpecimenBucket(ctx context.Context, cfg BucketConfig, log *logger.Logger) (SpecimenBucket, error) {
	serviceLog := log.With("service", "SpecimenBucket")

	name := strings.TrimSpace(cfg.Name)
	if name == "" {
		return nil, fmt.Errorf("missing SPECIMEN_GCS_BUCKET_NAME")
	}

	opts := ClientOptions(cfg.Credentials)
	opts = append(opts, option.WithScopes(storage.ScopeReadWrite))
	stClient, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create storage client: %w", err)
	}

	return &specimenBucket{
		log:           serviceLog,
		storageClient: stClient,
		name:          name,
		cdnDomain:     strings.TrimSpace(cfg.CDNDomain),
	}, nil
}

func (bs *specimenBucket) UploadImage(dbc dbctx.Context, key string, contentType string, data []byte) error {
	ctx, cancel := context.WithTimeout(dbc.Ctx, 2*time.Minute)
	defer cancel()

	w := bs.storageClient.Bucket(bs.name).Object(key).NewWriter(ctx)
	if contentType == "" {
		contentType = ContentTypeForKey(key)
	}
	if contentType != "" {
		w.ContentType = contentType
	}
	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		_ = w.Close()
		return fmt.Errorf("failed to write data to GCS: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	bs.log.Debug("specimen uploaded", "key", key, "bytes", len(data))
	return nil
}

func (bs *specimenBucket) DeleteImage(dbc dbctx.Context, key string) error {
	ctx, cancel := context.WithTimeout(dbc.Ctx, 30*time.Second)
	defer cancel()
	if err := bs.storageClient.Bucket(bs.name).Object(key).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete GCS object %q in bucket %q: %w", key, bs.name, err)
	}
	return nil
}

func (bs *specimenBucket) GetPublicURL(key string) string {
	return PublicURL(bs.name, bs.cdnDomain, key)
}

func PublicURL(bucket, cdnDomain, key string) string {
	if cdnDomain != "" {
		return fmt.Sprintf("https://%s/%s", cdnDomain, key)
	}
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, key)
}

// SpecimenKey derives the object key for an image from its content hash.
func SpecimenKey(imageHash, mimeType string) string {
	return "specimens/" + imageHash + ExtensionForMime(mimeType)
}

func ExtensionForMime(mimeType string) string {
	switch strings.ToLower(strings.TrimSpace(mimeType)) {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	case "image/gif":
		return ".gif"
	case "image/heic":
		return ".heic"
	default:
		return ".jpg"
	}
}

func ContentTypeForKey(key string) string {
	s := strings.ToLower(strings.TrimSpace(key))
	if s == "" {
		return ""
	}
	if i := strings.Index(s, "?"); i >= 0 {
		s = s[:i]
	}
	switch {
	case strings.HasSuffix(s, ".png"):
		return "image/png"
	case strings.HasSuffix(s, ".jpg"), strings.HasSuffix(s, ".jpeg"):
		return "image/jpeg"
	case strings.HasSuffix(s, ".webp"):
		return "image/webp"
	case strings.HasSuffix(s, ".gif"):
		return "image/gif"
	case strings.HasSuffix(s, ".heic"):
		return "image/heic"
	default:
		return ""
	}
}
