package application

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"

	"github.com/loopline-app/loopline-api/pkg/helpers"
)

var ErrBadContentType = errors.New("unsupported content type")

// UploadService issues short-lived signed PUT URLs so clients upload images
// straight to the bucket; the API never proxies file bytes.
type UploadService struct {
	GCS    *storage.Client
	Bucket string
	TTL    time.Duration
}

func NewUploadService(gcs *storage.Client, bucket string, ttl time.Duration) *UploadService {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &UploadService{GCS: gcs, Bucket: bucket, TTL: ttl}
}

// SignedUploadURL returns a random object name derived from the content type
// plus a signed URL the client can PUT the object to.
func (s *UploadService) SignedUploadURL(contentType string) (fileName string, uploadURL string, err error) {
	if s.GCS == nil || s.Bucket == "" {
		return "", "", errors.New("object storage not configured")
	}
	ext := extensionFor(contentType)
	if ext == "" {
		return "", "", ErrBadContentType
	}
	fileName = uuid.NewString() + "." + ext

	uploadURL, err = s.GCS.Bucket(s.Bucket).SignedURL(fileName, &storage.SignedURLOptions{
		Method:      "PUT",
		ContentType: contentType,
		Expires:     time.Now().Add(s.TTL),
		Scheme:      storage.SigningSchemeV4,
	})
	if err != nil {
		return "", "", err
	}
	return fileName, uploadURL, nil
}

// UploadAvatar streams an image into the bucket under avatars/<userID>/ and
// returns its public URL. Used for direct multipart uploads; larger assets
// should go through SignedUploadURL instead.
func (s *UploadService) UploadAvatar(ctx context.Context, userID string, r io.Reader, filename, contentType string) (string, error) {
	if s.GCS == nil || s.Bucket == "" {
		return "", errors.New("object storage not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", userID, uuid.NewString()+ext))
	return helpers.UploadObject(ctx, s.GCS, s.Bucket, objectPath, contentType, r)
}

func extensionFor(contentType string) string {
	parts := strings.SplitN(contentType, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return ""
	}
	return parts[1]
}
