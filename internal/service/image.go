package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/tastebook/backend/config"
)

// ErrUploadFailed wraps object-storage upload errors so handlers can
// distinguish "retry later" from client validation failures.
var ErrUploadFailed = errors.New("image upload failed")

// ImageService stores recipe images in S3.
type ImageService struct {
	s3Config *config.S3Config
}

// NewImageService creates a new ImageService instance
func NewImageService(s3Config *config.S3Config) *ImageService {
	return &ImageService{s3Config: s3Config}
}

// Upload stores image data under a unique key derived from suggestedName
// and returns the public URL.
func (s *ImageService) Upload(ctx context.Context, data []byte, suggestedName string) (string, error) {
	ext := path.Ext(suggestedName)
	if ext == "" {
		ext = ".png"
	}
	key := fmt.Sprintf("recipe-images/%s%s", uuid.New().String(), ext)

	contentType := http.DetectContentType(data)
	_, err := s.s3Config.Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.s3Config.BucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUploadFailed, err)
	}

	publicURL := fmt.Sprintf("https://%s.s3.amazonaws.com/%s", s.s3Config.BucketName, key)
	log.Printf("[ImageService] Uploaded image to S3: %s", publicURL)
	return publicURL, nil
}

// Delete removes a previously uploaded image. Callers treat failures as
// best-effort; the error is returned for logging only.
func (s *ImageService) Delete(ctx context.Context, url string) error {
	key, ok := s.objectKey(url)
	if !ok {
		return fmt.Errorf("url %q does not belong to bucket %s", url, s.s3Config.BucketName)
	}

	_, err := s.s3Config.Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.s3Config.BucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete %s from S3: %w", key, err)
	}
	return nil
}

// objectKey extracts the S3 object key from a public URL produced by Upload.
func (s *ImageService) objectKey(url string) (string, bool) {
	prefix := fmt.Sprintf("https://%s.s3.amazonaws.com/", s.s3Config.BucketName)
	if !strings.HasPrefix(url, prefix) {
		return "", false
	}
	return strings.TrimPrefix(url, prefix), true
}
