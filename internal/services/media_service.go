package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"backoffice/internal/apiclient"
	"backoffice/internal/domain"
	"backoffice/internal/domain/models"
)

var imageExtensions = map[string]bool{".png": true, ".jpg": true, ".jpeg": true, ".webp": true, ".gif": true}

// ImageUpload is a file received from the dashboard.
type ImageUpload struct {
	Filename string
	Content  io.Reader
}

// MediaService uploads images and makes entities reference them by image_name.
type MediaService struct {
	Client    *apiclient.Client
	Audit     AuditService
	RequestID string
}

// Upload sends one image to the upload endpoint under folder.
func (s MediaService) Upload(ctx context.Context, folder string, file ImageUpload) (apiclient.UploadedImage, error) {
	folder = strings.Trim(strings.TrimSpace(folder), "/")
	if folder == "" {
		return apiclient.UploadedImage{}, domain.ValidationError{Field: "folder", Msg: "is required"}
	}
	ext := strings.ToLower(filepath.Ext(file.Filename))
	if !imageExtensions[ext] {
		return apiclient.UploadedImage{}, domain.ValidationError{Field: "image", Msg: fmt.Sprintf("unsupported image type %q", ext)}
	}
	img, err := s.Client.UploadImage(ctx, folder, filepath.Base(file.Filename), file.Content)
	s.Audit.Record(ctx, folder, "upload", 0, err)
	return img, err
}

// Attach uploads file and stores the returned image_name on payload. The URL
// is returned for preview only and is never persisted.
func (s MediaService) Attach(ctx context.Context, folder string, payload any, file ImageUpload) (apiclient.UploadedImage, error) {
	ref, ok := payload.(models.ImageReference)
	if !ok {
		return apiclient.UploadedImage{}, domain.ValidationError{Field: "image", Msg: "this form does not take an image"}
	}
	img, err := s.Upload(ctx, folder, file)
	if err != nil {
		return apiclient.UploadedImage{}, err
	}
	ref.SetImage(img.Name)
	return img, nil
}
