// Package cloudinary uploads placement photos to Cloudinary.
package cloudinary

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"

	"github.com/example/skiphire/internal/ports/secondary"
)

// uploadAPI is the part of the Cloudinary upload API the store needs.
type uploadAPI interface {
	Upload(ctx context.Context, file interface{}, params uploader.UploadParams) (*uploader.UploadResult, error)
}

// PhotoStore implements secondary.PhotoStore with Cloudinary.
type PhotoStore struct {
	api    uploadAPI
	folder string
}

// NewPhotoStore creates a Cloudinary photo store from account credentials.
func NewPhotoStore(cloudName, apiKey, apiSecret, folder string) (*PhotoStore, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, fmt.Errorf("cloudinary credentials not set in configuration")
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise cloudinary: %w", err)
	}
	return &PhotoStore{api: &cld.Upload, folder: folder}, nil
}

// Upload sends the photo to <folder>/<session>-<name> and returns its secure URL.
func (s *PhotoStore) Upload(ctx context.Context, p secondary.PhotoUpload) (*secondary.PhotoReceipt, error) {
	result, err := s.api.Upload(ctx, p.Content, uploader.UploadParams{
		Folder:   s.folder,
		PublicID: publicID(p.SessionID, p.Filename),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to upload photo: %w", err)
	}
	if result.Error.Message != "" {
		return nil, fmt.Errorf("failed to upload photo: %s", result.Error.Message)
	}
	if result.SecureURL == "" {
		return nil, fmt.Errorf("failed to upload photo: no URL returned")
	}
	return &secondary.PhotoReceipt{Location: result.SecureURL}, nil
}

// publicID names an asset after its session and file stem.
func publicID(sessionID, filename string) string {
	stem := strings.TrimSuffix(filepath.Base(filename), filepath.Ext(filename))
	if stem == "" || stem == "." {
		return sessionID
	}
	return sessionID + "-" + stem
}

// Ensure PhotoStore implements the interface
var _ secondary.PhotoStore = (*PhotoStore)(nil)
