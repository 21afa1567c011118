package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

const defaultFolder = "products"

type imageUploader interface {
	Upload(ctx context.Context, file interface{}, uploadParams uploader.UploadParams) (*uploader.UploadResult, error)
}

// CloudinaryStorage は画像をCloudinaryに上げてhttpsのURLを返す
type CloudinaryStorage struct {
	upload imageUploader
	folder string
}

func NewCloudinaryStorage(cloudinaryURL, folder string) (*CloudinaryStorage, error) {
	if cloudinaryURL == "" {
		return nil, errors.New("cloudinary URL is required")
	}
	cld, err := cloudinary.NewFromURL(cloudinaryURL)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}
	if folder == "" {
		folder = defaultFolder
	}
	return &CloudinaryStorage{upload: &cld.Upload, folder: folder}, nil
}

func (s *CloudinaryStorage) Save(ctx context.Context, name string, contentType string, r io.Reader) (string, error) {
	publicID := strings.TrimSuffix(filepath.Base(name), filepath.Ext(name))

	result, err := s.upload.Upload(ctx, r, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         s.folder,
		UseFilename:    boolPtr(true),
		UniqueFilename: boolPtr(false),
		Overwrite:      boolPtr(false),
		ResourceType:   "image",
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload image: %w", err)
	}
	if result == nil {
		return "", errors.New("empty upload result")
	}
	if result.Error.Message != "" {
		return "", fmt.Errorf("cloudinary: %s", result.Error.Message)
	}

	url := result.SecureURL
	if url == "" {
		url = result.URL
	}
	if url == "" {
		return "", errors.New("upload result has no url")
	}
	return forceHTTPS(url), nil
}

func boolPtr(v bool) *bool { return &v }

func forceHTTPS(in string) string {
	out := strings.TrimSpace(in)
	return strings.Replace(out, "http://", "https://", 1)
}
