// Package media stores service images in Cloudinary.
package media

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
)

var ErrNotConfigured = errors.New("image storage is not configured")

// Uploader stores an image and returns its public URL.
type Uploader interface {
	UploadImage(ctx context.Context, r io.Reader, name string) (string, error)
}

type CloudinaryUploader struct {
	cld    *cloudinary.Cloudinary
	folder string
}

func NewCloudinaryUploader(cloudName, apiKey, apiSecret, folder string) (*CloudinaryUploader, error) {
	if cloudName == "" || apiKey == "" || apiSecret == "" {
		return nil, ErrNotConfigured
	}
	cld, err := cloudinary.NewFromParams(cloudName, apiKey, apiSecret)
	if err != nil {
		return nil, fmt.Errorf("init cloudinary: %w", err)
	}
	return &CloudinaryUploader{cld: cld, folder: folder}, nil
}

func (u *CloudinaryUploader) UploadImage(ctx context.Context, r io.Reader, name string) (string, error) {
	res, err := u.cld.Upload.Upload(ctx, r, uploader.UploadParams{
		Folder:   u.folder,
		PublicID: name,
	})
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	if res.SecureURL == "" {
		return "", fmt.Errorf("upload image: no url returned")
	}
	return res.SecureURL, nil
}

// Disabled rejects every upload.
type Disabled struct{}

func (Disabled) UploadImage(context.Context, io.Reader, string) (string, error) {
	return "", ErrNotConfigured
}
