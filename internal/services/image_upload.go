package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"yatube/internal/storage"

	"github.com/gabriel-vasile/mimetype"
)

var ErrUnsupportedImage = errors.New("unsupported image type")

// UploadImage stores an uploaded post image and returns its storage key.
func UploadImage(ctx context.Context, store storage.ImageStore, header *multipart.FileHeader) (string, error) {
	if store == nil {
		return "", fmt.Errorf("no image store configured")
	}

	file, err := header.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer file.Close()

	mt, err := mimetype.DetectReader(file)
	if err != nil {
		return "", fmt.Errorf("detect image type: %w", err)
	}
	if !storage.AllowedImage(mt) {
		return "", fmt.Errorf("%w: %s", ErrUnsupportedImage, mt)
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind upload: %w", err)
	}

	key, err := store.Save(ctx, file, header.Size, mt)
	if err != nil {
		return "", fmt.Errorf("save image: %w", err)
	}
	return key, nil
}
