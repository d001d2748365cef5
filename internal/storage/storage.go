// Package storage keeps uploaded post images.
package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// KeyPrefix is the directory every post image lives under.
const KeyPrefix = "posts/"

// Raster formats browsers display inline. SVG is left out since it can carry script.
var imageTypes = []string{"image/jpeg", "image/png", "image/gif", "image/webp", "image/bmp"}

// ImageStore persists image bytes and maps stored keys to public URLs.
// The key extension and content type both come from the sniffed mt, never from the upload's filename.
type ImageStore interface {
	Save(ctx context.Context, r io.Reader, size int64, mt *mimetype.MIME) (string, error)
	URL(key string) string
}

// AllowedImage reports whether mt is one of the accepted image formats.
func AllowedImage(mt *mimetype.MIME) bool {
	if mt == nil {
		return false
	}
	for _, t := range imageTypes {
		if mt.Is(t) {
			return true
		}
	}
	return false
}

// NewKey builds a unique object key with the extension of the detected type.
func NewKey(mt *mimetype.MIME) string {
	return KeyPrefix + uuid.New().String() + mt.Extension()
}

func joinURL(base, key string) string {
	if key == "" {
		return ""
	}
	return fmt.Sprintf("%s/%s", strings.TrimSuffix(base, "/"), strings.TrimPrefix(key, "/"))
}
