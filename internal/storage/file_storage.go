package storage

import (
	"context"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/pkg/errors"
)

// FileImageLoader loads site images from the local filesystem.
type FileImageLoader struct{}

// NewFileImageLoader creates a filesystem image loader.
func NewFileImageLoader() *FileImageLoader {
	return &FileImageLoader{}
}

// FetchImage decodes the image at the given path. A file:// prefix is
// accepted and stripped.
func (l *FileImageLoader) FetchImage(ctx context.Context, path string) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path = strings.TrimPrefix(path, "file://")

	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "open image file")
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, errors.Wrap(err, "decode image file")
	}
	return img, nil
}
