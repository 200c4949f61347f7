package repository

import (
	"context"
	"image"
	"net/url"
	"strings"

	apperrors "go-solar-inspector/internal/errors"
	"go-solar-inspector/internal/storage"
)

// ImageRepository resolves an image reference to a decoded image.
type ImageRepository interface {
	LoadImage(ctx context.Context, imageRef string) (image.Image, error)
	ValidateImageRef(imageRef string) error
}

// imageRepository dispatches to a fetcher by reference scheme: http(s)
// URLs, azblob:// references, and local file paths.
type imageRepository struct {
	httpFetcher storage.ImageFetcher
	fileLoader  *storage.FileImageLoader
	blobStorage storage.BlobStorage // nil when Azure is not configured
}

// NewImageRepository creates a repository over the configured sources.
// blobStorage may be nil.
func NewImageRepository(httpFetcher storage.ImageFetcher, fileLoader *storage.FileImageLoader, blobStorage storage.BlobStorage) ImageRepository {
	return &imageRepository{
		httpFetcher: httpFetcher,
		fileLoader:  fileLoader,
		blobStorage: blobStorage,
	}
}

func (r *imageRepository) LoadImage(ctx context.Context, imageRef string) (image.Image, error) {
	if err := r.ValidateImageRef(imageRef); err != nil {
		return nil, err
	}

	switch {
	case strings.HasPrefix(imageRef, "http://"), strings.HasPrefix(imageRef, "https://"):
		return r.httpFetcher.FetchImage(ctx, imageRef)
	case strings.HasPrefix(imageRef, "azblob://"):
		return r.blobStorage.GetImage(ctx, imageRef)
	default:
		return r.fileLoader.FetchImage(ctx, imageRef)
	}
}

func (r *imageRepository) ValidateImageRef(imageRef string) error {
	if strings.TrimSpace(imageRef) == "" {
		return apperrors.NewValidationError("image reference is empty", nil)
	}

	if strings.HasPrefix(imageRef, "http://") || strings.HasPrefix(imageRef, "https://") {
		parsed, err := url.Parse(imageRef)
		if err != nil {
			return apperrors.NewValidationError("invalid image URL", err)
		}
		if parsed.Host == "" {
			return apperrors.NewValidationError("image URL must have a host", nil)
		}
		return nil
	}

	if strings.HasPrefix(imageRef, "azblob://") && r.blobStorage == nil {
		return apperrors.NewValidationError("azure blob storage is not configured", nil)
	}
	return nil
}
