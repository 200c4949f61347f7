package repository

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	apperrors "go-solar-inspector/internal/errors"
	"go-solar-inspector/internal/storage"
)

func newTestRepository() ImageRepository {
	return NewImageRepository(storage.NewHTTPImageFetcher(), storage.NewFileImageLoader(), nil)
}

func TestValidateImageRef(t *testing.T) {
	repo := newTestRepository()

	tests := []struct {
		name    string
		ref     string
		wantErr bool
	}{
		{"http URL", "http://example.com/site.jpg", false},
		{"https URL", "https://example.com/site.jpg", false},
		{"local path", "/data/site.jpg", false},
		{"file scheme", "file:///data/site.jpg", false},
		{"empty", "", true},
		{"blank", "   ", true},
		{"URL without host", "http://", true},
		{"azblob without configured storage", "azblob://sites/site.jpg", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := repo.ValidateImageRef(tt.ref)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateImageRef(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if err != nil && !apperrors.IsType(err, apperrors.ErrorTypeValidation) {
				t.Errorf("Expected validation error, got %v", err)
			}
		})
	}
}

func TestLoadImage_FromFile(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 3, 3))
	img.Set(1, 1, color.RGBA{200, 100, 50, 255})

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(t.TempDir(), "site.png")
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		t.Fatal(err)
	}

	repo := newTestRepository()
	loaded, err := repo.LoadImage(context.Background(), path)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if loaded.Bounds().Dx() != 3 {
		t.Errorf("Expected 3px wide image, got %v", loaded.Bounds())
	}
}

func TestLoadImage_RejectsInvalidRef(t *testing.T) {
	repo := newTestRepository()

	if _, err := repo.LoadImage(context.Background(), ""); err == nil {
		t.Fatal("Expected validation error for empty ref")
	}
}
