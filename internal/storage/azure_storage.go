package storage

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"strings"

	"github.com/Azure/azure-sdk-for-go/sdk/storage/azblob"
)

// BlobStorage reads site images from and archives generated reports to
// Azure Blob Storage.
type BlobStorage interface {
	GetImage(ctx context.Context, blobRef string) (image.Image, error)
	UploadReport(ctx context.Context, container, blobName string, data []byte) (string, error)
}

type azureStorage struct {
	client      *azblob.Client
	accountName string
}

// NewAzureStorage creates a blob storage client with shared key credentials.
func NewAzureStorage(accountName string, accountKey string) (BlobStorage, error) {
	credential, err := azblob.NewSharedKeyCredential(accountName, accountKey)
	if err != nil {
		return nil, err
	}

	client, err := azblob.NewClientWithSharedKeyCredential(
		fmt.Sprintf("https://%s.blob.core.windows.net", accountName),
		credential,
		nil,
	)
	if err != nil {
		return nil, err
	}

	return &azureStorage{client: client, accountName: accountName}, nil
}

// GetImage downloads and decodes a blob referenced as
// azblob://container/path/to/image.jpg.
func (s *azureStorage) GetImage(ctx context.Context, blobRef string) (image.Image, error) {
	container, blobName, err := parseBlobRef(blobRef)
	if err != nil {
		return nil, err
	}

	downloadResponse, err := s.client.DownloadStream(ctx, container, blobName, nil)
	if err != nil {
		return nil, fmt.Errorf("download failed: %w", err)
	}

	retryReader := downloadResponse.Body
	defer retryReader.Close()

	img, _, err := image.Decode(retryReader)
	return img, err
}

// UploadReport stores a generated report and returns its blob URL.
func (s *azureStorage) UploadReport(ctx context.Context, container, blobName string, data []byte) (string, error) {
	_, err := s.client.UploadBuffer(ctx, container, blobName, data, nil)
	if err != nil {
		return "", fmt.Errorf("upload failed: %w", err)
	}
	return fmt.Sprintf("https://%s.blob.core.windows.net/%s/%s", s.accountName, container, blobName), nil
}

func parseBlobRef(blobRef string) (container, blobName string, err error) {
	trimmed := strings.TrimPrefix(blobRef, "azblob://")
	parts := strings.SplitN(trimmed, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid blob reference %q (want azblob://container/blob)", blobRef)
	}
	return parts[0], parts[1], nil
}
