package storage

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	gcs "cloud.google.com/go/storage"
	"github.com/google/uuid"
	"google.golang.org/api/option"
)

// Uploader stores generated and uploaded images and serves public URLs.
type Uploader interface {
	// Upload writes data under folder and returns (publicURL, objectPath).
	Upload(ctx context.Context, data []byte, contentType, folder, name string) (string, string, error)
	// Fetch downloads an image by its public URL.
	Fetch(ctx context.Context, imageURL string) ([]byte, error)
}

// GCSUploader stores objects in a Firebase-backed Cloud Storage bucket and
// exposes them through firebasestorage.googleapis.com download-token URLs.
type GCSUploader struct {
	client     *gcs.Client
	bucket     string
	httpClient *http.Client
}

func NewGCSUploader(ctx context.Context, bucket, credsFile string) (*GCSUploader, error) {
	var opts []option.ClientOption
	if credsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credsFile))
	}
	client, err := gcs.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage client: %w", err)
	}
	return &GCSUploader{
		client:     client,
		bucket:     bucket,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}, nil
}

func (u *GCSUploader) Upload(ctx context.Context, data []byte, contentType, folder, name string) (string, string, error) {
	if name == "" {
		name = uuid.NewString() + ".png"
	}
	if contentType == "" {
		contentType = "image/png"
	}
	objectPath := path.Join(folder, name)

	token := uuid.NewString()
	obj := u.client.Bucket(u.bucket).Object(objectPath)
	w := obj.NewWriter(ctx)
	w.ContentType = contentType
	w.Metadata = map[string]string{
		"firebaseStorageDownloadTokens": token,
	}
	if _, err := w.Write(data); err != nil {
		return "", "", fmt.Errorf("storage write %s: %w", objectPath, err)
	}
	if err := w.Close(); err != nil {
		return "", "", fmt.Errorf("storage close %s: %w", objectPath, err)
	}

	escapedPath := url.PathEscape(objectPath)
	publicURL := fmt.Sprintf("https://firebasestorage.googleapis.com/v0/b/%s/o/%s?alt=media&token=%s",
		u.bucket, escapedPath, token)
	return publicURL, objectPath, nil
}

func (u *GCSUploader) Fetch(ctx context.Context, imageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return nil, err
	}
	res, err := u.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("storage fetch: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("storage fetch: status %d for %s", res.StatusCode, imageURL)
	}
	return io.ReadAll(res.Body)
}
