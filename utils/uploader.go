package utils

import (
	"fmt"
	"io"
	"net/http"
	"path"
	"time"

	"github.com/google/uuid"

	"projecthub/config"
)

// Uploader stores a blob with the external object-storage provider and
// returns the stable URL it will be served from.
type Uploader interface {
	Upload(filename, contentType string, body io.Reader, size int64) (string, error)
}

// HTTPUploader talks to the storage provider's ingest endpoint with a bearer
// token. Object keys are random so uploads never collide or overwrite.
type HTTPUploader struct {
	Endpoint string
	Token    string
	Client   *http.Client
}

func NewHTTPUploader(cfg config.StorageConfig) *HTTPUploader {
	return &HTTPUploader{
		Endpoint: cfg.Endpoint,
		Token:    cfg.Token,
		Client:   &http.Client{Timeout: 60 * time.Second},
	}
}

func (u *HTTPUploader) Upload(filename, contentType string, body io.Reader, size int64) (string, error) {
	key := uuid.NewString() + path.Ext(filename)
	url := fmt.Sprintf("%s/%s", u.Endpoint, key)

	req, err := http.NewRequest(http.MethodPut, url, body)
	if err != nil {
		return "", fmt.Errorf("failed to build upload request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+u.Token)
	req.Header.Set("Content-Type", contentType)
	req.ContentLength = size

	resp, err := u.Client.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("storage provider returned status %d", resp.StatusCode)
	}

	return url, nil
}
