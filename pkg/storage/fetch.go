package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// MaxDownloadBytes caps the body Fetch reads by default.
const MaxDownloadBytes = 32 << 20

// ErrTooLarge is returned when a download exceeds the size cap.
var ErrTooLarge = errors.New("download exceeds size limit")

// Downloader fetches raw bytes over plain HTTP GET.
type Downloader struct {
	Client  *http.Client
	Timeout time.Duration
	// MaxBytes caps the body size; MaxDownloadBytes when zero.
	MaxBytes int64
}

// NewDownloader returns a Downloader bounded by timeout (30s when zero).
func NewDownloader(timeout time.Duration) *Downloader {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Downloader{Client: &http.Client{}, Timeout: timeout}
}

// Fetch downloads url and returns the response body. Non-2xx responses are
// errors.
func (d *Downloader) Fetch(ctx context.Context, url string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, d.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	client := d.Client
	if client == nil {
		client = http.DefaultClient
	}

	zap.L().Debug("Downloading file", zap.String("url", url))
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("download %s: status code %d", url, resp.StatusCode)
	}
	limit := d.MaxBytes
	if limit <= 0 {
		limit = MaxDownloadBytes
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, fmt.Errorf("download %s: %w (%d bytes)", url, ErrTooLarge, limit)
	}
	return data, nil
}
