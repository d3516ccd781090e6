package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/shamank/skynet-gateway/pkg/model"
	"go.uber.org/zap"
)

// LighthouseUploader stores files through the Lighthouse node API
// (POST {endpoint}/api/v0/add, bearer API key).
type LighthouseUploader struct {
	Client   *http.Client
	endpoint string
	apiKey   string
	timeout  time.Duration
}

// NewLighthouseUploader returns an uploader for the Lighthouse node at endpoint.
func NewLighthouseUploader(endpoint, apiKey string, timeout time.Duration) (*LighthouseUploader, error) {
	if apiKey == "" {
		return nil, errors.New("lighthouse API key is required")
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &LighthouseUploader{
		Client:   &http.Client{},
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
		timeout:  timeout,
	}, nil
}

// Upload posts data as a multipart "file" field named name.
func (u *LighthouseUploader) Upload(ctx context.Context, name string, data []byte) (model.StoredObject, error) {
	var obj model.StoredObject
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return obj, err
	}
	if _, err := part.Write(data); err != nil {
		return obj, err
	}
	if err := mw.Close(); err != nil {
		return obj, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.endpoint+"/api/v0/add", &body)
	if err != nil {
		return obj, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+u.apiKey)

	resp, err := u.Client.Do(req)
	if err != nil {
		zap.L().Error("error uploading to lighthouse", zap.Error(err))
		return obj, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return obj, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		zap.L().Error("lighthouse upload rejected", zap.Int("status", resp.StatusCode), zap.ByteString("body", raw))
		return obj, fmt.Errorf("lighthouse upload: status code %d", resp.StatusCode)
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return obj, fmt.Errorf("decode lighthouse response: %w", err)
	}
	if obj.Hash == "" {
		return obj, errors.New("lighthouse returned no hash")
	}
	CheckCID(obj.Hash)

	zap.L().Debug("Successfully uploaded to Lighthouse", zap.String("hash", obj.Hash), zap.String("name", name))
	return obj, nil
}
