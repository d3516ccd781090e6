package storage

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/ipfs/kubo/client/rpc"
	"github.com/shamank/skynet-gateway/pkg/model"
	"go.uber.org/zap"
)

// IPFSUploader adds files to an IPFS node through the Kubo HTTP API.
type IPFSUploader struct {
	api     *rpc.HttpApi
	timeout time.Duration
}

// NewIPFSClient constructs a Kubo HTTP API client pointed at url.
func NewIPFSClient(url string, timeout time.Duration) (*rpc.HttpApi, error) {
	httpClient := http.Client{Timeout: timeout}
	client, err := rpc.NewURLApiWithClient(url, &httpClient)
	if err != nil {
		zap.L().Error("Connection failed to IPFS", zap.String("url", url), zap.Error(err))
		return nil, err
	}
	return client, nil
}

// NewIPFSUploader returns an uploader for the node at url. projectID and
// secret, when set, are sent as HTTP basic credentials (Infura style) on
// every request the client makes, including its version probe.
func NewIPFSUploader(url, projectID, secret string, timeout time.Duration) (*IPFSUploader, error) {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	api, err := NewIPFSClient(url, timeout)
	if err != nil {
		return nil, err
	}
	u := &IPFSUploader{api: api, timeout: timeout}
	if projectID != "" || secret != "" {
		if api.Headers == nil {
			api.Headers = http.Header{}
		}
		api.Headers.Set("Authorization", "Basic "+base64.StdEncoding.EncodeToString([]byte(projectID+":"+secret)))
	}
	return u, nil
}

// Upload adds data as a single pinned file. The returned object carries the
// CID reported by the node.
func (u *IPFSUploader) Upload(ctx context.Context, name string, data []byte) (obj model.StoredObject, err error) {
	if u.api == nil {
		return obj, errors.New("ipfs client not configured")
	}
	ctx, cancel := context.WithTimeout(ctx, u.timeout)
	defer cancel()

	resp, err := u.api.Request("add").
		Option("pin", true).
		FileBody(bytes.NewReader(data)).
		Send(ctx)
	if err != nil {
		zap.L().Error("error uploading to ipfs", zap.Error(err))
		return obj, err
	}
	defer func(resp *rpc.Response) {
		if cerr := resp.Close(); cerr != nil {
			zap.L().Error("error closing ipfs response", zap.Error(cerr))
		}
	}(resp)

	if resp.Error != nil {
		zap.L().Error("ipfs add command returned error", zap.Error(resp.Error))
		return obj, resp.Error
	}

	body, err := io.ReadAll(resp.Output)
	if err != nil {
		zap.L().Error("error reading ipfs add response", zap.Error(err))
		return obj, err
	}
	if err := json.Unmarshal(body, &obj); err != nil {
		zap.L().Error("error unmarshaling ipfs add response", zap.Error(err))
		return obj, err
	}
	if obj.Hash == "" {
		return obj, errors.New("ipfs add returned no hash")
	}
	obj.Name = name
	CheckCID(obj.Hash)

	zap.L().Debug("Successfully uploaded to IPFS", zap.String("hash", obj.Hash), zap.String("name", name))
	return obj, nil
}
