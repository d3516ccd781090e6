package storage

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/ipfs/go-cid"
	"github.com/shamank/skynet-gateway/pkg/config"
	"github.com/shamank/skynet-gateway/pkg/model"
	"go.uber.org/zap"
)

const (
	// IpfsPrefix is the URI scheme prefix recognized for IPFS content.
	IpfsPrefix = "ipfs://"
	// FilecoinPrefix is the URI scheme prefix recognized for Filecoin/Lighthouse content.
	FilecoinPrefix = "filecoin://"
)

// Uploader stores a named blob and returns what the backend recorded.
type Uploader interface {
	Upload(ctx context.Context, name string, data []byte) (model.StoredObject, error)
}

// NewUploader returns the direct Uploader for cfg.StorageMode, or nil when
// uploads go through the upload capability.
func NewUploader(cfg *config.Config) (Uploader, error) {
	switch cfg.StorageMode {
	case config.StorageCapability, "":
		return nil, nil
	case config.StorageIPFS:
		return NewIPFSUploader(cfg.Storage.IPFSAPIURL, cfg.Storage.IPFSProjectID, cfg.Storage.IPFSProjectSecret, cfg.Timeouts.Call)
	case config.StorageLighthouse:
		return NewLighthouseUploader(cfg.Storage.LighthouseAPIURL, cfg.Storage.LighthouseAPIKey, cfg.Timeouts.Call)
	default:
		return nil, fmt.Errorf("unknown storage mode %q", cfg.StorageMode)
	}
}

// GatewayURL builds the public link <base>/ipfs/<hash>.
func GatewayURL(base, hash string) string {
	return strings.TrimRight(base, "/") + "/ipfs/" + hash
}

// CheckCID reports whether hash parses as a CID. A malformed hash is only
// logged: the link is still built from whatever the backend returned.
func CheckCID(hash string) bool {
	if _, err := cid.Decode(FormatHash(hash)); err != nil {
		zap.L().Warn("storage returned a hash that is not a valid CID", zap.String("hash", hash), zap.Error(err))
		return false
	}
	return true
}

var specialCharacters = regexp.MustCompile("[^a-zA-Z0-9=]")

// FormatHash removes known URI scheme prefixes and any character other than
// ASCII letters, digits and '=' from hash.
func FormatHash(hash string) string {
	hash = strings.ReplaceAll(hash, IpfsPrefix, "")
	hash = strings.ReplaceAll(hash, FilecoinPrefix, "")
	return specialCharacters.ReplaceAllString(hash, "")
}
