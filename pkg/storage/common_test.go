package storage

import (
	"testing"

	"github.com/shamank/skynet-gateway/pkg/config"
)

func TestGatewayURL(t *testing.T) {
	tests := []struct{ base, hash, want string }{
		{"https://gateway.mesh3.network", "QmHash", "https://gateway.mesh3.network/ipfs/QmHash"},
		{"https://gateway.mesh3.network/", "QmHash", "https://gateway.mesh3.network/ipfs/QmHash"},
		{"http://localhost:8080", "H", "http://localhost:8080/ipfs/H"},
	}
	for _, tt := range tests {
		if got := GatewayURL(tt.base, tt.hash); got != tt.want {
			t.Errorf("GatewayURL(%q, %q) = %q, want %q", tt.base, tt.hash, got, tt.want)
		}
	}
}

func TestFormatHash_SanitizesPrefixes(t *testing.T) {
	if got := FormatHash("ipfs://Qm-AbC=123!?#"); got != "QmAbC=123" {
		t.Fatalf("FormatHash returned %q, want %q", got, "QmAbC=123")
	}
	if got := FormatHash("filecoin://bafy-BeEf==/metadata"); got != "bafyBeEf==metadata" {
		t.Fatalf("FormatHash returned %q, want %q", got, "bafyBeEf==metadata")
	}
}

func TestCheckCID(t *testing.T) {
	if !CheckCID("QmYwAPJzv5CZsnA625s3Xf2nemtYgPpHdWEz79ojWnPbdG") {
		t.Fatal("expected CIDv0 to be valid")
	}
	if !CheckCID("ipfs://bafybeigdyrzt5sfp7udm7hu76uh7y26nf3efuylqabf3oclgtqy55fbzdi") {
		t.Fatal("expected prefixed CIDv1 to be valid")
	}
	if CheckCID("H") {
		t.Fatal("expected a bare letter to be rejected")
	}
}

func TestNewUploaderSelectsMode(t *testing.T) {
	cfg := &config.Config{StorageMode: config.StorageCapability}
	u, err := NewUploader(cfg)
	if err != nil || u != nil {
		t.Fatalf("capability mode should have no direct uploader, got %v, %v", u, err)
	}

	cfg = &config.Config{StorageMode: config.StorageLighthouse}
	cfg.Storage.LighthouseAPIURL = "https://node.lighthouse.storage"
	if _, err := NewUploader(cfg); err == nil {
		t.Fatal("expected error for lighthouse without API key")
	}
	cfg.Storage.LighthouseAPIKey = "key"
	u, err = NewUploader(cfg)
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	if _, ok := u.(*LighthouseUploader); !ok {
		t.Fatalf("expected *LighthouseUploader, got %T", u)
	}

	cfg = &config.Config{StorageMode: config.StorageIPFS}
	cfg.Storage.IPFSAPIURL = "http://127.0.0.1:5001"
	u, err = NewUploader(cfg)
	if err != nil {
		t.Fatalf("NewUploader: %v", err)
	}
	if _, ok := u.(*IPFSUploader); !ok {
		t.Fatalf("expected *IPFSUploader, got %T", u)
	}

	if _, err := NewUploader(&config.Config{StorageMode: "s3"}); err == nil {
		t.Fatal("expected error for unknown mode")
	}
}
