// Package storage moves generated content onto content-addressed storage and
// builds the public links handed back to callers.
//
// # Fetching
//
// Downloader pulls the bytes of a generated image over HTTP. Every fetch is
// bounded by the downloader timeout and any non-2xx status is an error:
//
//	d := storage.NewDownloader(30 * time.Second)
//	data, err := d.Fetch(ctx, imageURL)
//
// # Uploading
//
// By default uploads go through the remote upload capability (see the
// capability package). NewUploader returns a direct backend instead when
// Config.StorageMode asks for one:
//
// IPFS (storage_mode: ipfs):
//   - Kubo HTTP API "add" with pinning
//   - Basic auth from IPFS project id and secret
//   - Default: https://ipfs.infura.io:5001
//
// Lighthouse (storage_mode: lighthouse):
//   - POST {endpoint}/api/v0/add, multipart field "file"
//   - Bearer API key
//   - Default: https://node.lighthouse.storage
//
// Both return a model.StoredObject with the name, hash and size reported by
// the backend.
//
// # Links
//
// GatewayURL joins the configured gateway base and a hash:
//
//	storage.GatewayURL("https://gateway.mesh3.network/", "Qm...")
//	// https://gateway.mesh3.network/ipfs/Qm...
//
// CheckCID validates a hash with go-cid after FormatHash strips ipfs:// and
// filecoin:// prefixes. A malformed hash is logged but never blocks a link.
package storage
