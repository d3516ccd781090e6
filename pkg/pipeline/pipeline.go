// Package pipeline implements the generate, download, upload and compose
// sequence behind the image endpoint.
package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/shamank/skynet-gateway/pkg/metrics"
	"github.com/shamank/skynet-gateway/pkg/model"
	"github.com/shamank/skynet-gateway/pkg/storage"
	"go.uber.org/zap"
)

// ImageFileName is the name uploaded images are stored under.
const ImageFileName = "generated-image.png"

var (
	// ErrImageGeneration is reported when the generator fails or returns no image URL.
	ErrImageGeneration = errors.New("Failed to generate image")
	// ErrIPFSUpload is reported when the upload fails or returns no hash.
	ErrIPFSUpload = errors.New("Failed to upload to IPFS")
)

// ImageGenerator produces images from a prompt.
type ImageGenerator interface {
	GenerateImage(ctx context.Context, prompt string) (model.Result[model.ImageGeneration], error)
}

// Fetcher downloads raw bytes.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// Uploader stores bytes on the storage network.
type Uploader interface {
	UploadToIPFS(ctx context.Context, name string, data []byte) (model.Result[model.UploadReceipt], error)
}

// Pipeline runs GenerateAndStore. It holds no per-request state and is safe
// for concurrent use.
type Pipeline struct {
	gen     ImageGenerator
	fetch   Fetcher
	up      Uploader
	gateway string
}

// New returns a Pipeline. gateway is the public IPFS gateway base used to
// build the returned link.
func New(gen ImageGenerator, fetch Fetcher, up Uploader, gateway string) *Pipeline {
	return &Pipeline{gen: gen, fetch: fetch, up: up, gateway: gateway}
}

type generated struct {
	url     string
	revised string
}

type downloaded struct {
	generated
	data []byte
}

type stored struct {
	downloaded
	hash string
}

// GenerateAndStore generates an image for prompt, downloads it, uploads it
// to IPFS and returns the composed links. Stages run in order and the first
// failure ends the run; no partial result is ever returned.
func (p *Pipeline) GenerateAndStore(ctx context.Context, prompt string) model.Result[model.PipelineResult] {
	start := time.Now()
	res := p.run(ctx, prompt)
	metrics.RecordPipelineRun(res.Success(), time.Since(start))
	if !res.Success() {
		zap.L().Error("image pipeline failed", zap.String("error", res.Error()))
	}
	return res
}

func (p *Pipeline) run(ctx context.Context, prompt string) model.Result[model.PipelineResult] {
	g, err := p.generate(ctx, prompt)
	if err != nil {
		return model.Fail[model.PipelineResult](err)
	}
	d, err := p.download(ctx, g)
	if err != nil {
		return model.Fail[model.PipelineResult](err)
	}
	s, err := p.store(ctx, d)
	if err != nil {
		return model.Fail[model.PipelineResult](err)
	}
	return model.Ok(p.compose(prompt, s))
}

func (p *Pipeline) generate(ctx context.Context, prompt string) (generated, error) {
	res, err := p.gen.GenerateImage(ctx, prompt)
	if err != nil {
		return generated{}, err
	}
	batch, ok := res.Data()
	if !ok {
		zap.L().Debug("image generation failed", zap.String("cause", res.Error()))
		return generated{}, ErrImageGeneration
	}
	img, ok := batch.First()
	if !ok || img.URL == "" {
		return generated{}, ErrImageGeneration
	}
	zap.L().Debug("image generated", zap.String("url", img.URL))
	return generated{url: img.URL, revised: img.RevisedPrompt}, nil
}

func (p *Pipeline) download(ctx context.Context, g generated) (downloaded, error) {
	data, err := p.fetch.Fetch(ctx, g.url)
	if err != nil {
		return downloaded{}, err
	}
	return downloaded{generated: g, data: data}, nil
}

func (p *Pipeline) store(ctx context.Context, d downloaded) (stored, error) {
	res, err := p.up.UploadToIPFS(ctx, ImageFileName, d.data)
	if err != nil {
		return stored{}, err
	}
	receipt, ok := res.Data()
	if !ok {
		zap.L().Debug("upload failed", zap.String("cause", res.Error()))
		return stored{}, ErrIPFSUpload
	}
	hash := receipt.Hash()
	if hash == "" {
		return stored{}, ErrIPFSUpload
	}
	zap.L().Debug("image stored", zap.String("hash", hash))
	return stored{downloaded: d, hash: hash}, nil
}

func (p *Pipeline) compose(prompt string, s stored) model.PipelineResult {
	storage.CheckCID(s.hash)
	return model.PipelineResult{
		OriginalPrompt: prompt,
		RevisedPrompt:  s.revised,
		ImageURL:       s.url,
		IPFSURL:        storage.GatewayURL(p.gateway, s.hash),
		IPFSHash:       s.hash,
	}
}
