package capability

import (
	"context"
	"time"

	"github.com/shamank/skynet-gateway/pkg/metrics"
	"github.com/shamank/skynet-gateway/pkg/model"
	"go.uber.org/zap"
)

// GenerateImage asks the OpenAI capability for a DALL-E 3 image.
func (c *Client) GenerateImage(ctx context.Context, prompt string) (model.Result[model.ImageGeneration], error) {
	return call[model.ImageGeneration](ctx, c, c.catalog.OpenAI.forModel(ImageModel), promptBody(prompt))
}

// GenerateWithOpenAI asks the OpenAI capability to complete prompt with the named model.
func (c *Client) GenerateWithOpenAI(ctx context.Context, prompt, name string) (model.Result[model.Completion], error) {
	return call[model.Completion](ctx, c, c.catalog.OpenAI.forModel(name), promptBody(prompt))
}

// GenerateWithClaude sends prompt as a single user message to Claude.
func (c *Client) GenerateWithClaude(ctx context.Context, prompt string) (model.Result[model.Completion], error) {
	return call[model.Completion](ctx, c, c.catalog.Claude, func(env model.Envelope) any {
		return model.ChatRequest{
			Envelope: env,
			Messages: []model.ChatMessage{{Role: "user", Content: prompt}},
			Model:    ClaudeModel,
		}
	})
}

// CreateDockerApp asks StackOS to deploy the app described by prompt.
func (c *Client) CreateDockerApp(ctx context.Context, prompt string) (model.Result[model.Completion], error) {
	return call[model.Completion](ctx, c, c.catalog.StackOS, promptBody(prompt))
}

// CreateMLPod asks RunPod for the standard PyTorch pod.
func (c *Client) CreateMLPod(ctx context.Context) (model.Result[model.Completion], error) {
	return call[model.Completion](ctx, c, c.catalog.RunPod, promptBody(MLPodPrompt))
}

// UploadToIPFS stores data under name, through the upload capability or the
// configured direct backend.
func (c *Client) UploadToIPFS(ctx context.Context, name string, data []byte) (model.Result[model.UploadReceipt], error) {
	if c.direct == nil {
		return upload[model.UploadReceipt](ctx, c, c.catalog.Upload, name, data)
	}

	capb := c.catalog.Upload
	if !c.gate.EnsureBudget(ctx, capb.Pool, capb.Subnet) {
		return model.Fail[model.UploadReceipt](ErrBudgetUnverified), nil
	}
	start := time.Now()
	obj, err := c.direct.Upload(ctx, name, data)
	metrics.RecordCapabilityCall(capb.Name, err == nil, time.Since(start))
	if err != nil {
		zap.L().Error("direct upload failed", zap.String("file", name), zap.Error(err))
		return model.Fail[model.UploadReceipt](err), nil
	}
	return model.Ok(model.NewUploadReceipt(obj)), nil
}

func promptBody(prompt string) func(model.Envelope) any {
	return func(env model.Envelope) any {
		return model.PromptRequest{Envelope: env, Prompt: prompt}
	}
}
