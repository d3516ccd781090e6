package capability

import (
	"strings"

	"github.com/shamank/skynet-gateway/pkg/config"
)

// Capability names.
const (
	OpenAI  = "openai"
	Claude  = "anthropic"
	StackOS = "stackai"
	RunPod  = "runpod"
	Upload  = "ipfs"
)

const (
	// ImageModel is the model requested for image generation.
	ImageModel = "dall-e-3"
	// ClaudeModel is the model named in Claude chat requests.
	ClaudeModel = "claude-3-5-sonnet-20241022"
	// MLPodPrompt is the fixed provisioning request sent to RunPod.
	MLPodPrompt = "Create a new pod name: 'RunPod Tensorflow' imageName: 'runpod/pytorch' ports: 8888/http volume: /workspace"
	// UploadPrompt accompanies every upload request.
	UploadPrompt = "Please upload the Buffer files"
	// UploadField is the multipart field carrying the file bytes.
	UploadField = "files"
)

// Capability is one remote endpoint together with the resource pool that
// pays for it.
type Capability struct {
	Name   string
	Pool   string
	Subnet string
	URL    string
}

// Catalog holds every capability the gateway can call.
type Catalog struct {
	OpenAI  Capability
	Claude  Capability
	StackOS Capability
	RunPod  Capability
	Upload  Capability
}

// NewCatalog builds the catalog from configured endpoints.
func NewCatalog(e config.Endpoints) Catalog {
	return Catalog{
		OpenAI:  Capability{Name: OpenAI, Pool: "openai", Subnet: "4", URL: e.OpenAI},
		Claude:  Capability{Name: Claude, Pool: "anthropic", Subnet: "5", URL: e.Claude},
		StackOS: Capability{Name: StackOS, Pool: "stackai", Subnet: "6", URL: e.StackOS},
		RunPod:  Capability{Name: RunPod, Pool: "runpod", Subnet: "7", URL: e.RunPod},
		Upload:  Capability{Name: Upload, Pool: "ipfs", Subnet: "8", URL: e.Upload},
	}
}

// forModel returns c with "{model}" in its URL replaced by model.
func (c Capability) forModel(model string) Capability {
	c.URL = strings.ReplaceAll(c.URL, "{model}", model)
	return c
}
