package model

import "encoding/json"

// ImageGeneration is the image capability response. Only the fields the
// gateway relies on are declared.
type ImageGeneration struct {
	Image ImageBatch `json:"image"`
}

// ImageBatch mirrors an OpenAI images response.
type ImageBatch struct {
	Created int64            `json:"created"`
	Data    []GeneratedImage `json:"data"`
}

// GeneratedImage is one generated image reference.
type GeneratedImage struct {
	URL           string `json:"url"`
	RevisedPrompt string `json:"revised_prompt,omitempty"`
}

// First returns the first image of the batch, if any.
func (g ImageGeneration) First() (GeneratedImage, bool) {
	if len(g.Image.Data) == 0 {
		return GeneratedImage{}, false
	}
	return g.Image.Data[0], true
}

// UploadReceipt is the upload capability response, nested as
// data.data[i].data.Hash.
type UploadReceipt struct {
	Data UploadBatch `json:"data"`
}

// UploadBatch lists the stored files.
type UploadBatch struct {
	Data []UploadedFile `json:"data"`
}

// UploadedFile wraps one stored file descriptor.
type UploadedFile struct {
	Data StoredObject `json:"data"`
}

// StoredObject is the storage backend's description of a stored file.
type StoredObject struct {
	Name string `json:"Name,omitempty"`
	Hash string `json:"Hash"`
	Size string `json:"Size,omitempty"`
}

// NewUploadReceipt builds a receipt for a single stored object, used by the
// direct storage backends so they answer in the capability's shape.
func NewUploadReceipt(obj StoredObject) UploadReceipt {
	return UploadReceipt{Data: UploadBatch{Data: []UploadedFile{{Data: obj}}}}
}

// Hash returns the content hash of the first stored file, or "".
func (u UploadReceipt) Hash() string {
	if len(u.Data.Data) == 0 {
		return ""
	}
	return u.Data.Data[0].Data.Hash
}

// Completion is a provider-specific JSON document returned verbatim by the
// text, deployment and pod capabilities.
type Completion = json.RawMessage

// PipelineResult is the composed image pipeline output.
type PipelineResult struct {
	OriginalPrompt string `json:"originalPrompt"`
	RevisedPrompt  string `json:"revisedPrompt,omitempty"`
	ImageURL       string `json:"imageUrl"`
	IPFSURL        string `json:"ipfsUrl"`
	IPFSHash       string `json:"ipfshash"`
}

// Pool is one resource-accounting bucket (a Skynet app) of the project and
// the subnets it is funded on.
type Pool struct {
	AppID   string   `json:"appId"`
	Name    string   `json:"appName"`
	Subnets []string `json:"subnetList"`
}

// HasSubnet reports whether the pool is associated with subnetID.
func (p Pool) HasSubnet(subnetID string) bool {
	for _, s := range p.Subnets {
		if s == subnetID {
			return true
		}
	}
	return false
}

// TextResult is returned by the text endpoint: the text found in the
// provider response, plus the raw response itself.
type TextResult struct {
	Provider string     `json:"provider"`
	Model    string     `json:"model,omitempty"`
	Text     string     `json:"text"`
	Response Completion `json:"response"`
}
