package model

// AuthorizationPayload is the signed proof of identity attached to every
// outbound capability call. Message is the signed text, Signature the 0x-hex
// EIP-191 signature over it, and UserAddress the signer.
type AuthorizationPayload struct {
	UserAddress string `json:"userAddress"`
	Signature   string `json:"signature"`
	Message     string `json:"message"`
}

// Envelope carries the fields common to every capability request body.
type Envelope struct {
	UserAuthPayload AuthorizationPayload `json:"userAuthPayload"`
	NftID           string               `json:"nftId"`
}

// PromptRequest is the body for prompt-driven capabilities (OpenAI, StackOS, RunPod).
type PromptRequest struct {
	Envelope
	Prompt string `json:"prompt"`
}

// ChatMessage is a single chat turn.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatRequest is the body for chat-style capabilities (Claude).
type ChatRequest struct {
	Envelope
	Messages []ChatMessage `json:"messages"`
	Model    string        `json:"model"`
}
