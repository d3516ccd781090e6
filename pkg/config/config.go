package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Storage modes accepted by Config.StorageMode.
const (
	// StorageCapability uploads through the remote upload capability endpoint.
	StorageCapability = "capability"
	// StorageIPFS uploads straight to an IPFS node (Kubo HTTP API).
	StorageIPFS = "ipfs"
	// StorageLighthouse uploads to the Lighthouse storage API.
	StorageLighthouse = "lighthouse"
)

// Config holds all settings required to initialize the session, the budget
// gate, the capability adapter and the HTTP front door.
// Use Validate to fill implicit defaults and to check for required fields.
type Config struct {
	// RPCAddr is the Ethereum RPC/WS endpoint URL (required).
	RPCAddr string `koanf:"rpc_addr" json:"rpc_addr" yaml:"rpc_addr"`
	// PrivateKey is the hex-encoded ECDSA key of the agent (required).
	PrivateKey string `koanf:"private_key" json:"-" yaml:"private_key"`
	// ProjectID is the AppNFT id the gateway spends against (required).
	ProjectID string `koanf:"project_id" json:"project_id" yaml:"project_id"`
	// AgentAddress is the address expected to own or hold a role on ProjectID (required).
	AgentAddress string `koanf:"agent_address" json:"agent_address" yaml:"agent_address"`
	// DefaultResourceBudget is the per-pool allocation in ether units, e.g. "0.5".
	DefaultResourceBudget string `koanf:"default_resource_budget" json:"default_resource_budget" yaml:"default_resource_budget"`

	// Port is the HTTP listening port. Default: 3000.
	Port int `koanf:"port" json:"port" yaml:"port"`
	// HealthPort is the gRPC health port; 0 disables the gRPC health server.
	HealthPort int `koanf:"health_port" json:"health_port" yaml:"health_port"`
	// Debug enables verbose logging.
	Debug bool `koanf:"debug" json:"debug" yaml:"debug"`

	// IPFSGateway is the public gateway base used to build user-facing links.
	// Default: https://gateway.mesh3.network
	IPFSGateway string `koanf:"ipfs_gateway" json:"ipfs_gateway" yaml:"ipfs_gateway"`
	// StorageMode selects the upload backend, see the Storage* constants.
	StorageMode string `koanf:"storage_mode" json:"storage_mode" yaml:"storage_mode"`
	// Storage carries credentials for the direct storage backends.
	Storage StorageCredentials `koanf:"storage" json:"-" yaml:"storage"`

	// Contracts holds the Skynet contract addresses.
	Contracts Contracts `koanf:"contracts" json:"contracts" yaml:"contracts"`
	// Endpoints holds the capability endpoint URLs.
	Endpoints Endpoints `koanf:"endpoints" json:"endpoints" yaml:"endpoints"`
	// Timeouts configures per-operation timeouts. See Timeouts.WithDefaults for defaults.
	Timeouts Timeouts `koanf:"timeouts" json:"timeouts" yaml:"timeouts"`

	budget decimal.Decimal
}

// StorageCredentials are the two storage-backend credential sets.
type StorageCredentials struct {
	LighthouseAPIKey  string `koanf:"lighthouse_api_key" yaml:"lighthouse_api_key"`
	LighthouseAPIURL  string `koanf:"lighthouse_api_url" yaml:"lighthouse_api_url"`
	IPFSAPIURL        string `koanf:"ipfs_api_url" yaml:"ipfs_api_url"`
	IPFSProjectID     string `koanf:"ipfs_project_id" yaml:"ipfs_project_id"`
	IPFSProjectSecret string `koanf:"ipfs_project_secret" yaml:"ipfs_project_secret"`
}

// Contracts are the addresses of the contracts the session binds to.
type Contracts struct {
	AppNFT              string `koanf:"app_nft" json:"app_nft" yaml:"app_nft"`
	AppManager          string `koanf:"app_manager" json:"app_manager" yaml:"app_manager"`
	SubscriptionBalance string `koanf:"subscription_balance" json:"subscription_balance" yaml:"subscription_balance"`
	SkynetWrapper       string `koanf:"skynet_wrapper" json:"skynet_wrapper" yaml:"skynet_wrapper"`
}

// Endpoints are the fixed URLs of the remote capabilities. OpenAI is a
// template where "{model}" is replaced by the requested model.
type Endpoints struct {
	OpenAI  string `koanf:"openai" json:"openai" yaml:"openai"`
	Claude  string `koanf:"claude" json:"claude" yaml:"claude"`
	StackOS string `koanf:"stackos" json:"stackos" yaml:"stackos"`
	RunPod  string `koanf:"runpod" json:"runpod" yaml:"runpod"`
	Upload  string `koanf:"upload" json:"upload" yaml:"upload"`
}

// Timeouts controls operation deadlines.
// Zero values will be replaced by sane defaults in WithDefaults.
type Timeouts struct {
	// Call bounds every capability POST.
	Call time.Duration `koanf:"call" json:"call" yaml:"call"`
	// Download bounds the image GET.
	Download    time.Duration `koanf:"download" json:"download" yaml:"download"`
	ChainRead   time.Duration `koanf:"chain_read" json:"chain_read" yaml:"chain_read"`
	ChainSubmit time.Duration `koanf:"chain_submit" json:"chain_submit" yaml:"chain_submit"`
	ReceiptWait time.Duration `koanf:"receipt_wait" json:"receipt_wait" yaml:"receipt_wait"`
	Shutdown    time.Duration `koanf:"shutdown" json:"shutdown" yaml:"shutdown"`
}

// DefaultEndpoints returns the capability endpoints used when none are configured.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		OpenAI:  "http://localhost:3004/natural-request/{model}/focused",
		Claude:  "https://claudeservice-n694.stackos.io/claude-3-5-sonnet-20241022/natural-request",
		StackOS: "https://stackaiservice.metalturtle.xyz/natural-request",
		RunPod:  "http://localhost:3001/natural-request",
		Upload:  "http://localhost:3001/natural-request",
	}
}

// Validate normalizes the configuration by applying implicit defaults for
// Port, IPFSGateway, StorageMode, Endpoints and Timeouts, and verifies the
// required identity fields. DefaultResourceBudget must parse as a positive
// decimal.
func (c *Config) Validate() error {
	if c.Port == 0 {
		c.Port = 3000
	}

	if c.IPFSGateway == "" {
		c.IPFSGateway = "https://gateway.mesh3.network"
	}

	if c.StorageMode == "" {
		c.StorageMode = StorageCapability
	}

	if c.Storage.LighthouseAPIURL == "" {
		c.Storage.LighthouseAPIURL = "https://node.lighthouse.storage"
	}

	if c.Storage.IPFSAPIURL == "" {
		c.Storage.IPFSAPIURL = "https://ipfs.infura.io:5001"
	}

	def := DefaultEndpoints()
	if c.Endpoints.OpenAI == "" {
		c.Endpoints.OpenAI = def.OpenAI
	}
	if c.Endpoints.Claude == "" {
		c.Endpoints.Claude = def.Claude
	}
	if c.Endpoints.StackOS == "" {
		c.Endpoints.StackOS = def.StackOS
	}
	if c.Endpoints.RunPod == "" {
		c.Endpoints.RunPod = def.RunPod
	}
	if c.Endpoints.Upload == "" {
		c.Endpoints.Upload = def.Upload
	}

	c.Timeouts = c.Timeouts.WithDefaults()

	if c.RPCAddr == "" {
		return errors.New("RPC address is required")
	}
	if c.PrivateKey == "" {
		return errors.New("private key is required")
	}
	if c.ProjectID == "" {
		return errors.New("project id is required")
	}
	if c.AgentAddress == "" {
		return errors.New("agent address is required")
	}

	switch c.StorageMode {
	case StorageCapability, StorageIPFS, StorageLighthouse:
	default:
		return fmt.Errorf("unknown storage mode %q", c.StorageMode)
	}

	budget, err := decimal.NewFromString(c.DefaultResourceBudget)
	if err != nil {
		return fmt.Errorf("invalid default resource budget %q: %w", c.DefaultResourceBudget, err)
	}
	if !budget.IsPositive() {
		return fmt.Errorf("default resource budget must be positive, got %s", budget)
	}
	c.budget = budget

	return nil
}

// Budget returns the parsed DefaultResourceBudget. It is zero until Validate succeeds.
func (c *Config) Budget() decimal.Decimal {
	return c.budget
}

// WithDefaults returns a copy of t with zero values replaced by defaults:
//
//	Call:        30s
//	Download:    30s
//	ChainRead:   12s
//	ChainSubmit: 25s
//	ReceiptWait: 90s
//	Shutdown:    10s
func (t Timeouts) WithDefaults() Timeouts {
	tt := t
	if tt.Call == 0 {
		tt.Call = 30 * time.Second
	}
	if tt.Download == 0 {
		tt.Download = 30 * time.Second
	}
	if tt.ChainRead == 0 {
		tt.ChainRead = 12 * time.Second
	}
	if tt.ChainSubmit == 0 {
		tt.ChainSubmit = 25 * time.Second
	}
	if tt.ReceiptWait == 0 {
		tt.ReceiptWait = 90 * time.Second
	}
	if tt.Shutdown == 0 {
		tt.Shutdown = 10 * time.Second
	}
	return tt
}
