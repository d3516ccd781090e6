package config

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

// envKeys maps recognized environment variables to koanf config paths.
// The unprefixed names are the ones operators already export for the
// Skynet tooling; GATEWAY_* names cover the gateway-only settings.
var envKeys = map[string]string{
	"PROVIDER_RPC":            "rpc_addr",
	"AGENT_PRIVATE_KEY":       "private_key",
	"PROJECT_ID":              "project_id",
	"AGENT_ADDRESS":           "agent_address",
	"DEFAULT_RESOURCE_BUDGET": "default_resource_budget",
	"PORT":                    "port",
	"LIGHTHOUSE_API_KEY":      "storage.lighthouse_api_key",
	"IPFS_PROJECT_ID":         "storage.ipfs_project_id",
	"IPFS_PROJECT_SECRET":     "storage.ipfs_project_secret",

	"GATEWAY_DEBUG":                "debug",
	"GATEWAY_HEALTH_PORT":          "health_port",
	"GATEWAY_IPFS_GATEWAY":         "ipfs_gateway",
	"GATEWAY_STORAGE_MODE":         "storage_mode",
	"GATEWAY_IPFS_API_URL":         "storage.ipfs_api_url",
	"GATEWAY_LIGHTHOUSE_API_URL":   "storage.lighthouse_api_url",
	"GATEWAY_APP_NFT":              "contracts.app_nft",
	"GATEWAY_APP_MANAGER":          "contracts.app_manager",
	"GATEWAY_SUBSCRIPTION_BALANCE": "contracts.subscription_balance",
	"GATEWAY_SKYNET_WRAPPER":       "contracts.skynet_wrapper",
	"GATEWAY_OPENAI_URL":           "endpoints.openai",
	"GATEWAY_CLAUDE_URL":           "endpoints.claude",
	"GATEWAY_STACKOS_URL":          "endpoints.stackos",
	"GATEWAY_RUNPOD_URL":           "endpoints.runpod",
	"GATEWAY_UPLOAD_URL":           "endpoints.upload",
	"GATEWAY_CALL_TIMEOUT":         "timeouts.call",
	"GATEWAY_DOWNLOAD_TIMEOUT":     "timeouts.download",
}

// envKey translates an environment variable name into a config path, or ""
// when the variable is not recognized (koanf then skips it).
func envKey(name string) string {
	return envKeys[name]
}

// Load builds a Config from, in increasing precedence: built-in defaults,
// the optional YAML file at path (skipped when path is empty), and the
// process environment. The result is validated before it is returned.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	defaults := Config{
		Port:        3000,
		IPFSGateway: "https://gateway.mesh3.network",
		StorageMode: StorageCapability,
		Endpoints:   DefaultEndpoints(),
		Timeouts:    Timeouts{}.WithDefaults(),
	}
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("load defaults: %w", err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
		zap.L().Debug("config file loaded", zap.String("path", path))
	}

	if err := k.Load(env.Provider("", ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load environment: %w", err)
	}

	cfg := new(Config)
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
