// Package config provides configuration management for the Skynet gateway.
//
// The Config structure controls chain access, the project identity used for
// budget accounting, capability endpoints, storage backends and timeouts.
//
// # Loading
//
// Load layers three sources, later ones winning:
//
//  1. built-in defaults (port 3000, 30s capability timeout, default endpoints)
//  2. an optional YAML file
//  3. the process environment
//
// The environment uses the names already exported for the Skynet tooling:
//
//	PROVIDER_RPC             chain RPC endpoint
//	AGENT_PRIVATE_KEY        hex agent key, no 0x prefix
//	PROJECT_ID               AppNFT id the gateway spends against
//	AGENT_ADDRESS            address that must own or hold a role on PROJECT_ID
//	DEFAULT_RESOURCE_BUDGET  per-pool allocation in ether units
//	LIGHTHOUSE_API_KEY       Lighthouse credentials
//	IPFS_PROJECT_ID          IPFS credentials
//	IPFS_PROJECT_SECRET
//	PORT                     HTTP port
//
// Gateway-only settings use a GATEWAY_ prefix, for example GATEWAY_DEBUG,
// GATEWAY_STORAGE_MODE or GATEWAY_APP_NFT.
//
// # Validation
//
// Always call Validate (Load does it for you) to apply defaults and check
// required fields:
//
//	cfg := &config.Config{...}
//	if err := cfg.Validate(); err != nil {
//		log.Fatalf("Invalid config: %v", err)
//	}
//
// Validate will:
//   - set default port, gateway base, storage mode and endpoints
//   - fill zero timeouts via Timeouts.WithDefaults
//   - return an error if RPC address, private key, project id or agent address are empty
//   - parse DefaultResourceBudget, exposed afterwards as Budget()
//
// # Thread Safety
//
// Config instances should be created once at startup and treated as read-only.
package config
