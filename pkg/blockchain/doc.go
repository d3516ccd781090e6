// The package is organized around two types:
//
// Skynet:
//   - bound contracts built with abi.JSON and bind.NewBoundContract from
//     the embedded ABI fragments (AppNFTABI, AppManagerABI, ...)
//   - raw bind.CallOpts / bind.TransactOpts methods, usable against any
//     bind.ContractCaller, including test doubles
//
// EVMClient:
//   - dials the RPC endpoint and caches the chain id
//   - context-aware reads bounded by Timeouts.ChainRead
//   - signed writes bounded by Timeouts.ChainSubmit, followed by
//     WaitForTransaction bounded by Timeouts.ReceiptWait
//
// # Smart Contracts
//
//  1. AppNFT: project ownership (ownerOf) and role membership (hasRole).
//  2. AppManager: app list of a project and app creation (createApp).
//  3. SubscriptionBalance: per-subnet balances of a project.
//  4. SkynetWrapper: balance top-ups paid in the native coin.
//
// # Usage
//
//	addrs, err := blockchain.ParseAddresses(c.AppNFT, c.AppManager, c.SubscriptionBalance, c.SkynetWrapper)
//	evm, err := blockchain.Dial(ctx, cfg.RPCAddr, addrs, key, cfg.Timeouts)
//	owner, err := evm.OwnerOf(ctx, projectID)
//
// # Signatures
//
// SignPersonalMessage produces the same 65-byte signature as an ethers
// wallet signMessage call (EIP-191, V in {27, 28}). RecoverPersonalSigner
// is its inverse.
//
// # Amounts
//
// EtherToWei and WeiToEther convert between decimal ether amounts and wei
// using shopspring/decimal, so budgets never pass through float64.
package blockchain
