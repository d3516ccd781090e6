package blockchain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// ABI fragments for the Skynet contracts. Only the methods the gateway calls
// are declared.
const (
	AppNFTABI = `[
	{"type":"function","name":"ownerOf","stateMutability":"view",
	 "inputs":[{"name":"tokenId","type":"uint256"}],
	 "outputs":[{"name":"","type":"address"}]},
	{"type":"function","name":"hasRole","stateMutability":"view",
	 "inputs":[{"name":"nftID","type":"uint256"},{"name":"role","type":"bytes32"},{"name":"requester","type":"address"}],
	 "outputs":[{"name":"","type":"bool"}]}
]`

	AppManagerABI = `[
	{"type":"function","name":"getAppList","stateMutability":"view",
	 "inputs":[{"name":"nftID","type":"uint256"}],
	 "outputs":[{"name":"appIDs","type":"uint256[]"},{"name":"appNames","type":"string[]"},{"name":"subnetLists","type":"uint256[][]"}]},
	{"type":"function","name":"createApp","stateMutability":"payable",
	 "inputs":[
	  {"name":"nftID","type":"uint256"},
	  {"name":"appName","type":"string"},
	  {"name":"appPath","type":"bytes"},
	  {"name":"modPath","type":"bytes"},
	  {"name":"subnetList","type":"uint256[]"},
	  {"name":"subscriptionAddrs","type":"address[4]"},
	  {"name":"depositAmounts","type":"uint256[]"}],
	 "outputs":[]}
]`

	SubscriptionBalanceABI = `[
	{"type":"function","name":"getSubnetNFTBalances","stateMutability":"view",
	 "inputs":[{"name":"nftID","type":"uint256"},{"name":"subnetList","type":"uint256[]"}],
	 "outputs":[{"name":"balanceList","type":"uint256[]"}]}
]`

	SkynetWrapperABI = `[
	{"type":"function","name":"addBalanceByBuyingXCT","stateMutability":"payable",
	 "inputs":[{"name":"nftID","type":"uint256"},{"name":"subnetList","type":"uint256[]"},{"name":"amounts","type":"uint256[]"}],
	 "outputs":[]}
]`
)

// Addresses locates the four Skynet contracts on chain.
type Addresses struct {
	AppNFT              common.Address
	AppManager          common.Address
	SubscriptionBalance common.Address
	SkynetWrapper       common.Address
}

// ParseAddresses converts hex strings into Addresses. Every address is required.
func ParseAddresses(appNFT, appManager, subscriptionBalance, skynetWrapper string) (Addresses, error) {
	var a Addresses
	for _, f := range []struct {
		name string
		raw  string
		dst  *common.Address
	}{
		{"AppNFT", appNFT, &a.AppNFT},
		{"AppManager", appManager, &a.AppManager},
		{"SubscriptionBalance", subscriptionBalance, &a.SubscriptionBalance},
		{"SkynetWrapper", skynetWrapper, &a.SkynetWrapper},
	} {
		if f.raw == "" {
			return Addresses{}, fmt.Errorf("%s contract address is not configured", f.name)
		}
		if !common.IsHexAddress(f.raw) {
			return Addresses{}, fmt.Errorf("invalid %s contract address %q", f.name, f.raw)
		}
		*f.dst = common.HexToAddress(f.raw)
	}
	return a, nil
}

// App is one entry of the AppManager app list of a project.
type App struct {
	ID      *big.Int
	Name    string
	Subnets []*big.Int
}

// SubscriptionAddrs are the license, support, platform and referral
// addresses recorded with a new app subscription.
type SubscriptionAddrs [4]common.Address

// DefaultSubscriptionAddrs are the addresses the Skynet dashboard uses for
// self-service apps: no license or referral, fixed support and platform.
var DefaultSubscriptionAddrs = SubscriptionAddrs{
	common.Address{},
	common.HexToAddress("0x3C904a5f23f868f309a6DB2a428529F33848f517"),
	common.HexToAddress("0xBC6200490F4bFC9092eA2987Ddb1Df478997e0cd"),
	common.Address{},
}

// CreateAppParams describes a createApp transaction. Value is sent along with
// the call and should equal the sum of Deposits.
type CreateAppParams struct {
	NFTID        *big.Int
	Name         string
	AppPath      []byte
	ModPath      []byte
	Subnets      []*big.Int
	Subscription SubscriptionAddrs
	Deposits     []*big.Int
	Value        *big.Int
}

// Skynet bundles bound contracts for AppNFT, AppManager,
// SubscriptionBalance and SkynetWrapper.
type Skynet struct {
	appNFT              *bind.BoundContract
	appManager          *bind.BoundContract
	subscriptionBalance *bind.BoundContract
	wrapper             *bind.BoundContract
}

// NewSkynet binds the Skynet contracts at addrs. transactor may be nil for a
// read-only binding.
func NewSkynet(addrs Addresses, caller bind.ContractCaller, transactor bind.ContractTransactor) (*Skynet, error) {
	bound := func(addr common.Address, raw string) (*bind.BoundContract, error) {
		parsed, err := abi.JSON(strings.NewReader(raw))
		if err != nil {
			return nil, err
		}
		return bind.NewBoundContract(addr, parsed, caller, transactor, nil), nil
	}

	var (
		s   Skynet
		err error
	)
	if s.appNFT, err = bound(addrs.AppNFT, AppNFTABI); err != nil {
		return nil, fmt.Errorf("bind AppNFT: %w", err)
	}
	if s.appManager, err = bound(addrs.AppManager, AppManagerABI); err != nil {
		return nil, fmt.Errorf("bind AppManager: %w", err)
	}
	if s.subscriptionBalance, err = bound(addrs.SubscriptionBalance, SubscriptionBalanceABI); err != nil {
		return nil, fmt.Errorf("bind SubscriptionBalance: %w", err)
	}
	if s.wrapper, err = bound(addrs.SkynetWrapper, SkynetWrapperABI); err != nil {
		return nil, fmt.Errorf("bind SkynetWrapper: %w", err)
	}
	return &s, nil
}

// OwnerOf returns the owner of the AppNFT nftID.
func (s *Skynet) OwnerOf(opts *bind.CallOpts, nftID *big.Int) (common.Address, error) {
	var out []any
	if err := s.appNFT.Call(opts, &out, "ownerOf", nftID); err != nil {
		return common.Address{}, err
	}
	return *abi.ConvertType(out[0], new(common.Address)).(*common.Address), nil
}

// HasRole reports whether requester holds role on the AppNFT nftID.
func (s *Skynet) HasRole(opts *bind.CallOpts, nftID *big.Int, role [32]byte, requester common.Address) (bool, error) {
	var out []any
	if err := s.appNFT.Call(opts, &out, "hasRole", nftID, role, requester); err != nil {
		return false, err
	}
	return *abi.ConvertType(out[0], new(bool)).(*bool), nil
}

// GetAppList returns the apps registered for nftID.
func (s *Skynet) GetAppList(opts *bind.CallOpts, nftID *big.Int) ([]App, error) {
	var out []any
	if err := s.appManager.Call(opts, &out, "getAppList", nftID); err != nil {
		return nil, err
	}
	ids := *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int)
	names := *abi.ConvertType(out[1], new([]string)).(*[]string)
	subnets := *abi.ConvertType(out[2], new([][]*big.Int)).(*[][]*big.Int)
	if len(names) != len(ids) || len(subnets) != len(ids) {
		return nil, errors.New("getAppList: mismatched result lengths")
	}

	apps := make([]App, len(ids))
	for i := range ids {
		apps[i] = App{ID: ids[i], Name: names[i], Subnets: subnets[i]}
	}
	return apps, nil
}

// GetSubnetNFTBalances returns one balance in wei per requested subnet.
func (s *Skynet) GetSubnetNFTBalances(opts *bind.CallOpts, nftID *big.Int, subnets []*big.Int) ([]*big.Int, error) {
	var out []any
	if err := s.subscriptionBalance.Call(opts, &out, "getSubnetNFTBalances", nftID, subnets); err != nil {
		return nil, err
	}
	return *abi.ConvertType(out[0], new([]*big.Int)).(*[]*big.Int), nil
}

// CreateApp submits an AppManager.createApp transaction. opts.Value is
// overwritten with p.Value.
func (s *Skynet) CreateApp(opts *bind.TransactOpts, p CreateAppParams) (*types.Transaction, error) {
	opts.Value = p.Value
	return s.appManager.Transact(opts, "createApp",
		p.NFTID, p.Name, p.AppPath, p.ModPath, p.Subnets, [4]common.Address(p.Subscription), p.Deposits)
}

// AddBalanceByBuyingXCT submits a SkynetWrapper top-up paying value.
func (s *Skynet) AddBalanceByBuyingXCT(opts *bind.TransactOpts, nftID *big.Int, subnets, amounts []*big.Int, value *big.Int) (*types.Transaction, error) {
	opts.Value = value
	return s.wrapper.Transact(opts, "addBalanceByBuyingXCT", nftID, subnets, amounts)
}
