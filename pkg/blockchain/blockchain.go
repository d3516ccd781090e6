// Package blockchain provides Go bindings and helpers to interact with the
// Skynet resource-accounting contracts on EVM chains. It dials an Ethereum
// client, binds AppNFT, AppManager, SubscriptionBalance and SkynetWrapper,
// and includes utilities for wei conversions and Ethereum-compatible message
// signatures.
package blockchain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shamank/skynet-gateway/pkg/config"
	"go.uber.org/zap"
)

// EVMClient holds a connected ethclient.Client, the Skynet bindings and the
// agent key used to sign transactions.
type EVMClient struct {
	Client    *ethclient.Client
	Contracts *Skynet

	key      *ecdsa.PrivateKey
	chainID  *big.Int
	timeouts config.Timeouts
}

// Dial connects to endpoint, resolves the chain id and binds the Skynet
// contracts at addrs. key signs every transaction sent through the client.
func Dial(ctx context.Context, endpoint string, addrs Addresses, key *ecdsa.PrivateKey, timeouts config.Timeouts) (*EVMClient, error) {
	if key == nil {
		return nil, errors.New("private key is required for transactions")
	}
	timeouts = timeouts.WithDefaults()

	dialCtx, cancel := context.WithTimeout(ctx, timeouts.ChainRead)
	defer cancel()

	client, err := ethclient.DialContext(dialCtx, endpoint)
	if err != nil {
		zap.L().Error("Failed to ethdial", zap.Error(err))
		return nil, err
	}

	chainID, err := client.ChainID(dialCtx)
	if err != nil {
		client.Close()
		zap.L().Error("failed to get chain ID", zap.Error(err))
		return nil, fmt.Errorf("chain id: %w", err)
	}

	contracts, err := NewSkynet(addrs, client, client)
	if err != nil {
		client.Close()
		return nil, err
	}

	zap.L().Debug("EVM client ready",
		zap.String("endpoint", endpoint),
		zap.String("chainID", chainID.String()),
		zap.String("appNFT", addrs.AppNFT.Hex()))

	return &EVMClient{
		Client:    client,
		Contracts: contracts,
		key:       key,
		chainID:   chainID,
		timeouts:  timeouts,
	}, nil
}

// Close releases the underlying RPC connection.
func (evm *EVMClient) Close() {
	if evm.Client != nil {
		evm.Client.Close()
	}
}

func (evm *EVMClient) callOpts(ctx context.Context) (*bind.CallOpts, context.CancelFunc) {
	c, cancel := context.WithTimeout(ctx, evm.timeouts.ChainRead)
	return &bind.CallOpts{Context: c}, cancel
}

// OwnerOf returns the owner of the AppNFT nftID.
func (evm *EVMClient) OwnerOf(ctx context.Context, nftID *big.Int) (common.Address, error) {
	opts, cancel := evm.callOpts(ctx)
	defer cancel()
	return evm.Contracts.OwnerOf(opts, nftID)
}

// HasRole reports whether account holds role on the AppNFT nftID.
func (evm *EVMClient) HasRole(ctx context.Context, nftID *big.Int, role [32]byte, account common.Address) (bool, error) {
	opts, cancel := evm.callOpts(ctx)
	defer cancel()
	return evm.Contracts.HasRole(opts, nftID, role, account)
}

// AppList returns the apps registered for nftID.
func (evm *EVMClient) AppList(ctx context.Context, nftID *big.Int) ([]App, error) {
	opts, cancel := evm.callOpts(ctx)
	defer cancel()
	return evm.Contracts.GetAppList(opts, nftID)
}

// SubnetBalances returns the wei balances of nftID on each subnet.
func (evm *EVMClient) SubnetBalances(ctx context.Context, nftID *big.Int, subnets []*big.Int) ([]*big.Int, error) {
	opts, cancel := evm.callOpts(ctx)
	defer cancel()
	return evm.Contracts.GetSubnetNFTBalances(opts, nftID, subnets)
}

// CreateApp sends a createApp transaction and waits for it to be mined.
func (evm *EVMClient) CreateApp(ctx context.Context, p CreateAppParams) (*types.Receipt, error) {
	return evm.submit(ctx, "createApp", func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return evm.Contracts.CreateApp(opts, p)
	})
}

// AddBalance buys subnet balance for nftID through the SkynetWrapper and
// waits for the transaction to be mined.
func (evm *EVMClient) AddBalance(ctx context.Context, nftID *big.Int, subnets, amounts []*big.Int, value *big.Int) (*types.Receipt, error) {
	return evm.submit(ctx, "addBalanceByBuyingXCT", func(opts *bind.TransactOpts) (*types.Transaction, error) {
		return evm.Contracts.AddBalanceByBuyingXCT(opts, nftID, subnets, amounts, value)
	})
}

func (evm *EVMClient) submit(ctx context.Context, method string, send func(*bind.TransactOpts) (*types.Transaction, error)) (*types.Receipt, error) {
	submitCtx, cancel := context.WithTimeout(ctx, evm.timeouts.ChainSubmit)
	defer cancel()

	opts, err := GetTransactOpts(evm.chainID, evm.key)
	if err != nil {
		return nil, err
	}
	opts.Context = submitCtx

	tx, err := send(opts)
	if err != nil {
		zap.L().Error("transaction failed", zap.String("method", method), zap.Error(err))
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	zap.L().Debug("transaction sent", zap.String("method", method), zap.String("tx", tx.Hash().Hex()))

	waitCtx, cancelWait := context.WithTimeout(ctx, evm.timeouts.ReceiptWait)
	defer cancelWait()
	return WaitForTransaction(waitCtx, evm.Client, tx.Hash(), 8*time.Second)
}
