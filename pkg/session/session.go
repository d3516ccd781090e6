// Package session holds the long-lived, process-wide handle the gateway uses
// to reach the Skynet contracts and to sign authorization payloads.
package session

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strconv"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/shamank/skynet-gateway/pkg/blockchain"
	"github.com/shamank/skynet-gateway/pkg/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Role ids checked when the agent does not own the project NFT.
const (
	ReadRole     = "0x917ec7ea41e5f357223d15148fe9b320af36ca576055af433ea3445b39221799"
	DeployerRole = "0x503cf060389b91af8851125bd70ce66d16d12330718b103fc7674ef6d27e70c9"
)

// AppStoragePath is the storage prefix recorded as app and mod path of
// pools created by the gateway.
const AppStoragePath = "lighthouse/"

var (
	// ErrProjectRole is returned when the agent neither owns the project nor
	// holds the read or deployer role on it.
	ErrProjectRole = errors.New("Cant find the Project Role")
	// ErrAuthPayload is returned when an authorization payload cannot be signed.
	ErrAuthPayload = errors.New("Cant get Ursula Auth")
)

// Chain is the set of contract operations a Session needs. *blockchain.EVMClient
// implements it.
type Chain interface {
	OwnerOf(ctx context.Context, nftID *big.Int) (common.Address, error)
	HasRole(ctx context.Context, nftID *big.Int, role [32]byte, account common.Address) (bool, error)
	AppList(ctx context.Context, nftID *big.Int) ([]blockchain.App, error)
	SubnetBalances(ctx context.Context, nftID *big.Int, subnets []*big.Int) ([]*big.Int, error)
	CreateApp(ctx context.Context, p blockchain.CreateAppParams) (*types.Receipt, error)
	AddBalance(ctx context.Context, nftID *big.Int, subnets, amounts []*big.Int, value *big.Int) (*types.Receipt, error)
}

// Session binds a Chain to the project the gateway spends against and the
// agent key that signs on its behalf. It is safe for concurrent use.
type Session struct {
	chain   Chain
	key     *ecdsa.PrivateKey
	address common.Address
	project *big.Int
	budget  decimal.Decimal
	now     func() time.Time
}

// New returns a Session for project. budget is the per-pool allocation in
// ether used for pool creation and top-ups.
func New(chain Chain, key *ecdsa.PrivateKey, project *big.Int, budget decimal.Decimal) (*Session, error) {
	if chain == nil {
		return nil, errors.New("chain is required")
	}
	if key == nil {
		return nil, errors.New("private key is required")
	}
	if project == nil {
		return nil, errors.New("project id is required")
	}
	return &Session{
		chain:   chain,
		key:     key,
		address: crypto.PubkeyToAddress(key.PublicKey),
		project: project,
		budget:  budget,
		now:     time.Now,
	}, nil
}

// Address returns the address derived from the agent key.
func (s *Session) Address() common.Address { return s.address }

// Project returns the project NFT id.
func (s *Session) Project() *big.Int { return new(big.Int).Set(s.project) }

// VerifyAccess checks that agent owns the project NFT or, failing that,
// holds the read or deployer role on it. Both role lookups run concurrently;
// a lookup error counts as "role not held".
func (s *Session) VerifyAccess(ctx context.Context, agent common.Address) error {
	owner, err := s.chain.OwnerOf(ctx, s.project)
	if err != nil {
		return fmt.Errorf("read project owner: %w", err)
	}
	if owner == agent {
		zap.L().Debug("agent owns project", zap.String("project", s.project.String()))
		return nil
	}

	roles := []string{ReadRole, DeployerRole}
	held := make([]bool, len(roles))
	var g errgroup.Group
	for i, raw := range roles {
		role, err := blockchain.HexToBytes32(raw)
		if err != nil {
			return err
		}
		g.Go(func() error {
			ok, err := s.chain.HasRole(ctx, s.project, role, agent)
			if err != nil {
				zap.L().Warn("role lookup failed", zap.String("role", raw), zap.Error(err))
				return nil
			}
			held[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	for i := range held {
		if held[i] {
			zap.L().Debug("agent holds project role", zap.String("role", roles[i]))
			return nil
		}
	}
	return ErrProjectRole
}

// Authorize signs the current Unix time in milliseconds with the agent key.
// Every call produces a fresh payload.
func (s *Session) Authorize(context.Context) (model.AuthorizationPayload, error) {
	msg := strconv.FormatInt(s.now().UnixMilli(), 10)
	sig, err := blockchain.SignPersonalMessage([]byte(msg), s.key)
	if err != nil {
		return model.AuthorizationPayload{}, fmt.Errorf("%w: %v", ErrAuthPayload, err)
	}
	return model.AuthorizationPayload{
		UserAddress: s.address.Hex(),
		Signature:   blockchain.EncodeSignature(sig),
		Message:     msg,
	}, nil
}

// ListPools returns the apps of the project as pools.
func (s *Session) ListPools(ctx context.Context) ([]model.Pool, error) {
	apps, err := s.chain.AppList(ctx, s.project)
	if err != nil {
		return nil, fmt.Errorf("fetch app list: %w", err)
	}
	pools := make([]model.Pool, len(apps))
	for i, app := range apps {
		id := ""
		if app.ID != nil {
			id = app.ID.String()
		}
		pools[i] = model.Pool{AppID: id, Name: app.Name, Subnets: blockchain.BigIntsToStrings(app.Subnets)}
	}
	return pools, nil
}

// SubnetBalance returns the project balance on subnet in ether.
func (s *Session) SubnetBalance(ctx context.Context, subnet string) (decimal.Decimal, error) {
	id, err := blockchain.ParseUint256(subnet)
	if err != nil {
		return decimal.Zero, err
	}
	balances, err := s.chain.SubnetBalances(ctx, s.project, []*big.Int{id})
	if err != nil {
		return decimal.Zero, fmt.Errorf("fetch subnet balance: %w", err)
	}
	if len(balances) == 0 {
		return decimal.Zero, fmt.Errorf("no balance returned for subnet %s", subnet)
	}
	return blockchain.WeiToEther(balances[0]), nil
}

// CreatePool creates an app named name on subnet, funded with the default
// budget.
func (s *Session) CreatePool(ctx context.Context, name, subnet string) error {
	id, err := blockchain.ParseUint256(subnet)
	if err != nil {
		return err
	}
	wei := blockchain.EtherToWei(s.budget)
	path := []byte(AppStoragePath)

	rec, err := s.chain.CreateApp(ctx, blockchain.CreateAppParams{
		NFTID:        s.project,
		Name:         name,
		AppPath:      path,
		ModPath:      path,
		Subnets:      []*big.Int{id},
		Subscription: blockchain.DefaultSubscriptionAddrs,
		Deposits:     []*big.Int{wei},
		Value:        wei,
	})
	if err != nil {
		return fmt.Errorf("create app %s: %w", name, err)
	}
	zap.L().Info("pool created",
		zap.String("pool", name),
		zap.String("subnet", subnet),
		zap.String("tx", rec.TxHash.Hex()))
	return nil
}

// TopUp buys the default budget again for subnet.
func (s *Session) TopUp(ctx context.Context, subnet string) error {
	id, err := blockchain.ParseUint256(subnet)
	if err != nil {
		return err
	}
	wei := blockchain.EtherToWei(s.budget)

	rec, err := s.chain.AddBalance(ctx, s.project, []*big.Int{id}, []*big.Int{wei}, wei)
	if err != nil {
		return fmt.Errorf("add balance on subnet %s: %w", subnet, err)
	}
	zap.L().Info("subnet topped up",
		zap.String("subnet", subnet),
		zap.String("amount", s.budget.String()),
		zap.String("tx", rec.TxHash.Hex()))
	return nil
}

// Close releases the chain connection when the Chain holds one.
func (s *Session) Close() {
	if c, ok := s.chain.(interface{ Close() }); ok {
		c.Close()
	}
}
