package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shamank/skynet-gateway/pkg/blockchain"
	"github.com/shamank/skynet-gateway/pkg/config"
	"github.com/shamank/skynet-gateway/pkg/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// InitFunc builds a Session. It is called at most once per successful
// initialization.
type InitFunc func(ctx context.Context) (*Session, error)

// Provider lazily initializes the process-wide Session. Concurrent first
// callers share one in-flight initialization; later callers get the cached
// Session. A failed initialization is not cached, so the next call retries.
type Provider struct {
	init  InitFunc
	group singleflight.Group

	mu      sync.RWMutex
	current *Session
}

// NewProvider returns a Provider that initializes sessions with init.
func NewProvider(init InitFunc) *Provider {
	return &Provider{init: init}
}

// NewConfigProvider returns a Provider whose Session is opened from cfg by Open.
func NewConfigProvider(cfg *config.Config) *Provider {
	return NewProvider(func(ctx context.Context) (*Session, error) {
		return Open(ctx, cfg)
	})
}

// Get returns the Session, initializing it on first use.
func (p *Provider) Get(ctx context.Context) (*Session, error) {
	if s := p.cached(); s != nil {
		return s, nil
	}

	v, err, shared := p.group.Do("session", func() (any, error) {
		if s := p.cached(); s != nil {
			return s, nil
		}
		// The first caller's cancellation must not fail the others.
		s, err := p.init(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		p.mu.Lock()
		p.current = s
		p.mu.Unlock()
		return s, nil
	})
	if err != nil {
		zap.L().Error("session initialization failed", zap.Bool("shared", shared), zap.Error(err))
		return nil, err
	}
	return v.(*Session), nil
}

// Close releases the cached Session, if any. A later Get opens a new one.
func (p *Provider) Close() {
	p.mu.Lock()
	s := p.current
	p.current = nil
	p.mu.Unlock()
	if s != nil {
		s.Close()
	}
}

func (p *Provider) cached() *Session {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Authorize signs a fresh payload with the current Session. Initialization
// failures are returned as is.
func (p *Provider) Authorize(ctx context.Context) (model.AuthorizationPayload, error) {
	s, err := p.Get(ctx)
	if err != nil {
		return model.AuthorizationPayload{}, err
	}
	return s.Authorize(ctx)
}

// ListPools lists the project pools through the current Session.
func (p *Provider) ListPools(ctx context.Context) ([]model.Pool, error) {
	s, err := p.Get(ctx)
	if err != nil {
		return nil, err
	}
	return s.ListPools(ctx)
}

// SubnetBalance reads a subnet balance through the current Session.
func (p *Provider) SubnetBalance(ctx context.Context, subnet string) (decimal.Decimal, error) {
	s, err := p.Get(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	return s.SubnetBalance(ctx, subnet)
}

// CreatePool creates a pool through the current Session.
func (p *Provider) CreatePool(ctx context.Context, name, subnet string) error {
	s, err := p.Get(ctx)
	if err != nil {
		return err
	}
	return s.CreatePool(ctx, name, subnet)
}

// TopUp tops up a subnet through the current Session.
func (p *Provider) TopUp(ctx context.Context, subnet string) error {
	s, err := p.Get(ctx)
	if err != nil {
		return err
	}
	return s.TopUp(ctx, subnet)
}

// Open dials the chain described by cfg, builds a Session for cfg.ProjectID
// and verifies that cfg.AgentAddress may act on the project.
func Open(ctx context.Context, cfg *config.Config) (*Session, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if !common.IsHexAddress(cfg.AgentAddress) {
		return nil, fmt.Errorf("invalid agent address %q", cfg.AgentAddress)
	}
	project, err := blockchain.ParseUint256(cfg.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("project id: %w", err)
	}
	_, key, err := blockchain.ParsePrivateKeyECDSA(cfg.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("private key: %w", err)
	}
	c := cfg.Contracts
	addrs, err := blockchain.ParseAddresses(c.AppNFT, c.AppManager, c.SubscriptionBalance, c.SkynetWrapper)
	if err != nil {
		return nil, err
	}

	evm, err := blockchain.Dial(ctx, cfg.RPCAddr, addrs, key, cfg.Timeouts)
	if err != nil {
		return nil, fmt.Errorf("dial chain: %w", err)
	}

	s, err := New(evm, key, project, cfg.Budget())
	if err != nil {
		evm.Close()
		return nil, err
	}
	if err := s.VerifyAccess(ctx, common.HexToAddress(cfg.AgentAddress)); err != nil {
		evm.Close()
		return nil, err
	}

	zap.L().Info("session initialized",
		zap.String("project", cfg.ProjectID),
		zap.String("agent", cfg.AgentAddress),
		zap.String("signer", s.Address().Hex()))
	return s, nil
}
