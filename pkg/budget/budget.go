// Package budget decides whether the gateway may spend against a resource
// pool before a capability call is made.
package budget

import (
	"context"

	"github.com/shamank/skynet-gateway/pkg/metrics"
	"github.com/shamank/skynet-gateway/pkg/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Ledger is the on-chain resource accounting the gate reads and writes.
// *session.Provider and *session.Session implement it.
type Ledger interface {
	ListPools(ctx context.Context) ([]model.Pool, error)
	SubnetBalance(ctx context.Context, subnet string) (decimal.Decimal, error)
	CreatePool(ctx context.Context, name, subnet string) error
	TopUp(ctx context.Context, subnet string) error
}

var half = decimal.RequireFromString("0.5")

// Gate verifies budgets against a Ledger.
type Gate struct {
	ledger    Ledger
	threshold decimal.Decimal
}

// NewGate returns a Gate that tops up any subnet whose balance falls below
// half of allocation.
func NewGate(ledger Ledger, allocation decimal.Decimal) *Gate {
	return &Gate{ledger: ledger, threshold: allocation.Mul(half)}
}

// EnsureBudget reports whether the project may spend against pool on subnet.
//
// It returns false only when the pool list cannot be read. A subnet with no
// pool gets one created; a subnet whose balance is below the threshold is
// topped up. Both writes are best effort: failures are logged and the call
// is still authorized. An unreadable balance skips the top-up.
func (g *Gate) EnsureBudget(ctx context.Context, pool, subnet string) bool {
	log := zap.L().With(zap.String("pool", pool), zap.String("subnet", subnet))

	pools, err := g.ledger.ListPools(ctx)
	if err != nil {
		log.Error("budget can't be verified", zap.Error(err))
		metrics.RecordBudgetAction(pool, "denied")
		return false
	}

	if !hasSubnet(pools, subnet) {
		if err := g.ledger.CreatePool(ctx, pool, subnet); err != nil {
			log.Error("pool creation failed", zap.Error(err))
			metrics.RecordBudgetAction(pool, "create_failed")
		} else {
			metrics.RecordBudgetAction(pool, "created")
		}
		return true
	}

	balance, err := g.ledger.SubnetBalance(ctx, subnet)
	if err != nil {
		log.Warn("subnet balance unavailable, skipping top-up", zap.Error(err))
		metrics.RecordBudgetAction(pool, "verified")
		return true
	}
	log.Debug("subnet balance", zap.String("balance", balance.String()), zap.String("threshold", g.threshold.String()))

	if balance.LessThan(g.threshold) {
		if err := g.ledger.TopUp(ctx, subnet); err != nil {
			log.Error("top-up failed", zap.Error(err))
			metrics.RecordBudgetAction(pool, "topup_failed")
		} else {
			metrics.RecordBudgetAction(pool, "topped_up")
		}
		return true
	}

	metrics.RecordBudgetAction(pool, "verified")
	return true
}

func hasSubnet(pools []model.Pool, subnet string) bool {
	for _, p := range pools {
		if p.HasSubnet(subnet) {
			return true
		}
	}
	return false
}
