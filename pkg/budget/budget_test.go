package budget

import (
	"context"
	"errors"
	"testing"

	"github.com/shamank/skynet-gateway/pkg/model"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

type fakeLedger struct {
	pools      []model.Pool
	listErr    error
	balance    decimal.Decimal
	balanceErr error
	createErr  error
	topUpErr   error

	created      []string
	toppedUp     []string
	balanceReads int
}

func (f *fakeLedger) ListPools(context.Context) ([]model.Pool, error) {
	return f.pools, f.listErr
}

func (f *fakeLedger) SubnetBalance(context.Context, string) (decimal.Decimal, error) {
	f.balanceReads++
	return f.balance, f.balanceErr
}

func (f *fakeLedger) CreatePool(_ context.Context, name, subnet string) error {
	f.created = append(f.created, name+"/"+subnet)
	return f.createErr
}

func (f *fakeLedger) TopUp(_ context.Context, subnet string) error {
	f.toppedUp = append(f.toppedUp, subnet)
	return f.topUpErr
}

func withTestLogger(t *testing.T) {
	t.Helper()
	restore := zap.ReplaceGlobals(zaptest.NewLogger(t))
	t.Cleanup(restore)
}

func TestEnsureBudget(t *testing.T) {
	withTestLogger(t)
	allocation := decimal.RequireFromString("1")
	existing := []model.Pool{{Name: "openai", Subnets: []string{"4"}}}

	tests := []struct {
		name        string
		ledger      *fakeLedger
		want        bool
		wantCreated int
		wantTopUps  int
	}{
		{
			name:        "no pool for subnet creates one",
			ledger:      &fakeLedger{pools: []model.Pool{{Name: "ipfs", Subnets: []string{"8"}}}},
			want:        true,
			wantCreated: 1,
		},
		{
			name:       "low balance tops up once",
			ledger:     &fakeLedger{pools: existing, balance: decimal.RequireFromString("0.49")},
			want:       true,
			wantTopUps: 1,
		},
		{
			name:   "balance exactly half is sufficient",
			ledger: &fakeLedger{pools: existing, balance: decimal.RequireFromString("0.5")},
			want:   true,
		},
		{
			name:   "sufficient balance passes",
			ledger: &fakeLedger{pools: existing, balance: decimal.RequireFromString("3")},
			want:   true,
		},
		{
			name:   "pool list failure denies",
			ledger: &fakeLedger{listErr: errors.New("rpc down")},
			want:   false,
		},
		{
			name:   "balance read failure still passes",
			ledger: &fakeLedger{pools: existing, balanceErr: errors.New("rpc down")},
			want:   true,
		},
		{
			name:        "creation failure is not a denial",
			ledger:      &fakeLedger{createErr: errors.New("reverted")},
			want:        true,
			wantCreated: 1,
		},
		{
			name:       "top-up failure is not a denial",
			ledger:     &fakeLedger{pools: existing, topUpErr: errors.New("reverted")},
			want:       true,
			wantTopUps: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGate(tt.ledger, allocation)
			got := g.EnsureBudget(context.Background(), "openai", "4")
			if got != tt.want {
				t.Fatalf("EnsureBudget() = %v, want %v", got, tt.want)
			}
			if len(tt.ledger.created) != tt.wantCreated {
				t.Fatalf("created %v, want %d", tt.ledger.created, tt.wantCreated)
			}
			if len(tt.ledger.toppedUp) != tt.wantTopUps {
				t.Fatalf("topped up %v, want %d", tt.ledger.toppedUp, tt.wantTopUps)
			}
		})
	}
}

// TestEnsureBudgetCreatedPoolSkipsBalance checks a freshly created pool is
// assumed funded.
func TestEnsureBudgetCreatedPoolSkipsBalance(t *testing.T) {
	withTestLogger(t)
	l := &fakeLedger{}
	if !NewGate(l, decimal.NewFromInt(1)).EnsureBudget(context.Background(), "ipfs", "8") {
		t.Fatal("expected true")
	}
	if l.balanceReads != 0 {
		t.Fatalf("balance read %d times after creation", l.balanceReads)
	}
	if l.created[0] != "ipfs/8" {
		t.Fatalf("unexpected pool %q", l.created[0])
	}
}

func TestEnsureBudgetListFailureHasNoSideEffects(t *testing.T) {
	withTestLogger(t)
	l := &fakeLedger{listErr: errors.New("boom")}
	NewGate(l, decimal.NewFromInt(1)).EnsureBudget(context.Background(), "openai", "4")
	if len(l.created) != 0 || len(l.toppedUp) != 0 || l.balanceReads != 0 {
		t.Fatalf("unexpected ledger activity: %+v", l)
	}
}
