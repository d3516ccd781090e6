package blockchain

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
)

func TestGetTransactOpts(t *testing.T) {
	priv, err := crypto.GenerateKey()
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}

	opts, err := GetTransactOpts(big.NewInt(1), priv)
	if err != nil {
		t.Fatalf("GetTransactOpts failed: %v", err)
	}
	if opts.From != crypto.PubkeyToAddress(priv.PublicKey) {
		t.Fatalf("unexpected From address: got %s", opts.From.Hex())
	}

	if _, err := GetTransactOpts(big.NewInt(1), nil); err == nil {
		t.Fatal("expected error for nil key")
	}
	if _, err := GetTransactOpts(nil, priv); err == nil {
		t.Fatal("expected error for nil chainID")
	}
}

type receiptFunc func(ctx context.Context, h common.Hash) (*types.Receipt, error)

func (f receiptFunc) TransactionReceipt(ctx context.Context, h common.Hash) (*types.Receipt, error) {
	return f(ctx, h)
}

func TestWaitForTransaction(t *testing.T) {
	old := receiptPollInterval
	receiptPollInterval = time.Millisecond
	t.Cleanup(func() { receiptPollInterval = old })

	hash := common.HexToHash("0x01")

	t.Run("mined after retries", func(t *testing.T) {
		calls := 0
		r := receiptFunc(func(context.Context, common.Hash) (*types.Receipt, error) {
			calls++
			if calls < 3 {
				return nil, ethereum.NotFound
			}
			return &types.Receipt{Status: types.ReceiptStatusSuccessful, TxHash: hash}, nil
		})
		rec, err := WaitForTransaction(context.Background(), r, hash, 2*time.Millisecond)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if rec.TxHash != hash || calls != 3 {
			t.Fatalf("got receipt %v after %d calls", rec.TxHash, calls)
		}
	})

	t.Run("reverted", func(t *testing.T) {
		r := receiptFunc(func(context.Context, common.Hash) (*types.Receipt, error) {
			return &types.Receipt{Status: types.ReceiptStatusFailed}, nil
		})
		if _, err := WaitForTransaction(context.Background(), r, hash, 0); err == nil {
			t.Fatal("expected revert error")
		}
	})

	t.Run("lookup error", func(t *testing.T) {
		boom := errors.New("boom")
		r := receiptFunc(func(context.Context, common.Hash) (*types.Receipt, error) {
			return nil, boom
		})
		if _, err := WaitForTransaction(context.Background(), r, hash, 0); !errors.Is(err, boom) {
			t.Fatalf("expected wrapped boom, got %v", err)
		}
	})

	t.Run("context done", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		r := receiptFunc(func(context.Context, common.Hash) (*types.Receipt, error) {
			return nil, ethereum.NotFound
		})
		if _, err := WaitForTransaction(ctx, r, hash, time.Millisecond); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("expected deadline exceeded, got %v", err)
		}
	})
}
