package testutil

import (
	"context"
	"math/big"

	"github.com/wanderquest-labs/backend/internal/domain/ledger"
	"github.com/wanderquest-labs/backend/internal/entity"
)

// MockGateway counts submissions so tests can assert at-most-once behavior.
type MockGateway struct {
	TransferFunc     func(ctx context.Context, to string, amount float64) (ledger.SubmitReceipt, error)
	MintFunc         func(ctx context.Context, to string, tokenID int64, kind entity.MintKind) (ledger.SubmitReceipt, error)
	BalanceOfFunc    func(ctx context.Context, account string) (*big.Int, error)
	NFTBalanceOfFunc func(ctx context.Context, account string, tokenID int64, kind entity.MintKind) (*big.Int, error)

	TransferCalls int
	MintCalls     int
}

func (m *MockGateway) Transfer(
	ctx context.Context, to string, amount float64,
) (ledger.SubmitReceipt, error) {
	m.TransferCalls++
	if m.TransferFunc != nil {
		return m.TransferFunc(ctx, to, amount)
	}

	return ledger.SubmitReceipt{TxHash: "0xmocktransfer"}, nil
}

func (m *MockGateway) Mint(
	ctx context.Context, to string, tokenID int64, kind entity.MintKind,
) (ledger.SubmitReceipt, error) {
	m.MintCalls++
	if m.MintFunc != nil {
		return m.MintFunc(ctx, to, tokenID, kind)
	}

	return ledger.SubmitReceipt{TxHash: "0xmockmint"}, nil
}

func (m *MockGateway) BalanceOf(ctx context.Context, account string) (*big.Int, error) {
	if m.BalanceOfFunc != nil {
		return m.BalanceOfFunc(ctx, account)
	}

	return big.NewInt(0), nil
}

func (m *MockGateway) NFTBalanceOf(
	ctx context.Context, account string, tokenID int64, kind entity.MintKind,
) (*big.Int, error) {
	if m.NFTBalanceOfFunc != nil {
		return m.NFTBalanceOfFunc(ctx, account, tokenID, kind)
	}

	return big.NewInt(0), nil
}
